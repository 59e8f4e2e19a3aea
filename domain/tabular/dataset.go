package tabular

import (
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
)

// Row maps column names to cell values. Ordering is carried by the
// owning Dataset's column list, not by the map itself.
type Row map[string]Value

// Dataset is an immutable snapshot of tabular data: an ordered column
// set shared by every row. Engines treat it as read-only; a new
// analysis pass gets a fresh snapshot.
type Dataset struct {
	ID      core.DatasetID `json:"id"`
	Name    string         `json:"name"`
	Columns []string       `json:"columns"`
	Rows    []Row          `json:"rows"`
}

// NewDataset builds a dataset snapshot from ordered columns and rows
func NewDataset(name string, columns []string, rows []Row) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    name,
		Columns: cols,
		Rows:    rows,
	}
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// HasColumn reports whether the dataset carries the named column
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnValues returns every cell of the named column in row order,
// with missing values for rows that lack the column.
func (d *Dataset) ColumnValues(name string) []Value {
	values := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		v, ok := row[name]
		if !ok {
			v = NewMissingValue()
		}
		values[i] = v
	}
	return values
}

// NonNullValues returns the column's cells with missing values filtered out
func (d *Dataset) NonNullValues(name string) []Value {
	out := make([]Value, 0, len(d.Rows))
	for _, row := range d.Rows {
		v, ok := row[name]
		if !ok || v.IsMissing {
			continue
		}
		out = append(out, v)
	}
	return out
}
