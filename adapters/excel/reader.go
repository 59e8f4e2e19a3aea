// Package excel loads xlsx and csv files into dataset snapshots.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/coerce"
)

// DataReader handles reading Excel and CSV files into datasets
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	coercer  *coerce.Coercer
	logger   *internal.Logger
}

// NewDataReader creates a reader for the given file, picking the
// format from the extension.
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		coercer:  coerce.New(),
		logger:   logger,
	}
}

// Read loads the file into an immutable dataset snapshot
func (r *DataReader) Read() (*tabular.Dataset, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}
	return r.buildDataset(rows), nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// buildDataset coerces raw string cells into typed values
func (r *DataReader) buildDataset(raw [][]string) *tabular.Dataset {
	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	dataRows := make([]tabular.Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(tabular.Row, len(headers))
		for j, header := range headers {
			if j < len(cells) {
				row[header] = r.coercer.Value(strings.TrimSpace(cells[j]))
			} else {
				row[header] = tabular.NewMissingValue()
			}
		}
		dataRows = append(dataRows, row)
	}

	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	r.logger.Info("loaded %s file %s (%d columns, %d rows)", r.fileType, r.filePath, len(headers), len(dataRows))
	return tabular.NewDataset(name, headers, dataRows)
}
