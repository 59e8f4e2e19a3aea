package recommend

import (
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

// axisBinding holds the chosen columns for a suggestion
type axisBinding struct {
	x, y, z, value string
}

var temporalNameKeywords = []string{
	"date", "time", "year", "month", "day", "week", "quarter",
	"period", "timestamp",
}

// namedInQuery returns the columns the query mentions literally, in
// dataset column order.
func namedInQuery(ds *tabular.Dataset, query string) []string {
	if query == "" {
		return nil
	}
	lower := strings.ToLower(query)
	var out []string
	for _, col := range ds.Columns {
		if strings.Contains(lower, strings.ToLower(col)) {
			out = append(out, col)
		}
	}
	return out
}

// selectAxes binds columns to axes for the chosen chart type. Query
// mentioned columns take priority within each slot's type requirement.
func selectAxes(ds *tabular.Dataset, set columnSet, chartType chart.Type, query string, trend bool) axisBinding {
	mentioned := namedInQuery(ds, query)

	numeric := preferMentioned(set.numeric, mentioned)
	categorical := preferMentioned(set.categorical, mentioned)
	dates := preferMentioned(set.date, mentioned)

	var b axisBinding
	switch chartType {
	case chart.TypeScatter:
		b.x, b.y = scatterPair(ds, numeric)
	case chart.TypeScatter3D, chart.TypeSurface:
		b.x, b.y = scatterPair(ds, numeric)
		b.z = firstOther(numeric, b.x, b.y)
	case chart.TypeHistogram:
		b.x = first(numeric)
	case chart.TypeHeatmap:
		b.x = first(categorical)
		b.y = firstOther(categorical, b.x, "")
		b.value = first(numeric)
	case chart.TypeNetwork:
		b.x = first(categorical)
		b.y = firstOther(categorical, b.x, "")
	case chart.TypePie, chart.TypeTreemap:
		b.x = dimensionColumn(ds, set, dates, categorical, false)
		b.y = first(numeric)
		b.value = b.y
	default: // bar, line, area
		b.x = dimensionColumn(ds, set, dates, categorical, trend)
		b.y = first(numeric)
	}
	return b
}

// dimensionColumn picks the grouping axis. Trend charts bias toward
// real date columns, then temporal-sounding names, then sequential
// numeric columns, with categorical as the last resort. Everything
// else groups by the first categorical column, falling back to a date.
func dimensionColumn(ds *tabular.Dataset, set columnSet, dates, categorical []string, trend bool) string {
	if trend {
		if len(dates) > 0 {
			return dates[0]
		}
		for _, col := range ds.Columns {
			if matchesTemporalName(col) {
				return col
			}
		}
		for _, col := range set.numeric {
			if isSequentialNumeric(ds, col) {
				return col
			}
		}
		return first(categorical)
	}
	if len(categorical) > 0 {
		return categorical[0]
	}
	return first(dates)
}

func matchesTemporalName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range temporalNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isSequentialNumeric reports whether a numeric column's values read
// like an ordered axis rather than a measure.
func isSequentialNumeric(ds *tabular.Dataset, col string) bool {
	values := ds.NonNullValues(col)
	if len(values) < 3 {
		return false
	}
	rising := 0
	pairs := 0
	for i := 1; i < len(values); i++ {
		if !values[i-1].IsNumeric() || !values[i].IsNumeric() {
			return false
		}
		pairs++
		if values[i].AsFloat64() >= values[i-1].AsFloat64() {
			rising++
		}
	}
	return pairs > 0 && float64(rising)/float64(pairs) >= 0.9
}

// scatterPair returns the two most correlated distinct numeric columns
// when more than two qualify, otherwise the first two.
func scatterPair(ds *tabular.Dataset, numeric []string) (string, string) {
	if len(numeric) < 2 {
		if len(numeric) == 1 {
			return numeric[0], ""
		}
		return "", ""
	}
	if len(numeric) == 2 {
		return numeric[0], numeric[1]
	}

	bestX, bestY := numeric[0], numeric[1]
	best := -1.0
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			xs, ys := pairedFloats(ds, numeric[i], numeric[j])
			if len(xs) < 3 {
				continue
			}
			r := stat.Correlation(xs, ys, nil)
			if abs := absFloat(r); abs > best {
				best = abs
				bestX, bestY = numeric[i], numeric[j]
			}
		}
	}
	return bestX, bestY
}

// pairedFloats extracts rows where both columns hold numbers
func pairedFloats(ds *tabular.Dataset, a, b string) ([]float64, []float64) {
	var xs, ys []float64
	for _, row := range ds.Rows {
		va, vb := row[a], row[b]
		if !va.IsNumeric() || !vb.IsNumeric() {
			continue
		}
		xs = append(xs, va.AsFloat64())
		ys = append(ys, vb.AsFloat64())
	}
	return xs, ys
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// preferMentioned moves query-mentioned columns to the front,
// preserving relative order otherwise.
func preferMentioned(cols, mentioned []string) []string {
	if len(mentioned) == 0 {
		return cols
	}
	mentionedSet := make(map[string]bool, len(mentioned))
	for _, m := range mentioned {
		mentionedSet[m] = true
	}
	front := make([]string, 0, len(cols))
	back := make([]string, 0, len(cols))
	for _, c := range cols {
		if mentionedSet[c] {
			front = append(front, c)
		} else {
			back = append(back, c)
		}
	}
	return append(front, back...)
}

func first(cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	return cols[0]
}

func firstOther(cols []string, taken1, taken2 string) string {
	for _, c := range cols {
		if c != taken1 && c != taken2 {
			return c
		}
	}
	return ""
}
