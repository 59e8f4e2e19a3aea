package recommend

import (
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

// columnSet groups the classified columns by semantic type, preserving
// the classification order within each group.
type columnSet struct {
	numeric     []string
	date        []string
	categorical []string
	text        []string
}

func groupColumns(columns []profile.ColumnClassification) columnSet {
	var set columnSet
	for _, col := range columns {
		switch col.Type {
		case profile.TypeNumeric:
			set.numeric = append(set.numeric, col.ColumnName)
		case profile.TypeDate:
			set.date = append(set.date, col.ColumnName)
		case profile.TypeCategorical:
			set.categorical = append(set.categorical, col.ColumnName)
		default:
			set.text = append(set.text, col.ColumnName)
		}
	}
	return set
}

// shapeRule scores a chart type from the data shape alone. Rules run
// in order and the first matching predicate wins.
type shapeRule struct {
	label      string
	matches    func(ds *tabular.Dataset, set columnSet) bool
	chartType  func(ds *tabular.Dataset, set columnSet) chart.Type
	confidence float64
}

var shapeRules = []shapeRule{
	{
		label: "time series",
		matches: func(ds *tabular.Dataset, set columnSet) bool {
			return len(set.date) >= 1 && len(set.numeric) >= 1
		},
		chartType: func(ds *tabular.Dataset, set columnSet) chart.Type {
			return chart.TypeLine
		},
		confidence: 0.8,
	},
	{
		// Two grouping dimensions against a measure; must run before
		// the single-category rule, whose predicate it overlaps.
		label: "cross tabulation",
		matches: func(ds *tabular.Dataset, set columnSet) bool {
			return len(set.categorical) >= 2 && len(set.numeric) >= 1
		},
		chartType: func(ds *tabular.Dataset, set columnSet) chart.Type {
			return chart.TypeHeatmap
		},
		confidence: 0.65,
	},
	{
		label: "category comparison",
		matches: func(ds *tabular.Dataset, set columnSet) bool {
			return len(set.categorical) >= 1 && len(set.numeric) >= 1
		},
		chartType: func(ds *tabular.Dataset, set columnSet) chart.Type {
			n := categoryCount(ds, set.categorical[0])
			switch {
			case n <= 6:
				return chart.TypePie
			case n <= 20:
				return chart.TypeBar
			default:
				return chart.TypeTreemap
			}
		},
		confidence: 0.75,
	},
	{
		label: "numeric relationship",
		matches: func(ds *tabular.Dataset, set columnSet) bool {
			return len(set.numeric) >= 2
		},
		chartType: func(ds *tabular.Dataset, set columnSet) chart.Type {
			return chart.TypeScatter
		},
		confidence: 0.7,
	},
	{
		label: "value distribution",
		matches: func(ds *tabular.Dataset, set columnSet) bool {
			return len(set.numeric) == 1 && distinctCount(ds, set.numeric[0]) >= 10
		},
		chartType: func(ds *tabular.Dataset, set columnSet) chart.Type {
			return chart.TypeHistogram
		},
		confidence: 0.7,
	},
}

// scoreShape picks a chart type from the data shape. The bar fallback
// keeps the pipeline total when nothing matches.
func scoreShape(ds *tabular.Dataset, set columnSet) (chart.Type, float64, string) {
	for _, rule := range shapeRules {
		if rule.matches(ds, set) {
			return rule.chartType(ds, set), rule.confidence, rule.label
		}
	}
	return chart.TypeBar, 0.4, "general comparison"
}

func categoryCount(ds *tabular.Dataset, col string) int {
	return distinctCount(ds, col)
}

func distinctCount(ds *tabular.Dataset, col string) int {
	seen := make(map[string]struct{})
	for _, v := range ds.NonNullValues(col) {
		seen[v.String()] = struct{}{}
	}
	return len(seen)
}
