// Package chart holds the visualization recommendation types: chart
// type allow-list, aggregation methods and the fully-bound suggestion.
package chart

// Type is a renderable chart kind. Suggestions never leave the engine
// with a type outside the allow-list below.
type Type string

const (
	TypeBar       Type = "bar"
	TypeLine      Type = "line"
	TypeArea      Type = "area"
	TypePie       Type = "pie"
	TypeScatter   Type = "scatter"
	TypeScatter3D Type = "scatter3d"
	TypeSurface   Type = "surface"
	TypeHistogram Type = "histogram"
	TypeHeatmap   Type = "heatmap"
	TypeTreemap   Type = "treemap"
	TypeNetwork   Type = "network"
)

// AllowedTypes is the fixed set of chart types the engine may emit
var AllowedTypes = map[Type]bool{
	TypeBar:       true,
	TypeLine:      true,
	TypeArea:      true,
	TypePie:       true,
	TypeScatter:   true,
	TypeScatter3D: true,
	TypeSurface:   true,
	TypeHistogram: true,
	TypeHeatmap:   true,
	TypeTreemap:   true,
	TypeNetwork:   true,
}

// IsAllowed reports whether t is on the allow-list
func (t Type) IsAllowed() bool {
	return AllowedTypes[t]
}

// Is3D reports whether t renders in three dimensions
func (t Type) Is3D() bool {
	return t == TypeScatter3D || t == TypeSurface
}

// AggregationMethod reduces grouped y-values to a single number
type AggregationMethod string

const (
	AggSum     AggregationMethod = "sum"
	AggAverage AggregationMethod = "average"
	AggCount   AggregationMethod = "count"
	AggMin     AggregationMethod = "min"
	AggMax     AggregationMethod = "max"
)

// SeriesBinding binds one data series to a column
type SeriesBinding struct {
	Column string `json:"column"`
	Label  string `json:"label"`
}

// Suggestion is a fully-bound chart recommendation ready to render.
// Unset axis bindings are empty strings, never null, so downstream
// consumers stay total.
type Suggestion struct {
	ChartType     Type              `json:"chart_type"`
	XColumn       string            `json:"x_column"`
	YColumn       string            `json:"y_column"`
	ZColumn       string            `json:"z_column"`
	ValueColumn   string            `json:"value_column"`
	Aggregation   AggregationMethod `json:"aggregation"`
	SeriesConfig  []SeriesBinding   `json:"series_config"`
	Title         string            `json:"title"`
	Reasoning     string            `json:"reasoning"`
	Confidence    float64           `json:"confidence"`
}
