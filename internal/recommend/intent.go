package recommend

import (
	"strings"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
)

// intentRule matches a query keyword family to a chart type. Rules are
// evaluated in order; the first match wins.
type intentRule struct {
	label      string
	keywords   []string
	chartType  chart.Type
	confidence float64
}

var intentRules = []intentRule{
	{
		label:      "trend",
		keywords:   []string{"trend", "over time", "timeline", "time series", "growth"},
		chartType:  chart.TypeLine,
		confidence: 0.9,
	},
	{
		label:      "comparison",
		keywords:   []string{"compare", "comparison", "versus", " vs ", "against"},
		chartType:  chart.TypeBar,
		confidence: 0.85,
	},
	{
		label:      "distribution",
		keywords:   []string{"distribution", "spread", "frequency", "histogram"},
		chartType:  chart.TypeHistogram,
		confidence: 0.85,
	},
	{
		label:      "correlation",
		keywords:   []string{"correlation", "correlate", "relationship between", "scatter"},
		chartType:  chart.TypeScatter,
		confidence: 0.85,
	},
	{
		label:      "proportion",
		keywords:   []string{"proportion", "share", "percentage", "breakdown", "composition"},
		chartType:  chart.TypePie,
		confidence: 0.85,
	},
	{
		label:      "network",
		keywords:   []string{"network", "graph", "connection", "relationship map"},
		chartType:  chart.TypeNetwork,
		confidence: 0.8,
	},
}

var threeDKeywords = []string{"3d", "three dimensional", "three-dimensional", "dimensional"}

// detectedIntent is the outcome of query keyword matching
type detectedIntent struct {
	label       string
	chartType   chart.Type
	confidence  float64
	wantsThreeD bool
}

// detectIntent scans the query against the keyword families. A false
// second return means no family matched and the caller should fall
// back to data-shape scoring. The 3D family is orthogonal: it upgrades
// whatever type the rest of the pipeline settles on.
func detectIntent(query string) (detectedIntent, bool) {
	lower := strings.ToLower(query)
	out := detectedIntent{wantsThreeD: containsAny(lower, threeDKeywords)}
	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			out.label = rule.label
			out.chartType = rule.chartType
			out.confidence = rule.confidence
			return out, true
		}
	}
	return out, false
}

// upgradeToThreeD maps a chart type to its 3D variant when one exists
func upgradeToThreeD(t chart.Type) chart.Type {
	switch t {
	case chart.TypeScatter, chart.TypeScatter3D:
		return chart.TypeScatter3D
	case chart.TypeLine, chart.TypeArea, chart.TypeBar, chart.TypeHeatmap, chart.TypeSurface:
		return chart.TypeSurface
	default:
		return t
	}
}

// aggregation keyword overrides, checked most-specific first
var aggregationKeywords = []struct {
	keywords []string
	method   chart.AggregationMethod
}{
	{[]string{"average", "mean", "avg"}, chart.AggAverage},
	{[]string{"count", "how many", "number of"}, chart.AggCount},
	{[]string{"max", "maximum", "highest", "largest"}, chart.AggMax},
	{[]string{"min", "minimum", "lowest", "smallest"}, chart.AggMin},
	{[]string{"sum", "total"}, chart.AggSum},
}

// detectAggregation returns the query-requested aggregation, if any
func detectAggregation(query string) (chart.AggregationMethod, bool) {
	lower := strings.ToLower(query)
	for _, entry := range aggregationKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.method, true
		}
	}
	return "", false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
