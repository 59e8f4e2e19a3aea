// Package recommend scores chart types from query intent and data
// shape, binds axes and aggregation, and emits render-ready
// suggestions.
package recommend

import (
	"fmt"
	"strings"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

// downgradeFactor scales confidence when an off-list type is remapped
const downgradeFactor = 0.6

// multiSeriesTypes get a one-element default series binding
var multiSeriesTypes = map[chart.Type]bool{
	chart.TypeBar:     true,
	chart.TypeLine:    true,
	chart.TypeArea:    true,
	chart.TypeScatter: true,
}

// trendTypes bias the x-axis toward temporal columns
var trendTypes = map[chart.Type]bool{
	chart.TypeLine: true,
	chart.TypeArea: true,
}

// defaultAggregations maps chart types to their aggregation default.
// Types absent from the map use sum.
var defaultAggregations = map[chart.Type]chart.AggregationMethod{
	chart.TypeHistogram: chart.AggCount,
	chart.TypeNetwork:   chart.AggCount,
	chart.TypeHeatmap:   chart.AggCount,
	chart.TypeScatter:   chart.AggAverage,
	chart.TypeScatter3D: chart.AggAverage,
	chart.TypeSurface:   chart.AggAverage,
}

// Engine turns a classified dataset and an optional free-text query
// into a fully-bound chart suggestion.
type Engine struct {
	logger *internal.Logger
}

// NewEngine creates a recommendation engine
func NewEngine(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{logger: logger}
}

// Suggest recommends a chart for the dataset. It fails fast with a
// validation error naming every deficiency when the input cannot
// support a recommendation; past validation it always returns a
// suggestion with an allow-listed chart type. Learned chart rules
// matching the dataset's columns reinforce or overrule the heuristic
// verdict.
func (e *Engine) Suggest(ds *tabular.Dataset, columns []profile.ColumnClassification, query string, rules []learning.LearnedRule) (chart.Suggestion, error) {
	if err := validateInput(ds, columns); err != nil {
		return chart.Suggestion{}, err
	}

	set := groupColumns(columns)

	chartType, confidence, intentLabel := e.resolveChartType(ds, set, query)
	chartType, confidence = applyChartRules(ds, chartType, confidence, rules)
	chartType, confidence = enforceAllowList(chartType, confidence)

	binding := selectAxes(ds, set, chartType, query, trendTypes[chartType])
	aggregation := e.resolveAggregation(chartType, query)

	suggestion := chart.Suggestion{
		ChartType:    chartType,
		XColumn:      binding.x,
		YColumn:      binding.y,
		ZColumn:      binding.z,
		ValueColumn:  binding.value,
		Aggregation:  aggregation,
		SeriesConfig: seriesConfig(chartType, binding),
		Title:        buildTitle(chartType, binding),
		Reasoning:    buildReasoning(intentLabel, chartType, binding, aggregation),
		Confidence:   confidence,
	}
	e.logger.Debug("suggested %s chart for dataset %s (confidence %.2f)", chartType, ds.Name, confidence)
	return suggestion, nil
}

// validateInput collects every deficiency before the heuristics run
func validateInput(ds *tabular.Dataset, columns []profile.ColumnClassification) error {
	var deficiencies []string
	if ds == nil || ds.RowCount() == 0 {
		deficiencies = append(deficiencies, "No data available")
	}
	if ds == nil || ds.RowCount() < 2 {
		deficiencies = append(deficiencies, "Insufficient data points (need at least 2 rows)")
	}
	if len(columns) == 0 {
		deficiencies = append(deficiencies, "No columns available")
	}
	if len(deficiencies) > 0 {
		return apperrors.ValidationError(strings.Join(deficiencies, "; "))
	}
	return nil
}

// resolveChartType applies query intent first and data shape second.
// The 3D keyword family upgrades whichever type was detected.
func (e *Engine) resolveChartType(ds *tabular.Dataset, set columnSet, query string) (chart.Type, float64, string) {
	var (
		chartType   chart.Type
		confidence  float64
		intentLabel string
		wantsThreeD bool
	)

	if query != "" {
		intent, matched := detectIntent(query)
		wantsThreeD = intent.wantsThreeD
		if matched {
			chartType = intent.chartType
			confidence = intent.confidence
			intentLabel = intent.label
		}
	}
	if chartType == "" {
		chartType, confidence, intentLabel = scoreShape(ds, set)
	}
	if wantsThreeD && len(set.numeric) >= 3 {
		chartType = upgradeToThreeD(chartType)
	}
	return chartType, confidence, intentLabel
}

// applyChartRules folds learned chart preferences into the heuristic
// verdict, mirroring how the classifier consumes type rules: agreement
// boosts confidence toward the rule score, a more confident
// disagreeing rule takes over.
func applyChartRules(ds *tabular.Dataset, chartType chart.Type, confidence float64, rules []learning.LearnedRule) (chart.Type, float64) {
	for _, rule := range rules {
		if !rule.TargetChartType.IsAllowed() {
			continue
		}
		if !matchesAnyColumn(ds, rule.Pattern) {
			continue
		}
		if rule.TargetChartType == chartType {
			boosted := confidence + (1-confidence)*rule.ConfidenceScore*0.5
			if boosted > confidence {
				confidence = boosted
			}
			continue
		}
		if rule.ConfidenceScore > confidence {
			chartType = rule.TargetChartType
			confidence = rule.ConfidenceScore
		}
	}
	if confidence > 1 {
		confidence = 1
	}
	return chartType, confidence
}

func matchesAnyColumn(ds *tabular.Dataset, pattern learning.RulePattern) bool {
	for _, col := range ds.Columns {
		if pattern.MatchesName(col) {
			return true
		}
	}
	return false
}

// enforceAllowList remaps off-list types to bar at reduced confidence
func enforceAllowList(t chart.Type, confidence float64) (chart.Type, float64) {
	if t.IsAllowed() {
		return t, confidence
	}
	return chart.TypeBar, confidence * downgradeFactor
}

func (e *Engine) resolveAggregation(chartType chart.Type, query string) chart.AggregationMethod {
	if query != "" {
		if method, ok := detectAggregation(query); ok {
			return method
		}
	}
	if method, ok := defaultAggregations[chartType]; ok {
		return method
	}
	return chart.AggSum
}

func seriesConfig(chartType chart.Type, binding axisBinding) []chart.SeriesBinding {
	if !multiSeriesTypes[chartType] || binding.y == "" {
		return nil
	}
	return []chart.SeriesBinding{{Column: binding.y, Label: binding.y}}
}

func buildTitle(chartType chart.Type, binding axisBinding) string {
	switch {
	case binding.x != "" && binding.y != "":
		return fmt.Sprintf("%s by %s", binding.y, binding.x)
	case binding.x != "":
		return fmt.Sprintf("%s of %s", chartType, binding.x)
	default:
		return string(chartType) + " chart"
	}
}

func buildReasoning(intentLabel string, chartType chart.Type, binding axisBinding, aggregation chart.AggregationMethod) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Detected %s intent, recommending a %s chart", intentLabel, chartType)
	if binding.x != "" {
		fmt.Fprintf(&sb, " with %s on the x-axis", binding.x)
	}
	if binding.y != "" {
		fmt.Fprintf(&sb, " and %s on the y-axis", binding.y)
	}
	if binding.z != "" {
		fmt.Fprintf(&sb, " and %s on the z-axis", binding.z)
	}
	fmt.Fprintf(&sb, ", aggregated by %s.", aggregation)
	return sb.String()
}
