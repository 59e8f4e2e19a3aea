package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

func classified(name string, t profile.SemanticType) profile.ColumnClassification {
	return profile.ColumnClassification{ColumnName: name, Type: t, Confidence: 0.9}
}

func salesByRegionDataset() *tabular.Dataset {
	ds := tabular.NewDataset("sales", []string{"region", "sales"}, nil)
	regions := []string{"north", "south"}
	for i := 0; i < 100; i++ {
		ds.Rows = append(ds.Rows, tabular.Row{
			"region": tabular.NewStringValue(regions[i%2]),
			"sales":  tabular.NewNumericValue(float64(100 + i)),
		})
	}
	return ds
}

func TestSuggestCategoricalNumericNoQuery(t *testing.T) {
	ds := salesByRegionDataset()
	cols := []profile.ColumnClassification{
		classified("region", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "", nil)
	require.NoError(t, err)

	assert.Contains(t, []chart.Type{chart.TypePie, chart.TypeBar}, suggestion.ChartType)
	assert.Equal(t, "sales", suggestion.YColumn)
	assert.Equal(t, "region", suggestion.XColumn)
	assert.NotEmpty(t, suggestion.Reasoning)
}

func TestSuggestTrendQuery(t *testing.T) {
	ds := tabular.NewDataset("sales", []string{"date", "sales"}, nil)
	for i := 0; i < 12; i++ {
		ds.Rows = append(ds.Rows, tabular.Row{
			"date":  tabular.NewStringValue("2024-01"),
			"sales": tabular.NewNumericValue(float64(i * 10)),
		})
	}
	cols := []profile.ColumnClassification{
		classified("date", profile.TypeDate),
		classified("sales", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "show sales trend over time", nil)
	require.NoError(t, err)

	assert.Equal(t, chart.TypeLine, suggestion.ChartType)
	assert.Equal(t, "date", suggestion.XColumn)
	assert.Equal(t, "sales", suggestion.YColumn)
	assert.Equal(t, chart.AggSum, suggestion.Aggregation)
	assert.GreaterOrEqual(t, suggestion.Confidence, 0.85)
	require.Len(t, suggestion.SeriesConfig, 1)
	assert.Equal(t, "sales", suggestion.SeriesConfig[0].Column)
}

func TestSuggestEmptyDatasetFailsFast(t *testing.T) {
	ds := tabular.NewDataset("empty", []string{"a"}, nil)

	_, err := NewEngine(nil).Suggest(ds, []profile.ColumnClassification{classified("a", profile.TypeNumeric)}, "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "No data available")
	assert.Contains(t, err.Error(), "Insufficient data points")
}

func TestSuggestNoColumnsFailsFast(t *testing.T) {
	ds := salesByRegionDataset()

	_, err := NewEngine(nil).Suggest(ds, nil, "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "No columns available")
}

func TestSuggestQueryBeatsShape(t *testing.T) {
	// shape alone would say pie/bar for this dataset
	ds := salesByRegionDataset()
	cols := []profile.ColumnClassification{
		classified("region", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "sales distribution", nil)
	require.NoError(t, err)
	assert.Equal(t, chart.TypeHistogram, suggestion.ChartType)
	assert.Equal(t, chart.AggCount, suggestion.Aggregation)
}

func TestSuggestThreeDUpgrade(t *testing.T) {
	ds := tabular.NewDataset("xyz", []string{"a", "b", "c"}, nil)
	for i := 0; i < 20; i++ {
		ds.Rows = append(ds.Rows, tabular.Row{
			"a": tabular.NewNumericValue(float64(i)),
			"b": tabular.NewNumericValue(float64(i * 2)),
			"c": tabular.NewNumericValue(float64(20 - i)),
		})
	}
	cols := []profile.ColumnClassification{
		classified("a", profile.TypeNumeric),
		classified("b", profile.TypeNumeric),
		classified("c", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "3d correlation of a and b", nil)
	require.NoError(t, err)
	assert.Equal(t, chart.TypeScatter3D, suggestion.ChartType)
	assert.NotEmpty(t, suggestion.ZColumn)
	assert.NotEqual(t, suggestion.XColumn, suggestion.ZColumn)
	assert.NotEqual(t, suggestion.YColumn, suggestion.ZColumn)
}

func TestSuggestAggregationOverride(t *testing.T) {
	ds := salesByRegionDataset()
	cols := []profile.ColumnClassification{
		classified("region", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "compare average sales by region", nil)
	require.NoError(t, err)
	assert.Equal(t, chart.TypeBar, suggestion.ChartType)
	assert.Equal(t, chart.AggAverage, suggestion.Aggregation)
}

func TestSuggestManyCategoriesUsesTreemap(t *testing.T) {
	ds := tabular.NewDataset("skus", []string{"sku", "units"}, nil)
	for i := 0; i < 60; i++ {
		ds.Rows = append(ds.Rows, tabular.Row{
			"sku":   tabular.NewStringValue(string(rune('A'+i%26)) + string(rune('a'+i/26))),
			"units": tabular.NewNumericValue(float64(i)),
		})
	}
	cols := []profile.ColumnClassification{
		classified("sku", profile.TypeCategorical),
		classified("units", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "", nil)
	require.NoError(t, err)
	assert.Equal(t, chart.TypeTreemap, suggestion.ChartType)
}

func regionProductSalesDataset() *tabular.Dataset {
	ds := tabular.NewDataset("sales", []string{"region", "product", "sales"}, nil)
	regions := []string{"north", "south", "east", "west"}
	products := []string{"widget", "gadget", "gizmo"}
	for i := 0; i < 60; i++ {
		ds.Rows = append(ds.Rows, tabular.Row{
			"region":  tabular.NewStringValue(regions[i%4]),
			"product": tabular.NewStringValue(products[i%3]),
			"sales":   tabular.NewNumericValue(float64(50 + i)),
		})
	}
	return ds
}

func TestSuggestTwoCategoricalsUseHeatmap(t *testing.T) {
	ds := regionProductSalesDataset()
	cols := []profile.ColumnClassification{
		classified("region", profile.TypeCategorical),
		classified("product", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "", nil)
	require.NoError(t, err)

	assert.Equal(t, chart.TypeHeatmap, suggestion.ChartType)
	assert.ElementsMatch(t, []string{"region", "product"}, []string{suggestion.XColumn, suggestion.YColumn})
	assert.Equal(t, "sales", suggestion.ValueColumn)
	assert.Equal(t, chart.AggCount, suggestion.Aggregation)
}

func TestSuggestProportionGroupsByCategory(t *testing.T) {
	ds := tabular.NewDataset("sales", []string{"order_date", "region", "sales"}, nil)
	regions := []string{"north", "south", "east"}
	for i := 0; i < 30; i++ {
		ds.Rows = append(ds.Rows, tabular.Row{
			"order_date": tabular.NewStringValue("2024-01-15"),
			"region":     tabular.NewStringValue(regions[i%3]),
			"sales":      tabular.NewNumericValue(float64(10 + i)),
		})
	}
	cols := []profile.ColumnClassification{
		classified("order_date", profile.TypeDate),
		classified("region", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "share of sales", nil)
	require.NoError(t, err)

	assert.Equal(t, chart.TypePie, suggestion.ChartType)
	assert.Equal(t, "region", suggestion.XColumn)
	assert.Equal(t, "sales", suggestion.YColumn)
}

func TestSuggestChartRuleOverridesShape(t *testing.T) {
	// shape alone says pie/bar; a confident learned preference wins
	ds := salesByRegionDataset()
	cols := []profile.ColumnClassification{
		classified("region", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}
	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "region"},
		TargetChartType: chart.TypeBar,
		ConfidenceScore: 0.9,
	}}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "", rules)
	require.NoError(t, err)
	assert.Equal(t, chart.TypeBar, suggestion.ChartType)
	assert.InDelta(t, 0.9, suggestion.Confidence, 1e-9)
}

func TestSuggestChartRuleBoostsAgreement(t *testing.T) {
	ds := salesByRegionDataset()
	cols := []profile.ColumnClassification{
		classified("region", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}

	baseline, err := NewEngine(nil).Suggest(ds, cols, "", nil)
	require.NoError(t, err)

	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "region"},
		TargetChartType: baseline.ChartType,
		ConfidenceScore: 0.8,
	}}
	boosted, err := NewEngine(nil).Suggest(ds, cols, "", rules)
	require.NoError(t, err)

	assert.Equal(t, baseline.ChartType, boosted.ChartType)
	assert.Greater(t, boosted.Confidence, baseline.Confidence)
	assert.LessOrEqual(t, boosted.Confidence, 1.0)
}

func TestSuggestWeakChartRuleIgnored(t *testing.T) {
	ds := salesByRegionDataset()
	cols := []profile.ColumnClassification{
		classified("region", profile.TypeCategorical),
		classified("sales", profile.TypeNumeric),
	}
	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "region"},
		TargetChartType: chart.TypeNetwork,
		ConfidenceScore: 0.2,
	}}

	suggestion, err := NewEngine(nil).Suggest(ds, cols, "", rules)
	require.NoError(t, err)
	assert.NotEqual(t, chart.TypeNetwork, suggestion.ChartType)
}

func TestEnforceAllowListDowngradesToBar(t *testing.T) {
	got, confidence := enforceAllowList(chart.Type("chord"), 0.8)
	assert.Equal(t, chart.TypeBar, got)
	assert.InDelta(t, 0.48, confidence, 1e-9)
}
