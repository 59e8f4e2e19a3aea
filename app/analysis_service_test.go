package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/adapters/memory"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/classify"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/hierarchy"
	intlearning "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/profiling"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/recommend"
)

func newTestService() *AnalysisService {
	learner := intlearning.NewLearner(memory.NewFeedbackStore(), memory.NewRuleStore(), 2, nil)
	return NewAnalysisService(
		profiling.NewProfiler(profiling.DefaultConfig()),
		classify.NewClassifier(classify.DefaultConfig()),
		hierarchy.NewDetector(hierarchy.DefaultConfig()),
		recommend.NewEngine(nil),
		learner,
		hierarchy.DefaultTreeOptions(),
		nil,
	)
}

func codesDataset() *tabular.Dataset {
	rows := []tabular.Row{}
	codes := []string{"A1", "B2", "C3", "A1", "B2"}
	for _, c := range codes {
		rows = append(rows, tabular.Row{"code": tabular.NewStringValue(c)})
	}
	return tabular.NewDataset("codes", []string{"code"}, rows)
}

func TestOverrideThenClassifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	ds := codesDataset()

	before, err := svc.ClassifyColumn(ctx, ds, "code")
	require.NoError(t, err)
	require.NotEqual(t, profile.TypeDate, before.Type)

	require.NoError(t, svc.OverrideColumnType(ctx, ds, "code", profile.TypeDate))

	after, err := svc.ClassifyColumn(ctx, ds, "code")
	require.NoError(t, err)
	assert.Equal(t, profile.TypeDate, after.Type)
	assert.InDelta(t, 1.0, after.Confidence, 1e-9, "manual overrides are authoritative")
}

func TestOverrideRecordsCorrection(t *testing.T) {
	ctx := context.Background()
	feedback := memory.NewFeedbackStore()
	learner := intlearning.NewLearner(feedback, memory.NewRuleStore(), 2, nil)
	svc := NewAnalysisService(
		profiling.NewProfiler(profiling.DefaultConfig()),
		classify.NewClassifier(classify.DefaultConfig()),
		hierarchy.NewDetector(hierarchy.DefaultConfig()),
		recommend.NewEngine(nil),
		learner,
		hierarchy.DefaultTreeOptions(),
		nil,
	)
	ds := codesDataset()

	require.NoError(t, svc.OverrideColumnType(ctx, ds, "code", profile.TypeDate))

	records, err := feedback.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "code", records[0].ColumnName)
	assert.Equal(t, profile.TypeDate, records[0].CorrectedType)
	assert.NotEmpty(t, records[0].SampleValues)
	assert.Equal(t, "codes", records[0].DatasetContext)
}

func TestOverrideRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	err := svc.OverrideColumnType(ctx, codesDataset(), "code", profile.SemanticType("fancy"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCorrectionsInfluenceLaterClassification(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	// three corrections of a text column named dob toward date
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordFeedback(ctx, learning.FeedbackRecord{
			ColumnName:    "dob",
			OriginalType:  profile.TypeText,
			CorrectedType: profile.TypeDate,
		}))
	}
	require.NoError(t, svc.RunLearningJob(ctx))

	rules, err := svc.ActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "dob", rules[0].Pattern.NamePattern)
	assert.Equal(t, profile.TypeDate, rules[0].TargetType)
	assert.GreaterOrEqual(t, rules[0].UsageCount, 1)

	// a fresh column named dob now classifies as date
	rows := []tabular.Row{}
	for _, v := range []string{"Jan 1 notes", "misc text", "freeform"} {
		rows = append(rows, tabular.Row{"dob": tabular.NewStringValue(v)})
	}
	ds := tabular.NewDataset("people", []string{"dob"}, rows)

	got, err := svc.ClassifyColumn(ctx, ds, "dob")
	require.NoError(t, err)
	assert.Equal(t, profile.TypeDate, got.Type)
}

func TestChartFeedbackInfluencesSuggestions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	ds := tabular.NewDataset("sales", []string{"region", "sales"}, nil)
	regions := []string{"north", "south"}
	for i := 0; i < 40; i++ {
		ds.Rows = append(ds.Rows, tabular.Row{
			"region": tabular.NewStringValue(regions[i%2]),
			"sales":  tabular.NewNumericValue(float64(100 + i)),
		})
	}

	before, err := svc.SuggestChart(ctx, ds, "")
	require.NoError(t, err)
	require.NotEqual(t, chart.TypeNetwork, before.ChartType)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordFeedback(ctx, learning.FeedbackRecord{
			ColumnName:         "region",
			CorrectedChartType: chart.TypeNetwork,
		}))
	}
	require.NoError(t, svc.RunLearningJob(ctx))

	after, err := svc.SuggestChart(ctx, ds, "")
	require.NoError(t, err)
	assert.Equal(t, chart.TypeNetwork, after.ChartType)
}

func TestRecordFeedbackValidatesSubmission(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	err := svc.RecordFeedback(ctx, learning.FeedbackRecord{
		OriginalType:  profile.TypeText,
		CorrectedType: profile.TypeDate,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestServiceHierarchyFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	rows := []tabular.Row{}
	pairs := [][2]string{
		{"West", "Seattle"}, {"West", "Portland"}, {"West", "Seattle"},
		{"East", "Boston"}, {"East", "Albany"}, {"East", "Boston"},
	}
	for _, p := range pairs {
		rows = append(rows, tabular.Row{
			"region": tabular.NewStringValue(p[0]),
			"city":   tabular.NewStringValue(p[1]),
		})
	}
	ds := tabular.NewDataset("geo", []string{"region", "city"}, rows)

	relations, err := svc.DetectHierarchies(ctx, ds)
	require.NoError(t, err)
	require.NotEmpty(t, relations)
	assert.Equal(t, "region", relations[0].ParentColumn)

	nodes, err := svc.BuildHierarchyTree(ctx, ds, "region", "city")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.NotEmpty(t, nodes[0].Children)
}
