// Package app wires the profiling, classification, hierarchy,
// recommendation and learning engines behind one service facade.
package app

import (
	"context"

	domainchart "github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	domainhier "github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/hierarchy"
	domainlearning "github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/classify"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/hierarchy"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/profiling"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/recommend"
)

// sampleValueLimit caps how many cell values a correction carries
const sampleValueLimit = 10

// AnalysisService orchestrates the analysis engines over dataset
// snapshots. Rule loading failures degrade to the pre-learning
// baseline rather than failing classification.
type AnalysisService struct {
	profiler   *profiling.Profiler
	classifier *classify.Classifier
	detector   *hierarchy.Detector
	engine     *recommend.Engine
	learner    *learning.Learner
	treeOpts   hierarchy.TreeOptions
	logger     *internal.Logger
}

// NewAnalysisService creates the analysis facade
func NewAnalysisService(
	profiler *profiling.Profiler,
	classifier *classify.Classifier,
	detector *hierarchy.Detector,
	engine *recommend.Engine,
	learner *learning.Learner,
	treeOpts hierarchy.TreeOptions,
	logger *internal.Logger,
) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		profiler:   profiler,
		classifier: classifier,
		detector:   detector,
		engine:     engine,
		learner:    learner,
		treeOpts:   treeOpts,
		logger:     logger,
	}
}

// ProfileColumn computes the statistical profile of one column
func (s *AnalysisService) ProfileColumn(ctx context.Context, ds *tabular.Dataset, columnName string) (profile.ColumnProfile, error) {
	if !ds.HasColumn(columnName) {
		return profile.ColumnProfile{}, apperrors.NotFound("column " + columnName)
	}
	return s.profiler.Profile(ds, columnName), nil
}

// ProfileDataset profiles every column concurrently
func (s *AnalysisService) ProfileDataset(ctx context.Context, ds *tabular.Dataset) (map[string]profile.ColumnProfile, error) {
	return s.profiler.ProfileDataset(ctx, ds)
}

// ClassifyColumn returns the semantic type of one column, applying
// manual overrides and learned rules.
func (s *AnalysisService) ClassifyColumn(ctx context.Context, ds *tabular.Dataset, columnName string) (profile.ColumnClassification, error) {
	if !ds.HasColumn(columnName) {
		return profile.ColumnClassification{}, apperrors.NotFound("column " + columnName)
	}
	return s.classifier.Classify(ds, columnName, s.activeRules(ctx)), nil
}

// ClassifyDataset classifies every column in dataset column order
func (s *AnalysisService) ClassifyDataset(ctx context.Context, ds *tabular.Dataset) ([]profile.ColumnClassification, error) {
	rules := s.activeRules(ctx)
	out := make([]profile.ColumnClassification, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		out = append(out, s.classifier.Classify(ds, col, rules))
	}
	return out, nil
}

// OverrideColumnType registers a manual type override. An override
// that differs from the current classification also records a
// correction for the learner.
func (s *AnalysisService) OverrideColumnType(ctx context.Context, ds *tabular.Dataset, columnName string, newType profile.SemanticType) error {
	if !ds.HasColumn(columnName) {
		return apperrors.NotFound("column " + columnName)
	}
	if !newType.IsValid() {
		return apperrors.ValidationError("unknown semantic type: " + string(newType))
	}

	current := s.classifier.Classify(ds, columnName, s.activeRules(ctx))
	s.classifier.Overrides().Set(columnName, newType)

	if current.Type == newType {
		return nil
	}
	record := domainlearning.FeedbackRecord{
		ColumnName:     columnName,
		OriginalType:   current.Type,
		CorrectedType:  newType,
		SampleValues:   sampleValues(ds, columnName),
		DatasetContext: ds.Name,
	}
	if err := s.learner.RecordCorrection(ctx, record); err != nil {
		// the override itself already took effect
		s.logger.Warn("could not record correction for %s: %v", columnName, err)
	}
	return nil
}

// DetectHierarchies finds parent/child relations between columns
func (s *AnalysisService) DetectHierarchies(ctx context.Context, ds *tabular.Dataset) ([]domainhier.Relation, error) {
	columns, err := s.ClassifyDataset(ctx, ds)
	if err != nil {
		return nil, err
	}
	return s.detector.Detect(ds, columns), nil
}

// BuildHierarchyTree renders a bounded tree for the given columns.
// childColumn may be empty for a single-level tree.
func (s *AnalysisService) BuildHierarchyTree(ctx context.Context, ds *tabular.Dataset, parentColumn, childColumn string) ([]domainhier.Node, error) {
	if !ds.HasColumn(parentColumn) {
		return nil, apperrors.NotFound("column " + parentColumn)
	}
	columns := []string{parentColumn}
	if childColumn != "" {
		if !ds.HasColumn(childColumn) {
			return nil, apperrors.NotFound("column " + childColumn)
		}
		columns = append(columns, childColumn)
	}
	return hierarchy.BuildTree(ds, columns, s.treeOpts), nil
}

// SuggestChart recommends a chart for the dataset and optional query
func (s *AnalysisService) SuggestChart(ctx context.Context, ds *tabular.Dataset, query string) (domainchart.Suggestion, error) {
	columns, err := s.ClassifyDataset(ctx, ds)
	if err != nil {
		return domainchart.Suggestion{}, err
	}
	return s.engine.Suggest(ds, columns, query, s.activeRules(ctx))
}

// RecordFeedback accepts an explicit correction submission. Unlike the
// internal override path, bad submissions are surfaced to the caller.
func (s *AnalysisService) RecordFeedback(ctx context.Context, record domainlearning.FeedbackRecord) error {
	if record.ColumnName == "" {
		return apperrors.ValidationError("feedback requires a column name")
	}
	if record.CorrectedType != "" && !record.CorrectedType.IsValid() {
		return apperrors.ValidationError("unknown corrected type: " + string(record.CorrectedType))
	}
	if record.CorrectedChartType != "" && !record.CorrectedChartType.IsAllowed() {
		return apperrors.ValidationError("unknown chart type: " + string(record.CorrectedChartType))
	}
	if record.CorrectedType == "" && record.CorrectedChartType == "" {
		return apperrors.ValidationError("feedback requires a corrected type or chart type")
	}
	return s.learner.RecordCorrection(ctx, record)
}

// RunLearningJob mines the feedback log and regenerates the active
// rules immediately.
func (s *AnalysisService) RunLearningJob(ctx context.Context) error {
	if _, err := s.learner.RegenerateRules(ctx); err != nil {
		return apperrors.LearningJobError("learning job failed", err)
	}
	return nil
}

// ActiveRules exposes the current learned rule set
func (s *AnalysisService) ActiveRules(ctx context.Context) ([]domainlearning.LearnedRule, error) {
	return s.learner.ActiveRules(ctx)
}

// activeRules loads rules, degrading to none on store failure
func (s *AnalysisService) activeRules(ctx context.Context) []domainlearning.LearnedRule {
	rules, err := s.learner.ActiveRules(ctx)
	if err != nil {
		s.logger.Warn("rule store unavailable, classifying without learned rules: %v", err)
		return nil
	}
	return rules
}

func sampleValues(ds *tabular.Dataset, columnName string) []string {
	values := ds.NonNullValues(columnName)
	if len(values) > sampleValueLimit {
		values = values[:sampleValueLimit]
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.String())
	}
	return out
}
