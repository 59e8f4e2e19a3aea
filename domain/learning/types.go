// Package learning holds the feedback and learned-rule types that
// close the correction loop between users and the classifier.
package learning

import (
	"strings"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
)

// FeedbackRecord is one user correction of a classification or
// recommendation. Append-only, owned by the feedback learner. A record
// carries a type correction, a chart correction, or both.
type FeedbackRecord struct {
	ID                 core.ID              `json:"id" db:"id"`
	ColumnName         string               `json:"column_name" db:"column_name"`
	OriginalType       profile.SemanticType `json:"original_type" db:"original_type"`
	CorrectedType      profile.SemanticType `json:"corrected_type" db:"corrected_type"`
	CorrectedChartType chart.Type           `json:"corrected_chart_type,omitempty" db:"corrected_chart_type"`
	SampleValues       []string             `json:"sample_values" db:"-"`
	DatasetContext     string               `json:"dataset_context,omitempty" db:"dataset_context"`
	CreatedAt          core.Timestamp       `json:"created_at" db:"created_at"`
}

// CorrectsType reports whether the record changes the semantic type
func (r FeedbackRecord) CorrectsType() bool {
	return r.CorrectedType.IsValid() && r.CorrectedType != r.OriginalType
}

// CorrectsChart reports whether the record names a preferred chart type
func (r FeedbackRecord) CorrectsChart() bool {
	return r.CorrectedChartType != "" && r.CorrectedChartType.IsAllowed()
}

// RulePattern is the predicate side of a learned rule: a lowercase
// substring match over column names, optionally narrowed by a value
// shape.
type RulePattern struct {
	NamePattern  string `json:"name_pattern"`
	ShapePattern string `json:"shape_pattern,omitempty"`
}

// MatchesName reports whether the column name satisfies the pattern
func (p RulePattern) MatchesName(columnName string) bool {
	if p.NamePattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(columnName), p.NamePattern)
}

// MatchesShape reports whether the dominant value shape satisfies the
// pattern. Patterns without a shape never match on shape alone.
func (p RulePattern) MatchesShape(shape string) bool {
	return p.ShapePattern != "" && p.ShapePattern == shape
}

// LearnedRule is a pattern mined from historical corrections. Created
// and updated only by the mining step; read-only to consumers.
type LearnedRule struct {
	ID              core.RuleID          `json:"id"`
	Pattern         RulePattern          `json:"pattern"`
	TargetType      profile.SemanticType `json:"target_type,omitempty"`
	TargetChartType chart.Type           `json:"target_chart_type,omitempty"`
	ConfidenceScore float64              `json:"confidence_score"`
	SuccessRate     float64              `json:"success_rate"`
	UsageCount      int                  `json:"usage_count"`
	CreatedAt       core.Timestamp       `json:"created_at"`
	UpdatedAt       core.Timestamp       `json:"updated_at"`
}

// MinedPattern is a candidate rule surfaced by grouping corrections.
// Exactly one of CorrectedType and CorrectedChartType is set. Patterns
// backed by a single record are discarded before this stage.
type MinedPattern struct {
	Pattern            RulePattern          `json:"pattern"`
	OriginalType       profile.SemanticType `json:"original_type,omitempty"`
	CorrectedType      profile.SemanticType `json:"corrected_type,omitempty"`
	CorrectedChartType chart.Type           `json:"corrected_chart_type,omitempty"`
	Support            int                  `json:"support"`
	Agreement          float64              `json:"agreement"`
}
