// Package learning closes the feedback loop: it records user
// corrections, mines them for recurring patterns and regenerates the
// learned rules the classifier consults.
package learning

import (
	"context"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/ports"
)

// Learner owns the correction log and the learned rule set
type Learner struct {
	feedback   ports.FeedbackStore
	rules      ports.RuleStore
	logger     *internal.Logger
	minSupport int
}

// NewLearner creates a learner. minSupport below 2 is raised to 2
// because a single correction is not a pattern.
func NewLearner(feedback ports.FeedbackStore, rules ports.RuleStore, minSupport int, logger *internal.Logger) *Learner {
	if minSupport < 2 {
		minSupport = 2
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Learner{
		feedback:   feedback,
		rules:      rules,
		logger:     logger,
		minSupport: minSupport,
	}
}

// RecordCorrection appends one correction to the feedback log. Bad
// input is logged and dropped rather than returned as an error; only
// store failures propagate. A correction that confirms or contradicts
// an active rule also updates that rule's usage counters.
func (l *Learner) RecordCorrection(ctx context.Context, record learning.FeedbackRecord) error {
	if record.ColumnName == "" {
		l.logger.Warn("dropping correction with empty column name")
		return nil
	}
	if !record.CorrectsType() && !record.CorrectsChart() {
		l.logger.Warn("dropping correction for %q with no effective change (corrected type %q, chart %q)",
			record.ColumnName, record.CorrectedType, record.CorrectedChartType)
		return nil
	}
	if record.ID == "" {
		record.ID = core.NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = core.Now()
	}

	if err := l.feedback.Append(ctx, record); err != nil {
		return err
	}
	l.updateRuleOutcomes(ctx, record)
	return nil
}

// updateRuleOutcomes reconciles active rules against a fresh
// correction. Failures here are logged only; the correction itself is
// already durable.
func (l *Learner) updateRuleOutcomes(ctx context.Context, record learning.FeedbackRecord) {
	active, err := l.rules.Active(ctx)
	if err != nil {
		l.logger.Warn("could not load rules for usage update: %v", err)
		return
	}
	for _, rule := range active {
		if !rule.Pattern.MatchesName(record.ColumnName) {
			continue
		}
		var confirmed bool
		switch {
		case rule.TargetType != "" && record.CorrectsType():
			confirmed = rule.TargetType == record.CorrectedType
		case rule.TargetChartType != "" && record.CorrectsChart():
			confirmed = rule.TargetChartType == record.CorrectedChartType
		default:
			continue
		}
		if err := l.rules.RecordUsage(ctx, rule.ID, confirmed); err != nil {
			l.logger.Warn("could not update usage for rule %s: %v", rule.ID, err)
		}
	}
}

// MinePatterns groups the correction history into candidate patterns.
// Patterns supported by fewer than minSupport records are discarded.
func (l *Learner) MinePatterns(ctx context.Context) ([]learning.MinedPattern, error) {
	records, err := l.feedback.List(ctx)
	if err != nil {
		return nil, err
	}
	return minePatterns(records, l.minSupport), nil
}

// RegenerateRules converts the mined patterns into learned rules and
// swaps them in as the active set. Usage counters of rules that
// survive regeneration under the same pattern and target are carried
// over.
func (l *Learner) RegenerateRules(ctx context.Context) ([]learning.LearnedRule, error) {
	patterns, err := l.MinePatterns(ctx)
	if err != nil {
		return nil, err
	}
	previous, err := l.rules.Active(ctx)
	if err != nil {
		return nil, err
	}

	rules := buildRules(patterns, previous)
	if err := l.rules.Replace(ctx, rules); err != nil {
		return nil, err
	}
	l.logger.Info("regenerated %d learned rules from %d mined patterns", len(rules), len(patterns))
	return rules, nil
}

// GetConfidence returns the confidence of the best active rule mapping
// the column name to the given type, or 0 when no rule matches.
func (l *Learner) GetConfidence(ctx context.Context, columnName string, semanticType profile.SemanticType) float64 {
	active, err := l.rules.Active(ctx)
	if err != nil {
		l.logger.Warn("could not load rules for confidence lookup: %v", err)
		return 0
	}
	best := 0.0
	for _, rule := range active {
		if rule.TargetType != semanticType {
			continue
		}
		if !rule.Pattern.MatchesName(columnName) {
			continue
		}
		if rule.ConfidenceScore > best {
			best = rule.ConfidenceScore
		}
	}
	return best
}

// ActiveRules exposes the current rule set
func (l *Learner) ActiveRules(ctx context.Context) ([]learning.LearnedRule, error) {
	return l.rules.Active(ctx)
}
