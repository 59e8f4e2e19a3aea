package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/ports"
)

// RuleStoreImpl implements RuleStore for PostgreSQL
type RuleStoreImpl struct {
	db *sqlx.DB
}

// NewRuleStore creates a new PostgreSQL rule store
func NewRuleStore(db *sqlx.DB) ports.RuleStore {
	return &RuleStoreImpl{db: db}
}

// Active returns every rule currently available to consumers
func (s *RuleStoreImpl) Active(ctx context.Context) ([]learning.LearnedRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name_pattern, shape_pattern, target_type, target_chart_type,
			   confidence_score, success_rate, usage_count, created_at, updated_at
		FROM learned_rules
		ORDER BY confidence_score DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []learning.LearnedRule
	for rows.Next() {
		var rule learning.LearnedRule
		var createdAt, updatedAt time.Time

		err := rows.Scan(
			&rule.ID, &rule.Pattern.NamePattern, &rule.Pattern.ShapePattern,
			&rule.TargetType, &rule.TargetChartType,
			&rule.ConfidenceScore, &rule.SuccessRate, &rule.UsageCount,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, err
		}
		rule.CreatedAt = core.NewTimestamp(createdAt)
		rule.UpdatedAt = core.NewTimestamp(updatedAt)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Replace atomically swaps the active rule set for a regenerated one
func (s *RuleStoreImpl) Replace(ctx context.Context, rules []learning.LearnedRule) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM learned_rules`); err != nil {
		return err
	}
	for _, rule := range rules {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO learned_rules (
				id, name_pattern, shape_pattern, target_type, target_chart_type,
				confidence_score, success_rate, usage_count, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rule.ID, rule.Pattern.NamePattern, rule.Pattern.ShapePattern,
			rule.TargetType, rule.TargetChartType,
			rule.ConfidenceScore, rule.SuccessRate, rule.UsageCount,
			rule.CreatedAt.Time(), rule.UpdatedAt.Time())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordUsage updates a rule's usage counters after it was consulted
// and later confirmed or contradicted.
func (s *RuleStoreImpl) RecordUsage(ctx context.Context, id core.RuleID, confirmed bool) error {
	outcome := 0.0
	if confirmed {
		outcome = 1.0
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE learned_rules
		SET success_rate = (success_rate * usage_count + $2) / (usage_count + 1),
			usage_count = usage_count + 1,
			updated_at = NOW()
		WHERE id = $1`, id, outcome)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFound("learned rule")
	}
	return nil
}
