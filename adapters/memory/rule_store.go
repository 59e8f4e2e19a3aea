// Package memory provides in-process store implementations used by
// tests and single-process deployments without a database.
package memory

import (
	"context"
	"sync"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

// RuleStore holds the active learned rules in memory
type RuleStore struct {
	mu    sync.RWMutex
	rules []learning.LearnedRule
}

// NewRuleStore creates an empty in-memory rule store
func NewRuleStore() *RuleStore {
	return &RuleStore{}
}

// Active returns a copy of the current rule set
func (s *RuleStore) Active(ctx context.Context) ([]learning.LearnedRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]learning.LearnedRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

// Replace swaps the active rule set atomically
func (s *RuleStore) Replace(ctx context.Context, rules []learning.LearnedRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make([]learning.LearnedRule, len(rules))
	copy(s.rules, rules)
	return nil
}

// RecordUsage increments a rule's usage counters and folds the
// confirmation outcome into its success rate.
func (s *RuleStore) RecordUsage(ctx context.Context, id core.RuleID, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID != id {
			continue
		}
		rule := &s.rules[i]
		outcome := 0.0
		if confirmed {
			outcome = 1.0
		}
		rule.SuccessRate = (rule.SuccessRate*float64(rule.UsageCount) + outcome) / float64(rule.UsageCount+1)
		rule.UsageCount++
		rule.UpdatedAt = core.Now()
		return nil
	}
	return apperrors.NotFound("learned rule")
}
