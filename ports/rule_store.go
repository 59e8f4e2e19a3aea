package ports

import (
	"context"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
)

// RuleStore persists learned rules. Passed into the classifier and
// recommender explicitly; there is no ambient rule state.
type RuleStore interface {
	// Active returns every rule currently available to consumers
	Active(ctx context.Context) ([]learning.LearnedRule, error)

	// Replace atomically swaps the active rule set for a regenerated one
	Replace(ctx context.Context, rules []learning.LearnedRule) error

	// RecordUsage updates a rule's usage counters after it was
	// consulted and later confirmed or contradicted.
	RecordUsage(ctx context.Context, id core.RuleID, confirmed bool) error
}
