package ports

import (
	"context"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
)

// FeedbackStore persists user corrections for later mining
type FeedbackStore interface {
	// Append stores one correction record
	Append(ctx context.Context, record learning.FeedbackRecord) error

	// List returns all recorded corrections, oldest first
	List(ctx context.Context) ([]learning.FeedbackRecord, error)
}
