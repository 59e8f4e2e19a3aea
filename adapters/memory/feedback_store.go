package memory

import (
	"context"
	"sync"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
)

// FeedbackStore keeps the correction log in memory, oldest first
type FeedbackStore struct {
	mu      sync.RWMutex
	records []learning.FeedbackRecord
}

// NewFeedbackStore creates an empty in-memory feedback store
func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{}
}

// Append stores one correction record
func (s *FeedbackStore) Append(ctx context.Context, record learning.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// List returns all recorded corrections in insertion order
func (s *FeedbackStore) List(ctx context.Context) ([]learning.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]learning.FeedbackRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}
