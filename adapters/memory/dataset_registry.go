package memory

import (
	"sync"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

// DatasetRegistry holds loaded dataset snapshots keyed by ID. Datasets
// are immutable once registered.
type DatasetRegistry struct {
	mu   sync.RWMutex
	sets map[core.DatasetID]*tabular.Dataset
}

// NewDatasetRegistry creates an empty registry
func NewDatasetRegistry() *DatasetRegistry {
	return &DatasetRegistry{sets: make(map[core.DatasetID]*tabular.Dataset)}
}

// Put registers a dataset and returns its ID
func (r *DatasetRegistry) Put(ds *tabular.Dataset) core.DatasetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[ds.ID] = ds
	return ds.ID
}

// Get returns the dataset for the given ID
func (r *DatasetRegistry) Get(id core.DatasetID) (*tabular.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.sets[id]
	if !ok {
		return nil, apperrors.NotFound("dataset")
	}
	return ds, nil
}

// List returns the registered dataset IDs
func (r *DatasetRegistry) List() []core.DatasetID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.DatasetID, 0, len(r.sets))
	for id := range r.sets {
		out = append(out, id)
	}
	return out
}
