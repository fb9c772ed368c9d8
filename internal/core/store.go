package core

import (
	"sort"
	"sync"
)

// Store holds datasets by identifier.
// Implementations must make an inserted dataset visible atomically: a
// concurrent Lookup sees either nothing or the complete dataset.
type Store interface {
	// Insert adds ds under ds.ID. Returns ErrDuplicateID if the id is taken.
	Insert(ds *Dataset) error

	// Lookup returns the dataset with the given id.
	Lookup(id string) (*Dataset, bool)

	// Len returns the number of stored datasets.
	Len() int

	// List returns summaries of all datasets, oldest first.
	List() []DatasetInfo
}

// MemoryStore keeps datasets in process memory until the process exits.
// There is no eviction; it is bounded only by available memory.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]*Dataset),
	}
}

// Insert implements Store.
func (m *MemoryStore) Insert(ds *Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.datasets[ds.ID]; exists {
		return ErrDuplicateID
	}
	m.datasets[ds.ID] = ds
	return nil
}

// Lookup implements Store.
func (m *MemoryStore) Lookup(id string) (*Dataset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.datasets[id]
	return ds, ok
}

// Len implements Store.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.datasets)
}

// List implements Store.
func (m *MemoryStore) List() []DatasetInfo {
	m.mu.RLock()
	infos := make([]DatasetInfo, 0, len(m.datasets))
	for _, ds := range m.datasets {
		infos = append(infos, ds.Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}
