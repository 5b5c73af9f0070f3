package store

import (
	"context"
	"sync"

	"github.com/arnavshah/shiftledger-api/pkg/models"
)

// MemoryStore keeps shifts in a map. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	shifts map[string]models.Shift
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shifts: make(map[string]models.Shift)}
}

// GetAll returns a copy of every shift ordered by start time
func (m *MemoryStore) GetAll(_ context.Context) ([]models.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Shift, 0, len(m.shifts))
	for _, s := range m.shifts {
		out = append(out, s)
	}
	sortShifts(out)
	return out, nil
}

// GetByID returns ErrNotFound when the id is unknown
func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Upsert replaces or inserts by id
func (m *MemoryStore) Upsert(_ context.Context, shift models.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shifts[shift.ID] = shift
	return nil
}
