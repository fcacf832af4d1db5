// README: Vehicle persistence contract plus the in-memory implementation used in tests.
package vehicle

import (
	"context"
	"sync"

	"roam/internal/types"
)

type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	Get(ctx context.Context, id types.ID) (*Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
	ListByOwner(ctx context.Context, ownerID types.ID) ([]*Vehicle, error)
}

type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[types.ID]Vehicle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vehicles: make(map[types.ID]Vehicle)}
}

func (m *MemoryStore) Create(_ context.Context, v *Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = *v
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := v
	return &out, nil
}

func (m *MemoryStore) Update(_ context.Context, v *Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; !ok {
		return ErrNotFound
	}
	m.vehicles[v.ID] = *v
	return nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, ownerID types.ID) ([]*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Vehicle
	for _, v := range m.vehicles {
		if v.OwnerID == ownerID {
			c := v
			out = append(out, &c)
		}
	}
	return out, nil
}
