// README: Location persistence contract plus the in-memory implementation used in tests.
package location

import (
	"context"
	"sync"

	"roam/internal/types"
)

type Store interface {
	// AppendSnapshot writes the durable copy of a sample.
	AppendSnapshot(ctx context.Context, s Sample) error
	// PushHistory prepends the sample to the vehicle's live history, keeping
	// at most bound entries (oldest evicted first).
	PushHistory(ctx context.Context, s Sample, bound int) error
	ReadHistory(ctx context.Context, vehicleID types.ID, bound int) ([]Sample, error)
	GetLatest(ctx context.Context, vehicleID types.ID) (*Sample, error)
	SetLatest(ctx context.Context, s Sample) error
}

type memoryEntry struct {
	latest  *Sample
	history []Sample // newest arrival first
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[types.ID]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[types.ID]*memoryEntry)}
}

func (m *MemoryStore) entry(id types.ID) *memoryEntry {
	e, ok := m.entries[id]
	if !ok {
		e = &memoryEntry{}
		m.entries[id] = e
	}
	return e
}

func (m *MemoryStore) AppendSnapshot(_ context.Context, _ Sample) error { return nil }

func (m *MemoryStore) PushHistory(_ context.Context, s Sample, bound int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(s.VehicleID)
	e.history = append([]Sample{s}, e.history...)
	if len(e.history) > bound {
		e.history = e.history[:bound]
	}
	return nil
}

func (m *MemoryStore) ReadHistory(_ context.Context, vehicleID types.ID, bound int) ([]Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(vehicleID)
	n := min(bound, len(e.history))
	out := make([]Sample, n)
	copy(out, e.history[:n])
	return out, nil
}

func (m *MemoryStore) GetLatest(_ context.Context, vehicleID types.ID) (*Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(vehicleID)
	if e.latest == nil {
		return nil, nil
	}
	out := *e.latest
	return &out, nil
}

func (m *MemoryStore) SetLatest(_ context.Context, s Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(s.VehicleID).latest = &s
	return nil
}
