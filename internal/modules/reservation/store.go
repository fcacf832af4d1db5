// README: Reservation persistence contract plus the in-memory implementation used in tests.
package reservation

import (
	"context"
	"sync"
	"time"

	"roam/internal/types"
)

type Store interface {
	Create(ctx context.Context, r *Reservation) error
	Get(ctx context.Context, id types.ID) (*Reservation, error)
	// UpdateStatus commits from->to only if the row still has the expected
	// status and version; it reports false when a concurrent transition won.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
	ListExpiredPending(ctx context.Context, asOf time.Time) ([]*Reservation, error)
	// ListBlocking returns all pending and confirmed reservations; used to
	// rebuild the availability ledger at startup.
	ListBlocking(ctx context.Context) ([]*Reservation, error)
	ListByRenter(ctx context.Context, renterID types.ID) ([]*Reservation, error)
}

type MemoryStore struct {
	mu           sync.Mutex
	reservations map[types.ID]Reservation
	events       []Event
	nextEventID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reservations: make(map[types.ID]Reservation)}
}

func (m *MemoryStore) Create(_ context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[r.ID] = *r
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r
	return &out, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return false, ErrNotFound
	}
	if r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	now := time.Now().UTC()
	r.Status = to
	r.StatusVersion++
	switch to {
	case StatusConfirmed:
		r.ConfirmedAt = &now
	case StatusCancelled:
		r.CancelledAt = &now
	case StatusExpired:
		r.ExpiredAt = &now
	}
	m.reservations[id] = r
	return true, nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEventID++
	e.ID = m.nextEventID
	m.events = append(m.events, *e)
	return nil
}

func (m *MemoryStore) ListExpiredPending(_ context.Context, asOf time.Time) ([]*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Reservation
	for _, r := range m.reservations {
		if r.Status == StatusPending && !r.ExpiresAt.After(asOf) {
			c := r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListBlocking(_ context.Context) ([]*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Reservation
	for _, r := range m.reservations {
		if r.Status.Blocking() {
			c := r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListByRenter(_ context.Context, renterID types.ID) ([]*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Reservation
	for _, r := range m.reservations {
		if r.RenterID == renterID {
			c := r
			out = append(out, &c)
		}
	}
	return out, nil
}

// Events returns a copy of the audit trail; test helper.
func (m *MemoryStore) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
