// README: Per-vehicle availability ledger; the serialization point for all holds.
package ledger

import (
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"roam/internal/interval"
	"roam/internal/types"
)

// Hold is one blocking interval in a vehicle's timeline, owned by a
// pending or confirmed reservation.
type Hold struct {
	ReservationID types.ID
	Span          interval.Interval
}

// ConflictError names the existing hold that overlaps a rejected attempt.
type ConflictError struct {
	Existing Hold
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with existing hold %s held by %s",
		e.Existing.Span, e.Existing.ReservationID)
}

// Ledger keeps an ordered set of non-overlapping holds per vehicle.
// Every mutation for a given vehicle runs inside that vehicle's critical
// section; operations on different vehicles never contend.
type Ledger struct {
	mu       sync.RWMutex
	vehicles map[types.ID]*timeline
}

type timeline struct {
	mu    sync.Mutex
	holds []Hold // sorted by span start
}

func New() *Ledger {
	return &Ledger{vehicles: make(map[types.ID]*timeline)}
}

func (l *Ledger) timelineFor(vehicleID types.ID) *timeline {
	l.mu.RLock()
	tl, ok := l.vehicles[vehicleID]
	l.mu.RUnlock()
	if ok {
		return tl
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if tl, ok = l.vehicles[vehicleID]; ok {
		return tl
	}
	tl = &timeline{}
	l.vehicles[vehicleID] = tl
	return tl
}

// IsFree reports whether no blocking hold overlaps span.
func (l *Ledger) IsFree(vehicleID types.ID, span interval.Interval) bool {
	tl := l.timelineFor(vehicleID)
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.findOverlap(span) == nil
}

// TryReserve atomically checks span against the vehicle's holds and inserts
// it. Exactly one of two racing overlapping attempts succeeds; the loser gets
// a *ConflictError naming the winning hold.
func (l *Ledger) TryReserve(vehicleID types.ID, span interval.Interval, reservationID types.ID) error {
	tl := l.timelineFor(vehicleID)
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if existing := tl.findOverlap(span); existing != nil {
		return &ConflictError{Existing: *existing}
	}
	tl.insert(Hold{ReservationID: reservationID, Span: span})
	return nil
}

// Release removes the reservation's hold from the vehicle's timeline.
// Idempotent: releasing an unknown or already-released reservation is a no-op.
func (l *Ledger) Release(vehicleID, reservationID types.ID) {
	tl := l.timelineFor(vehicleID)
	tl.mu.Lock()
	defer tl.mu.Unlock()

	for i, h := range tl.holds {
		if h.ReservationID == reservationID {
			tl.holds = append(tl.holds[:i], tl.holds[i+1:]...)
			return
		}
	}
}

// Upcoming yields the vehicle's blocked intervals ending after from, ordered
// by start ascending. The sequence is a point-in-time snapshot taken at call
// time and can be iterated any number of times.
func (l *Ledger) Upcoming(vehicleID types.ID, from time.Time) iter.Seq[interval.Interval] {
	day := interval.Day(from)

	tl := l.timelineFor(vehicleID)
	tl.mu.Lock()
	var snapshot []interval.Interval
	for _, h := range tl.holds {
		if h.Span.End().After(day) {
			snapshot = append(snapshot, h.Span)
		}
	}
	tl.mu.Unlock()

	return func(yield func(interval.Interval) bool) {
		for _, span := range snapshot {
			if !yield(span) {
				return
			}
		}
	}
}

// Restore reinstalls a hold while rebuilding the ledger from persisted
// blocking reservations at startup. Overlap here means the durable state
// broke the core invariant, so it is surfaced instead of dropped.
func (l *Ledger) Restore(vehicleID types.ID, hold Hold) error {
	if err := l.TryReserve(vehicleID, hold.Span, hold.ReservationID); err != nil {
		return fmt.Errorf("restore %s on vehicle %s: %w", hold.ReservationID, vehicleID, err)
	}
	return nil
}

// findOverlap must be called with tl.mu held.
func (tl *timeline) findOverlap(span interval.Interval) *Hold {
	for i := range tl.holds {
		if tl.holds[i].Span.Overlaps(span) {
			return &tl.holds[i]
		}
	}
	return nil
}

// insert must be called with tl.mu held.
func (tl *timeline) insert(h Hold) {
	i := sort.Search(len(tl.holds), func(i int) bool {
		return tl.holds[i].Span.Start().After(h.Span.Start())
	})
	tl.holds = append(tl.holds, Hold{})
	copy(tl.holds[i+1:], tl.holds[i:])
	tl.holds[i] = h
}
