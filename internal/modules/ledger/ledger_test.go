package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"roam/internal/interval"
	"roam/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func span(t *testing.T, startDay, endDay int) interval.Interval {
	t.Helper()
	iv, err := interval.New(date(2026, 6, startDay), date(2026, 6, endDay))
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	return iv
}

func TestTryReserveConflictNamesExistingHold(t *testing.T) {
	l := New()
	held := span(t, 1, 4)
	if err := l.TryReserve("v1", held, "res-a"); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	err := l.TryReserve("v1", span(t, 3, 5), "res-b")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if conflict.Existing.ReservationID != "res-a" || !conflict.Existing.Span.Overlaps(held) {
		t.Fatalf("conflict names %v, want res-a %s", conflict.Existing, held)
	}

	// adjacent interval shares the checkout day only: allowed
	if err := l.TryReserve("v1", span(t, 4, 6), "res-c"); err != nil {
		t.Fatalf("adjacent reserve: %v", err)
	}
}

func TestVehiclesAreIndependent(t *testing.T) {
	l := New()
	if err := l.TryReserve("v1", span(t, 1, 4), "res-a"); err != nil {
		t.Fatalf("v1 reserve: %v", err)
	}
	if err := l.TryReserve("v2", span(t, 1, 4), "res-b"); err != nil {
		t.Fatalf("same interval on another vehicle must succeed: %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	l := New()
	held := span(t, 1, 4)
	if err := l.TryReserve("v1", held, "res-a"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	l.Release("v1", "res-a")
	if !l.IsFree("v1", held) {
		t.Fatal("interval should be free after release")
	}
	l.Release("v1", "res-a") // second release is a no-op
	l.Release("v1", "never-existed")
	if !l.IsFree("v1", held) {
		t.Fatal("repeated release must not change ledger state")
	}
	if err := l.TryReserve("v1", held, "res-b"); err != nil {
		t.Fatalf("re-reserve after release: %v", err)
	}
}

func TestUpcomingIsSortedSnapshot(t *testing.T) {
	l := New()
	for _, h := range []struct {
		id         types.ID
		start, end int
	}{
		{"res-late", 20, 22},
		{"res-early", 2, 5},
		{"res-mid", 10, 12},
	} {
		if err := l.TryReserve("v1", span(t, h.start, h.end), h.id); err != nil {
			t.Fatalf("reserve %s: %v", h.id, err)
		}
	}

	seq := l.Upcoming("v1", date(2026, 6, 6))
	var got []interval.Interval
	for iv := range seq {
		got = append(got, iv)
	}
	if len(got) != 2 {
		t.Fatalf("got %d intervals, want 2 (the past one is filtered)", len(got))
	}
	if !got[0].Start().Before(got[1].Start()) {
		t.Fatal("upcoming must be ordered by start ascending")
	}

	// snapshot semantics: releasing after the call must not affect the sequence
	l.Release("v1", "res-mid")
	var again []interval.Interval
	for iv := range seq {
		again = append(again, iv)
	}
	if len(again) != 2 {
		t.Fatalf("restarted sequence returned %d intervals, want the original 2", len(again))
	}
}

func TestConcurrentOverlappingReserves(t *testing.T) {
	l := New()
	const attempts = 32

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	start := make(chan struct{})

	contested := span(t, 1, 4)
	for i := 0; i < attempts; i++ {
		id := types.ID(fmt.Sprintf("res-%d", i))
		wg.Add(1)
		go func(id types.ID) {
			defer wg.Done()
			<-start
			errs <- l.TryReserve("v1", contested, id)
		}(id)
	}
	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", success)
	}
}

func TestConcurrentDisjointVehicles(t *testing.T) {
	l := New()
	const vehicles = 16

	iv := span(t, 1, 4)
	var wg sync.WaitGroup
	errs := make(chan error, vehicles)
	for i := 0; i < vehicles; i++ {
		vid := types.ID(fmt.Sprintf("v-%d", i))
		wg.Add(1)
		go func(vid types.ID) {
			defer wg.Done()
			errs <- l.TryReserve(vid, iv, types.ID("res-"+vid))
		}(vid)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("disjoint vehicles must never conflict: %v", err)
		}
	}
}

// TestBlockingHoldsNeverOverlap hammers one vehicle with mixed reserve and
// release traffic and checks the core safety invariant on the survivors.
func TestBlockingHoldsNeverOverlap(t *testing.T) {
	l := New()
	const workers = 8
	const rounds = 50

	// spans built up front; test helpers must not fail inside workers
	spans := make([]interval.Interval, 21)
	for startDay := 1; startDay <= 20; startDay++ {
		spans[startDay] = span(t, startDay, startDay+3)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				id := types.ID(fmt.Sprintf("res-%d-%d", w, r))
				startDay := 1 + (w+r)%20
				err := l.TryReserve("v1", spans[startDay], id)
				if err == nil && r%2 == 0 {
					l.Release("v1", id)
				}
			}
		}(w)
	}
	wg.Wait()

	var holds []interval.Interval
	for iv := range l.Upcoming("v1", date(2026, 1, 1)) {
		holds = append(holds, iv)
	}
	for i := 0; i < len(holds); i++ {
		for j := i + 1; j < len(holds); j++ {
			if holds[i].Overlaps(holds[j]) {
				t.Fatalf("holds %s and %s overlap", holds[i], holds[j])
			}
		}
	}
}
