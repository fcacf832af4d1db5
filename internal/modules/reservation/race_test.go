// README: Concurrency tests for booking races (run with -race).
package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"roam/internal/interval"
	"roam/internal/modules/ledger"
	"roam/internal/types"
)

func TestConcurrentCreateSameInterval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	vid := f.addVehicle(t, 5000)

	const attempts = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		renter := types.ID(fmt.Sprintf("renter-%d", i))
		wg.Add(1)
		go func(renter types.ID) {
			defer wg.Done()
			<-start
			_, err := f.svc.Create(ctx, CreateCommand{
				VehicleID: vid, RenterID: renter,
				Start: date(2026, 6, 1), End: date(2026, 6, 4),
			})
			errs <- err
		}(renter)
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
		var conflict *ledger.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 accepted booking, got %d", success)
	}
}

func TestConcurrentCreateOverlappingIntervals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	vid := f.addVehicle(t, 5000)

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, 2)

	// [Jun 1, Jun 4) vs [Jun 3, Jun 5): overlap on Jun 3
	for _, w := range []struct {
		renter types.ID
		s, e   time.Time
	}{
		{"renter-a", date(2026, 6, 1), date(2026, 6, 4)},
		{"renter-b", date(2026, 6, 3), date(2026, 6, 5)},
	} {
		wg.Add(1)
		go func(renter types.ID, s, e time.Time) {
			defer wg.Done()
			<-start
			_, err := f.svc.Create(ctx, CreateCommand{VehicleID: vid, RenterID: renter, Start: s, End: e})
			errs <- err
		}(w.renter, w.s, w.e)
	}
	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
		}
	}
	if success != 1 {
		t.Fatalf("exactly one of two overlapping attempts must win, got %d", success)
	}
}

// TestConfirmVersusExpireRace pits the external confirmation signal against
// the expiry sweep on the same reservation. Whichever commits first wins; the
// loser must see an invalid transition, and the final state must be coherent.
func TestConfirmVersusExpireRace(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		f := newFixture(t, Options{HoldTTL: time.Nanosecond})
		vid := f.addVehicle(t, 5000)

		r, err := f.svc.Create(ctx, CreateCommand{
			VehicleID: vid, RenterID: "renter-a",
			Start: date(2026, 6, 1), End: date(2026, 6, 4),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		f.now = f.now.Add(time.Minute) // deadline passed

		var wg sync.WaitGroup
		results := make(chan error, 2)
		start := make(chan struct{})

		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			results <- f.svc.Confirm(ctx, r.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			results <- f.svc.Expire(ctx, r.ID)
		}()
		close(start)
		wg.Wait()
		close(results)

		success := 0
		for err := range results {
			if err == nil {
				success++
			} else if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if success != 1 {
			t.Fatalf("round %d: exactly one of confirm/expire must win, got %d", i, success)
		}

		got, _ := f.svc.Get(ctx, r.ID)
		span, _ := interval.New(date(2026, 6, 1), date(2026, 6, 4))
		switch got.Status {
		case StatusConfirmed:
			if f.ledger.IsFree(vid, span) {
				t.Fatalf("round %d: confirmed reservation lost its hold", i)
			}
		case StatusExpired:
			if !f.ledger.IsFree(vid, span) {
				t.Fatalf("round %d: expired reservation kept its hold", i)
			}
		default:
			t.Fatalf("round %d: unexpected final status %s", i, got.Status)
		}
	}
}

func TestCancelVersusConfirmRace(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		f := newFixture(t, Options{})
		vid := f.addVehicle(t, 5000)

		r, err := f.svc.Create(ctx, CreateCommand{
			VehicleID: vid, RenterID: "renter-a",
			Start: date(2026, 6, 1), End: date(2026, 6, 4),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		confirmErr := make(chan error, 1)
		cancelErr := make(chan error, 1)

		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			confirmErr <- f.svc.Confirm(ctx, r.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			cancelErr <- f.svc.Cancel(ctx, r.ID, "renter")
		}()
		close(start)
		wg.Wait()

		ce, xe := <-confirmErr, <-cancelErr
		// cancel is valid from both pending and confirmed, so it may succeed
		// after confirm does; confirm can only win if it observed pending.
		if ce != nil && !errors.Is(ce, ErrInvalidTransition) {
			t.Fatalf("confirm error: %v", ce)
		}
		if xe != nil && !errors.Is(xe, ErrInvalidTransition) {
			t.Fatalf("cancel error: %v", xe)
		}

		got, _ := f.svc.Get(ctx, r.ID)
		span, _ := interval.New(date(2026, 6, 1), date(2026, 6, 4))
		switch got.Status {
		case StatusCancelled:
			if !f.ledger.IsFree(vid, span) {
				t.Fatalf("round %d: cancelled reservation kept its hold", i)
			}
		case StatusConfirmed:
			if ce != nil {
				t.Fatalf("round %d: status confirmed but confirm reported %v", i, ce)
			}
			if f.ledger.IsFree(vid, span) {
				t.Fatalf("round %d: confirmed reservation lost its hold", i)
			}
		default:
			t.Fatalf("round %d: unexpected final status %s", i, got.Status)
		}
	}
}
