// README: Location tracker tests for the latest/ordering/retention rules.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"roam/internal/types"
)

func ts(minute int) time.Time {
	return time.Date(2026, 6, 1, 12, minute, 0, 0, time.UTC)
}

func sample(vid types.ID, minute int) Sample {
	return Sample{
		VehicleID:  vid,
		Position:   types.Point{Lat: 40.0 + float64(minute)/1000, Lng: -73.9},
		RecordedAt: ts(minute),
	}
}

func TestLatestIgnoresOutOfOrderArrivals(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), ServiceOptions{})

	// arrival order t3, t1, t2
	for _, minute := range []int{3, 1, 2} {
		if err := svc.Record(ctx, sample("v1", minute)); err != nil {
			t.Fatalf("record t%d: %v", minute, err)
		}
	}

	latest, err := svc.Latest(ctx, "v1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !latest.RecordedAt.Equal(ts(3)) {
		t.Fatalf("latest = %v, want the t3 sample", latest.RecordedAt)
	}

	history, err := svc.History(ctx, "v1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3 (out-of-order samples are kept)", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].RecordedAt.After(history[i-1].RecordedAt) {
			t.Fatal("history must be ordered most recent first")
		}
	}
}

func TestHistoryBoundEvictsOldest(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), ServiceOptions{HistoryBound: 5})

	for minute := 1; minute <= 9; minute++ {
		if err := svc.Record(ctx, sample("v1", minute)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	history, err := svc.History(ctx, "v1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("history length = %d, want the bound of 5", len(history))
	}
	if !history[0].RecordedAt.Equal(ts(9)) || !history[4].RecordedAt.Equal(ts(5)) {
		t.Fatalf("retained window [%v..%v], want [t9..t5]", history[0].RecordedAt, history[4].RecordedAt)
	}
}

func TestLatestUnknownVehicle(t *testing.T) {
	svc := NewService(NewMemoryStore(), ServiceOptions{})
	if _, err := svc.Latest(context.Background(), "ghost"); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("got %v, want ErrNoSamples", err)
	}
}

func TestRecordValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), ServiceOptions{})

	cases := []Sample{
		{VehicleID: "", RecordedAt: ts(1)},
		{VehicleID: "v1"}, // zero timestamp
		{VehicleID: "v1", Position: types.Point{Lat: 91}, RecordedAt: ts(1)},
		{VehicleID: "v1", Position: types.Point{Lng: -181}, RecordedAt: ts(1)},
	}
	for i, sm := range cases {
		if err := svc.Record(ctx, sm); !errors.Is(err, ErrBadSample) {
			t.Errorf("case %d: got %v, want ErrBadSample", i, err)
		}
	}
}

func TestConcurrentRecordsKeepLatestMonotonic(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), ServiceOptions{HistoryBound: 64})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for minute := 0; minute < 30; minute++ {
				_ = svc.Record(ctx, sample(types.ID(fmt.Sprintf("v%d", w%2)), minute))
			}
		}(w)
	}
	wg.Wait()

	for _, vid := range []types.ID{"v0", "v1"} {
		latest, err := svc.Latest(ctx, vid)
		if err != nil {
			t.Fatalf("latest %s: %v", vid, err)
		}
		if !latest.RecordedAt.Equal(ts(29)) {
			t.Fatalf("%s latest = %v, want the max timestamp t29", vid, latest.RecordedAt)
		}
	}
}

type captureHub struct {
	mu       sync.Mutex
	payloads map[types.ID][][]byte
}

func (c *captureHub) BroadcastVehicle(vehicleID types.ID, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payloads == nil {
		c.payloads = make(map[types.ID][][]byte)
	}
	c.payloads[vehicleID] = append(c.payloads[vehicleID], payload)
}

func TestRecordBroadcastsToHub(t *testing.T) {
	hub := &captureHub{}
	svc := NewService(NewMemoryStore(), ServiceOptions{Hub: hub})

	if err := svc.Record(context.Background(), sample("v1", 1)); err != nil {
		t.Fatalf("record: %v", err)
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.payloads["v1"]) != 1 {
		t.Fatalf("hub received %d payloads, want 1", len(hub.payloads["v1"]))
	}
}
