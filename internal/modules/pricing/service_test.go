package pricing

import (
	"errors"
	"testing"
	"time"

	"roam/internal/interval"
	"roam/internal/modules/vehicle"
	"roam/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func span(t *testing.T, start, end time.Time) interval.Interval {
	t.Helper()
	iv, err := interval.New(start, end)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	return iv
}

func testVehicle(rate int64) *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:          "v1",
		OwnerID:     "owner-1",
		PricePerDay: types.Money{Amount: rate, Currency: "USD"},
		Active:      true,
	}
}

func TestQuoteBasePrice(t *testing.T) {
	calc := NewCalculator(nil)
	// $50/day for [Jun 1, Jun 4) = $150
	q, err := calc.QuoteFor(testVehicle(5000), span(t, date(2026, 6, 1), date(2026, 6, 4)))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Total.Amount != 15000 || q.Days != 3 {
		t.Fatalf("got %d over %d days, want 15000 over 3", q.Total.Amount, q.Days)
	}
	if q.Total.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", q.Total.Currency)
	}
}

func TestQuoteIsDeterministic(t *testing.T) {
	calc := NewCalculator(nil, LongStayDiscount(7, 10), WeekendSurcharge(500))
	v := testVehicle(4200)
	iv := span(t, date(2026, 6, 1), date(2026, 6, 12))

	first, err := calc.QuoteFor(v, iv)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	for i := 0; i < 20; i++ {
		q, err := calc.QuoteFor(v, iv)
		if err != nil {
			t.Fatalf("quote %d: %v", i, err)
		}
		if q.Total != first.Total {
			t.Fatalf("quote %d: %v, want %v", i, q.Total, first.Total)
		}
	}
}

func TestQuoteInvalidVehicle(t *testing.T) {
	calc := NewCalculator(nil)
	iv := span(t, date(2026, 6, 1), date(2026, 6, 2))

	cases := []struct {
		name string
		v    *vehicle.Vehicle
	}{
		{"zero rate", testVehicle(0)},
		{"negative rate", testVehicle(-100)},
		{"inactive", func() *vehicle.Vehicle { v := testVehicle(1000); v.Active = false; return v }()},
		{"nil vehicle", nil},
	}
	for _, tc := range cases {
		if _, err := calc.QuoteFor(tc.v, iv); !errors.Is(err, ErrInvalidVehicle) {
			t.Errorf("%s: got %v, want ErrInvalidVehicle", tc.name, err)
		}
	}
}

func TestLongStayDiscount(t *testing.T) {
	calc := NewCalculator(nil, LongStayDiscount(7, 10))
	v := testVehicle(1000)

	short, err := calc.QuoteFor(v, span(t, date(2026, 6, 1), date(2026, 6, 4)))
	if err != nil {
		t.Fatalf("quote short: %v", err)
	}
	if short.Total.Amount != 3000 {
		t.Errorf("short stay should get no discount, got %d", short.Total.Amount)
	}
	if _, ok := short.Breakdown["long_stay_discount"]; ok {
		t.Error("short stay breakdown must not contain the discount")
	}

	long, err := calc.QuoteFor(v, span(t, date(2026, 6, 1), date(2026, 6, 11)))
	if err != nil {
		t.Fatalf("quote long: %v", err)
	}
	// 10 days * 1000 = 10000, minus 10%
	if long.Total.Amount != 9000 {
		t.Errorf("long stay total = %d, want 9000", long.Total.Amount)
	}
	if long.Breakdown["long_stay_discount"] != -1000 {
		t.Errorf("discount line = %d, want -1000", long.Breakdown["long_stay_discount"])
	}
}

func TestWeekendSurcharge(t *testing.T) {
	calc := NewCalculator(nil, WeekendSurcharge(500))
	v := testVehicle(1000)

	// 2026-06-01 is a Monday; [Mon, Fri) has no weekend nights
	week, err := calc.QuoteFor(v, span(t, date(2026, 6, 1), date(2026, 6, 5)))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if week.Total.Amount != 4000 {
		t.Errorf("weekday stay total = %d, want 4000", week.Total.Amount)
	}

	// [Fri, Mon) covers Saturday and Sunday nights
	weekend, err := calc.QuoteFor(v, span(t, date(2026, 6, 5), date(2026, 6, 8)))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if weekend.Total.Amount != 3000+1000 {
		t.Errorf("weekend stay total = %d, want 4000", weekend.Total.Amount)
	}
}
