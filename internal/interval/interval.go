// Package interval — half-open calendar-day date ranges [start, end).
// Bookings are whole days: times within a day are normalized away, so all
// comparisons happen at day granularity in UTC.
package interval

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("invalid interval")

// Interval is an immutable [start, end) range of calendar days.
// The zero value is not a valid interval; use New.
type Interval struct {
	start time.Time
	end   time.Time
}

// New normalizes both bounds to UTC midnight and validates start < end.
func New(start, end time.Time) (Interval, error) {
	if start.IsZero() || end.IsZero() {
		return Interval{}, fmt.Errorf("%w: zero bound", ErrInvalidInterval)
	}
	s := Day(start)
	e := Day(end)
	if !s.Before(e) {
		return Interval{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidInterval, s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return Interval{start: s, end: e}, nil
}

// Day truncates t to UTC midnight of its calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (i Interval) Start() time.Time { return i.start }
func (i Interval) End() time.Time   { return i.end }

func (i Interval) IsZero() bool { return i.start.IsZero() && i.end.IsZero() }

// Overlaps reports whether the two half-open intervals share at least one day:
// start_a < end_b && start_b < end_a.
func (i Interval) Overlaps(o Interval) bool {
	return i.start.Before(o.end) && o.start.Before(i.end)
}

// Contains reports whether the day of t falls inside [start, end).
func (i Interval) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(i.start) && d.Before(i.end)
}

// Days returns the interval length in whole days. Always >= 1 for a valid interval.
func (i Interval) Days() int {
	return int(i.end.Sub(i.start) / (24 * time.Hour))
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.start.Format(time.DateOnly), i.end.Format(time.DateOnly))
}
