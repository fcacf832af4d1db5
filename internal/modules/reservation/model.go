// README: Reservation aggregate and status definitions.
package reservation

import (
	"time"

	"roam/internal/interval"
	"roam/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusRejected  Status = "rejected"
)

// Reservation is created by a renter request and owned by the state machine
// from then on. The price is snapshotted at creation and never recomputed;
// ExpiresAt is only meaningful while Status is pending.
type Reservation struct {
	ID            types.ID
	VehicleID     types.ID
	RenterID      types.ID
	Span          interval.Interval
	Status        Status
	StatusVersion int
	Price         types.Money
	CreatedAt     time.Time
	ExpiresAt     time.Time
	ConfirmedAt   *time.Time
	CancelledAt   *time.Time
	ExpiredAt     *time.Time
}

// Event is one audit row per state change.
type Event struct {
	ID            int64
	ReservationID types.ID
	FromStatus    Status
	ToStatus      Status
	ActorType     string
	CreatedAt     time.Time
}

// AllowedTransitions represents the reservation lifecycle as code. Cancelled,
// expired and rejected are terminal; confirmed can still be cancelled.
// Rejected reservations never enter the map because they never hold a
// ledger interval in the first place.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed: {StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Blocking reports whether the reservation currently occupies ledger space.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}
