// README: Transition event contract consumed by the notification layer.
package events

import (
	"time"

	"roam/internal/types"
)

// Transition is emitted on every reservation state change. Delivery is
// fire-and-forget: a failed emit never rolls back the transition.
type Transition struct {
	ReservationID types.ID  `json:"reservationId"`
	VehicleID     types.ID  `json:"vehicleId"`
	FromState     string    `json:"fromState"`
	ToState       string    `json:"toState"`
	Timestamp     time.Time `json:"timestamp"`
}

type Emitter interface {
	Emit(e Transition)
}
