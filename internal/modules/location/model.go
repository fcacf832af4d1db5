// README: Location sample for live tracking and durable snapshots.
package location

import (
	"time"

	"roam/internal/types"
)

type Sample struct {
	VehicleID  types.ID    `json:"vehicleId"`
	Position   types.Point `json:"position"`
	RecordedAt time.Time   `json:"recordedAt"`
}
