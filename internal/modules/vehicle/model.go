// README: Vehicle aggregate owned by a lister; rate changes never touch existing reservations.
package vehicle

import (
	"time"

	"roam/internal/types"
)

type Vehicle struct {
	ID          types.ID
	OwnerID     types.ID
	Plate       string
	Make        string
	Model       string
	Year        int
	PricePerDay types.Money
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
