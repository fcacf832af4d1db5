// README: Shared JSON helpers and engine error mapping for handlers.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roam/internal/interval"
	"roam/internal/modules/ledger"
	"roam/internal/modules/location"
	"roam/internal/modules/pricing"
	"roam/internal/modules/reservation"
	"roam/internal/modules/vehicle"
)

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// writeEngineError translates module sentinels to HTTP statuses. A ledger
// conflict carries the blocking interval so the caller can pick new dates.
func writeEngineError(c *gin.Context, err error) {
	var conflict *ledger.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "requested interval is not available",
			"conflict": gin.H{
				"start":          conflict.Existing.Span.Start().Format(time.DateOnly),
				"end":            conflict.Existing.Span.End().Format(time.DateOnly),
				"reservation_id": conflict.Existing.ReservationID,
			},
		})
	case errors.Is(err, reservation.ErrBadRequest),
		errors.Is(err, vehicle.ErrBadRequest),
		errors.Is(err, interval.ErrInvalidInterval),
		errors.Is(err, location.ErrBadSample):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, vehicle.ErrNotFound),
		errors.Is(err, location.ErrNoSamples):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, reservation.ErrInvalidTransition),
		errors.Is(err, reservation.ErrCancelRefused):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, vehicle.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, pricing.ErrInvalidVehicle):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// parseDay accepts a date-only value; bad input surfaces later through
// interval validation, so a zero time is fine here.
func parseDay(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
