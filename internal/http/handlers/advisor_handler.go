// README: Suggested-rate handler backed by the Gemini advisor.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roam/internal/modules/advisor"
	"roam/internal/modules/vehicle"
	"roam/internal/types"
)

type AdvisorHandler struct {
	advisor  *advisor.Advisor
	vehicles *vehicle.Service
}

func NewAdvisorHandler(a *advisor.Advisor, vehicles *vehicle.Service) *AdvisorHandler {
	return &AdvisorHandler{advisor: a, vehicles: vehicles}
}

// SuggestRate asks the model for a per-day rate. Only the vehicle's owner
// may request a suggestion; the result never feeds pricing automatically.
func (h *AdvisorHandler) SuggestRate(c *gin.Context) {
	if h.advisor == nil {
		writeError(c, http.StatusServiceUnavailable, "rate advisor not enabled")
		return
	}
	v, err := h.vehicles.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	if v.OwnerID != types.ID(c.GetString("userId")) {
		writeError(c, http.StatusForbidden, vehicle.ErrForbidden.Error())
		return
	}

	// Sibling vehicles give the model a sense of the owner's fleet pricing.
	var comparable []types.Money
	if siblings, err := h.vehicles.ListByOwner(c.Request.Context(), v.OwnerID); err == nil {
		for _, s := range siblings {
			if s.ID != v.ID {
				comparable = append(comparable, s.PricePerDay)
			}
		}
	}

	suggestion, err := h.advisor.SuggestRate(c.Request.Context(), v, comparable)
	if err != nil {
		writeError(c, http.StatusBadGateway, "rate suggestion unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vehicle_id": v.ID,
		"suggestion": suggestion,
	})
}
