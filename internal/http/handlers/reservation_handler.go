// README: Reservation handlers covering the full booking lifecycle.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roam/internal/modules/reservation"
	"roam/internal/payments"
	"roam/internal/types"
)

// ReservationHandler drives the booking lifecycle. The deposit client is
// optional; without it reservations are confirmed through the API directly.
type ReservationHandler struct {
	svc      *reservation.Service
	deposits *payments.StripeClient
	log      *zap.SugaredLogger
}

func NewReservationHandler(svc *reservation.Service, deposits *payments.StripeClient, log *zap.SugaredLogger) *ReservationHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ReservationHandler{svc: svc, deposits: deposits, log: log}
}

type createReservationReq struct {
	VehicleID string `json:"vehicle_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req createReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	renterID := c.GetString("userId")
	if req.VehicleID == "" || renterID == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}

	r, err := h.svc.Create(c.Request.Context(), reservation.CreateCommand{
		VehicleID: types.ID(req.VehicleID),
		RenterID:  types.ID(renterID),
		Start:     parseDay(req.Start),
		End:       parseDay(req.End),
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	body := reservationView(r)
	if h.deposits != nil {
		intentID, err := h.deposits.Hold(c.Request.Context(), r.ID, r.Price)
		if err != nil {
			// The hold stays pending; the renter can retry payment until
			// the sweep expires it.
			h.log.Warnw("deposit hold failed", "reservation_id", r.ID, "error", err)
		} else {
			body["payment_intent_id"] = intentID
		}
	}
	c.JSON(http.StatusCreated, body)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationView(r))
}

func (h *ReservationHandler) List(c *gin.Context) {
	renterID := c.GetString("userId")
	rs, err := h.svc.ListByRenter(c.Request.Context(), types.ID(renterID))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rs))
	for _, r := range rs {
		out = append(out, reservationView(r))
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out})
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if err := h.svc.Confirm(c.Request.Context(), id); err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_id": id, "status": reservation.StatusConfirmed})
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id := types.ID(c.Param("id"))
	r, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	// only the booking renter may cancel through the API
	if r.RenterID != types.ID(c.GetString("userId")) {
		writeError(c, http.StatusForbidden, "reservation belongs to another renter")
		return
	}
	actor := c.GetString("userType")
	if actor == "" {
		actor = "renter"
	}
	if err := h.svc.Cancel(c.Request.Context(), id, actor); err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_id": id, "status": reservation.StatusCancelled})
}

func reservationView(r *reservation.Reservation) gin.H {
	return gin.H{
		"reservation_id": r.ID,
		"vehicle_id":     r.VehicleID,
		"renter_id":      r.RenterID,
		"start":          r.Span.Start().Format(time.DateOnly),
		"end":            r.Span.End().Format(time.DateOnly),
		"status":         r.Status,
		"price": gin.H{
			"amount":   r.Price.Amount,
			"currency": r.Price.Currency,
		},
		"expires_at": r.ExpiresAt,
	}
}
