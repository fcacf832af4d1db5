// README: Stripe webhook; a captured deposit hold confirms the reservation.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"

	"roam/internal/modules/reservation"
	"roam/internal/payments"
	"roam/internal/types"
)

type PaymentsHandler struct {
	svc      *reservation.Service
	deposits *payments.StripeClient
	secret   string
	log      *zap.SugaredLogger
}

func NewPaymentsHandler(svc *reservation.Service, deposits *payments.StripeClient, secret string, log *zap.SugaredLogger) *PaymentsHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PaymentsHandler{svc: svc, deposits: deposits, secret: secret, log: log}
}

// Webhook verifies the Stripe signature and maps payment events onto
// reservation transitions. Stripe retries on non-2xx, so only signature
// and decoding problems are reported as failures; a lost transition race
// is acknowledged and logged.
func (h *PaymentsHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable payload")
		return
	}
	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.secret)
	if err != nil {
		writeError(c, http.StatusBadRequest, "signature verification failed")
		return
	}

	switch event.Type {
	case "payment_intent.amount_capturable_updated":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			writeError(c, http.StatusBadRequest, "malformed payment intent")
			return
		}
		h.confirmFromIntent(c, &pi)
	case "payment_intent.canceled":
		// The renter abandoned checkout; the pending hold is left for the
		// expiry sweep rather than cancelled here.
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *PaymentsHandler) confirmFromIntent(c *gin.Context, pi *stripe.PaymentIntent) {
	resID, ok := pi.Metadata["reservation_id"]
	if !ok || resID == "" {
		h.log.Warnw("payment intent without reservation metadata", "payment_intent_id", pi.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	err := h.svc.Confirm(c.Request.Context(), types.ID(resID))
	switch {
	case err == nil:
		if h.deposits != nil {
			if err := h.deposits.Capture(c.Request.Context(), pi.ID); err != nil {
				h.log.Warnw("deposit capture failed", "payment_intent_id", pi.ID, "error", err)
			}
		}
	case errors.Is(err, reservation.ErrInvalidTransition):
		// Expiry or cancellation won the race; release the hold.
		h.log.Infow("payment arrived after reservation left pending", "reservation_id", resID)
		if h.deposits != nil {
			if err := h.deposits.Cancel(c.Request.Context(), pi.ID); err != nil {
				h.log.Warnw("deposit release failed", "payment_intent_id", pi.ID, "error", err)
			}
		}
	default:
		h.log.Errorw("confirm from webhook failed", "reservation_id", resID, "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
