// README: Reservation service implements the booking state machine on top of the ledger.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roam/internal/events"
	"roam/internal/interval"
	"roam/internal/modules/ledger"
	"roam/internal/modules/pricing"
	"roam/internal/modules/vehicle"
	"roam/internal/observability"
	"roam/internal/types"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotFound          = errors.New("reservation not found")
	ErrBadRequest        = errors.New("bad request")
	ErrCancelRefused     = errors.New("cancellation refused by policy")
)

// VehicleSource supplies vehicle records; satisfied by vehicle.Service.
type VehicleSource interface {
	Get(ctx context.Context, id types.ID) (*vehicle.Vehicle, error)
}

// Quoter snapshots a price for an interval; satisfied by pricing.Calculator.
type Quoter interface {
	QuoteFor(v *vehicle.Vehicle, span interval.Interval) (pricing.Quote, error)
}

// CancelPolicy is consulted before a cancel transition. Returning an error
// refuses the cancellation without touching reservation state.
type CancelPolicy func(r *Reservation, now time.Time) error

// MinNoticePolicy refuses cancelling a confirmed reservation within notice of
// its start day. Pending reservations can always be cancelled.
func MinNoticePolicy(notice time.Duration) CancelPolicy {
	return func(r *Reservation, now time.Time) error {
		if r.Status != StatusConfirmed {
			return nil
		}
		if now.Add(notice).After(r.Span.Start()) {
			return fmt.Errorf("%w: confirmed reservations need %s notice", ErrCancelRefused, notice)
		}
		return nil
	}
}

type Options struct {
	Emitter      events.Emitter
	HoldTTL      time.Duration
	CancelPolicy CancelPolicy
	Logger       *zap.SugaredLogger
	// Now overrides the clock; tests only.
	Now func() time.Time
}

type Service struct {
	store        Store
	ledger       *ledger.Ledger
	vehicles     VehicleSource
	quoter       Quoter
	emitter      events.Emitter
	holdTTL      time.Duration
	cancelPolicy CancelPolicy
	log          *zap.SugaredLogger
	now          func() time.Time
}

func NewService(store Store, ldg *ledger.Ledger, vehicles VehicleSource, quoter Quoter, opts Options) *Service {
	s := &Service{
		store:        store,
		ledger:       ldg,
		vehicles:     vehicles,
		quoter:       quoter,
		emitter:      opts.Emitter,
		holdTTL:      opts.HoldTTL,
		cancelPolicy: opts.CancelPolicy,
		log:          opts.Logger,
		now:          opts.Now,
	}
	if s.holdTTL <= 0 {
		s.holdTTL = 30 * time.Minute
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type CreateCommand struct {
	VehicleID types.ID
	RenterID  types.ID
	Start     time.Time
	End       time.Time
}

// Create runs the booking flow: validate, quote, atomically hold the interval,
// persist. Validation failures surface before any ledger mutation. A conflict
// comes back as *ledger.ConflictError naming the blocking hold; nothing is
// persisted for the losing attempt.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Reservation, error) {
	if cmd.VehicleID == "" || cmd.RenterID == "" {
		return nil, ErrBadRequest
	}
	span, err := interval.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}
	v, err := s.vehicles.Get(ctx, cmd.VehicleID)
	if err != nil {
		return nil, err
	}
	quote, err := s.quoter.QuoteFor(v, span)
	if err != nil {
		return nil, err
	}

	id := types.ID(uuid.NewString())
	if err := s.ledger.TryReserve(cmd.VehicleID, span, id); err != nil {
		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			observability.ReservationConflicts.Inc()
			s.log.Infow("booking rejected on conflict",
				"vehicle_id", cmd.VehicleID,
				"renter_id", cmd.RenterID,
				"requested", span.String(),
				"held_by", conflict.Existing.ReservationID,
			)
		}
		return nil, err
	}

	now := s.now().UTC()
	r := &Reservation{
		ID:            id,
		VehicleID:     cmd.VehicleID,
		RenterID:      cmd.RenterID,
		Span:          span,
		Status:        StatusPending,
		StatusVersion: 0,
		Price:         quote.Total,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.holdTTL),
	}
	if err := s.store.Create(ctx, r); err != nil {
		s.ledger.Release(cmd.VehicleID, id)
		return nil, err
	}

	s.recordTransition(ctx, r, StatusNone, StatusPending, "renter")
	observability.ReservationsCreated.Inc()
	return r, nil
}

// Confirm finalizes a pending reservation on the external confirmation
// signal. The hold stays in the ledger.
func (s *Service) Confirm(ctx context.Context, id types.ID) error {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusConfirmed) {
		return ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusConfirmed, r.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		// a concurrent cancel or expiry committed first
		return ErrInvalidTransition
	}
	s.recordTransition(ctx, r, StatusPending, StatusConfirmed, "system")
	observability.ReservationsConfirmed.Inc()
	return nil
}

// Cancel releases the reservation's hold. Valid from pending or confirmed,
// subject to the cancel policy.
func (s *Service) Cancel(ctx context.Context, id types.ID, actorType string) error {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return ErrInvalidTransition
	}
	if s.cancelPolicy != nil {
		if err := s.cancelPolicy(r, s.now().UTC()); err != nil {
			return err
		}
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusCancelled, r.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	s.ledger.Release(r.VehicleID, r.ID)
	s.recordTransition(ctx, r, r.Status, StatusCancelled, actorType)
	observability.ReservationsCancelled.Inc()
	return nil
}

// Expire is system-driven and only fires on pending reservations past their
// expires-at. A confirmed reservation is never auto-expired.
func (s *Service) Expire(ctx context.Context, id types.ID) error {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != StatusPending || s.now().UTC().Before(r.ExpiresAt) {
		return ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusExpired, r.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	s.ledger.Release(r.VehicleID, r.ID)
	s.recordTransition(ctx, r, StatusPending, StatusExpired, "system")
	observability.ReservationsExpired.Inc()
	return nil
}

// ExpireDue applies Expire to every pending reservation past its deadline.
// Losing a race to a concurrent confirm or cancel is expected background
// noise: logged, counted, never retried.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	due, err := s.store.ListExpiredPending(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, r := range due {
		switch err := s.Expire(ctx, r.ID); {
		case err == nil:
			expired++
		case errors.Is(err, ErrInvalidTransition):
			observability.SweepLost.Inc()
			s.log.Debugw("sweep lost transition race", "reservation_id", r.ID)
		default:
			s.log.Errorw("sweep expire failed", "reservation_id", r.ID, "error", err)
		}
	}
	return expired, nil
}

// Rehydrate rebuilds the in-memory ledger from persisted blocking
// reservations; called once at startup before the API accepts traffic.
func (s *Service) Rehydrate(ctx context.Context) error {
	blocking, err := s.store.ListBlocking(ctx)
	if err != nil {
		return err
	}
	for _, r := range blocking {
		h := ledger.Hold{ReservationID: r.ID, Span: r.Span}
		if err := s.ledger.Restore(r.VehicleID, h); err != nil {
			return err
		}
	}
	s.log.Infow("ledger rehydrated", "holds", len(blocking))
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByRenter(ctx context.Context, renterID types.ID) ([]*Reservation, error) {
	return s.store.ListByRenter(ctx, renterID)
}

func (s *Service) recordTransition(ctx context.Context, r *Reservation, from, to Status, actorType string) {
	now := s.now().UTC()
	_ = s.store.AppendEvent(ctx, &Event{
		ReservationID: r.ID,
		FromStatus:    from,
		ToStatus:      to,
		ActorType:     actorType,
		CreatedAt:     now,
	})
	if s.emitter != nil {
		s.emitter.Emit(events.Transition{
			ReservationID: r.ID,
			VehicleID:     r.VehicleID,
			FromState:     string(from),
			ToState:       string(to),
			Timestamp:     now,
		})
	}
}
