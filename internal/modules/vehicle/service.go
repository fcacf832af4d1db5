// README: Vehicle service implements owner-initiated registry updates.
package vehicle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"roam/internal/types"
)

var (
	ErrNotFound   = errors.New("vehicle not found")
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("not the vehicle owner")
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type RegisterCommand struct {
	OwnerID     types.ID
	Plate       string
	Make        string
	Model       string
	Year        int
	PricePerDay types.Money
}

type UpdateCommand struct {
	VehicleID   types.ID
	OwnerID     types.ID
	PricePerDay *types.Money
	Active      *bool
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Vehicle, error) {
	if cmd.OwnerID == "" || cmd.Plate == "" {
		return nil, ErrBadRequest
	}
	if cmd.PricePerDay.Amount <= 0 || cmd.PricePerDay.Currency == "" {
		return nil, ErrBadRequest
	}
	now := time.Now().UTC()
	v := &Vehicle{
		ID:          types.ID(uuid.NewString()),
		OwnerID:     cmd.OwnerID,
		Plate:       cmd.Plate,
		Make:        cmd.Make,
		Model:       cmd.Model,
		Year:        cmd.Year,
		PricePerDay: cmd.PricePerDay,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Update applies owner-initiated rate or active-flag changes. Deactivation
// does not cancel existing reservations; it only stops new ones.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Vehicle, error) {
	v, err := s.store.Get(ctx, cmd.VehicleID)
	if err != nil {
		return nil, err
	}
	if v.OwnerID != cmd.OwnerID {
		return nil, ErrForbidden
	}
	if cmd.PricePerDay != nil {
		if cmd.PricePerDay.Amount <= 0 || cmd.PricePerDay.Currency == "" {
			return nil, ErrBadRequest
		}
		v.PricePerDay = *cmd.PricePerDay
	}
	if cmd.Active != nil {
		v.Active = *cmd.Active
	}
	v.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID types.ID) ([]*Vehicle, error) {
	return s.store.ListByOwner(ctx, ownerID)
}
