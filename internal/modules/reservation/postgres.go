// README: Reservation store backed by PostgreSQL with optimistic status updates.
package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roam/internal/interval"
	"roam/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const reservationColumns = `
	id, vehicle_id, renter_id, start_date, end_date,
	status, status_version, price_amount, price_currency,
	created_at, expires_at, confirmed_at, cancelled_at, expired_at`

func (s *PGStore) Create(ctx context.Context, r *Reservation) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reservations (
			id, vehicle_id, renter_id, start_date, end_date,
			status, status_version, price_amount, price_currency,
			created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(r.ID),
		string(r.VehicleID),
		string(r.RenterID),
		r.Span.Start(),
		r.Span.End(),
		string(r.Status),
		r.StatusVersion,
		r.Price.Amount,
		r.Price.Currency,
		r.CreatedAt,
		r.ExpiresAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	row := s.db.QueryRow(ctx, `SELECT`+reservationColumns+` FROM reservations WHERE id = $1`, string(id))
	r, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// UpdateStatus is the optimistic commit point for every transition: the row
// only changes when status and version still match what the caller observed.
func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE reservations
		SET status = $1,
		    status_version = status_version + 1,
		    confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END,
		    expired_at   = CASE WHEN $1 = 'expired'   THEN NOW() ELSE expired_at END
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to),
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reservation_state_events (
			reservation_id, from_status, to_status, actor_type, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(e.ReservationID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		e.CreatedAt,
	)
	return err
}

func (s *PGStore) ListExpiredPending(ctx context.Context, asOf time.Time) ([]*Reservation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE status = 'pending' AND expires_at <= $1
		ORDER BY expires_at`, asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (s *PGStore) ListBlocking(ctx context.Context) ([]*Reservation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE status IN ('pending', 'confirmed')
		ORDER BY vehicle_id, start_date`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (s *PGStore) ListByRenter(ctx context.Context, renterID types.ID) ([]*Reservation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE renter_id = $1
		ORDER BY created_at DESC`, string(renterID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*Reservation, error) {
	var (
		r          Reservation
		start, end time.Time
	)
	err := row.Scan(
		&r.ID, &r.VehicleID, &r.RenterID, &start, &end,
		&r.Status, &r.StatusVersion, &r.Price.Amount, &r.Price.Currency,
		&r.CreatedAt, &r.ExpiresAt, &r.ConfirmedAt, &r.CancelledAt, &r.ExpiredAt,
	)
	if err != nil {
		return nil, err
	}
	r.Span, err = interval.New(start, end)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collectReservations(rows pgx.Rows) ([]*Reservation, error) {
	var out []*Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
