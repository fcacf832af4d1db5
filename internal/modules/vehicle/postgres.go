// README: Vehicle store backed by PostgreSQL.
package vehicle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roam/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, v *Vehicle) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (
			id, owner_id, plate, make, model, year,
			price_per_day, currency, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(v.ID),
		string(v.OwnerID),
		v.Plate,
		v.Make,
		v.Model,
		v.Year,
		v.PricePerDay.Amount,
		v.PricePerDay.Currency,
		v.Active,
		v.CreatedAt,
		v.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, plate, make, model, year,
		       price_per_day, currency, active, created_at, updated_at
		FROM vehicles
		WHERE id = $1`, string(id),
	)
	var v Vehicle
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Plate, &v.Make, &v.Model, &v.Year,
		&v.PricePerDay.Amount, &v.PricePerDay.Currency, &v.Active, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PGStore) Update(ctx context.Context, v *Vehicle) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET price_per_day = $1, currency = $2, active = $3, updated_at = $4
		WHERE id = $5`,
		v.PricePerDay.Amount,
		v.PricePerDay.Currency,
		v.Active,
		v.UpdatedAt,
		string(v.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerID types.ID) ([]*Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, plate, make, model, year,
		       price_per_day, currency, active, created_at, updated_at
		FROM vehicles
		WHERE owner_id = $1
		ORDER BY created_at`, string(ownerID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Plate, &v.Make, &v.Model, &v.Year,
			&v.PricePerDay.Amount, &v.PricePerDay.Currency, &v.Active, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
