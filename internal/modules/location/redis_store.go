// README: Location store backed by Redis (live view) and Postgres (durable snapshots).
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"roam/internal/types"
)

const liveTTL = 24 * time.Hour

type RedisPGStore struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewRedisPGStore(db *pgxpool.Pool, rdb *redis.Client) *RedisPGStore {
	return &RedisPGStore{db: db, redis: rdb}
}

func latestKey(id types.ID) string  { return fmt.Sprintf("vehicle:location:latest:%s", id) }
func historyKey(id types.ID) string { return fmt.Sprintf("vehicle:location:history:%s", id) }

func (s *RedisPGStore) AppendSnapshot(ctx context.Context, sm Sample) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO location_snapshots (vehicle_id, lat, lng, recorded_at)
		VALUES ($1, $2, $3, $4)`,
		string(sm.VehicleID),
		sm.Position.Lat,
		sm.Position.Lng,
		sm.RecordedAt,
	)
	return err
}

func (s *RedisPGStore) PushHistory(ctx context.Context, sm Sample, bound int) error {
	b, err := json.Marshal(sm)
	if err != nil {
		return err
	}
	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, historyKey(sm.VehicleID), b)
	pipe.LTrim(ctx, historyKey(sm.VehicleID), 0, int64(bound-1))
	pipe.Expire(ctx, historyKey(sm.VehicleID), liveTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisPGStore) ReadHistory(ctx context.Context, vehicleID types.ID, bound int) ([]Sample, error) {
	raw, err := s.redis.LRange(ctx, historyKey(vehicleID), 0, int64(bound-1)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if len(raw) == 0 {
		// cold cache: fall back to the durable copy
		return s.historyFromSnapshots(ctx, vehicleID, bound)
	}
	out := make([]Sample, 0, len(raw))
	for _, item := range raw {
		var sm Sample
		if err := json.Unmarshal([]byte(item), &sm); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, nil
}

func (s *RedisPGStore) historyFromSnapshots(ctx context.Context, vehicleID types.ID, bound int) ([]Sample, error) {
	rows, err := s.db.Query(ctx, `
		SELECT vehicle_id, lat, lng, recorded_at
		FROM location_snapshots
		WHERE vehicle_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`, string(vehicleID), bound,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(&sm.VehicleID, &sm.Position.Lat, &sm.Position.Lng, &sm.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *RedisPGStore) GetLatest(ctx context.Context, vehicleID types.ID) (*Sample, error) {
	raw, err := s.redis.Get(ctx, latestKey(vehicleID)).Result()
	if errors.Is(err, redis.Nil) {
		// cold cache: fall back to the durable copy
		return s.latestFromSnapshots(ctx, vehicleID)
	}
	if err != nil {
		return nil, err
	}
	var sm Sample
	if err := json.Unmarshal([]byte(raw), &sm); err != nil {
		return nil, err
	}
	return &sm, nil
}

func (s *RedisPGStore) SetLatest(ctx context.Context, sm Sample) error {
	b, err := json.Marshal(sm)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, latestKey(sm.VehicleID), b, liveTTL).Err()
}

func (s *RedisPGStore) latestFromSnapshots(ctx context.Context, vehicleID types.ID) (*Sample, error) {
	row := s.db.QueryRow(ctx, `
		SELECT vehicle_id, lat, lng, recorded_at
		FROM location_snapshots
		WHERE vehicle_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`, string(vehicleID),
	)
	var sm Sample
	err := row.Scan(&sm.VehicleID, &sm.Position.Lat, &sm.Position.Lng, &sm.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sm, nil
}
