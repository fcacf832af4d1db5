// README: Dual-store tests; need ROAM_TEST_DSN and ROAM_TEST_REDIS_ADDR.
package location

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func setupRedisPGStore(t *testing.T) *RedisPGStore {
	t.Helper()

	dsn := os.Getenv("ROAM_TEST_DSN")
	redisAddr := os.Getenv("ROAM_TEST_REDIS_ADDR")
	if dsn == "" || redisAddr == "" {
		t.Skip("ROAM_TEST_DSN or ROAM_TEST_REDIS_ADDR not set; skipping dual-store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	t.Cleanup(func() { _ = rdb.Close() })

	if _, err := db.Exec(ctx, "TRUNCATE TABLE location_snapshots"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewRedisPGStore(db, rdb)
}

// A restart or TTL eviction empties the Redis list; history must still come
// back from the durable snapshots.
func TestReadHistorySurvivesColdCache(t *testing.T) {
	ctx := context.Background()
	store := setupRedisPGStore(t)

	for minute := 1; minute <= 3; minute++ {
		if err := store.AppendSnapshot(ctx, sample("v-cold", minute)); err != nil {
			t.Fatalf("append snapshot t%d: %v", minute, err)
		}
	}
	if err := store.redis.Del(ctx, historyKey("v-cold"), latestKey("v-cold")).Err(); err != nil {
		t.Fatalf("evict live keys: %v", err)
	}

	got, err := store.ReadHistory(ctx, "v-cold", 10)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 samples from snapshots, got %d", len(got))
	}
	// most recent first
	if !got[0].RecordedAt.Equal(ts(3)) || !got[2].RecordedAt.Equal(ts(1)) {
		t.Fatalf("snapshot history out of order: %v", got)
	}

	latest, err := store.GetLatest(ctx, "v-cold")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest == nil || !latest.RecordedAt.Equal(ts(3)) {
		t.Fatalf("latest should come from snapshots, got %v", latest)
	}
}
