package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/staywell/staywell/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 424242

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties every application table. The schema must already be
// migrated.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE bookings, places, users CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// UniqueEmail generates a unique address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@example.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, name string) *model.User {
	t.Helper()
	return &model.User{
		ID:           UniqueID("user"),
		Name:         name,
		Email:        UniqueEmail(name),
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestPlace creates a listing owned by ownerID.
func NewTestPlace(t testing.TB, ownerID string) *model.Place {
	t.Helper()
	return &model.Place{
		ID:          UniqueID("place"),
		OwnerID:     ownerID,
		Title:       "Cabin by the lake",
		Address:     "1 Shore Rd",
		Photos:      []string{"photo1.jpg"},
		Description: "Quiet and cosy",
		Perks:       []string{"wifi", "parking"},
		ExtraInfo:   "No parties",
		CheckIn:     14,
		CheckOut:    11,
		MaxGuests:   4,
		Price:       120,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}
