// Package testutil holds helpers shared by unit and integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns the value of key, skipping the test when it is unset.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		t.Skipf("set %s to run this test", key)
	}
	return v
}

// dbLockKey is shared by every package that touches the integration database.
const dbLockKey int64 = 0x466f6f64

// AcquireDBLock holds a session advisory lock on a dedicated connection until
// the returned func is called, so packages tested in parallel do not clobber
// each other's rows.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", dbLockKey); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}

	return func() error {
		_, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", dbLockKey)
		conn.Release()
		if err != nil {
			return fmt.Errorf("advisory unlock: %w", err)
		}
		return nil
	}, nil
}

// TruncateTables empties every application table. Migrations must already be applied.
func TruncateTables(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE donations, users, items")
	return err
}

// FlushRedis clears the selected Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}
