//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository/storetest"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/testutil"
)

func TestIntegrationPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	if err := repository.Migrate(dbURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	storetest.Run(t, func(t *testing.T) repository.Store {
		if err := testutil.TruncateTables(ctx, repo.Pool()); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return repo
	})
}
