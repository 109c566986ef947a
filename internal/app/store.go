// Package app holds the start-up wiring shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/config"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository/memstore"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository/mongostore"
)

// OpenStore connects the store selected by STORE_DRIVER and prepares its
// schema: migrations for Postgres (when AUTO_MIGRATE is set), indexes for Mongo.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if cfg.AutoMigrate {
			if err := repository.Migrate(cfg.DatabaseURL); err != nil {
				return nil, err
			}
		}
		repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, err
		}
		return repo, nil

	case config.DriverMongo:
		store, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil

	case config.DriverMemory:
		return memstore.New(), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
