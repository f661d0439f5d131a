package main

import (
	"context"

	"learnstudio/internal/config"
	"learnstudio/internal/repository"

	"github.com/samber/oops"
)

// openStore connects the configured driver. Connection failures are returned so startup aborts.
func openStore(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := config.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(pool), nil
	case config.DriverMongo:
		client, err := config.ConnectMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		return repository.NewMongoStore(client, cfg.DBName), nil
	case config.DriverMemory:
		return repository.NewMemoryStore(), nil
	}
	return nil, oops.Code("CONFIG_INVALID").With("driver", cfg.Driver).Errorf("unknown store driver")
}
