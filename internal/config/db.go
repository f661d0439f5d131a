package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectAttempts = 5
	connectInterval = 5 * time.Second
)

func connectBackoff() retry.Backoff {
	return retry.WithMaxRetries(connectAttempts-1, retry.NewConstant(connectInterval))
}

// ConnectDB establishes a connection to the PostgreSQL database, retrying while it comes up
func ConnectDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}

	attempt := 0
	err = retry.Do(ctx, connectBackoff(), func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("failed to connect to database", "attempt", attempt, "max_attempts", connectAttempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_UNREACHABLE").With("attempts", attempt).Wrap(err)
	}

	slog.Info("connected to postgres")
	return pool, nil
}

// ConnectMongo opens a MongoDB client and waits until the primary answers
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, oops.Code("MONGO_CONFIG_INVALID").Wrap(err)
	}

	attempt := 0
	err = retry.Do(ctx, connectBackoff(), func(ctx context.Context) error {
		attempt++
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			slog.Warn("failed to connect to mongo", "attempt", attempt, "max_attempts", connectAttempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, oops.Code("MONGO_UNREACHABLE").With("attempts", attempt).Wrap(err)
	}

	slog.Info("connected to mongo")
	return client, nil
}
