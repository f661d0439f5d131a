package repository

import (
	"context"

	"learnstudio/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
)

// PostgresStore backs every repository with one shared pgx pool
type PostgresStore struct {
	pool     *pgxpool.Pool
	users    UserRepository
	resets   ResetRepository
	progress ProgressRepository
}

// NewPostgresStore wires the Postgres repositories onto pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool:     pool,
		users:    NewUserRepository(pool),
		resets:   NewResetRepository(pool),
		progress: NewProgressRepository(pool),
	}
}

func (s *PostgresStore) Users() UserRepository         { return s.users }
func (s *PostgresStore) Resets() ResetRepository       { return s.resets }
func (s *PostgresStore) Progress() ProgressRepository { return s.progress }

// Migrate applies the embedded goose migrations
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return oops.Code("MIGRATE_FAILED").Wrap(err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return oops.Code("MIGRATE_FAILED").Wrap(err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}
