package main

import (
	"context"

	"learnstudio/internal/config"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and indexes",
		Long:  `Apply the embedded Postgres migrations, or create the Mongo indexes, for the configured store driver.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Println("Connecting to store...")
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return oops.Code("STORE_CONNECT_FAILED").With("driver", cfg.Store.Driver).Wrap(err)
	}
	defer store.Close(context.Background())

	cmd.Println("Running migrations...")
	if err := store.Migrate(ctx); err != nil {
		return oops.Code("MIGRATION_FAILED").With("driver", cfg.Store.Driver).Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
