package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/finance-api/internal/config"
	"github.com/phrazzld/finance-api/internal/platform/postgres"
)

// runMigrations applies a goose command to the configured database.
// Migrations only exist for the postgres driver.
func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations require the %q driver, configured driver is %q",
			config.DriverPostgres, cfg.Database.Driver)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logger.Info("running migrations", slog.String("command", command))
	if err := postgres.RunMigrations(ctx, db, command); err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}
	logger.Info("migrations finished", slog.String("command", command))
	return nil
}
