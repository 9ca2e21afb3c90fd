// Package main runs the finance API server.
//
// With -migrate the binary applies a goose command to the configured
// database and exits instead of serving.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/phrazzld/finance-api/internal/config"
	"github.com/phrazzld/finance-api/internal/platform/logger"
)

func main() {
	migrate := flag.String("migrate", "", "run a migration command (up|down|status|version|reset) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrate); err != nil {
		log.Fatalf("finance-api: %v", err)
	}
}

func run(ctx context.Context, migrateCmd string) error {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, l, err := initializeApp()
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		return runMigrations(ctx, cfg, l, migrateCmd)
	}

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.startHTTPServer(ctx, app.setupRouter())
}

// initializeApp loads configuration and sets up the process-wide logger.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver))

	return cfg, l, nil
}
