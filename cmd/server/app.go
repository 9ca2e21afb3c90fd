package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/finance-api/internal/config"
	"github.com/phrazzld/finance-api/internal/platform/memory"
	"github.com/phrazzld/finance-api/internal/platform/postgres"
	"github.com/phrazzld/finance-api/internal/service"
	"github.com/phrazzld/finance-api/internal/service/auth"
	"github.com/phrazzld/finance-api/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory driver
	db *sql.DB

	userStore   store.UserStore
	recordStore store.RecordStore

	credentialService service.CredentialService
	recordService     service.RecordService
}

// newApplication wires stores and services for the configured driver.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := memory.New(cfg.Auth.BcryptCost)
		app.userStore = mem.Users()
		app.recordStore = mem.Records()
		logger.Warn("using in-memory storage, data is lost on restart")

	case config.DriverPostgres:
		db, err := setupAppDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
		app.recordStore = postgres.NewPostgresRecordStore(db, logger)

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	app.credentialService = service.NewCredentialService(
		app.userStore,
		tokens,
		auth.NewBcryptVerifier(),
		cfg.Auth.BcryptCost,
		logger,
	)
	app.recordService = service.NewRecordService(app.recordStore, app.db, logger)

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
	app.db = nil
}
