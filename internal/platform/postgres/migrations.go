package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// MigrationsTable is the goose version table.
const MigrationsTable = "schema_migrations"

// Migrations holds the SQL migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Supported migration commands.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
}

// ConfigureGoose points goose at the embedded migrations.
func ConfigureGoose() error {
	goose.SetBaseFS(Migrations)
	goose.SetTableName(MigrationsTable)
	return goose.SetDialect("postgres")
}

// RunMigrations runs a goose command (up, down, status, version, reset)
// against db using the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB, command string) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unknown migration command %q", command)
	}

	if err := ConfigureGoose(); err != nil {
		return fmt.Errorf("failed to configure goose: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "migrations"); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
