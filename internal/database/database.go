package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

// Database keeps the configuration store areas in sqlite.
type Database struct {
	db  *sql.DB
	log *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// New opens the sqlite file at dbPath and applies pending migrations.
func New(ctx context.Context, dbPath string, log *slog.Logger) (*Database, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	d := &Database{db: conn, log: log}

	if err = d.migrateUp(ctx, dbPath); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close DB file: %w", closeErr))
		}

		return nil, err
	}

	return d, nil
}

func (d *Database) migrateUp(ctx context.Context, dbPath string) error {
	target, err := sqlite3.WithInstance(d.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create DB instance: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create source instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", target)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}

	fields := []any{"dbPath", dbPath}

	switch version, dirty, versionErr := m.Version(); {
	case versionErr == nil:
		fields = append(fields, "schemaVersion", version, "dirty", dirty)
	case !errors.Is(versionErr, migrate.ErrNilVersion):
		d.log.WarnContext(ctx, "Failed to fetch schema version",
			"error", versionErr,
			"dbPath", dbPath)
	}

	if upErr != nil {
		d.log.InfoContext(ctx, "Storage schema is up to date", fields...)
	} else {
		d.log.InfoContext(ctx, "Storage schema is migrated", fields...)
	}

	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}
