package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// Migrate applies all pending migrations for db's dialect and returns the
// resulting schema version. No connection is held once it returns.
func Migrate(ctx context.Context, db *DB) (uint, error) {
	var (
		driver database.Driver
		err    error
	)
	switch db.dialect {
	case DialectPostgres:
		// the driver pins one connection; closing the driver would close db too
		conn, connErr := db.Conn(ctx)
		if connErr != nil {
			return 0, fmt.Errorf("migrate: acquire connection: %w", connErr)
		}
		defer conn.Close()
		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	default:
		return 0, fmt.Errorf("migrate: unsupported dialect %q", db.dialect)
	}
	if err != nil {
		return 0, fmt.Errorf("migrate: create %s driver: %w", db.dialect, err)
	}

	source, err := iofs.New(migrationFS, "migrations/"+string(db.dialect))
	if err != nil {
		return 0, fmt.Errorf("migrate: create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(db.dialect), driver)
	if err != nil {
		return 0, fmt.Errorf("migrate: create instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate: up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("migrate: version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migrate: schema version %d is dirty", version)
	}
	return version, nil
}
