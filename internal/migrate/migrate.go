// Package migrate applies the embedded SQL schema of the Notion cache.
package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql migrations/db-specific/*.sql
var migrationsFS embed.FS

// extras are applied after the versioned migrations on every run, so they
// must be idempotent.
var extras = map[string]string{
	"postgres": "migrations/db-specific/postgres_extras.sql",
	"sqlite":   "migrations/db-specific/sqlite_extras.sql",
}

// RunMigrations applies all pending migrations for the given database driver.
// Supported drivers are "postgres" and "sqlite".
func RunMigrations(db *sql.DB, driver string) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := applyDatabaseSpecificMigrations(db, driver); err != nil {
		return fmt.Errorf("database-specific migrations failed: %w", err)
	}

	return nil
}

// GetMigrationVersion returns the current migration version.
func GetMigrationVersion(db *sql.DB, driver string) (version uint, dirty bool, err error) {
	m, err := newMigrate(db, driver)
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, error) {
	var (
		databaseDriver database.Driver
		err            error
	)
	switch driver {
	case "postgres":
		databaseDriver, err = postgres.WithInstance(db, &postgres.Config{})
	case "sqlite":
		databaseDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", driver, err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, driver, databaseDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func applyDatabaseSpecificMigrations(db *sql.DB, driver string) error {
	name, ok := extras[driver]
	if !ok {
		return nil
	}

	sqlBytes, err := migrationsFS.ReadFile(name)
	if err != nil {
		return err
	}

	for _, stmt := range splitStatements(string(sqlBytes)) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

// splitStatements splits a script on semicolons and drops comment lines. The
// extras scripts contain no string literals.
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
