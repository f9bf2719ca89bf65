// Package migrations embeds the SQL schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// New opens a migrator for the database at dsn. The caller must Close it.
func New(dsn string) (*migrate.Migrate, error) {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("load migration files: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// Run executes action (up, down, drop or version) and returns the resulting
// schema version.
func Run(m *migrate.Migrate, action string) (version uint, dirty bool, err error) {
	switch action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "drop":
		if err := m.Drop(); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	case "version":
	default:
		return 0, false, fmt.Errorf("unsupported action %q", action)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, false, err
	}

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
