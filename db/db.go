// Package db owns the PostgreSQL schema of the sqlboiler store.
package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/friendsofgo/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

// Migrations holds the schema migrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return conn, nil
}

// NewMigrate returns a migrator over the embedded migrations.
func NewMigrate(databaseURL string) (*migrate.Migrate, error) {
	d, err := iofs.New(Migrations, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "load migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create migrate instance")
	}
	return m, nil
}

// Up applies every pending migration. An up to date schema is not an error.
func Up(databaseURL string) error {
	m, err := NewMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate up")
	}
	return nil
}

// Down rolls back steps migrations.
func Down(databaseURL string, steps int) error {
	m, err := NewMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-steps); err != nil {
		return errors.Wrap(err, "migrate down")
	}
	return nil
}

// Version reports the applied schema version. Zero means nothing is applied.
func Version(databaseURL string) (version uint, dirty bool, err error) {
	m, err := NewMigrate(databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "read schema version")
	}
	return version, dirty, nil
}
