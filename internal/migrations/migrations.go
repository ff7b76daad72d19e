// Package migrations embeds the pipeline's schema and exposes it to
// golang-migrate, the same up/down/version/force vocabulary
// riskibarqy-fantasy-league's standalone migration binary drives against a
// file-based source.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed sql/*.sql
var files embed.FS

// New opens dbURL with lib/pq and wraps it in a migrate.Migrate driven by
// the embedded sql/ directory. Callers must call Close when done.
func New(dbURL string) (*migrate.Migrate, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("migrations: open database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: postgres driver: %w", err)
	}

	source, err := iofs.New(files, "sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: new migrator: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. It treats migrate.ErrNoChange as
// success, matching the CLI convention every golang-migrate caller in the
// retrieval pack follows.
func Up(dbURL string) error {
	m, err := New(dbURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(dbURL string) error {
	m, err := New(dbURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}

// Version reports the schema's current migration version. ok is false when
// no migration has ever been applied.
func Version(dbURL string) (version uint, dirty bool, ok bool, err error) {
	m, err := New(dbURL)
	if err != nil {
		return 0, false, false, err
	}
	defer closeMigrator(m)

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("migrations: version: %w", err)
	}
	return version, dirty, true, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		fmt.Println("migrations: close source:", srcErr)
	}
	if dbErr != nil {
		fmt.Println("migrations: close database:", dbErr)
	}
}
