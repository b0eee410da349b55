package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed payment/*.sql inventory/*.sql
var files embed.FS

// Migration sets, one per service database.
const (
	Payment   = "payment"
	Inventory = "inventory"
)

// Up applies every pending migration of the named set against dsn.
func Up(dsn, set string) error {
	src, err := iofs.New(files, set)
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", set, err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: set + "_schema_migrations",
	})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run %s migrations: %w", set, err)
	}
	return nil
}
