package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:blankimports // File source driver

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
)

// DefaultMigrationsPath is where the posts schema lives relative to the binary.
const DefaultMigrationsPath = "migrations"

// Migrator applies the posts schema.
type Migrator struct {
	m    *migrate.Migrate
	path string
	log  infralogger.Logger
}

// NewMigrator binds the migrations in dir to an open database.
func NewMigrator(db *sql.DB, dir string, log infralogger.Logger) (*Migrator, error) {
	if log == nil {
		log = infralogger.NewNop()
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	source := SourceURL(dir)
	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &Migrator{m: m, path: source, log: log}, nil
}

// SourceURL turns a migrations directory into a file:// source URL.
func SourceURL(dir string) string {
	if dir == "" {
		dir = DefaultMigrationsPath
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return "file://" + filepath.ToSlash(dir)
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("No pending migrations", infralogger.String("migrations_path", m.path))
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	m.log.Info("Migrations applied", infralogger.String("migrations_path", m.path))
	return nil
}

// Down rolls back steps migrations, at least one.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}
	if err := m.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("No migrations to roll back", infralogger.String("migrations_path", m.path))
			return nil
		}
		return fmt.Errorf("rollback migrations: %w", err)
	}
	m.log.Info("Migrations rolled back", infralogger.Int("steps", steps))
	return nil
}

// Version reports the applied version. A fresh database reports 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get migration version: %w", err)
	}
	return version, dirty, nil
}

// Close releases the source and database handles.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
