// Package migrations wraps golang-migrate with the options the server
// bootstraps from config.
package migrations

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"

	"ventar/internal/logger"
)

type Options struct {
	// MigrationsDir is the directory containing migration files.
	MigrationsDir string
	// AutoMigrate runs pending migrations on startup.
	AutoMigrate bool
}

func DefaultOptions() Options {
	return Options{
		MigrationsDir: "./migrations",
		AutoMigrate:   true,
	}
}

// Runner applies SQL migrations against the bun-managed connection.
type Runner struct {
	bunDB    *bun.DB
	options  Options
	logger   *logger.Logger
	migrator *migrate.Migrate
}

func NewRunner(bunDB *bun.DB, opts Options, log *logger.Logger) *Runner {
	return &Runner{bunDB: bunDB, options: opts, logger: log}
}

func (r *Runner) initialize() error {
	driver, err := postgres.WithInstance(r.bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	if _, err := os.Stat(r.options.MigrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s", r.options.MigrationsDir)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.options.MigrationsDir),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	r.migrator = migrator
	return nil
}

// Up runs all pending migrations. A dirty version is forced clean first so a
// crashed deploy doesn't wedge the next one.
func (r *Runner) Up() error {
	if r.migrator == nil {
		if err := r.initialize(); err != nil {
			return err
		}
	}

	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		r.logger.Warn("DATABASE", fmt.Sprintf("Detected dirty migration at version %d, forcing clean", version))
		if err := r.migrator.Force(int(version)); err != nil {
			return fmt.Errorf("failed to fix dirty migration: %w", err)
		}
	}

	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	if version, _, err := r.migrator.Version(); err == nil {
		r.logger.Info("DATABASE", fmt.Sprintf("Schema at version %d", version))
	}
	return nil
}

// Down rolls back all migrations.
func (r *Runner) Down() error {
	if r.migrator == nil {
		if err := r.initialize(); err != nil {
			return err
		}
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}
