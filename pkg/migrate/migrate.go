// Package migrate applies versioned SQL migrations to a database/sql handle.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB represents either a database connection or transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MigrationProvider defines how migrations are loaded and how the applied
// version is tracked
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	CreateMigrationTable(ctx context.Context, db DB) error
	GetCurrentVersion(ctx context.Context, db DB) (int, error)
	SetVersion(ctx context.Context, db DB, version int) error
}

// Migrator handles the execution of migrations
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
	logger   *zap.SugaredLogger
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *sql.DB, provider MigrationProvider, logger *zap.SugaredLogger) *Migrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Migrator{
		db:       db,
		provider: provider,
		logger:   logger,
	}
}

// MigrateUp runs all pending migrations up to the latest version
func (m *Migrator) MigrateUp(ctx context.Context) error {
	return m.MigrateTo(ctx, -1)
}

// MigrateTo runs migrations up or down to reach a specific version; -1 is
// the latest
func (m *Migrator) MigrateTo(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return err
	}

	migrations, err := m.sorted()
	if err != nil {
		return err
	}

	if targetVersion == -1 {
		targetVersion = 0
		if len(migrations) > 0 {
			targetVersion = migrations[len(migrations)-1].Version
		}
	}

	if targetVersion < currentVersion {
		return m.migrateDown(ctx, migrations, currentVersion, targetVersion)
	}

	for _, migration := range migrations {
		if migration.Version > currentVersion && migration.Version <= targetVersion {
			if err := m.execute(ctx, migration, true); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
			}
		}
	}
	return nil
}

func (m *Migrator) migrateDown(ctx context.Context, migrations []Migration, currentVersion, targetVersion int) error {
	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if migration.Version > targetVersion && migration.Version <= currentVersion {
			if err := m.execute(ctx, migration, false); err != nil {
				return fmt.Errorf("failed to roll back migration %d: %w", migration.Version, err)
			}
		}
	}
	return nil
}

// GetCurrentVersion returns the highest applied migration version
func (m *Migrator) GetCurrentVersion(ctx context.Context) (int, error) {
	if err := m.provider.CreateMigrationTable(ctx, m.db); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}
	return m.provider.GetCurrentVersion(ctx, m.db)
}

// GetPendingMigrations returns migrations that haven't been applied yet
func (m *Migrator) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := m.sorted()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, migration := range migrations {
		if migration.Version > currentVersion {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

func (m *Migrator) sorted() ([]Migration, error) {
	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// execute runs one migration and records the resulting version in the
// same transaction
func (m *Migrator) execute(ctx context.Context, migration Migration, up bool) error {
	direction, query, newVersion := "up", migration.Up, migration.Version
	if !up {
		direction, query, newVersion = "down", migration.Down, migration.Version-1
	}

	if query == "" {
		return fmt.Errorf("migration %d has no %s SQL", migration.Version, direction)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if err := m.provider.SetVersion(ctx, tx, newVersion); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	m.logger.Infof("applied migration %d (%s) %s", migration.Version, migration.Name, direction)
	return nil
}
