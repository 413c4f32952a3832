package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultMigrationTable tracks applied versions when no table is named
const DefaultMigrationTable = "schema_migrations"

// migration files are named 001_create_runs.up.sql / 001_create_runs.down.sql
var migrationFile = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// FSProvider loads SQLite migrations from a filesystem, usually an
// embed.FS compiled into the binary
type FSProvider struct {
	fsys           fs.FS
	migrationTable string
}

// NewFSProvider creates a provider reading the top level of fsys
func NewFSProvider(fsys fs.FS, migrationTable string) *FSProvider {
	if migrationTable == "" {
		migrationTable = DefaultMigrationTable
	}
	return &FSProvider{
		fsys:           fsys,
		migrationTable: migrationTable,
	}
}

// GetMigrations loads all migrations, ordered by version
func (p *FSProvider) GetMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(p.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationFile.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in file %s: %w", entry.Name(), err)
		}

		content, err := fs.ReadFile(p.fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: strings.ReplaceAll(matches[2], "_", " ")}
			byVersion[version] = m
		}
		if matches[3] == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// CreateMigrationTable creates the migration tracking table
func (p *FSProvider) CreateMigrationTable(ctx context.Context, db DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`, p.migrationTable)

	_, err := db.ExecContext(ctx, query)
	return err
}

// GetCurrentVersion returns the highest applied migration version
func (p *FSProvider) GetCurrentVersion(ctx context.Context, db DB) (int, error) {
	query := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", p.migrationTable)

	var version int
	if err := db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// SetVersion records version as the current one; versions above it are
// forgotten
func (p *FSProvider) SetVersion(ctx context.Context, db DB, version int) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE version > ?", p.migrationTable), version); err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	if version == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)", p.migrationTable)
	if _, err := db.ExecContext(ctx, query, version); err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	return nil
}
