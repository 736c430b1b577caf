package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS projects (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'draft',
					total_rows INTEGER NOT NULL DEFAULT 0,
					mapped_rows INTEGER NOT NULL DEFAULT 0,
					total_gwp REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS project_rows (
					project_id TEXT NOT NULL,
					row_id INTEGER NOT NULL,
					category TEXT NOT NULL,
					construction REAL NOT NULL DEFAULT 0,
					operation REAL NOT NULL DEFAULT 0,
					end_of_life REAL NOT NULL DEFAULT 0,
					is_summary INTEGER NOT NULL DEFAULT 0,
					excluded INTEGER NOT NULL DEFAULT 0,
					suggested_scenario TEXT NOT NULL DEFAULT '',
					suggested_discipline TEXT NOT NULL DEFAULT '',
					suggested_mmi TEXT NOT NULL DEFAULT '',
					mapped_scenario TEXT NOT NULL DEFAULT '',
					mapped_discipline TEXT NOT NULL DEFAULT '',
					mapped_mmi TEXT NOT NULL DEFAULT '',
					PRIMARY KEY (project_id, row_id),
					FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add per-row weighting",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE project_rows ADD COLUMN weighting REAL NOT NULL DEFAULT 100`,
			)
		},
	},
	{
		Version:     3,
		Description: "Track source file and index project listing",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE projects ADD COLUMN source_file TEXT NOT NULL DEFAULT ''`,
				`CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at)`,
				`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the database's PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the database's version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
