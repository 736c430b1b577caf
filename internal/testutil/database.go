// Package testutil provides test fixtures for line items and project storage.
package testutil

import (
	"context"
	"testing"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/service"
	"github.com/EdvardGK/reduzer-summary/internal/storage"
)

// TestDB is a migrated in-memory project store.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	id := db.SeedProject("Kontorbygg", testutil.EndToEndItems())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedProject saves items as a new project and returns its ID.
func (db *TestDB) SeedProject(name string, items []model.LineItem) string {
	db.t.Helper()

	project, err := db.Storage.SaveProject(context.Background(), service.NewProject{
		Name:  name,
		Items: items,
	})
	if err != nil {
		db.t.Fatalf("failed to seed project %q: %v", name, err)
	}
	return project.ID
}
