package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
	"github.com/EdvardGK/reduzer-summary/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(MemoryPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// fakeClock makes updated_at strictly increasing within a test.
func fakeClock(t *testing.T) {
	t.Helper()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	orig := now
	now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	t.Cleanup(func() { now = orig })
}

func lineItem(rowID int, category string, s model.Scenario, d model.Discipline, m model.MmiCode, construction float64) model.LineItem {
	c := model.NewClassification(s, d, m)
	item := model.LineItem{
		RowID:        rowID,
		Category:     category,
		Construction: construction,
		Suggested:    c,
		Mapped:       c,
		Weighting:    model.DefaultWeighting,
	}
	item.Recompute()
	return item
}

func fixtureItems() []model.LineItem {
	items := []model.LineItem{
		lineItem(0, "Scenario A - RIV - New", model.ScenarioA, model.DisciplineRIV, model.MmiNew, 1000),
		lineItem(1, "Scenario C - RIV - New", model.ScenarioC, model.DisciplineRIV, model.MmiNew, 800),
		lineItem(2, "Scenario C - RIV", model.ScenarioC, model.DisciplineRIV, "", 100),
		lineItem(3, "S8 - RAMBELL", "", "", "", 5000),
	}
	items[1].Operation = 20
	items[1].SetWeighting(50)
	items[3].IsSummary = true
	items[3].Excluded = true
	return items
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	require.NoError(t, store.Migrate(ctx), "migrating twice is a no-op")

	var n int
	require.NoError(t, store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_projects_updated_at'
	`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSaveAndLoadProject(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	items := fixtureItems()

	project, err := store.SaveProject(ctx, service.NewProject{
		Name:        "  Kontorbygg  ",
		Description: "Renovation study",
		SourceFile:  "kontorbygg.xlsx",
		Items:       items,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "Kontorbygg", project.Name)
	assert.Equal(t, model.ProjectStatusDraft, project.Status)
	assert.Equal(t, 4, project.TotalRows)
	assert.Equal(t, 2, project.MappedRows)
	assert.InDelta(t, 1000+410, project.TotalGWP, 1e-9)

	loaded, rows, err := store.LoadProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, loaded.ID)
	assert.Equal(t, "kontorbygg.xlsx", loaded.SourceFile)
	assert.Equal(t, "Renovation study", loaded.Description)
	assert.Equal(t, items, rows, "rows come back identical, derived totals included")
}

func TestSaveProject_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	nan := fixtureItems()
	nan[0].Construction = math.NaN()

	dup := fixtureItems()
	dup[1].RowID = 0

	badCode := fixtureItems()
	badCode[0].Mapped.Scenario = "Q"

	badPartial := fixtureItems()
	badPartial[2].Suggested.Discipline = "VVS"

	tests := []struct {
		name  string
		input service.NewProject
		errIs error
	}{
		{"empty name", service.NewProject{Name: " ", Items: fixtureItems()}, ErrEmptyString},
		{"nan amount", service.NewProject{Name: "x", Items: nan}, ErrInvalidItem},
		{"duplicate row id", service.NewProject{Name: "x", Items: dup}, ErrDuplicateRowID},
		{"unknown code", service.NewProject{Name: "x", Items: badCode}, ErrInvalidItem},
		{"unknown code in complete mapping", service.NewProject{Name: "x", Items: badCode}, pattern.ErrInvalidCode},
		{"unknown code in partial mapping", service.NewProject{Name: "x", Items: badPartial}, ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveProject(ctx, tt.input)
			assert.ErrorIs(t, err, tt.errIs)
		})
	}

	projects, err := store.ListProjects(ctx, service.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, projects, "nothing is written on validation failure")
}

func TestLoadProject_DerivesTotals(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	items := fixtureItems()
	items[0].SetPhases(600, 300, 100)
	items[0].SetWeighting(80)

	project, err := store.SaveProject(ctx, service.NewProject{Name: "Totals", Items: items})
	require.NoError(t, err)

	_, rows, err := store.LoadProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, rows, len(items))
	assert.InDelta(t, 1000.0, rows[0].BaseTotal, 1e-9)
	assert.InDelta(t, 800.0, rows[0].WeightedTotal, 1e-9)
	assert.InDelta(t, 820.0, rows[1].BaseTotal, 1e-9)
	assert.InDelta(t, 410.0, rows[1].WeightedTotal, 1e-9)
}

func TestGetProject_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, _, err = store.LoadProject(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListProjects(t *testing.T) {
	fakeClock(t)
	store := createTestStorage(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		p, err := store.SaveProject(ctx, service.NewProject{Name: name, Items: fixtureItems()})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	reviewed := model.ProjectStatusReviewed
	require.NoError(t, store.UpdateProjectMetadata(ctx, ids[0], model.ProjectMetadataUpdate{Status: &reviewed}))

	all, err := store.ListProjects(ctx, service.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Name, "most recently updated first")
	assert.Equal(t, "third", all[1].Name)

	page, err := store.ListProjects(ctx, service.ProjectFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "third", page[0].Name)

	filtered, err := store.ListProjects(ctx, service.ProjectFilter{Status: model.ProjectStatusReviewed})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[0], filtered[0].ID)

	_, err = store.ListProjects(ctx, service.ProjectFilter{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateProjectRow(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	project, err := store.SaveProject(ctx, service.NewProject{Name: "p", Items: fixtureItems()})
	require.NoError(t, err)

	_, rows, err := store.LoadProject(ctx, project.ID)
	require.NoError(t, err)

	edited := rows[2]
	edited.Mapped = model.NewClassification(model.ScenarioC, model.DisciplineRIV, model.MmiReused)
	edited.SetWeighting(40)
	require.NoError(t, store.UpdateProjectRow(ctx, project.ID, edited))

	updated, rows, err := store.LoadProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MmiReused, rows[2].Mapped.MmiCode)
	assert.Equal(t, "GJEN", rows[2].Mapped.MmiLabel)
	assert.Empty(t, rows[2].Suggested.MmiCode, "suggestion is untouched")
	assert.InDelta(t, 40, rows[2].WeightedTotal, 1e-9)
	assert.Equal(t, 3, updated.MappedRows)
	assert.InDelta(t, 1450, updated.TotalGWP, 1e-9)

	excluded := rows[0]
	excluded.Excluded = true
	require.NoError(t, store.UpdateProjectRows(ctx, project.ID, []model.LineItem{excluded}))
	updated, err = store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MappedRows)
	assert.InDelta(t, 450, updated.TotalGWP, 1e-9)

	missing := rows[0]
	missing.RowID = 99
	assert.ErrorIs(t, store.UpdateProjectRow(ctx, project.ID, missing), common.ErrNotFound)
	assert.ErrorIs(t, store.UpdateProjectRow(ctx, "nope", rows[0]), common.ErrNotFound)
}

func TestUpdateProjectMetadata(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	project, err := store.SaveProject(ctx, service.NewProject{Name: "old", Items: fixtureItems()})
	require.NoError(t, err)

	name, desc := "new name", "with notes"
	finalized := model.ProjectStatusFinalized
	require.NoError(t, store.UpdateProjectMetadata(ctx, project.ID, model.ProjectMetadataUpdate{
		Name: &name, Description: &desc, Status: &finalized,
	}))

	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", got.Name)
	assert.Equal(t, "with notes", got.Description)
	assert.Equal(t, model.ProjectStatusFinalized, got.Status)

	require.NoError(t, store.UpdateProjectMetadata(ctx, project.ID, model.ProjectMetadataUpdate{}))

	bad := model.ProjectStatus("archived")
	assert.ErrorIs(t, store.UpdateProjectMetadata(ctx, project.ID, model.ProjectMetadataUpdate{Status: &bad}), ErrInvalidStatus)

	empty := ""
	assert.ErrorIs(t, store.UpdateProjectMetadata(ctx, project.ID, model.ProjectMetadataUpdate{Name: &empty}), ErrEmptyString)
	assert.ErrorIs(t, store.UpdateProjectMetadata(ctx, "nope", model.ProjectMetadataUpdate{Name: &name}), common.ErrNotFound)
}

func TestRefreshProjectStatistics(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	project, err := store.SaveProject(ctx, service.NewProject{Name: "p", Items: fixtureItems()})
	require.NoError(t, err)

	_, err = store.db.Exec(`UPDATE projects SET mapped_rows = 0, total_gwp = 0 WHERE id = ?`, project.ID)
	require.NoError(t, err)

	require.NoError(t, store.RefreshProjectStatistics(ctx, project.ID))
	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.MappedRows, got.MappedRows)
	assert.InDelta(t, project.TotalGWP, got.TotalGWP, 1e-9)

	assert.ErrorIs(t, store.RefreshProjectStatistics(ctx, "nope"), common.ErrNotFound)
}

func TestDeleteProject(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	project, err := store.SaveProject(ctx, service.NewProject{Name: "p", Items: fixtureItems()})
	require.NoError(t, err)

	require.NoError(t, store.DeleteProject(ctx, project.ID))

	var n int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM project_rows`).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, store.DeleteProject(ctx, project.ID), common.ErrNotFound)
}

func TestCheckpoints(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reduzer.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	project, err := store.SaveProject(ctx, service.NewProject{Name: "keep me", Items: fixtureItems()})
	require.NoError(t, err)

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	info, err := cm.Create(ctx, "before-delete", "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Projects)
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)

	_, err = cm.Create(ctx, "before-delete", "again")
	assert.ErrorIs(t, err, ErrCheckpointExists)
	_, err = cm.Create(ctx, "../escape", "")
	assert.ErrorIs(t, err, ErrInvalidCheckpointID)

	require.NoError(t, store.DeleteProject(ctx, project.ID))

	require.NoError(t, cm.Restore(ctx, "before-delete"))

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Name)

	assert.ErrorIs(t, cm.Restore(ctx, "missing"), ErrCheckpointNotFound)
}

func TestAutoCheckpointPruning(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "reduzer.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(ctx))

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "manual", "")
	require.NoError(t, err)
	for i := 0; i < MaxAutoCheckpoints+2; i++ {
		_, err := cm.AutoCheckpoint(ctx, "delete")
		require.NoError(t, err)
	}

	list, err := cm.List(ctx)
	require.NoError(t, err)

	auto := 0
	for _, cp := range list {
		if cp.IsAuto {
			auto++
		}
	}
	assert.Equal(t, MaxAutoCheckpoints, auto)
	assert.Len(t, list, MaxAutoCheckpoints+1, "manual checkpoints are never pruned")

	require.NoError(t, cm.Delete(ctx, "manual"))
	assert.ErrorIs(t, cm.Delete(ctx, "manual"), ErrCheckpointNotFound)
}

func TestInMemoryCheckpoint(t *testing.T) {
	_, err := createTestStorage(t).NewCheckpointManager()
	assert.ErrorIs(t, err, ErrInMemoryCheckpoint)
}
