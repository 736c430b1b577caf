package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/service"
	"github.com/google/uuid"
)

// DefaultProjectLimit caps ListProjects when no limit is given.
const DefaultProjectLimit = 50

var now = func() time.Time { return time.Now().UTC() }

type projectStats struct {
	totalRows  int
	mappedRows int
	totalGWP   float64
}

// statsFor counts rows, active fully mapped rows, and sums the weighted
// total of rows that take part in aggregation.
func statsFor(items []model.LineItem) projectStats {
	st := projectStats{totalRows: len(items)}
	for _, item := range items {
		if item.Aggregatable() {
			st.mappedRows++
			st.totalGWP += item.WeightedTotal
		}
	}
	return st
}

// SaveProject stores items under a new project and returns its metadata.
func (s *SQLiteStorage) SaveProject(ctx context.Context, p service.NewProject) (*model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(p.Name, "name"); err != nil {
		return nil, err
	}
	if err := validateItems(p.Items); err != nil {
		return nil, err
	}

	ts := now()
	st := statsFor(p.Items)
	project := &model.Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		SourceFile:  p.SourceFile,
		Status:      model.ProjectStatusDraft,
		TotalRows:   st.totalRows,
		MappedRows:  st.mappedRows,
		TotalGWP:    st.totalGWP,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, description, source_file, status,
				total_rows, mapped_rows, total_gwp, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, project.ID, project.Name, project.Description, project.SourceFile, project.Status,
			project.TotalRows, project.MappedRows, project.TotalGWP, project.CreatedAt, project.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}
		return insertRows(ctx, tx, project.ID, p.Items)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Saved project", "id", project.ID, "name", project.Name, "rows", project.TotalRows)
	return project, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, projectID string, items []model.LineItem) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO project_rows (project_id, row_id, category, construction, operation, end_of_life,
			weighting, is_summary, excluded,
			suggested_scenario, suggested_discipline, suggested_mmi,
			mapped_scenario, mapped_discipline, mapped_mmi)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			projectID, item.RowID, item.Category, item.Construction, item.Operation, item.EndOfLife,
			model.ClampWeighting(item.Weighting), item.IsSummary, item.Excluded,
			item.Suggested.Scenario, item.Suggested.Discipline, item.Suggested.MmiCode,
			item.Mapped.Scenario, item.Mapped.Discipline, item.Mapped.MmiCode,
		); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", item.RowID, err)
		}
	}
	return nil
}

// GetProject returns a project's metadata.
func (s *SQLiteStorage) GetProject(ctx context.Context, id string) (*model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getProject(ctx, s.db, id)
}

const projectColumns = `id, name, description, source_file, status,
	total_rows, mapped_rows, total_gwp, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*model.Project, error) {
	var p model.Project
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.SourceFile, &p.Status,
		&p.TotalRows, &p.MappedRows, &p.TotalGWP, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func getProject(ctx context.Context, q queryable, id string) (*model.Project, error) {
	p, err := scanProject(q.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// LoadProject returns a project with its rows in row order. Derived totals
// are recomputed rather than read back.
func (s *SQLiteStorage) LoadProject(ctx context.Context, id string) (*model.Project, []model.LineItem, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := loadRows(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return project, items, nil
}

func loadRows(ctx context.Context, q queryable, projectID string) ([]model.LineItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT row_id, category, construction, operation, end_of_life, weighting, is_summary, excluded,
			suggested_scenario, suggested_discipline, suggested_mmi,
			mapped_scenario, mapped_discipline, mapped_mmi
		FROM project_rows
		WHERE project_id = ?
		ORDER BY row_id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.LineItem
	for rows.Next() {
		var (
			item       model.LineItem
			sScenario  model.Scenario
			sDiscipine model.Discipline
			sMmi       model.MmiCode
			mScenario  model.Scenario
			mDiscipine model.Discipline
			mMmi       model.MmiCode

			construction, operation, endOfLife float64
		)
		if err := rows.Scan(
			&item.RowID, &item.Category, &construction, &operation, &endOfLife,
			&item.Weighting, &item.IsSummary, &item.Excluded,
			&sScenario, &sDiscipine, &sMmi,
			&mScenario, &mDiscipine, &mMmi,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		item.Suggested = model.NewClassification(sScenario, sDiscipine, sMmi)
		item.Mapped = model.NewClassification(mScenario, mDiscipine, mMmi)
		item.SetPhases(construction, operation, endOfLife)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return items, nil
}

// ListProjects returns projects, most recently updated first.
func (s *SQLiteStorage) ListProjects(ctx context.Context, filter service.ProjectFilter) ([]model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultProjectLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	if filter.Status != "" {
		if err := validateStatus(filter.Status); err != nil {
			return nil, err
		}
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY updated_at DESC, name LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProjectRow writes the editable fields of item (mapping, exclusion
// and weighting) and refreshes the project statistics. Callers apply edits
// with the mapping package first.
func (s *SQLiteStorage) UpdateProjectRow(ctx context.Context, id string, item model.LineItem) error {
	return s.UpdateProjectRows(ctx, id, []model.LineItem{item})
}

// UpdateProjectRows is UpdateProjectRow for several rows in one transaction.
func (s *SQLiteStorage) UpdateProjectRows(ctx context.Context, id string, items []model.LineItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateItems(items); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getProject(ctx, tx, id); err != nil {
			return err
		}
		for _, item := range items {
			res, err := tx.ExecContext(ctx, `
				UPDATE project_rows
				SET mapped_scenario = ?, mapped_discipline = ?, mapped_mmi = ?, excluded = ?, weighting = ?
				WHERE project_id = ? AND row_id = ?
			`, item.Mapped.Scenario, item.Mapped.Discipline, item.Mapped.MmiCode, item.Excluded,
				model.ClampWeighting(item.Weighting), id, item.RowID)
			if err != nil {
				return fmt.Errorf("failed to update row %d: %w", item.RowID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("row %d of project %s: %w", item.RowID, id, common.ErrNotFound)
			}
		}
		return refreshStatistics(ctx, tx, id)
	})
}

// UpdateProjectMetadata changes name, description or status.
func (s *SQLiteStorage) UpdateProjectMetadata(ctx context.Context, id string, update model.ProjectMetadataUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	sets := []string{}
	args := []any{}
	if update.Name != nil {
		if err := validateString(*update.Name, "name"); err != nil {
			return err
		}
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*update.Name))
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Status != nil {
		if err := validateStatus(*update.Status); err != nil {
			return err
		}
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, now(), id)

	// #nosec G202 - only fixed column names are concatenated
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("project %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// RefreshProjectStatistics recomputes the cached row counts and total GWP.
func (s *SQLiteStorage) RefreshProjectStatistics(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getProject(ctx, tx, id); err != nil {
			return err
		}
		return refreshStatistics(ctx, tx, id)
	})
}

func refreshStatistics(ctx context.Context, tx *sql.Tx, id string) error {
	items, err := loadRows(ctx, tx, id)
	if err != nil {
		return err
	}
	st := statsFor(items)
	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET total_rows = ?, mapped_rows = ?, total_gwp = ?, updated_at = ?
		WHERE id = ?
	`, st.totalRows, st.mappedRows, st.totalGWP, now(), id); err != nil {
		return fmt.Errorf("failed to update project statistics: %w", err)
	}
	return nil
}

// DeleteProject removes a project and its rows.
func (s *SQLiteStorage) DeleteProject(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_rows WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete rows: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("project %s: %w", id, common.ErrNotFound)
		}
		return nil
	})
}

var _ service.ProjectStore = (*SQLiteStorage)(nil)
