package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/ingest"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/EdvardGK/reduzer-summary/internal/storage"
	"github.com/spf13/cobra"
)

// initStorage opens the project database and brings its schema up to date.
func (a *app) initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.settings.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// noiseFilter builds the noise matcher from configuration.
func (a *app) noiseFilter() *pattern.NoiseFilter {
	return pattern.NewNoiseFilter(a.settings.Ingest.NoiseTokens)
}

func (a *app) newIngestor() *ingest.Ingestor {
	return ingest.New(ingest.WithNoiseFilter(a.noiseFilter()))
}

// dataset is the line items a command works on and, when they came from
// the database, the project they belong to.
type dataset struct {
	Project *model.Project
	Items   []model.LineItem
	Source  string
}

func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "read line items from an xlsx or csv file")
	cmd.Flags().StringP("project", "p", "", "load line items from a saved project")
	cmd.Flags().String("sheet", "", "worksheet to read from an xlsx file (default: first sheet)")
	cmd.MarkFlagsMutuallyExclusive("file", "project")
	cmd.MarkFlagsOneRequired("file", "project")
}

// loadDataset reads the items selected by --file or --project.
func (a *app) loadDataset(cmd *cobra.Command) (*dataset, error) {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")
	projectID, _ := cmd.Flags().GetString("project")

	if file != "" {
		items, err := a.ingestFile(cmd, file)
		if err != nil {
			return nil, err
		}
		return &dataset{Items: items, Source: file}, nil
	}

	store, err := a.initStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	project, items, err := store.LoadProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError(fmt.Sprintf("no project with id %q (see 'reduzer projects list')", projectID), err)
		}
		return nil, err
	}
	return &dataset{Project: project, Items: items, Source: project.Name}, nil
}

func (a *app) ingestFile(cmd *cobra.Command, path string) ([]model.LineItem, error) {
	sheet := a.settings.Ingest.Sheet
	if cmd.Flags().Lookup("sheet") != nil {
		if s, _ := cmd.Flags().GetString("sheet"); s != "" {
			sheet = s
		}
	}

	items, err := a.newIngestor().IngestFile(path, ingest.ReadOptions{Sheet: sheet})
	if err != nil {
		var schemaErr *ingest.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, common.NewUserError(fmt.Sprintf("%s is not a Reduzer export", filepath.Base(path)), err)
		}
		return nil, err
	}
	return items, nil
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "o", "table", "output format (table, json)")
}

func outputFormat(cmd *cobra.Command) (report.Format, error) {
	s, _ := cmd.Flags().GetString("format")
	f, err := report.ParseFormat(s)
	if err != nil {
		return "", common.NewUserError("invalid --format", err)
	}
	return f, nil
}

func addCompareFlags(cmd *cobra.Command) {
	cmd.Flags().String("base", "", "baseline scenario (default from compare.base, A)")
	cmd.Flags().String("target", "", "scenario compared against the baseline (default from compare.target, C)")
	cmd.Flags().Int("top", -1, "number of driving disciplines to list (default from compare.top, 3)")
}

// reportOptions merges compare flags over configuration.
func (a *app) reportOptions(cmd *cobra.Command, title string) (report.Options, error) {
	opts := report.Options{
		Title:  title,
		Base:   a.settings.Compare.Base,
		Target: a.settings.Compare.Target,
		TopN:   a.settings.Compare.Top,
	}

	for flag, dst := range map[string]*model.Scenario{"base": &opts.Base, "target": &opts.Target} {
		if cmd.Flags().Lookup(flag) == nil {
			continue
		}
		raw, _ := cmd.Flags().GetString(flag)
		if raw == "" {
			continue
		}
		s, ok := model.ParseScenario(raw)
		if !ok {
			return opts, common.NewUserError(fmt.Sprintf("--%s: unknown scenario %q (want A, B, C or D)", flag, raw), nil)
		}
		*dst = s
	}
	if cmd.Flags().Lookup("top") != nil {
		if top, _ := cmd.Flags().GetInt("top"); top >= 0 {
			opts.TopN = top
		}
	}
	if opts.Base == opts.Target {
		return opts, common.NewUserError("base and target scenario must differ", nil)
	}
	return opts, nil
}

func reportTitle(ds *dataset) string {
	if ds.Project != nil {
		return ds.Project.Name
	}
	name := filepath.Base(ds.Source)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
