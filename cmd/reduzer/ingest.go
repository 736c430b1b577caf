package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/EdvardGK/reduzer-summary/internal/service"
	"github.com/spf13/cobra"
)

// ingestResult summarises one ingested file.
type ingestResult struct {
	File      string        `json:"file"`
	ProjectID string        `json:"project_id,omitempty"`
	Stats     mapping.Stats `json:"statistics"`
	Summary   int           `json:"summary_rows"`
}

func ingestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Read Reduzer exports and report how well they classify",
		Long: `Read one or more xlsx or csv exports, classify every row and print
mapping statistics. With --save every file becomes a project in the
database, ready for 'reduzer review' and 'reduzer map'.`,
		Example: `  reduzer ingest export.xlsx
  reduzer ingest --save "Skole 2024" export.xlsx
  reduzer ingest --save batch exports/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("save")
			description, _ := cmd.Flags().GetString("description")

			var store service.ProjectStore
			if name != "" {
				s, err := a.initStorage(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = s.Close() }()
				store = s
			}

			var progress *cli.Progress
			if len(args) > 1 && format == report.FormatTable {
				progress = cli.NewProgress(cmd.ErrOrStderr(), len(args), "Ingesting")
			}

			results := make([]ingestResult, 0, len(args))
			for _, path := range args {
				if err := ctx.Err(); err != nil {
					return err
				}
				if progress != nil {
					progress.Step(filepath.Base(path))
				}

				items, err := a.ingestFile(cmd, path)
				if err != nil {
					return err
				}
				res := ingestResult{File: path, Stats: mapping.Statistics(items), Summary: countSummaryRows(items)}

				if store != nil {
					project, err := store.SaveProject(ctx, service.NewProject{
						Name:        projectName(name, path, len(args)),
						Description: description,
						SourceFile:  path,
						Items:       items,
					})
					if err != nil {
						return fmt.Errorf("failed to save %s: %w", path, err)
					}
					res.ProjectID = project.ID
				}
				slog.Debug("ingested file", "file", path, "rows", len(items))
				results = append(results, res)
			}
			if progress != nil {
				progress.Finish()
			}

			if format == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), results)
			}
			return writeIngestResults(cmd, results)
		},
	}

	cmd.Flags().String("save", "", "save each file as a project with this name")
	cmd.Flags().String("description", "", "project description (with --save)")
	cmd.Flags().String("sheet", "", "worksheet to read from xlsx files (default: first sheet)")
	addFormatFlag(cmd)
	return cmd
}

// projectName suffixes the file name when several files share one --save name.
func projectName(name, path string, files int) string {
	if files == 1 {
		return name
	}
	base := filepath.Base(path)
	return fmt.Sprintf("%s (%s)", name, strings.TrimSuffix(base, filepath.Ext(base)))
}

func countSummaryRows(items []model.LineItem) int {
	n := 0
	for _, item := range items {
		if item.IsSummary {
			n++
		}
	}
	return n
}

func writeIngestResults(cmd *cobra.Command, results []ingestResult) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join([]string{
		cli.HeaderStyle.Render("FILE"),
		cli.HeaderStyle.Render("ROWS"),
		cli.HeaderStyle.Render("EXCLUDED"),
		cli.HeaderStyle.Render("SUMMARY"),
		cli.HeaderStyle.Render("MAPPED"),
		cli.HeaderStyle.Render("PARTIAL"),
		cli.HeaderStyle.Render("COMPLETE"),
		cli.HeaderStyle.Render("PROJECT"),
	}, "\t"))

	for _, r := range results {
		complete := fmt.Sprintf("%.1f%%", r.Stats.CompletenessPct)
		if r.Stats.CompletenessPct < report.CompletenessTarget {
			complete = cli.WarningStyle.Render(complete)
		} else {
			complete = cli.SuccessStyle.Render(complete)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			filepath.Base(r.File), r.Stats.TotalRows, r.Stats.ExcludedRows, r.Summary,
			r.Stats.FullyMapped, r.Stats.PartiallyMapped, complete, dash(r.ProjectID))
	}
	return w.Flush()
}
