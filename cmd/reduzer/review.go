package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/service"
	"github.com/EdvardGK/reduzer-summary/internal/tui"
	"github.com/spf13/cobra"
)

func reviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Edit row mappings interactively",
		Long: `Open the mapping editor on a saved project or a file.

For a project, ctrl+s writes the edited rows back to the database. For a
file, pass --save to keep the reviewed rows as a new project when the editor
closes.`,
		Example: `  reduzer review --project 6f1c...
  reduzer review --file export.xlsx --save "Skole 2024"
  reduzer review --project 6f1c... --view unmapped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			viewName, _ := cmd.Flags().GetString("view")
			view, err := mapping.ParseView(viewName)
			if err != nil {
				return common.NewUserError("invalid --view", err)
			}
			saveAs, _ := cmd.Flags().GetString("save")

			ds, err := a.loadDataset(cmd)
			if err != nil {
				return err
			}
			if ds.Project != nil && saveAs != "" {
				return common.NewUserError("--save only applies to --file; project edits are saved in place", nil)
			}

			opts := []tui.Option{tui.WithTitle(reportTitle(ds)), tui.WithView(view)}

			var store service.ProjectStore
			if ds.Project != nil || saveAs != "" {
				s, err := a.initStorage(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = s.Close() }()
				store = s
			}
			if ds.Project != nil {
				opts = append(opts, tui.WithSaveFunc(projectSaver(store, ds.Project.ID)))
			}

			items, err := tui.Run(ctx, ds.Items, opts...)
			if err != nil {
				if errors.Is(err, tui.ErrNoItems) {
					return common.NewUserError("the dataset has no rows to review", err)
				}
				return err
			}

			if saveAs == "" {
				return nil
			}
			project, err := store.SaveProject(ctx, service.NewProject{
				Name:       saveAs,
				SourceFile: ds.Source,
				Items:      items,
			})
			if err != nil {
				return fmt.Errorf("failed to save project: %w", err)
			}
			return printf(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Saved %q as project %s", saveAs, project.ID)))
		},
	}

	addDatasetFlags(cmd)
	cmd.Flags().String("view", string(mapping.ViewAll), "initial row filter (all, unmapped, mapped, excluded)")
	cmd.Flags().String("save", "", "save the reviewed file as a project with this name")
	return cmd
}

// projectSaver writes the changed rows of a project back to the store.
func projectSaver(store service.ProjectStore, projectID string) tui.SaveFunc {
	return func(ctx context.Context, items []model.LineItem, changed []int) error {
		rows := make([]model.LineItem, 0, len(changed))
		for _, rowID := range changed {
			idx, ok := mapping.Find(items, rowID)
			if !ok {
				return fmt.Errorf("%w: %d", mapping.ErrUnknownRow, rowID)
			}
			rows = append(rows, items[idx])
		}
		if err := store.UpdateProjectRows(ctx, projectID, rows); err != nil {
			return err
		}
		slog.Debug("saved edited rows", "project", projectID, "rows", len(rows))
		return nil
	}
}
