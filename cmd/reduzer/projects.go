package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/EdvardGK/reduzer-summary/internal/service"
	"github.com/EdvardGK/reduzer-summary/internal/storage"
	"github.com/spf13/cobra"
)

func projectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage saved projects",
		Long: `List, inspect, rename and delete saved projects, and snapshot the
project database with checkpoints.`,
		Example: `  reduzer projects list
  reduzer projects show 6f1c...
  reduzer projects rename 6f1c... "Skole 2024 rev B"
  reduzer projects delete 6f1c...
  reduzer projects checkpoint create --tag before-cleanup`,
	}

	cmd.AddCommand(
		listProjectsCmd(a),
		showProjectCmd(a),
		renameProjectCmd(a),
		describeProjectCmd(a),
		statusProjectCmd(a),
		deleteProjectCmd(a),
		checkpointCmd(a),
	)
	return cmd
}

// withStore opens storage for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(*storage.SQLiteStorage) error) error {
	store, err := a.initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func notFound(id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no project with id %q (see 'reduzer projects list')", id), err)
	}
	return err
}

func listProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved projects, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			var filter service.ProjectFilter
			if raw, _ := cmd.Flags().GetString("status"); raw != "" {
				filter.Status = model.ProjectStatus(strings.ToLower(raw))
				if !filter.Status.Valid() {
					return common.NewUserError(fmt.Sprintf("unknown status %q (want draft, reviewed or finalized)", raw), nil)
				}
			}
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				projects, err := store.ListProjects(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if format == report.FormatJSON {
					return report.WriteJSON(cmd.OutOrStdout(), projects)
				}
				if len(projects) == 0 {
					return printf(cmd.OutOrStdout(), "%s\n", cli.SubtleStyle.Render("No projects saved. Use 'reduzer ingest --save NAME FILE'."))
				}
				return writeProjects(cmd, projects)
			})
		},
	}
	cmd.Flags().String("status", "", "only projects with this status (draft, reviewed, finalized)")
	cmd.Flags().Int("limit", 0, "maximum number of projects (0 for all)")
	addFormatFlag(cmd)
	return cmd
}

func writeProjects(cmd *cobra.Command, projects []model.Project) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join([]string{
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("NAME"),
		cli.HeaderStyle.Render("STATUS"),
		cli.HeaderStyle.Render("ROWS"),
		cli.HeaderStyle.Render("MAPPED"),
		cli.HeaderStyle.Render("TOTAL GWP"),
		cli.HeaderStyle.Render("UPDATED"),
	}, "\t"))
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0f\t%s\n",
			cli.InfoStyle.Render(p.ID), p.Name, p.Status,
			p.TotalRows, p.MappedRows, p.TotalGWP, formatRelativeTime(p.UpdatedAt))
	}
	return w.Flush()
}

// projectDetails is the JSON shape of projects show.
type projectDetails struct {
	Project    *model.Project          `json:"project"`
	Statistics mapping.Stats           `json:"statistics"`
	Scenarios  []aggregate.ScenarioRow `json:"scenarios"`
}

func showProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project's metadata and mapping progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				project, items, err := store.LoadProject(cmd.Context(), args[0])
				if err != nil {
					return notFound(args[0], err)
				}
				details := projectDetails{
					Project:    project,
					Statistics: mapping.Statistics(items),
					Scenarios:  aggregate.ScenarioSummary(aggregate.Aggregate(items)),
				}
				if format == report.FormatJSON {
					return report.WriteJSON(cmd.OutOrStdout(), details)
				}
				return writeProjectDetails(cmd, details)
			})
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func writeProjectDetails(cmd *cobra.Command, d projectDetails) error {
	out := cmd.OutOrStdout()
	p := d.Project
	lines := []string{
		cli.FormatTitle(p.Name),
		fmt.Sprintf("  ID:          %s", p.ID),
		fmt.Sprintf("  Status:      %s", p.Status),
	}
	if p.Description != "" {
		lines = append(lines, fmt.Sprintf("  Description: %s", p.Description))
	}
	if p.SourceFile != "" {
		lines = append(lines, fmt.Sprintf("  Source:      %s", p.SourceFile))
	}
	lines = append(lines,
		fmt.Sprintf("  Created:     %s", p.CreatedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("  Updated:     %s", formatRelativeTime(p.UpdatedAt)),
		fmt.Sprintf("  Rows:        %d (%d excluded)", d.Statistics.TotalRows, d.Statistics.ExcludedRows),
		fmt.Sprintf("  Mapped:      %d complete, %d partial, %.1f%% complete",
			d.Statistics.FullyMapped, d.Statistics.PartiallyMapped, d.Statistics.CompletenessPct),
		fmt.Sprintf("  Total GWP:   %.0f", p.TotalGWP),
		"",
	)
	if err := printf(out, "%s\n", strings.Join(lines, "\n")); err != nil {
		return err
	}
	return report.WriteScenarioTable(out, d.Scenarios)
}

func renameProjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[1]
			return a.updateMetadata(cmd, args[0], model.ProjectMetadataUpdate{Name: &name}, "Renamed project to "+name)
		},
	}
}

func describeProjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <id> <description>",
		Short: "Set a project's description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := args[1]
			return a.updateMetadata(cmd, args[0], model.ProjectMetadataUpdate{Description: &description}, "Updated description")
		},
	}
}

func statusProjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <draft|reviewed|finalized>",
		Short: "Move a project through the review workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := model.ProjectStatus(strings.ToLower(args[1]))
			if !status.Valid() {
				return common.NewUserError(fmt.Sprintf("unknown status %q (want draft, reviewed or finalized)", args[1]), nil)
			}
			return a.updateMetadata(cmd, args[0], model.ProjectMetadataUpdate{Status: &status}, "Status set to "+string(status))
		},
	}
}

func (a *app) updateMetadata(cmd *cobra.Command, id string, update model.ProjectMetadataUpdate, done string) error {
	return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
		if err := store.UpdateProjectMetadata(cmd.Context(), id, update); err != nil {
			return notFound(id, err)
		}
		return printf(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(done))
	})
}

func deleteProjectCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its rows",
		Long: `Delete a project. An automatic checkpoint is taken first, so the
deletion can be undone with 'reduzer projects checkpoint restore'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			return a.withStore(ctx, func(store *storage.SQLiteStorage) error {
				project, err := store.GetProject(ctx, id)
				if err != nil {
					return notFound(id, err)
				}

				if !force {
					prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
					ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete project %q with %d rows?", project.Name, project.TotalRows))
					if err != nil {
						return err
					}
					if !ok {
						return printf(cmd.OutOrStdout(), "%s\n", cli.SubtleStyle.Render("Deletion cancelled."))
					}
				}

				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}
				checkpoint, err := manager.AutoCheckpoint(ctx, "delete")
				if err != nil {
					return err
				}

				if err := store.DeleteProject(ctx, id); err != nil {
					return err
				}
				return printf(cmd.OutOrStdout(), "%s\n  %s\n",
					cli.FormatSuccess(fmt.Sprintf("Deleted project %q", project.Name)),
					cli.SubtleStyle.Render("restore with: reduzer projects checkpoint restore "+checkpoint.ID))
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func checkpointCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore and delete snapshots of the project database.

Take a checkpoint before bulk edits; restore it if the result is wrong.`,
		Example: `  reduzer projects checkpoint create --tag before-remap
  reduzer projects checkpoint list
  reduzer projects checkpoint restore before-remap`,
	}
	cmd.AddCommand(
		createCheckpointCmd(a),
		listCheckpointsCmd(a),
		restoreCheckpointCmd(a),
		deleteCheckpointCmd(a),
	)
	return cmd
}

func (a *app) withCheckpoints(ctx context.Context, fn func(*storage.SQLiteStorage, *storage.CheckpointManager) error) error {
	return a.withStore(ctx, func(store *storage.SQLiteStorage) error {
		manager, err := store.NewCheckpointManager()
		if err != nil {
			return fmt.Errorf("failed to create checkpoint manager: %w", err)
		}
		return fn(store, manager)
	})
}

func checkpointError(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrCheckpointNotFound):
		return common.NewUserError(fmt.Sprintf("no checkpoint %q (see 'reduzer projects checkpoint list')", id), err)
	case errors.Is(err, storage.ErrInvalidCheckpointID), errors.Is(err, storage.ErrCheckpointExists):
		return common.NewUserError(err.Error(), err)
	}
	return err
}

func createCheckpointCmd(a *app) *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the project database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCheckpoints(cmd.Context(), func(_ *storage.SQLiteStorage, manager *storage.CheckpointManager) error {
				info, err := manager.Create(cmd.Context(), tag, description)
				if err != nil {
					return checkpointError(tag, err)
				}
				return printf(cmd.OutOrStdout(), "%s (%s, %s)\n",
					cli.FormatSuccess("Created checkpoint "+info.ID),
					plural(info.Projects, "project"), formatFileSize(info.FileSize))
			})
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint name (default: timestamp)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the checkpoint is for")
	return cmd
}

func listCheckpointsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCheckpoints(cmd.Context(), func(_ *storage.SQLiteStorage, manager *storage.CheckpointManager) error {
				checkpoints, err := manager.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}
				if len(checkpoints) == 0 {
					return printf(cmd.OutOrStdout(), "%s\n", cli.SubtleStyle.Render("No checkpoints found."))
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.HeaderStyle.Render("NAME"),
					cli.HeaderStyle.Render("CREATED"),
					cli.HeaderStyle.Render("SIZE"),
					cli.HeaderStyle.Render("PROJECTS"),
					cli.HeaderStyle.Render("ROWS"),
					cli.HeaderStyle.Render("TYPE"),
				}, "\t"))
				for _, cp := range checkpoints {
					kind := "manual"
					if cp.IsAuto {
						kind = "auto"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
						cli.InfoStyle.Render(cp.ID),
						formatRelativeTime(cp.CreatedAt),
						formatFileSize(cp.FileSize),
						cp.Projects, cp.Rows,
						cli.SubtleStyle.Render(kind))
				}
				return w.Flush()
			})
		},
	}
}

func findCheckpoint(ctx context.Context, manager *storage.CheckpointManager, id string) (*storage.CheckpointInfo, error) {
	checkpoints, err := manager.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range checkpoints {
		if checkpoints[i].ID == id {
			return &checkpoints[i], nil
		}
	}
	return nil, checkpointError(id, storage.ErrCheckpointNotFound)
}

func restoreCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Replace the project database with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store, err := a.initStorage(ctx)
			if err != nil {
				return err
			}
			restored := false
			defer func() {
				if !restored {
					_ = store.Close()
				}
			}()

			manager, err := store.NewCheckpointManager()
			if err != nil {
				return fmt.Errorf("failed to create checkpoint manager: %w", err)
			}
			info, err := findCheckpoint(ctx, manager, id)
			if err != nil {
				return err
			}

			if !force {
				if err := printf(cmd.OutOrStdout(), "%s This replaces the current database with checkpoint %s (created %s).\n",
					cli.WarningStyle.Render(cli.WarningIcon), cli.InfoStyle.Render(id),
					info.CreatedAt.Local().Format("2006-01-02 15:04:05")); err != nil {
					return err
				}
				ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(ctx, "Continue?")
				if err != nil {
					return err
				}
				if !ok {
					return printf(cmd.OutOrStdout(), "%s\n", cli.SubtleStyle.Render("Restore cancelled."))
				}
			}

			// Restore closes the connection shared with store.
			if err := manager.Restore(ctx, id); err != nil {
				return checkpointError(id, err)
			}
			restored = true
			return printf(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess("Restored from checkpoint "+id))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func deleteCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			return a.withCheckpoints(ctx, func(_ *storage.SQLiteStorage, manager *storage.CheckpointManager) error {
				if !force {
					ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(ctx, fmt.Sprintf("Permanently delete checkpoint %s?", id))
					if err != nil {
						return err
					}
					if !ok {
						return printf(cmd.OutOrStdout(), "%s\n", cli.SubtleStyle.Render("Deletion cancelled."))
					}
				}
				if err := manager.Delete(ctx, id); err != nil {
					return checkpointError(id, err)
				}
				return printf(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess("Deleted checkpoint "+id))
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}
