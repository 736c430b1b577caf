package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/spf13/cobra"
)

// clearValues are accepted by the code flags to unset a field.
var clearValues = map[string]bool{"none": true, "-": true, "": true}

func mapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Change the mapping of one row of a saved project",
		Long: `Change the scenario, discipline, MMI code, weighting or exclusion of
one row. Pass "none" to a code flag to clear it. Only the flags given are
changed.`,
		Example: `  reduzer map -p 6f1c... --row 12 --mmi 700
  reduzer map -p 6f1c... --row 3 --scenario C --discipline RIBp
  reduzer map -p 6f1c... --row 40 --exclude
  reduzer map -p 6f1c... --row 7 --weighting 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			projectID, _ := cmd.Flags().GetString("project")
			rowID, _ := cmd.Flags().GetInt("row")
			reset, _ := cmd.Flags().GetBool("reset")

			edit, err := mappingEdit(cmd)
			if err != nil {
				return err
			}
			if edit.IsEmpty() && !reset {
				return common.NewUserError("nothing to change: pass --scenario, --discipline, --mmi, --weighting, --exclude, --include or --reset", nil)
			}

			store, err := a.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			_, items, err := store.LoadProject(ctx, projectID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("no project with id %q", projectID), err)
				}
				return err
			}

			idx, ok := mapping.Find(items, rowID)
			if !ok {
				return common.NewUserError(fmt.Sprintf("project has no row %d", rowID), mapping.ErrUnknownRow)
			}
			item := &items[idx]
			if reset {
				mapping.ResetToSuggested(item)
			}
			if err := mapping.Apply(item, edit); err != nil {
				return common.NewUserError("invalid mapping", err)
			}
			if err := store.UpdateProjectRow(ctx, projectID, *item); err != nil {
				return fmt.Errorf("failed to save row %d: %w", rowID, err)
			}

			if format == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), item)
			}
			c := item.Mapped
			return printf(cmd.OutOrStdout(), "%s\n  %s\n  scenario %s, discipline %s, MMI %s, weighting %.0f%%, excluded %t\n",
				cli.FormatSuccess(fmt.Sprintf("Updated row %d", rowID)),
				item.Category,
				dash(string(c.Scenario)), dash(string(c.Discipline)), mmiCell(c.MmiCode),
				item.Weighting, item.Excluded)
		},
	}

	cmd.Flags().StringP("project", "p", "", "project id")
	cmd.Flags().Int("row", -1, "row id to change")
	cmd.Flags().String("scenario", "", "scenario (A, B, C, D or none)")
	cmd.Flags().String("discipline", "", "discipline (RIV, ARK, RIE, RIB, RIBp or none)")
	cmd.Flags().String("mmi", "", "MMI code (300, 700, 800, 900, a label such as GJEN, or none)")
	cmd.Flags().Float64("weighting", 0, "weighting percentage, clamped to 0-100")
	cmd.Flags().Bool("exclude", false, "exclude the row from totals")
	cmd.Flags().Bool("include", false, "include the row in totals")
	cmd.Flags().Bool("reset", false, "restore the detector's suggestion before applying other flags")
	cmd.MarkFlagsMutuallyExclusive("exclude", "include")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("row")
	addFormatFlag(cmd)
	return cmd
}

// mappingEdit builds an edit from the flags that were set.
func mappingEdit(cmd *cobra.Command) (model.MappingEdit, error) {
	var edit model.MappingEdit
	flags := cmd.Flags()

	if flags.Changed("scenario") {
		raw, _ := flags.GetString("scenario")
		s, err := parseCode(raw, "scenario", model.ParseScenario)
		if err != nil {
			return edit, err
		}
		edit.Scenario = &s
	}
	if flags.Changed("discipline") {
		raw, _ := flags.GetString("discipline")
		d, err := parseCode(raw, "discipline", model.ParseDiscipline)
		if err != nil {
			return edit, err
		}
		edit.Discipline = &d
	}
	if flags.Changed("mmi") {
		raw, _ := flags.GetString("mmi")
		m, err := parseCode(raw, "MMI code", model.ParseMmiCode)
		if err != nil {
			return edit, err
		}
		edit.MmiCode = &m
	}
	if flags.Changed("weighting") {
		w, _ := flags.GetFloat64("weighting")
		edit.Weighting = &w
	}
	if flags.Changed("exclude") || flags.Changed("include") {
		var excluded bool
		if flags.Changed("exclude") {
			excluded, _ = flags.GetBool("exclude")
		} else {
			include, _ := flags.GetBool("include")
			excluded = !include
		}
		edit.Excluded = &excluded
	}
	return edit, nil
}

func parseCode[T ~string](raw, what string, parse func(string) (T, bool)) (T, error) {
	if clearValues[strings.ToLower(strings.TrimSpace(raw))] {
		return "", nil
	}
	v, ok := parse(raw)
	if !ok {
		return "", common.NewUserError(fmt.Sprintf("unknown %s %q", what, raw), nil)
	}
	return v, nil
}
