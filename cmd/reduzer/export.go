package main

import (
	"fmt"
	"log/slog"

	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/config"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/EdvardGK/reduzer-summary/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report to an xlsx workbook or Google Sheets",
		Long: `Build the scenario report and publish it. --xlsx writes a workbook with
Summary, Scenarios, Disciplines, MMI, Comparison and Dataset sheets.
--sheets writes the same report to a Google spreadsheet; see 'reduzer auth
sheets' for credentials.`,
		Example: `  reduzer export --file export.xlsx --xlsx summary.xlsx
  reduzer export --project 6f1c... --sheets
  reduzer export --project 6f1c... --xlsx out.xlsx --sheets --spreadsheet-id 1AbC...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			xlsxPath, _ := cmd.Flags().GetString("xlsx")
			toSheets, _ := cmd.Flags().GetBool("sheets")
			if xlsxPath == "" && !toSheets {
				return common.NewUserError("choose a destination: --xlsx PATH and/or --sheets", nil)
			}

			d, err := a.buildReport(cmd)
			if err != nil {
				return err
			}

			var writers []report.Writer
			var targets []string
			if xlsxPath != "" {
				writers = append(writers, report.WorkbookWriter{Path: config.ExpandPath(xlsxPath)})
				targets = append(targets, xlsxPath)
			}
			if toSheets {
				sc, err := config.LoadSheetsConfig(a.v)
				if err != nil {
					return common.NewUserError("google sheets is not configured (run 'reduzer auth sheets')", err)
				}
				if id, _ := cmd.Flags().GetString("spreadsheet-id"); id != "" {
					sc.SpreadsheetID = id
				}
				w, err := sheets.NewWriter(ctx, *sc, slog.Default())
				if err != nil {
					return err
				}
				writers = append(writers, w)
				targets = append(targets, "Google Sheets")
			}

			for i, w := range writers {
				if err := w.Write(ctx, d); err != nil {
					return fmt.Errorf("failed to export to %s: %w", targets[i], err)
				}
				if err := printf(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess("Exported to "+targets[i])); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addDatasetFlags(cmd)
	addCompareFlags(cmd)
	cmd.Flags().String("xlsx", "", "write an xlsx workbook to this path")
	cmd.Flags().Bool("sheets", false, "write to Google Sheets")
	cmd.Flags().String("spreadsheet-id", "", "existing spreadsheet to overwrite (with --sheets)")
	return cmd
}
