package main

import (
	"fmt"

	"github.com/EdvardGK/reduzer-summary/internal/compare"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/spf13/cobra"
)

// buildReport loads the dataset and computes the report for cmd's flags.
func (a *app) buildReport(cmd *cobra.Command) (*report.Data, error) {
	ds, err := a.loadDataset(cmd)
	if err != nil {
		return nil, err
	}
	opts, err := a.reportOptions(cmd, reportTitle(ds))
	if err != nil {
		return nil, err
	}
	return report.Build(ds.Items, opts)
}

func summaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals per scenario, discipline and MMI with key findings",
		Example: `  reduzer summary --file export.xlsx
  reduzer summary --project 6f1c... --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			d, err := a.buildReport(cmd)
			if err != nil {
				return err
			}
			if format == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), d)
			}
			return report.WriteSummary(cmd.OutOrStdout(), d)
		},
	}
	addDatasetFlags(cmd)
	addCompareFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}

// comparisonOutput is the JSON shape of the compare command.
type comparisonOutput struct {
	Comparison  *compare.Result         `json:"comparison"`
	Verdict     compare.Verdict         `json:"verdict"`
	Disciplines []compare.DisciplineRow `json:"disciplines"`
	Drivers     []compare.Driver        `json:"drivers"`
}

func compareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two scenarios phase by phase and per discipline",
		Long: `Compare a target scenario against a baseline. The ratio is
target / base * 100; below 100 the target emits less.`,
		Example: `  reduzer compare --file export.xlsx
  reduzer compare --project 6f1c... --base A --target C --top 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			d, err := a.buildReport(cmd)
			if err != nil {
				return err
			}

			if format == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), comparisonOutput{
					Comparison:  d.Comparison,
					Verdict:     d.Verdict,
					Disciplines: d.Disciplines,
					Drivers:     d.Drivers,
				})
			}

			out := cmd.OutOrStdout()
			if err := report.WriteComparisonTable(out, d); err != nil {
				return err
			}
			if d.Comparison == nil {
				return nil
			}
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
			return report.WriteDrivers(out, d)
		},
	}
	addDatasetFlags(cmd)
	addCompareFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}
