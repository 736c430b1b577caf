package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/EdvardGK/reduzer-summary/internal/classification"
	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/diagnostics"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/spf13/cobra"
)

func diagnoseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Inspect how the detector classified a dataset",
		Long: `Show the MMI distribution, sample categories per MMI code, rows the
detector could not fully classify (with the reasons), and rows whose
mapping was changed by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			ds, err := a.loadDataset(cmd)
			if err != nil {
				return err
			}
			samples, _ := cmd.Flags().GetInt("samples")
			failures, _ := cmd.Flags().GetInt("failures")

			r := diagnostics.Build(ds.Items, diagnostics.Options{
				Detector:     classification.Default(),
				Noise:        a.noiseFilter(),
				SampleSize:   samples,
				FailureLimit: failures,
			})

			if format == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), r)
			}
			return writeDiagnostics(cmd.OutOrStdout(), r)
		},
	}
	addDatasetFlags(cmd)
	addFormatFlag(cmd)
	cmd.Flags().Int("samples", 5, "sample categories shown per MMI code")
	cmd.Flags().Int("failures", diagnostics.DefaultFailureLimit, "maximum detection failures listed (negative for all)")
	return cmd
}

func writeDiagnostics(out io.Writer, r diagnostics.Report) error {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("MMI distribution") + "\n")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join([]string{
		cli.HeaderStyle.Render("MMI"),
		cli.HeaderStyle.Render("SUGGESTED"),
		cli.HeaderStyle.Render("MAPPED"),
		cli.HeaderStyle.Render("ACTIVE"),
		cli.HeaderStyle.Render("NON-ZERO"),
		cli.HeaderStyle.Render("TOTAL GWP"),
	}, "\t"))
	for _, row := range r.Distribution {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.0f\n",
			mmiCell(row.Code), row.SuggestedTotal, row.MappedTotal, row.MappedActive,
			row.WithNonZeroTotal, row.WeightedTotal)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	b.WriteString("\n" + cli.FormatTitle("Samples") + "\n")
	for _, code := range model.MmiCodes() {
		samples := r.Samples[code]
		if len(samples) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s\n", mmiCell(code))
		for _, s := range samples {
			fmt.Fprintf(&b, "    %s\n", cli.SubtleStyle.Render(s))
		}
	}

	b.WriteString("\n" + cli.FormatTitle(fmt.Sprintf("Detection failures (%d)", len(r.Failures))) + "\n")
	reasons := make(map[int][]string, len(r.Explanations))
	for _, exp := range r.Explanations {
		reasons[exp.RowID] = exp.Reasons
	}
	for _, item := range r.Failures {
		fmt.Fprintf(&b, "  row %d: %s\n", item.RowID, item.Category)
		if rs := reasons[item.RowID]; len(rs) > 0 {
			fmt.Fprintf(&b, "    %s\n", cli.SubtleStyle.Render(strings.Join(rs, "; ")))
		}
	}

	if len(r.Mismatches) > 0 {
		b.WriteString("\n" + cli.FormatTitle(fmt.Sprintf("Edited mappings (%d)", len(r.Mismatches))) + "\n")
		for _, m := range r.Mismatches {
			fmt.Fprintf(&b, "  row %d: %s (%s)\n", m.Item.RowID, m.Item.Category, strings.Join(m.Fields, ", "))
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}
