package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/EdvardGK/reduzer-summary/internal/classification"
	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/spf13/cobra"
)

// detection is the JSON shape of one detected category.
type detection struct {
	Explanation    *classification.Explanation `json:"rules,omitempty"`
	Category       string                      `json:"category"`
	NoiseToken     string                      `json:"noise_token,omitempty"`
	Classification model.Classification        `json:"classification"`
	Summary        bool                        `json:"summary"`
}

func detectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <category>...",
		Short: "Classify category strings",
		Long: `Run the scenario, discipline and MMI detector on one or more category
strings, as they appear in the first column of a Reduzer export.`,
		Example: `  reduzer detect "Scenario C - RIB - Existing"
  reduzer detect --explain "S8 - RAMBELL - Sum"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			explain, _ := cmd.Flags().GetBool("explain")

			detector := classification.Default()
			noise := a.noiseFilter()
			results := make([]detection, 0, len(args))
			for _, category := range args {
				d := detection{
					Category:       category,
					Classification: detector.DetectAll(category),
					Summary:        detector.IsSummaryRow(category),
				}
				d.NoiseToken, _ = noise.Match(category)
				if explain {
					exp := detector.Explain(category)
					d.Explanation = &exp
				}
				results = append(results, d)
			}

			if format == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), results)
			}
			return writeDetections(cmd, results)
		},
	}

	cmd.Flags().Bool("explain", false, "show which rule matched each field")
	addFormatFlag(cmd)
	return cmd
}

func writeDetections(cmd *cobra.Command, results []detection) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join([]string{
		cli.HeaderStyle.Render("CATEGORY"),
		cli.HeaderStyle.Render("SCENARIO"),
		cli.HeaderStyle.Render("DISCIPLINE"),
		cli.HeaderStyle.Render("MMI"),
		cli.HeaderStyle.Render("FLAGS"),
	}, "\t"))

	for _, r := range results {
		c := r.Classification
		var flags []string
		if r.Summary {
			flags = append(flags, "summary")
		}
		if r.NoiseToken != "" {
			flags = append(flags, "noise:"+r.NoiseToken)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Category, dash(string(c.Scenario)), dash(string(c.Discipline)),
			mmiCell(c.MmiCode), strings.Join(flags, ","))

		if r.Explanation != nil {
			for _, line := range explanationLines(*r.Explanation) {
				fmt.Fprintf(w, "%s\t\t\t\t\n", cli.SubtleStyle.Render("  "+line))
			}
		}
	}
	return w.Flush()
}

func explanationLines(e classification.Explanation) []string {
	field := func(name string, m *classification.Match) string {
		if m == nil {
			return name + ": no rule matched"
		}
		return fmt.Sprintf("%s: %s (rule %s)", name, m.Value, m.PatternName)
	}
	lines := []string{
		field("scenario", e.Scenario),
		field("discipline", e.Discipline),
		field("mmi", e.Mmi),
	}
	if e.Summary != nil {
		lines = append(lines, field("summary", e.Summary))
	}
	return lines
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func mmiCell(code model.MmiCode) string {
	if !code.IsSet() {
		return "-"
	}
	return string(code) + " " + model.MmiDescription(code)
}
