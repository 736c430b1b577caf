package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/cli"
)

// Format selects a renderer.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (use table or json)", s)
	}
}

// WriteJSON encodes v indented.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func writeRow(w io.Writer, cells ...string) error {
	_, err := fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	return err
}

func header(cells ...string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = cli.HeaderStyle.Render(c)
	}
	return out
}

// WriteScenarioTable prints one row per scenario with its phase totals.
func WriteScenarioTable(w io.Writer, rows []aggregate.ScenarioRow) error {
	tw := newTable(w)
	if err := writeRow(tw, header("Scenario", "Rows", "Construction (A)", "Operation (B)", "End-of-life (C)", "Total GWP")...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := writeRow(tw,
			string(r.Scenario),
			fmt.Sprint(r.Totals.Count),
			formatNumber(r.Totals.Construction),
			formatNumber(r.Totals.Operation),
			formatNumber(r.Totals.EndOfLife),
			formatNumber(r.Totals.WeightedTotal),
		); err != nil {
			return fmt.Errorf("failed to write scenario row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteDisciplineTable prints the disciplines of one scenario with shares.
func WriteDisciplineTable(w io.Writer, rows []aggregate.DisciplineRow) error {
	tw := newTable(w)
	if err := writeRow(tw, header("Discipline", "Rows", "Total GWP", "Share")...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := writeRow(tw,
			string(r.Discipline),
			fmt.Sprint(r.Totals.Count),
			formatNumber(r.Totals.WeightedTotal),
			fmt.Sprintf("%.1f%%", r.SharePct),
		); err != nil {
			return fmt.Errorf("failed to write discipline row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteMmiTable prints MMI totals of one scenario.
func WriteMmiTable(w io.Writer, rows []aggregate.MmiRow) error {
	tw := newTable(w)
	if err := writeRow(tw, header("MMI", "Label", "Rows", "Total GWP", "Share")...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := writeRow(tw,
			string(r.Code),
			r.Label,
			fmt.Sprint(r.Totals.Count),
			formatNumber(r.Totals.WeightedTotal),
			fmt.Sprintf("%.1f%%", r.SharePct),
		); err != nil {
			return fmt.Errorf("failed to write mmi row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteComparisonTable prints the per-metric comparison and the discipline
// breakdown of d. It writes a notice when the scenarios are not comparable.
func WriteComparisonTable(w io.Writer, d *Data) error {
	c := d.Comparison
	if c == nil {
		_, err := fmt.Fprintln(w, cli.WarningStyle.Render(fmt.Sprintf(
			"Scenario %s and %s are not both present; nothing to compare.", d.Base, d.Target)))
		return err
	}

	tw := newTable(w)
	if err := writeRow(tw, header("Metric", "Scenario "+string(c.Base), "Scenario "+string(c.Target), "Difference", "Ratio")...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range c.Metrics {
		if err := writeRow(tw,
			m.Metric.Label(),
			formatNumber(m.Base),
			formatNumber(m.Target),
			formatSigned(m.Difference),
			formatRatio(m.Ratio),
		); err != nil {
			return fmt.Errorf("failed to write comparison row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nVerdict: %s\n\n", cli.FormatVerdict(string(d.Verdict), d.Verdict.IsReduction())); err != nil {
		return err
	}

	tw = newTable(w)
	if err := writeRow(tw, header("Discipline", "Scenario "+string(c.Base), "Scenario "+string(c.Target), "Difference", "Ratio")...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range d.Disciplines {
		if err := writeRow(tw,
			string(r.Discipline),
			formatNumber(r.BaseTotal),
			formatNumber(r.TargetTotal),
			formatSigned(r.Difference),
			formatRatio(r.Ratio),
		); err != nil {
			return fmt.Errorf("failed to write discipline row: %w", err)
		}
	}
	return tw.Flush()
}

// WriteDrivers lists the disciplines that moved the most.
func WriteDrivers(w io.Writer, d *Data) error {
	if len(d.Drivers) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, cli.FormatTitle("Top drivers")); err != nil {
		return err
	}
	for i, drv := range d.Drivers {
		share := "n/a"
		if drv.ShareOfChange != nil {
			share = fmt.Sprintf("%.1f%%", *drv.ShareOfChange)
		}
		if _, err := fmt.Fprintf(w, "  %d. %-5s %s kg CO2e (%s of change)\n",
			i+1, drv.Discipline, formatSigned(drv.Difference), share); err != nil {
			return err
		}
	}
	return nil
}

// WriteInsights prints the executive summary, findings and recommendations.
func WriteInsights(w io.Writer, in Insights) error {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Summary") + "\n")
	for _, line := range in.Summary {
		b.WriteString("  " + line + "\n")
	}

	if len(in.Findings) > 0 {
		b.WriteString("\n" + cli.FormatTitle("Key findings") + "\n")
		for _, f := range in.Findings {
			value := f.Value
			switch f.Tone {
			case ToneGood:
				value = cli.SuccessStyle.Render(value)
			case ToneBad:
				value = cli.ErrorStyle.Render(value)
			}
			fmt.Fprintf(&b, "  %s: %s  %s\n", f.Title, value, cli.SubtleStyle.Render(f.Description))
		}
	}

	if len(in.Recommendations) > 0 {
		b.WriteString("\n" + cli.FormatTitle("Recommendations") + "\n")
		for _, r := range in.Recommendations {
			b.WriteString("  - " + r + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary renders the full terminal report for d.
func WriteSummary(w io.Writer, d *Data) error {
	if _, err := fmt.Fprintln(w, cli.FormatTitle(d.Title)); err != nil {
		return err
	}
	if err := WriteScenarioTable(w, d.Scenarios); err != nil {
		return err
	}
	for _, sc := range d.Tree.Scenarios() {
		if _, err := fmt.Fprintf(w, "\n%s\n", cli.FormatTitle("Scenario "+string(sc))); err != nil {
			return err
		}
		if err := WriteDisciplineTable(w, aggregate.DisciplineSummary(d.Tree, sc)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := WriteMmiTable(w, aggregate.MmiSummary(d.Tree, sc)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return WriteInsights(w, d.Insights)
}
