package sheets

import (
	"fmt"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/report"
)

// PrepareTabs lays out d as spreadsheet tabs. The comparison tab is only
// present when both scenarios exist.
func PrepareTabs(d *report.Data) TabData {
	tabs := []Tab{summaryTab(d)}
	if d.Comparison != nil {
		tabs = append(tabs, comparisonTab(d))
	}
	tabs = append(tabs, disciplinesTab(d), datasetTab(d.Items))
	return TabData{Tabs: tabs}
}

func summaryTab(d *report.Data) Tab {
	b := newTab(TabSummary)
	b.header(d.Title, d.GeneratedAt.Format("2006-01-02 15:04 MST"))
	b.blank()

	b.header("Mapping")
	b.row("Rows", d.Stats.TotalRows)
	b.row("Active", d.Stats.ActiveRows)
	b.row("Excluded", d.Stats.ExcludedRows)
	b.row("Fully mapped", d.Stats.FullyMapped)
	b.row("Partially mapped", d.Stats.PartiallyMapped)
	b.row("Completeness (%)", d.Stats.CompletenessPct)
	b.blank()

	b.header("Scenario", "Rows", "Construction (A)", "Operation (B)", "End-of-life (C)", "Total GWP")
	for _, r := range d.Scenarios {
		b.row(string(r.Scenario), r.Totals.Count,
			r.Totals.Construction, r.Totals.Operation, r.Totals.EndOfLife, r.Totals.WeightedTotal)
	}

	if len(d.Insights.Summary) > 0 {
		b.blank()
		b.header("Summary")
		for _, line := range d.Insights.Summary {
			b.row(line)
		}
	}
	if len(d.Insights.Recommendations) > 0 {
		b.blank()
		b.header("Recommendations")
		for _, rec := range d.Insights.Recommendations {
			b.row(rec)
		}
	}

	tab := b.build()
	tab.FrozenRows = 1
	return tab
}

func comparisonTab(d *report.Data) Tab {
	c := d.Comparison
	base, target := "Scenario "+string(c.Base), "Scenario "+string(c.Target)

	b := newTab(TabComparison)
	b.header("Metric", base, target, "Difference", "Ratio (%)")
	for _, m := range c.Metrics {
		b.row(m.Metric.Label(), m.Base, m.Target, m.Difference, report.RatioCell(m.Ratio))
	}
	b.row("Verdict", string(d.Verdict))

	if len(d.Drivers) > 0 {
		b.blank()
		b.header("Driver", "Difference", "Share of change (%)")
		for _, dr := range d.Drivers {
			b.row(string(dr.Discipline), dr.Difference, report.RatioCell(dr.ShareOfChange))
		}
	}

	tab := b.build()
	tab.FrozenRows = 1
	return tab
}

func disciplinesTab(d *report.Data) Tab {
	b := newTab(TabDisciplines)
	b.header("Scenario", "Discipline", "Rows", "Construction (A)", "Operation (B)", "End-of-life (C)",
		"Total GWP", "Share (%)")
	for _, sc := range d.Tree.Scenarios() {
		for _, r := range aggregate.DisciplineSummary(d.Tree, sc) {
			b.row(string(sc), disciplineCell(r.Discipline), r.Totals.Count,
				r.Totals.Construction, r.Totals.Operation, r.Totals.EndOfLife,
				r.Totals.WeightedTotal, r.SharePct)
		}
	}
	tab := b.build()
	tab.FrozenRows = 1
	return tab
}

func datasetTab(items []model.LineItem) Tab {
	b := newTab(TabDataset)
	headers := make([]any, len(report.DatasetHeaders))
	for i, h := range report.DatasetHeaders {
		headers[i] = h
	}
	b.header(headers...)
	for _, item := range items {
		b.row(report.DatasetRow(item)...)
	}
	tab := b.build()
	tab.FrozenRows = 1
	return tab
}

func disciplineCell(d model.Discipline) string {
	if !d.IsSet() {
		return "(none)"
	}
	return string(d)
}

// batches splits values into ranges of at most size rows, each with its
// A1 start row.
func batches(title string, values [][]any, size int) []batch {
	if size <= 0 {
		size = len(values)
	}
	var out []batch
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		out = append(out, batch{
			Range:  fmt.Sprintf("'%s'!A%d", title, start+1),
			Values: values[start:end],
		})
	}
	return out
}

type batch struct {
	Range  string
	Values [][]any
}
