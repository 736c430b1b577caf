// Package report renders aggregated GWP results as terminal tables, JSON and
// Excel workbooks.
package report

import (
	"context"
	"time"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/compare"
	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// DefaultTopDrivers is the number of drivers listed in reports.
const DefaultTopDrivers = 3

// Writer publishes a report outside the process: an xlsx file, a Google
// spreadsheet.
type Writer interface {
	Write(ctx context.Context, d *Data) error
}

// Options selects the scenario pair a report compares.
type Options struct {
	Title  string
	Base   model.Scenario
	Target model.Scenario
	TopN   int
}

// Data is everything a renderer needs, computed once from the line items.
type Data struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Tree        aggregate.Tree            `json:"-"`
	Comparison  *compare.Result           `json:"comparison,omitempty"`
	Title       string                    `json:"title"`
	Base        model.Scenario            `json:"base"`
	Target      model.Scenario            `json:"target"`
	Scenarios   []aggregate.ScenarioRow   `json:"scenarios"`
	Disciplines []compare.DisciplineRow   `json:"disciplines,omitempty"`
	Drivers     []compare.Driver          `json:"drivers,omitempty"`
	Items       []model.LineItem          `json:"-"`
	Insights    Insights                  `json:"insights"`
	Weighting   mapping.WeightingSummary  `json:"weighting"`
	Stats       mapping.Stats             `json:"statistics"`
	Verdict     compare.Verdict           `json:"verdict"`
}

// Build aggregates items and runs the comparison described by opts. A
// missing scenario leaves the comparison fields empty.
func Build(items []model.LineItem, opts Options) (*Data, error) {
	if opts.Base == "" {
		opts.Base = model.ScenarioA
	}
	if opts.Target == "" {
		opts.Target = model.ScenarioC
	}
	if opts.TopN == 0 {
		opts.TopN = DefaultTopDrivers
	}
	if opts.Title == "" {
		opts.Title = "GWP summary"
	}

	weighting, err := mapping.WeightingStats(items)
	if err != nil {
		return nil, err
	}

	tree := aggregate.Aggregate(items)
	d := &Data{
		GeneratedAt: time.Now().UTC(),
		Title:       opts.Title,
		Base:        opts.Base,
		Target:      opts.Target,
		Items:       items,
		Tree:        tree,
		Scenarios:   aggregate.ScenarioSummary(tree),
		Stats:       mapping.Statistics(items),
		Weighting:   weighting,
		Verdict:     compare.VerdictNotComparable,
	}

	if result, ok := compare.Compare(tree, opts.Base, opts.Target); ok {
		d.Comparison = result
		d.Verdict = compare.Judge(result.Total().Ratio)
		d.Disciplines, _ = compare.CompareAllDisciplines(tree, opts.Base, opts.Target)
		d.Drivers, _ = compare.TopDrivers(tree, opts.Base, opts.Target, opts.TopN)
	}

	d.Insights = GenerateInsights(d)
	return d, nil
}
