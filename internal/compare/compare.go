// Package compare computes differences and ratios between scenarios of an
// aggregate tree.
package compare

import (
	"sort"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// MetricComparison compares one metric of two totals.
type MetricComparison struct {
	// Ratio is Target/Base*100, nil when Base is 0.
	Ratio      *float64         `json:"ratio"`
	Metric     aggregate.Metric `json:"metric"`
	Base       float64          `json:"base"`
	Target     float64          `json:"target"`
	Difference float64          `json:"difference"`
}

// Result compares two scenarios, or one discipline across two scenarios.
type Result struct {
	Base       model.Scenario     `json:"base"`
	Target     model.Scenario     `json:"target"`
	Discipline model.Discipline   `json:"discipline,omitempty"`
	Metrics    []MetricComparison `json:"metrics"`
}

// Metric returns the comparison for m.
func (r *Result) Metric(m aggregate.Metric) MetricComparison {
	for _, mc := range r.Metrics {
		if mc.Metric == m {
			return mc
		}
	}
	return MetricComparison{Metric: m}
}

// Total is the comparison of total GWP.
func (r *Result) Total() MetricComparison {
	return r.Metric(aggregate.MetricTotalGWP)
}

// Ratio returns target/base*100, or nil when base is 0.
func Ratio(base, target float64) *float64 {
	if base == 0 {
		return nil
	}
	r := target / base * 100
	return &r
}

func compareTotals(base, target aggregate.Totals) []MetricComparison {
	metrics := aggregate.Metrics()
	out := make([]MetricComparison, 0, len(metrics))
	for _, m := range metrics {
		b, t := base.Value(m), target.Value(m)
		out = append(out, MetricComparison{
			Metric:     m,
			Base:       b,
			Target:     t,
			Difference: t - b,
			Ratio:      Ratio(b, t),
		})
	}
	return out
}

// Compare compares target against base. ok is false when either scenario is
// missing from the tree.
func Compare(tree aggregate.Tree, base, target model.Scenario) (*Result, bool) {
	bn, ok := tree[base]
	if !ok {
		return nil, false
	}
	tn, ok := tree[target]
	if !ok {
		return nil, false
	}

	return &Result{
		Base:    base,
		Target:  target,
		Metrics: compareTotals(bn.Totals, tn.Totals),
	}, true
}

// CompareDiscipline compares one discipline across two scenarios. ok is false
// unless both scenarios contain the discipline.
func CompareDiscipline(tree aggregate.Tree, d model.Discipline, base, target model.Scenario) (*Result, bool) {
	bn, ok := tree[base]
	if !ok {
		return nil, false
	}
	tn, ok := tree[target]
	if !ok {
		return nil, false
	}
	bd, ok := bn.Disciplines[d]
	if !ok {
		return nil, false
	}
	td, ok := tn.Disciplines[d]
	if !ok {
		return nil, false
	}

	return &Result{
		Base:       base,
		Target:     target,
		Discipline: d,
		Metrics:    compareTotals(bd.Totals, td.Totals),
	}, true
}

// DisciplineRow is a discipline's total GWP in two scenarios.
type DisciplineRow struct {
	Ratio       *float64         `json:"ratio"`
	Discipline  model.Discipline `json:"discipline"`
	BaseTotal   float64          `json:"base_total"`
	TargetTotal float64          `json:"target_total"`
	Difference  float64          `json:"difference"`
}

func disciplineRows(bn, tn *aggregate.ScenarioNode) []DisciplineRow {
	seen := map[model.Discipline]bool{}
	keys := make([]model.Discipline, 0, len(bn.Disciplines)+len(tn.Disciplines))
	for _, sn := range []*aggregate.ScenarioNode{bn, tn} {
		for d := range sn.Disciplines {
			if !seen[d] {
				seen[d] = true
				keys = append(keys, d)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rows := make([]DisciplineRow, 0, len(keys))
	for _, d := range keys {
		var b, t float64
		if dn, ok := bn.Disciplines[d]; ok {
			b = dn.Totals.WeightedTotal
		}
		if dn, ok := tn.Disciplines[d]; ok {
			t = dn.Totals.WeightedTotal
		}
		rows = append(rows, DisciplineRow{
			Discipline:  d,
			BaseTotal:   b,
			TargetTotal: t,
			Difference:  t - b,
			Ratio:       Ratio(b, t),
		})
	}
	return rows
}

// CompareAllDisciplines lists every discipline present in either scenario,
// sorted by code. A missing side counts as 0. ok is false when either
// scenario is missing from the tree.
func CompareAllDisciplines(tree aggregate.Tree, base, target model.Scenario) ([]DisciplineRow, bool) {
	bn, ok := tree[base]
	if !ok {
		return nil, false
	}
	tn, ok := tree[target]
	if !ok {
		return nil, false
	}
	return disciplineRows(bn, tn), true
}
