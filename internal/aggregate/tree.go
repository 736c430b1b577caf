// Package aggregate rolls line items up into a Scenario -> Discipline -> MMI
// tree with identical totals at every level.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// Metric names a summed quantity of Totals.
type Metric string

// Tracked metrics.
const (
	MetricConstruction Metric = "construction"
	MetricOperation    Metric = "operation"
	MetricEndOfLife    Metric = "end_of_life"
	MetricTotalGWP     Metric = "total_gwp"
)

// Metrics returns the tracked metrics, total first.
func Metrics() []Metric {
	return []Metric{MetricTotalGWP, MetricConstruction, MetricOperation, MetricEndOfLife}
}

// Label returns a human readable metric name.
func (m Metric) Label() string {
	switch m {
	case MetricConstruction:
		return "Construction (A)"
	case MetricOperation:
		return "Operation (B)"
	case MetricEndOfLife:
		return "End-of-life (C)"
	case MetricTotalGWP:
		return "Total GWP"
	}
	return string(m)
}

// ParseMetric accepts a metric name.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Totals is the rollup record shared by every node level.
type Totals struct {
	Construction  float64 `json:"construction"`
	Operation     float64 `json:"operation"`
	EndOfLife     float64 `json:"end_of_life"`
	WeightedTotal float64 `json:"total_gwp"`
	Count         int     `json:"count"`
}

// Add accumulates one line item.
func (t *Totals) Add(item model.LineItem) {
	t.Construction += item.Construction
	t.Operation += item.Operation
	t.EndOfLife += item.EndOfLife
	t.WeightedTotal += item.WeightedTotal
	t.Count++
}

// Merge accumulates another totals record.
func (t *Totals) Merge(o Totals) {
	t.Construction += o.Construction
	t.Operation += o.Operation
	t.EndOfLife += o.EndOfLife
	t.WeightedTotal += o.WeightedTotal
	t.Count += o.Count
}

// Value returns the metric's sum.
func (t Totals) Value(m Metric) float64 {
	switch m {
	case MetricConstruction:
		return t.Construction
	case MetricOperation:
		return t.Operation
	case MetricEndOfLife:
		return t.EndOfLife
	default:
		return t.WeightedTotal
	}
}

// MmiNode is a leaf of the tree.
type MmiNode struct {
	Code   model.MmiCode `json:"code"`
	Label  string        `json:"label"`
	Totals Totals        `json:"totals"`
}

// DisciplineNode groups MMI nodes.
type DisciplineNode struct {
	Mmi        map[model.MmiCode]*MmiNode `json:"mmi"`
	Discipline model.Discipline           `json:"discipline"`
	Totals     Totals                     `json:"totals"`
}

// ScenarioNode groups discipline nodes.
type ScenarioNode struct {
	Disciplines map[model.Discipline]*DisciplineNode `json:"disciplines"`
	Scenario    model.Scenario                       `json:"scenario"`
	Totals      Totals                               `json:"totals"`
}

// Tree is the full rollup keyed by scenario. It is derived data: rebuild it
// with Aggregate instead of editing it.
type Tree map[model.Scenario]*ScenarioNode

// Aggregate groups active, fully mapped items by their mapped scenario,
// discipline and MMI code.
func Aggregate(items []model.LineItem) Tree {
	tree := Tree{}
	for _, item := range items {
		if !item.Aggregatable() {
			continue
		}
		m := item.Mapped

		sn, ok := tree[m.Scenario]
		if !ok {
			sn = &ScenarioNode{
				Scenario:    m.Scenario,
				Disciplines: map[model.Discipline]*DisciplineNode{},
			}
			tree[m.Scenario] = sn
		}

		dn, ok := sn.Disciplines[m.Discipline]
		if !ok {
			dn = &DisciplineNode{
				Discipline: m.Discipline,
				Mmi:        map[model.MmiCode]*MmiNode{},
			}
			sn.Disciplines[m.Discipline] = dn
		}

		mn, ok := dn.Mmi[m.MmiCode]
		if !ok {
			mn = &MmiNode{Code: m.MmiCode, Label: model.MmiLabel(m.MmiCode)}
			dn.Mmi[m.MmiCode] = mn
		}

		sn.Totals.Add(item)
		dn.Totals.Add(item)
		mn.Totals.Add(item)
	}
	return tree
}

// Scenarios returns the tree's scenario keys in canonical order.
func (t Tree) Scenarios() []model.Scenario {
	keys := make([]model.Scenario, 0, len(t))
	for s := range t {
		keys = append(keys, s)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := scenarioRank(keys[i]), scenarioRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Totals returns the sum over all scenarios.
func (t Tree) Totals() Totals {
	var total Totals
	for _, sn := range t {
		total.Merge(sn.Totals)
	}
	return total
}

// Scenario returns the node for s.
func (t Tree) Scenario(s model.Scenario) (*ScenarioNode, bool) {
	sn, ok := t[s]
	return sn, ok
}

// DisciplineKeys returns the scenario's disciplines in canonical order.
func (sn *ScenarioNode) DisciplineKeys() []model.Discipline {
	keys := make([]model.Discipline, 0, len(sn.Disciplines))
	for d := range sn.Disciplines {
		keys = append(keys, d)
	}
	SortDisciplines(keys)
	return keys
}

// MmiKeys returns the discipline's MMI codes in canonical order.
func (dn *DisciplineNode) MmiKeys() []model.MmiCode {
	keys := make([]model.MmiCode, 0, len(dn.Mmi))
	for c := range dn.Mmi {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := mmiRank(keys[i]), mmiRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// SortDisciplines orders disciplines canonically; unknown codes sort last
// by name.
func SortDisciplines(ds []model.Discipline) {
	sort.Slice(ds, func(i, j int) bool {
		ri, rj := disciplineRank(ds[i]), disciplineRank(ds[j])
		if ri != rj {
			return ri < rj
		}
		return ds[i] < ds[j]
	})
}

func scenarioRank(s model.Scenario) int {
	for i, known := range model.Scenarios() {
		if s == known {
			return i
		}
	}
	return len(model.Scenarios())
}

func disciplineRank(d model.Discipline) int {
	for i, known := range model.Disciplines() {
		if d == known {
			return i
		}
	}
	return len(model.Disciplines())
}

func mmiRank(c model.MmiCode) int {
	for i, known := range model.MmiCodes() {
		if c == known {
			return i
		}
	}
	return len(model.MmiCodes())
}
