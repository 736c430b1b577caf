package aggregate

import (
	"sort"

	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// ScenarioRow is one line of the scenario overview.
type ScenarioRow struct {
	Scenario model.Scenario `json:"scenario"`
	Totals   Totals         `json:"totals"`
}

// DisciplineRow is a discipline's totals within one scenario.
type DisciplineRow struct {
	Discipline model.Discipline `json:"discipline"`
	Totals     Totals           `json:"totals"`
	// SharePct is the discipline's share of the scenario's total GWP; 0 when
	// the scenario total is not positive.
	SharePct float64 `json:"share_pct"`
}

// MmiRow is an MMI code's totals within one scenario, across disciplines.
type MmiRow struct {
	Code     model.MmiCode `json:"code"`
	Label    string        `json:"label"`
	Totals   Totals        `json:"totals"`
	SharePct float64       `json:"share_pct"`
}

// ScenarioSummary lists every scenario in the tree in canonical order.
func ScenarioSummary(tree Tree) []ScenarioRow {
	rows := make([]ScenarioRow, 0, len(tree))
	for _, s := range tree.Scenarios() {
		rows = append(rows, ScenarioRow{Scenario: s, Totals: tree[s].Totals})
	}
	return rows
}

// AvailableScenarios returns scenarios whose total GWP is non-zero.
func AvailableScenarios(tree Tree) []model.Scenario {
	out := make([]model.Scenario, 0, len(tree))
	for _, s := range tree.Scenarios() {
		if tree[s].Totals.WeightedTotal != 0 {
			out = append(out, s)
		}
	}
	return out
}

// DisciplineSummary lists the disciplines of scenario s in canonical order.
// It is empty when s is not in the tree.
func DisciplineSummary(tree Tree, s model.Scenario) []DisciplineRow {
	sn, ok := tree[s]
	if !ok {
		return nil
	}

	rows := make([]DisciplineRow, 0, len(sn.Disciplines))
	for _, d := range sn.DisciplineKeys() {
		dn := sn.Disciplines[d]
		rows = append(rows, DisciplineRow{
			Discipline: d,
			Totals:     dn.Totals,
			SharePct:   share(dn.Totals.WeightedTotal, sn.Totals.WeightedTotal),
		})
	}
	return rows
}

// DisciplineContribution is DisciplineSummary ordered by total GWP, largest first.
func DisciplineContribution(tree Tree, s model.Scenario) []DisciplineRow {
	rows := DisciplineSummary(tree, s)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Totals.WeightedTotal > rows[j].Totals.WeightedTotal
	})
	return rows
}

// MmiSummary sums each MMI code across the scenario's disciplines, largest
// total GWP first.
func MmiSummary(tree Tree, s model.Scenario) []MmiRow {
	sn, ok := tree[s]
	if !ok {
		return nil
	}

	byCode := map[model.MmiCode]*MmiRow{}
	for _, d := range sn.DisciplineKeys() {
		dn := sn.Disciplines[d]
		for _, code := range dn.MmiKeys() {
			row, ok := byCode[code]
			if !ok {
				row = &MmiRow{Code: code, Label: model.MmiLabel(code)}
				byCode[code] = row
			}
			row.Totals.Merge(dn.Mmi[code].Totals)
		}
	}

	rows := make([]MmiRow, 0, len(byCode))
	for _, code := range model.MmiCodes() {
		if row, ok := byCode[code]; ok {
			row.SharePct = share(row.Totals.WeightedTotal, sn.Totals.WeightedTotal)
			rows = append(rows, *row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Totals.WeightedTotal > rows[j].Totals.WeightedTotal
	})
	return rows
}

// DisciplineMatrix returns the union of disciplines over all scenarios and
// each discipline's totals per scenario. Missing cells are zero totals.
func DisciplineMatrix(tree Tree) ([]model.Discipline, map[model.Discipline]map[model.Scenario]Totals) {
	cells := map[model.Discipline]map[model.Scenario]Totals{}
	for s, sn := range tree {
		for d, dn := range sn.Disciplines {
			if cells[d] == nil {
				cells[d] = map[model.Scenario]Totals{}
			}
			cells[d][s] = dn.Totals
		}
	}

	keys := make([]model.Discipline, 0, len(cells))
	for d := range cells {
		keys = append(keys, d)
	}
	SortDisciplines(keys)
	return keys, cells
}

func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}
