package aggregate

import (
	"math/rand"
	"testing"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_EndToEnd(t *testing.T) {
	tree := Aggregate(testutil.EndToEndItems())

	require.Equal(t, []model.Scenario{model.ScenarioA, model.ScenarioC}, tree.Scenarios())

	a := tree[model.ScenarioA]
	assert.InDelta(t, 1000, a.Totals.WeightedTotal, 1e-9)
	assert.Equal(t, 1, a.Totals.Count)

	c := tree[model.ScenarioC]
	assert.InDelta(t, 950, c.Totals.WeightedTotal, 1e-9)
	assert.Equal(t, 3, c.Totals.Count)

	riv := c.Disciplines[model.DisciplineRIV]
	require.NotNil(t, riv)
	assert.Equal(t, []model.MmiCode{model.MmiNew, model.MmiExisting, model.MmiReused}, riv.MmiKeys())
	assert.Equal(t, "EKS", riv.Mmi[model.MmiExisting].Label)
	assert.InDelta(t, 50, riv.Mmi[model.MmiReused].Totals.Construction, 1e-9)

	total := tree.Totals()
	assert.InDelta(t, 1950, total.WeightedTotal, 1e-9)
	assert.Equal(t, 4, total.Count)
}

func TestAggregate_Filtering(t *testing.T) {
	items := testutil.NewItemBuilder(t).
		Add("Scenario A - RIV - New", 100, 0, 0).
		Add("S8 - RAMBELL", 5000, 0, 0).
		Add("Scenario A - RIV", 70, 0, 0).
		Add("Scenario A - ARK - New", 30, 0, 0).Excluded().
		Add("Scenario A - RIV - New", 100, 10, 10).Weighted(50).
		Build()

	tree := Aggregate(items)
	require.Len(t, tree, 1)

	a := tree[model.ScenarioA]
	assert.Equal(t, 2, a.Totals.Count)
	assert.InDelta(t, 160, a.Totals.WeightedTotal, 1e-9)
	assert.InDelta(t, 200, a.Totals.Construction, 1e-9, "phase sums are not weighted")
	assert.Len(t, a.Disciplines, 1)
}

func TestAggregate_Empty(t *testing.T) {
	tree := Aggregate(nil)
	assert.Empty(t, tree)
	assert.Empty(t, tree.Scenarios())
	assert.Empty(t, ScenarioSummary(tree))
	assert.Nil(t, DisciplineSummary(tree, model.ScenarioA))
	assert.Nil(t, MmiSummary(tree, model.ScenarioA))
}

// Every level's totals equal the sum over exactly the contributing items.
func TestAggregate_SumProperty(t *testing.T) {
	r := rand.New(rand.NewSource(20240611))

	for iter := 0; iter < 50; iter++ {
		items := testutil.RandomItems(r, 1+r.Intn(200))
		tree := Aggregate(items)

		for _, s := range model.Scenarios() {
			var want Totals
			for _, item := range items {
				if item.Aggregatable() && item.Mapped.Scenario == s {
					want.Add(item)
				}
			}

			sn, ok := tree[s]
			if want.Count == 0 {
				assert.False(t, ok, "iteration %d: scenario %s should be absent", iter, s)
				continue
			}
			require.True(t, ok, "iteration %d: scenario %s missing", iter, s)
			assert.InDelta(t, want.WeightedTotal, sn.Totals.WeightedTotal, 1e-6)
			assert.Equal(t, want.Count, sn.Totals.Count)

			var fromDisciplines Totals
			for _, dn := range sn.Disciplines {
				var fromMmi Totals
				for _, mn := range dn.Mmi {
					fromMmi.Merge(mn.Totals)
				}
				assert.InDelta(t, dn.Totals.WeightedTotal, fromMmi.WeightedTotal, 1e-6)
				assert.Equal(t, dn.Totals.Count, fromMmi.Count)
				fromDisciplines.Merge(dn.Totals)
			}
			assert.InDelta(t, sn.Totals.Construction, fromDisciplines.Construction, 1e-6)
			assert.Equal(t, sn.Totals.Count, fromDisciplines.Count)
		}
	}
}

func TestTotalsValue(t *testing.T) {
	tot := Totals{Construction: 1, Operation: 2, EndOfLife: 3, WeightedTotal: 4}
	assert.InDelta(t, 1, tot.Value(MetricConstruction), 0)
	assert.InDelta(t, 2, tot.Value(MetricOperation), 0)
	assert.InDelta(t, 3, tot.Value(MetricEndOfLife), 0)
	assert.InDelta(t, 4, tot.Value(MetricTotalGWP), 0)

	m, err := ParseMetric("end_of_life")
	require.NoError(t, err)
	assert.Equal(t, MetricEndOfLife, m)
	assert.Equal(t, "End-of-life (C)", m.Label())

	_, err = ParseMetric("scope3")
	assert.Error(t, err)
}

func TestSummaries(t *testing.T) {
	items := testutil.NewItemBuilder(t).
		Add("Scenario C - RIV - New", 300, 0, 0).
		Add("Scenario C - ARK - Existing", 600, 0, 0).
		Add("Scenario C - RIV - Reused", 100, 0, 0).
		Add("Scenario A - RIE - New", 0, 0, 0).
		Build()
	tree := Aggregate(items)

	rows := DisciplineSummary(tree, model.ScenarioC)
	require.Len(t, rows, 2)
	assert.Equal(t, model.DisciplineRIV, rows[0].Discipline, "canonical order")
	assert.InDelta(t, 40, rows[0].SharePct, 1e-9)

	contrib := DisciplineContribution(tree, model.ScenarioC)
	assert.Equal(t, model.DisciplineARK, contrib[0].Discipline, "largest first")
	assert.InDelta(t, 60, contrib[0].SharePct, 1e-9)

	mmi := MmiSummary(tree, model.ScenarioC)
	require.Len(t, mmi, 3)
	assert.Equal(t, model.MmiExisting, mmi[0].Code)
	assert.Equal(t, "EKS", mmi[0].Label)
	assert.InDelta(t, 60, mmi[0].SharePct, 1e-9)
	assert.Equal(t, model.MmiNew, mmi[1].Code)

	zero := DisciplineSummary(tree, model.ScenarioA)
	require.Len(t, zero, 1)
	assert.Zero(t, zero[0].SharePct, "share is 0 when the scenario total is 0")

	assert.Equal(t, []model.Scenario{model.ScenarioC}, AvailableScenarios(tree))

	overview := ScenarioSummary(tree)
	require.Len(t, overview, 2)
	assert.Equal(t, model.ScenarioA, overview[0].Scenario)
}

func TestDisciplineMatrix(t *testing.T) {
	items := testutil.NewItemBuilder(t).
		Add("Scenario A - RIE - New", 10, 0, 0).
		Add("Scenario C - RIV - New", 20, 0, 0).
		Add("Scenario C - RIBp - New", 5, 0, 0).
		Build()

	keys, cells := DisciplineMatrix(Aggregate(items))
	assert.Equal(t, []model.Discipline{model.DisciplineRIV, model.DisciplineRIE, model.DisciplineRIBp}, keys)
	assert.InDelta(t, 10, cells[model.DisciplineRIE][model.ScenarioA].WeightedTotal, 1e-9)
	_, ok := cells[model.DisciplineRIE][model.ScenarioC]
	assert.False(t, ok)
}

func TestSortDisciplines(t *testing.T) {
	ds := []model.Discipline{"XYZ", model.DisciplineRIBp, model.DisciplineARK, "ABC", model.DisciplineRIV}
	SortDisciplines(ds)
	assert.Equal(t, []model.Discipline{model.DisciplineRIV, model.DisciplineARK, model.DisciplineRIBp, "ABC", "XYZ"}, ds)
}
