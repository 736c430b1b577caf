package mapping

import (
	"testing"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
	"github.com/EdvardGK/reduzer-summary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		check  func(t *testing.T, item model.LineItem)
		errIs  error
		edit   model.MappingEdit
		hasErr bool
	}{
		{
			name: "scenario change keeps other fields",
			edit: model.MappingEdit{Scenario: ptr(model.ScenarioC)},
			check: func(t *testing.T, item model.LineItem) {
				assert.Equal(t, model.NewClassification(model.ScenarioC, model.DisciplineRIV, model.MmiNew), item.Mapped)
				assert.Equal(t, model.ScenarioA, item.Suggested.Scenario, "suggestion is the audit trail")
			},
		},
		{
			name: "mmi change updates label",
			edit: model.MappingEdit{MmiCode: ptr(model.MmiReused)},
			check: func(t *testing.T, item model.LineItem) {
				assert.Equal(t, "GJEN", item.Mapped.MmiLabel)
			},
		},
		{
			name: "clearing a field",
			edit: model.MappingEdit{Discipline: ptr(model.Discipline(""))},
			check: func(t *testing.T, item model.LineItem) {
				assert.False(t, item.FullyMapped())
			},
		},
		{
			name: "exclusion toggle",
			edit: model.MappingEdit{Excluded: ptr(true)},
			check: func(t *testing.T, item model.LineItem) {
				assert.True(t, item.Excluded)
				assert.InDelta(t, 1000, item.WeightedTotal, 1e-9)
			},
		},
		{
			name: "weighting recomputes immediately",
			edit: model.MappingEdit{Weighting: ptr(25.0)},
			check: func(t *testing.T, item model.LineItem) {
				assert.InDelta(t, 25, item.Weighting, 1e-9)
				assert.InDelta(t, 250, item.WeightedTotal, 1e-9)
			},
		},
		{
			name: "weighting above range clamps",
			edit: model.MappingEdit{Weighting: ptr(140.0)},
			check: func(t *testing.T, item model.LineItem) {
				assert.InDelta(t, 100, item.Weighting, 1e-9)
				assert.InDelta(t, 1000, item.WeightedTotal, 1e-9)
			},
		},
		{
			name:   "invalid code is rejected untouched",
			edit:   model.MappingEdit{Scenario: ptr(model.Scenario("Q")), Weighting: ptr(10.0)},
			hasErr: true,
			errIs:  pattern.ErrInvalidCode,
			check: func(t *testing.T, item model.LineItem) {
				assert.Equal(t, model.ScenarioA, item.Mapped.Scenario)
				assert.InDelta(t, 100, item.Weighting, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := testutil.NewItemBuilder(t).Add("Scenario A - RIV - New", 1000, 0, 0).Build()[0]

			err := Apply(&item, tt.edit)
			if tt.hasErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
			}
			tt.check(t, item)
		})
	}
}

func TestApplyAll(t *testing.T) {
	items := testutil.EndToEndItems()

	updated, err := ApplyAll(items, map[int]model.MappingEdit{
		1: {Weighting: ptr(50.0)},
		3: {Excluded: ptr(true)},
	})
	require.NoError(t, err)

	assert.InDelta(t, 400, updated[1].WeightedTotal, 1e-9)
	assert.True(t, updated[3].Excluded)
	assert.InDelta(t, 800, items[1].WeightedTotal, 1e-9, "input is not modified")
	assert.False(t, items[3].Excluded)

	_, err = ApplyAll(items, map[int]model.MappingEdit{99: {Excluded: ptr(true)}})
	assert.ErrorIs(t, err, ErrUnknownRow)
}

func TestFind(t *testing.T) {
	items := testutil.EndToEndItems()
	reordered := []model.LineItem{items[3], items[1], items[0]}

	idx, ok := Find(reordered, 0)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = Find(reordered, 1)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = Find(reordered, 2)
	assert.False(t, ok)
}

func TestResetToSuggested(t *testing.T) {
	item := testutil.NewItemBuilder(t).
		Add("Scenario A - RIV - New", 1, 0, 0).
		Mapped(model.ScenarioB, model.DisciplineARK, model.MmiDemolish).
		Build()[0]

	ResetToSuggested(&item)
	assert.Equal(t, item.Suggested, item.Mapped)
}

func TestFilter(t *testing.T) {
	items := testutil.NewItemBuilder(t).
		Add("Scenario A - RIV - New", 1, 0, 0).
		Add("Scenario A - RIV", 1, 0, 0).
		Add("S8 - RAMBELL", 1, 0, 0).
		Add("Scenario C - ARK - 900", 1, 0, 0).Excluded().
		Build()

	tests := []struct {
		view View
		want []int
	}{
		{ViewAll, []int{0, 1, 2, 3}},
		{ViewUnmapped, []int{1}},
		{ViewMapped, []int{0}},
		{ViewExcluded, []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			got := Filter(items, tt.view)
			ids := make([]int, 0, len(got))
			for _, item := range got {
				ids = append(ids, item.RowID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	v, err := ParseView(" Unmapped ")
	require.NoError(t, err)
	assert.Equal(t, ViewUnmapped, v)

	_, err = ParseView("pending")
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	items := testutil.NewItemBuilder(t).
		Add("Scenario A - RIV - New", 1, 0, 0).
		Add("Scenario A - RIV - New", 1, 0, 0).
		Add("Scenario A - RIV", 1, 0, 0).
		Add("Random text", 1, 0, 0).
		Add("S8 - RAMBELL", 1, 0, 0).
		Build()

	s := Statistics(items)
	assert.Equal(t, Stats{
		TotalRows:       5,
		ExcludedRows:    1,
		ActiveRows:      4,
		FullyMapped:     2,
		PartiallyMapped: 2,
		CompletenessPct: 50,
	}, s)
}

func TestStatistics_NoActiveRows(t *testing.T) {
	items := testutil.NewItemBuilder(t).Add("Total", 1, 0, 0).Build()

	s := Statistics(items)
	assert.Equal(t, 0, s.ActiveRows)
	assert.Zero(t, s.CompletenessPct)

	assert.Zero(t, Statistics(nil).CompletenessPct)
}

func TestWeightingStats(t *testing.T) {
	items := testutil.NewItemBuilder(t).
		Add("Scenario A - RIV - New", 1, 0, 0).
		Add("Scenario A - RIV - New", 1, 0, 0).Weighted(50).
		Add("Scenario A - RIV - New", 1, 0, 0).Weighted(30).
		Add("Total", 1, 0, 0).Weighted(0).
		Build()

	ws, err := WeightingStats(items)
	require.NoError(t, err)
	assert.InDelta(t, 60, ws.Mean, 1e-9)
	assert.InDelta(t, 50, ws.Median, 1e-9)
	assert.InDelta(t, 30, ws.Min, 1e-9)
	assert.Equal(t, 2, ws.Discounted)

	empty, err := WeightingStats(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Mean)
}
