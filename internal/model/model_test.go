package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmiLabel(t *testing.T) {
	tests := []struct {
		code MmiCode
		want string
	}{
		{MmiNew, "NY"},
		{MmiExisting, "EKS"},
		{MmiReused, "GJEN"},
		{MmiDemolish, "RIVES"},
		{"", UnknownMmiLabel},
		{"500", UnknownMmiLabel},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, MmiLabel(tt.code))
		})
	}

	assert.Equal(t, "GJEN (Reuse)", MmiDescription(MmiReused))
	assert.Equal(t, UnknownMmiLabel, MmiDescription("42"))
}

func TestParseCodes(t *testing.T) {
	s, ok := ParseScenario(" scenario c ")
	require.True(t, ok)
	assert.Equal(t, ScenarioC, s)

	_, ok = ParseScenario("E")
	assert.False(t, ok)

	d, ok := ParseDiscipline("ribp")
	require.True(t, ok)
	assert.Equal(t, DisciplineRIBp, d)

	_, ok = ParseDiscipline("RIBX")
	assert.False(t, ok)

	for _, in := range []string{"800", "MMI 800", "mmi-800", "gjen"} {
		m, ok := ParseMmiCode(in)
		require.True(t, ok, in)
		assert.Equal(t, MmiReused, m, in)
	}

	_, ok = ParseMmiCode("500")
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	c := NewClassification(ScenarioA, DisciplineRIV, MmiNew)
	assert.True(t, c.Complete())
	assert.False(t, c.Partial())
	assert.Equal(t, "NY", c.MmiLabel)
	assert.Equal(t, "A_RIV_300", c.ID())

	partial := NewClassification(ScenarioA, "", "")
	assert.False(t, partial.Complete())
	assert.True(t, partial.Partial())
	assert.Equal(t, UnknownMmiLabel, partial.MmiLabel)
	assert.Empty(t, partial.ID())

	assert.False(t, Classification{}.Partial())
	assert.True(t, ValidCombination(ScenarioD, DisciplineRIBp, MmiDemolish))
	assert.False(t, ValidCombination(ScenarioD, "", MmiDemolish))
}

func TestLineItemWeighting(t *testing.T) {
	tests := []struct {
		name      string
		weighting float64
		want      float64
	}{
		{name: "full", weighting: 100, want: 150},
		{name: "half", weighting: 50, want: 75},
		{name: "zero", weighting: 0, want: 0},
		{name: "above range clamps", weighting: 250, want: 150},
		{name: "below range clamps", weighting: -10, want: 0},
		{name: "fraction", weighting: 33.3, want: 150 * 0.333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := LineItem{Construction: 100, Operation: 20, EndOfLife: 30}
			item.SetWeighting(tt.weighting)

			assert.InDelta(t, 150, item.BaseTotal, 1e-9)
			assert.InDelta(t, tt.want, item.WeightedTotal, 1e-9)
			assert.InDelta(t, item.BaseTotal*item.Weighting/100, item.WeightedTotal, 1e-9)
		})
	}
}

func TestLineItemSetPhases(t *testing.T) {
	item := LineItem{Construction: 10, Weighting: 50}
	item.Recompute()
	require.InDelta(t, 5, item.WeightedTotal, 1e-9)

	item.SetPhases(100, -20, 0)
	assert.InDelta(t, 80, item.BaseTotal, 1e-9)
	assert.InDelta(t, 40, item.WeightedTotal, 1e-9)
}

func TestClampWeightingNaN(t *testing.T) {
	assert.Equal(t, DefaultWeighting, ClampWeighting(math.NaN()))
}

func TestCloneItems(t *testing.T) {
	items := []LineItem{{RowID: 0, Category: "a"}}
	clone := CloneItems(items)
	clone[0].Category = "b"
	assert.Equal(t, "a", items[0].Category)
	assert.Nil(t, CloneItems(nil))
}

func TestProjectStatusValid(t *testing.T) {
	assert.True(t, ProjectStatusDraft.Valid())
	assert.False(t, ProjectStatus("archived").Valid())
}
