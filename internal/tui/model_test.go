package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m, cmd
}

func newTestModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	return NewModel(context.Background(), testutil.EndToEndItems(), opts...)
}

func TestModel_CycleCodes(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(t, m, keyRunes("s"))
	assert.Equal(t, model.ScenarioB, m.Items()[0].Mapped.Scenario)
	assert.Equal(t, []int{0}, m.Changed())

	m, _ = press(t, m, keyRunes("m"))
	assert.Equal(t, model.MmiExisting, m.Items()[0].Mapped.MmiCode)
	assert.Equal(t, "EKS", m.Items()[0].Mapped.MmiLabel)

	m, _ = press(t, m, keyRunes("d"))
	assert.Equal(t, model.DisciplineARK, m.Items()[0].Mapped.Discipline)
	assert.Equal(t, model.DisciplineRIV, m.Items()[0].Suggested.Discipline, "the suggestion is never edited")
}

func TestCycle(t *testing.T) {
	scenarios := model.Scenarios()
	assert.Equal(t, model.ScenarioB, cycle(model.ScenarioA, scenarios))
	assert.Equal(t, model.Scenario(""), cycle(model.ScenarioD, scenarios), "the last code wraps to unset")
	assert.Equal(t, model.ScenarioA, cycle(model.Scenario(""), scenarios))
}

func TestModel_Weighting(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(t, m, keyRunes("-"))
	item := m.Items()[0]
	assert.InDelta(t, 90.0, item.Weighting, 1e-9)
	assert.InDelta(t, 900.0, item.WeightedTotal, 1e-9)

	m, _ = press(t, m, keyRunes("+"), keyRunes("+"))
	item = m.Items()[0]
	assert.InDelta(t, 100.0, item.Weighting, 1e-9, "weighting is clamped at 100")
	assert.InDelta(t, 1000.0, item.WeightedTotal, 1e-9)
}

func TestModel_ExcludeAndViews(t *testing.T) {
	m := newTestModel(t)
	require.Len(t, m.visible, 4)

	m, _ = press(t, m, keyRunes("x"))
	assert.True(t, m.Items()[0].Excluded)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, mapping.ViewUnmapped, m.CurrentView())
	assert.Empty(t, m.visible)
	assert.Contains(t, m.View(), "no rows in this view")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, mapping.ViewMapped, m.CurrentView())
	assert.Len(t, m.visible, 3)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, mapping.ViewExcluded, m.CurrentView())
	require.Len(t, m.visible, 1)

	// Including the only excluded row empties the view.
	m, _ = press(t, m, keyRunes("x"))
	assert.False(t, m.Items()[0].Excluded)
	assert.Empty(t, m.visible)
}

func TestModel_RowLeavesView(t *testing.T) {
	m := newTestModel(t, WithView(mapping.ViewMapped))
	require.Len(t, m.visible, 4)

	// Clearing the MMI code makes row 0 partial, moving it out of the view.
	m, _ = press(t, m, keyRunes("m"), keyRunes("m"), keyRunes("m"), keyRunes("m"))
	assert.Equal(t, model.MmiCode(""), m.Items()[0].Mapped.MmiCode)
	assert.Len(t, m.visible, 3)

	idx, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, 1, m.items[idx].RowID)
}

func TestModel_Reset(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, keyRunes("s"), keyRunes("r"))

	item := m.Items()[0]
	assert.Equal(t, item.Suggested, item.Mapped)
	assert.Equal(t, []int{0}, m.Changed())
}

func TestModel_Save(t *testing.T) {
	var gotChanged []int
	var gotItems []model.LineItem
	save := func(_ context.Context, items []model.LineItem, changed []int) error {
		gotItems, gotChanged = items, changed
		return nil
	}
	m := newTestModel(t, WithSaveFunc(save))

	m, cmd := press(t, m, keyRunes("w"))
	assert.Nil(t, cmd, "nothing to save yet")

	m, _ = press(t, m, keyRunes("x"))
	m, cmd = press(t, m, keyRunes("w"))
	require.NotNil(t, cmd)
	assert.True(t, m.saving)

	m, _ = press(t, m, cmd())
	assert.False(t, m.saving)
	assert.Equal(t, []int{0}, gotChanged)
	require.Len(t, gotItems, 4)
	assert.True(t, gotItems[0].Excluded)
	assert.Empty(t, m.Changed())
	assert.Equal(t, statusSuccess, m.level)
}

func TestModel_SaveError(t *testing.T) {
	m := newTestModel(t, WithSaveFunc(func(context.Context, []model.LineItem, []int) error {
		return errors.New("disk full")
	}))

	m, _ = press(t, m, keyRunes("s"))
	m, cmd := press(t, m, keyRunes("w"))
	require.NotNil(t, cmd)
	m, _ = press(t, m, cmd())

	assert.Equal(t, statusError, m.level)
	assert.Contains(t, m.status, "disk full")
	assert.Equal(t, []int{0}, m.Changed(), "failed saves keep the edits pending")
}

func TestModel_SaveWithoutTarget(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, keyRunes("s"))
	m, cmd := press(t, m, keyRunes("w"))

	assert.Nil(t, cmd)
	assert.Equal(t, statusWarning, m.level)
}

func TestModel_QuitConfirmsUnsavedEdits(t *testing.T) {
	m := newTestModel(t)

	_, cmd := press(t, m, keyRunes("q"))
	require.NotNil(t, cmd, "clean editor quits at once")

	m, _ = press(t, m, keyRunes("s"))
	m, cmd = press(t, m, keyRunes("q"))
	assert.Nil(t, cmd)
	assert.Equal(t, statusWarning, m.level)

	m, cmd = press(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModel_ViewRendersFooter(t *testing.T) {
	m := newTestModel(t, WithTitle("Project X"), WithSize(140, 30))
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})

	out := m.View()
	assert.Contains(t, out, "Project X")
	assert.Contains(t, out, "completeness 100.0%")
	assert.Contains(t, out, "total GWP 1950")
}

func TestRun_NoItems(t *testing.T) {
	_, err := Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestFlags(t *testing.T) {
	item := testutil.EndToEndItems()[0]
	assert.Empty(t, flags(item, false))

	item.Excluded = true
	item.Mapped.Scenario = model.ScenarioB
	assert.Equal(t, "X~*", flags(item, true))
}
