// Package tui is an interactive terminal editor for line item mappings.
package tui

import (
	"context"
	"fmt"

	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// weightingStep is how far one key press moves the weighting.
const weightingStep = 10.0

// chromeHeight is the number of lines around the table: title, tabs,
// detail, footer border and stats, status and help.
const chromeHeight = 9

// Model holds the editor state.
type Model struct {
	ctx         context.Context
	theme       themes.Theme
	config      Config
	dirty       map[int]bool
	help        help.Model
	keymap      KeyMap
	status      string
	items       []model.LineItem
	visible     []int
	table       table.Model
	view        mapping.View
	width       int
	height      int
	level       statusLevel
	saving      bool
	confirmQuit bool
	quitting    bool
}

// NewModel creates an editor over a copy of items.
func NewModel(ctx context.Context, items []model.LineItem, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := Model{
		ctx:    ctx,
		config: cfg,
		theme:  cfg.Theme,
		items:  model.CloneItems(items),
		dirty:  make(map[int]bool),
		keymap: DefaultKeyMap(),
		help:   help.New(),
		view:   cfg.View,
		width:  cfg.Width,
		height: cfg.Height,
	}
	m.help.ShowAll = false

	styles := table.DefaultStyles()
	styles.Header = m.theme.TableHeader
	styles.Selected = m.theme.Selected

	m.table = table.New(
		table.WithColumns(columns(m.width)),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
		table.WithStyles(styles),
	)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Items returns the edited items.
func (m Model) Items() []model.LineItem {
	return model.CloneItems(m.items)
}

// Changed lists the row IDs edited since the last save.
func (m Model) Changed() []int {
	return sortedKeys(m.dirty)
}

// CurrentView returns the current row filter.
func (m Model) CurrentView() mapping.View {
	return m.view
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(columns(m.width))
		m.table.SetHeight(m.tableHeight())
		m.help.Width = msg.Width
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.setStatus(statusError, "save failed: "+msg.err.Error())
			return m, nil
		}
		m.dirty = make(map[int]bool)
		m.confirmQuit = false
		m.setStatus(statusSuccess, fmt.Sprintf("saved %d changed rows", msg.changed))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap

	if key.Matches(msg, k.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}
	if !key.Matches(msg, k.Quit) {
		m.confirmQuit = false
	}

	switch {
	case key.Matches(msg, k.Quit):
		if len(m.dirty) > 0 && !m.confirmQuit {
			m.confirmQuit = true
			m.setStatus(statusWarning, fmt.Sprintf("%d unsaved rows: press q again to discard, w to save", len(m.dirty)))
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case key.Matches(msg, k.NextView):
		m.switchView(1)
		return m, nil

	case key.Matches(msg, k.PrevView):
		m.switchView(-1)
		return m, nil

	case key.Matches(msg, k.Save):
		return m.save()

	case key.Matches(msg, k.CycleScenario):
		return m.editSelected(func(item model.LineItem) model.MappingEdit {
			next := cycle(item.Mapped.Scenario, model.Scenarios())
			return model.MappingEdit{Scenario: &next}
		})

	case key.Matches(msg, k.CycleDiscipline):
		return m.editSelected(func(item model.LineItem) model.MappingEdit {
			next := cycle(item.Mapped.Discipline, model.Disciplines())
			return model.MappingEdit{Discipline: &next}
		})

	case key.Matches(msg, k.CycleMmi):
		return m.editSelected(func(item model.LineItem) model.MappingEdit {
			next := cycle(item.Mapped.MmiCode, model.MmiCodes())
			return model.MappingEdit{MmiCode: &next}
		})

	case key.Matches(msg, k.ToggleExclude):
		return m.editSelected(func(item model.LineItem) model.MappingEdit {
			excluded := !item.Excluded
			return model.MappingEdit{Excluded: &excluded}
		})

	case key.Matches(msg, k.WeightUp):
		return m.editSelected(func(item model.LineItem) model.MappingEdit {
			w := item.Weighting + weightingStep
			return model.MappingEdit{Weighting: &w}
		})

	case key.Matches(msg, k.WeightDown):
		return m.editSelected(func(item model.LineItem) model.MappingEdit {
			w := item.Weighting - weightingStep
			return model.MappingEdit{Weighting: &w}
		})

	case key.Matches(msg, k.Reset):
		idx, ok := m.selected()
		if !ok {
			return m, nil
		}
		mapping.ResetToSuggested(&m.items[idx])
		m.dirty[m.items[idx].RowID] = true
		m.setStatus(statusInfo, fmt.Sprintf("row %d reset to suggestion", m.items[idx].RowID))
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// editSelected builds an edit from the selected item and applies it through
// the mapping store.
func (m Model) editSelected(build func(model.LineItem) model.MappingEdit) (tea.Model, tea.Cmd) {
	idx, ok := m.selected()
	if !ok {
		return m, nil
	}

	item := &m.items[idx]
	if err := mapping.Apply(item, build(*item)); err != nil {
		m.setStatus(statusError, err.Error())
		return m, nil
	}
	m.dirty[item.RowID] = true
	m.setStatus(statusInfo, fmt.Sprintf("row %d: %s", item.RowID, describe(*item)))
	m.refresh()
	return m, nil
}

func (m Model) save() (tea.Model, tea.Cmd) {
	switch {
	case m.saving:
		return m, nil
	case m.config.OnSave == nil:
		m.setStatus(statusWarning, "nothing to save to: open a saved project to persist edits")
		return m, nil
	case len(m.dirty) == 0:
		m.setStatus(statusInfo, "no changes to save")
		return m, nil
	}
	m.saving = true
	m.setStatus(statusInfo, "saving...")
	return m, saveCmd(m.ctx, m.config.OnSave, m.items, m.Changed())
}

func (m *Model) switchView(step int) {
	views := mapping.Views()
	pos := 0
	for i, v := range views {
		if v == m.view {
			pos = i
		}
	}
	m.view = views[(pos+step+len(views))%len(views)]
	m.table.SetCursor(0)
	m.refresh()
}

// selected returns the index into m.items of the highlighted row.
func (m Model) selected() (int, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[cursor], true
}

// refresh recomputes the visible rows after an edit or view change. Rows
// leaving the view move the cursor to the next remaining row.
func (m *Model) refresh() {
	visible := make([]int, 0, len(m.items))
	rows := make([]table.Row, 0, len(m.items))
	for i, item := range m.items {
		if !m.view.Includes(item) {
			continue
		}
		visible = append(visible, i)
		rows = append(rows, tableRow(item, m.dirty[item.RowID]))
	}
	m.visible = visible
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.level = level
	m.status = text
}

func (m Model) tableHeight() int {
	h := m.height - chromeHeight
	if m.help.ShowAll {
		h -= 4
	}
	return max(h, 3)
}

// cycle returns the value after current in values, with the empty value
// between the last and the first.
func cycle[T ~string](current T, values []T) T {
	for i, v := range values {
		if v == current {
			if i == len(values)-1 {
				return ""
			}
			return values[i+1]
		}
	}
	return values[0]
}
