package tui

import (
	"fmt"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Fixed column widths; the category column takes what is left.
const (
	rowWidth    = 5
	codeWidth   = 5
	mmiWidth    = 10
	weightWidth = 6
	totalWidth  = 12
	flagsWidth  = 5
)

func columns(width int) []table.Column {
	fixed := rowWidth + 2*codeWidth + mmiWidth + weightWidth + totalWidth + flagsWidth + 2*8
	category := max(width-fixed, 20)
	return []table.Column{
		{Title: "Row", Width: rowWidth},
		{Title: "Category", Width: category},
		{Title: "Scn", Width: codeWidth},
		{Title: "Disc", Width: codeWidth},
		{Title: "MMI", Width: mmiWidth},
		{Title: "Wt %", Width: weightWidth},
		{Title: "GWP", Width: totalWidth},
		{Title: "Flags", Width: flagsWidth},
	}
}

func tableRow(item model.LineItem, dirty bool) table.Row {
	mmi := "-"
	if item.Mapped.MmiCode.IsSet() {
		mmi = string(item.Mapped.MmiCode) + " " + item.Mapped.MmiLabel
	}
	return table.Row{
		fmt.Sprintf("%d", item.RowID),
		item.Category,
		orDash(string(item.Mapped.Scenario)),
		orDash(string(item.Mapped.Discipline)),
		mmi,
		fmt.Sprintf("%.0f", item.Weighting),
		fmt.Sprintf("%.1f", item.WeightedTotal),
		flags(item, dirty),
	}
}

// flags marks summary rows (S), exclusions (X), rows differing from the
// suggestion (~) and unsaved edits (*).
func flags(item model.LineItem, dirty bool) string {
	var b strings.Builder
	if item.IsSummary {
		b.WriteByte('S')
	}
	if item.Excluded {
		b.WriteByte('X')
	}
	if item.Mapped != item.Suggested {
		b.WriteByte('~')
	}
	if dirty {
		b.WriteByte('*')
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func describe(item model.LineItem) string {
	c := item.Mapped
	state := "included"
	if item.Excluded {
		state = "excluded"
	}
	return fmt.Sprintf("%s / %s / %s, weighting %.0f%%, %s",
		orDash(string(c.Scenario)), orDash(string(c.Discipline)), orDash(string(c.MmiCode)),
		item.Weighting, state)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render(m.config.Title),
		m.renderTabs(),
		m.table.View(),
		m.renderDetail(),
		m.renderFooter(),
		m.renderStatus(),
	}
	if m.config.ShowHelp {
		sections = append(sections, m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(mapping.Views()))
	for _, v := range mapping.Views() {
		label := fmt.Sprintf("%s (%d)", v, m.countView(v))
		if v == m.view {
			tabs = append(tabs, m.theme.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.theme.InactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) countView(v mapping.View) int {
	n := 0
	for _, item := range m.items {
		if v.Includes(item) {
			n++
		}
	}
	return n
}

func (m Model) renderDetail() string {
	idx, ok := m.selected()
	if !ok {
		return m.theme.Subtitle.Render("no rows in this view")
	}
	item := m.items[idx]
	s := item.Suggested
	return m.theme.Subtitle.Render(fmt.Sprintf("%s | suggested %s / %s / %s",
		item.Category, orDash(string(s.Scenario)), orDash(string(s.Discipline)), orDash(string(s.MmiCode))))
}

func (m Model) renderFooter() string {
	st := mapping.Statistics(m.items)
	var total float64
	for _, item := range m.items {
		if item.Aggregatable() {
			total += item.WeightedTotal
		}
	}
	line := fmt.Sprintf("rows %d | active %d | excluded %d | mapped %d | partial %d | completeness %.1f%% | total GWP %.0f",
		st.TotalRows, st.ActiveRows, st.ExcludedRows, st.FullyMapped, st.PartiallyMapped, st.CompletenessPct, total)
	if n := len(m.dirty); n > 0 {
		line += fmt.Sprintf(" | %d unsaved", n)
	}
	return m.theme.Footer.Width(max(m.width, 20)).Render(line)
}

func (m Model) renderStatus() string {
	switch m.level {
	case statusSuccess:
		return m.theme.StatusSuccess.Render(m.status)
	case statusWarning:
		return m.theme.StatusWarning.Render(m.status)
	case statusError:
		return m.theme.StatusError.Render(m.status)
	default:
		return m.theme.StatusInfo.Render(m.status)
	}
}
