// Package themes defines the visual styles of the mapping editor.
package themes

import "github.com/charmbracelet/lipgloss"

// Palette is the handful of colours a theme is derived from.
type Palette struct {
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Rule    lipgloss.Color
	Good    lipgloss.Color
	Caution lipgloss.Color
	Bad     lipgloss.Color
}

// Theme holds the styles the editor renders with.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	TableHeader   lipgloss.Style
	Selected      lipgloss.Style
	ActiveTab     lipgloss.Style
	InactiveTab   lipgloss.Style
	Footer        lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
}

// New derives a theme from p.
func New(p Palette) Theme {
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtitle: lipgloss.NewStyle().Foreground(p.Dim),
		TableHeader: lipgloss.NewStyle().Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.Rule).
			BorderBottom(true),
		Selected:    lipgloss.NewStyle().Bold(true).Background(p.Accent).Foreground(lipgloss.Color("#0a0a0a")),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Underline(true).Foreground(p.Accent).Padding(0, 1),
		InactiveTab: lipgloss.NewStyle().Foreground(p.Dim).Padding(0, 1),
		Footer: lipgloss.NewStyle().Foreground(p.Dim).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.Rule).
			BorderTop(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(p.Text),
		StatusSuccess: status(p.Good),
		StatusWarning: status(p.Caution),
		StatusError:   status(p.Bad),
	}
}

// Default uses the same greens and reds as the command-line reports, so a
// reduction looks the same in both.
var Default = New(Palette{
	Accent:  lipgloss.Color("#3FA34D"),
	Text:    lipgloss.Color("#fafafa"),
	Dim:     lipgloss.Color("#a3a3a3"),
	Rule:    lipgloss.Color("#404040"),
	Good:    lipgloss.Color("#3FA34D"),
	Caution: lipgloss.Color("#FFE66D"),
	Bad:     lipgloss.Color("#FF6B6B"),
})
