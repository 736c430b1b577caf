package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation is handled by the table; these are listed for help.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Edits
	CycleScenario   key.Binding
	CycleDiscipline key.Binding
	CycleMmi        key.Binding
	ToggleExclude   key.Binding
	WeightUp        key.Binding
	WeightDown      key.Binding
	Reset           key.Binding

	// Views
	NextView key.Binding
	PrevView key.Binding

	// Application
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first row"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last row"),
		),

		CycleScenario: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle scenario"),
		),
		CycleDiscipline: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "cycle discipline"),
		),
		CycleMmi: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "cycle MMI"),
		),
		ToggleExclude: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x/Space", "exclude/include"),
		),
		WeightUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "weighting +10"),
		),
		WeightDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "weighting -10"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset to suggestion"),
		),

		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous view"),
		),

		Save: key.NewBinding(
			key.WithKeys("ctrl+s", "w"),
			key.WithHelp("w/Ctrl+S", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/Esc", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CycleScenario, k.CycleDiscipline, k.CycleMmi, k.ToggleExclude, k.NextView, k.Save, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.CycleScenario, k.CycleDiscipline, k.CycleMmi, k.Reset},
		{k.ToggleExclude, k.WeightUp, k.WeightDown},
		{k.NextView, k.PrevView, k.Save, k.Help, k.Quit},
	}
}
