package tui

import (
	"context"

	"github.com/EdvardGK/reduzer-summary/internal/mapping"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/tui/themes"
)

// SaveFunc persists the edited items. changed lists the row IDs edited since
// the last successful save.
type SaveFunc func(ctx context.Context, items []model.LineItem, changed []int) error

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	OnSave   SaveFunc
	Title    string
	View     mapping.View
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Title:    "Mapping editor",
		View:     mapping.ViewAll,
		Width:    120,
		Height:   30,
		ShowHelp: true,
	}
}

// WithSaveFunc sets what the save key does. Without one, saving reports
// that there is nowhere to save to.
func WithSaveFunc(fn SaveFunc) Option {
	return func(c *Config) {
		c.OnSave = fn
	}
}

// WithTitle sets the heading.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithView sets the initial row filter.
func WithView(v mapping.View) Option {
	return func(c *Config) {
		c.View = v
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
