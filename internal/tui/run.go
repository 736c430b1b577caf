package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoItems is returned when there is nothing to edit.
var ErrNoItems = errors.New("no line items to edit")

// Run opens the editor full screen and returns the items as left on quit.
// Unsaved edits are returned too; the caller decides what to do with them.
func Run(ctx context.Context, items []model.LineItem, opts ...Option) ([]model.LineItem, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	m := NewModel(ctx, items, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("mapping editor: %w", err)
	}

	result, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("mapping editor returned %T", final)
	}
	return result.Items(), nil
}
