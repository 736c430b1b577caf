package tui

import (
	"context"
	"sort"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// saveCmd runs the save callback off the update loop.
func saveCmd(ctx context.Context, fn SaveFunc, items []model.LineItem, changed []int) tea.Cmd {
	snapshot := model.CloneItems(items)
	return func() tea.Msg {
		err := fn(ctx, snapshot, changed)
		return savedMsg{err: err, changed: len(changed)}
	}
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
