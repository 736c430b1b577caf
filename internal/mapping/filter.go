package mapping

import (
	"fmt"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// View selects a subset of line items for review.
type View string

// Views offered by the mapping editor and the CLI.
const (
	ViewAll      View = "all"
	ViewUnmapped View = "unmapped"
	ViewMapped   View = "mapped"
	ViewExcluded View = "excluded"
)

// Views returns the views in display order.
func Views() []View {
	return []View{ViewAll, ViewUnmapped, ViewMapped, ViewExcluded}
}

// ParseView accepts a view name in any case.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Views() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q (want all, unmapped, mapped or excluded)", s)
}

// Includes reports whether item belongs to the view.
func (v View) Includes(item model.LineItem) bool {
	switch v {
	case ViewUnmapped:
		return item.Active() && !item.FullyMapped()
	case ViewMapped:
		return item.Active() && item.FullyMapped()
	case ViewExcluded:
		return item.Excluded
	default:
		return true
	}
}

// Filter returns the items in view, preserving order.
func Filter(items []model.LineItem, view View) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		if view.Includes(item) {
			out = append(out, item)
		}
	}
	return out
}
