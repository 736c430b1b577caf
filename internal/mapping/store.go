// Package mapping holds the edit rules for the user-owned classification of
// line items and the statistics derived from it.
package mapping

import (
	"errors"
	"fmt"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
)

// ErrUnknownRow is returned for edits targeting a row ID that does not exist.
var ErrUnknownRow = errors.New("unknown row")

var validator pattern.EditValidator = pattern.NewValidator()

// Apply validates edit and writes it to item. A weighting change is clamped
// and the weighted total recomputed before Apply returns.
func Apply(item *model.LineItem, edit model.MappingEdit) error {
	if err := validator.ValidateEdit(edit); err != nil {
		return fmt.Errorf("row %d: %w", item.RowID, err)
	}

	mapped := item.Mapped
	if edit.Scenario != nil {
		mapped.Scenario = *edit.Scenario
	}
	if edit.Discipline != nil {
		mapped.Discipline = *edit.Discipline
	}
	if edit.MmiCode != nil {
		mapped.MmiCode = *edit.MmiCode
	}
	item.Mapped = model.NewClassification(mapped.Scenario, mapped.Discipline, mapped.MmiCode)

	if edit.Excluded != nil {
		item.Excluded = *edit.Excluded
	}
	if edit.Weighting != nil {
		item.SetWeighting(*edit.Weighting)
	}
	return nil
}

// Find returns the index of the item with rowID.
func Find(items []model.LineItem, rowID int) (int, bool) {
	// Row IDs are assigned in order, so the fast path usually hits.
	if rowID >= 0 && rowID < len(items) && items[rowID].RowID == rowID {
		return rowID, true
	}
	for i := range items {
		if items[i].RowID == rowID {
			return i, true
		}
	}
	return -1, false
}

// ApplyToRow applies edit to the item with rowID in place.
func ApplyToRow(items []model.LineItem, rowID int, edit model.MappingEdit) error {
	idx, ok := Find(items, rowID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRow, rowID)
	}
	return Apply(&items[idx], edit)
}

// ApplyAll returns a copy of items with updates applied by row ID. items is
// not modified; on error no copy is returned.
func ApplyAll(items []model.LineItem, updates map[int]model.MappingEdit) ([]model.LineItem, error) {
	out := model.CloneItems(items)
	for rowID, edit := range updates {
		if err := ApplyToRow(out, rowID, edit); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ResetToSuggested restores the detector's classification for a row.
func ResetToSuggested(item *model.LineItem) {
	item.Mapped = item.Suggested
}
