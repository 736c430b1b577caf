package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidStatus  = errors.New("invalid project status")
	ErrInvalidItem    = errors.New("invalid line item")
	ErrDuplicateRowID = errors.New("duplicate row id")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateStatus(status model.ProjectStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var codes = pattern.NewValidator()

// validateItem rejects rows that could not have come out of ingest.
func validateItem(item model.LineItem) error {
	if item.RowID < 0 {
		return fmt.Errorf("%w: negative row id %d", ErrInvalidItem, item.RowID)
	}
	if strings.TrimSpace(item.Category) == "" {
		return fmt.Errorf("%w: row %d has no category", ErrInvalidItem, item.RowID)
	}
	for name, v := range map[string]float64{
		"construction": item.Construction,
		"operation":    item.Operation,
		"end_of_life":  item.EndOfLife,
		"weighting":    item.Weighting,
	} {
		if !finite(v) {
			return fmt.Errorf("%w: row %d %s is not a finite number", ErrInvalidItem, item.RowID, name)
		}
	}
	for _, c := range []model.Classification{item.Suggested, item.Mapped} {
		if c.Complete() {
			if err := codes.ValidateClassification(c); err != nil {
				return fmt.Errorf("%w: row %d: %w", ErrInvalidItem, item.RowID, err)
			}
			continue
		}
		if c.Scenario.IsSet() && !c.Scenario.Valid() ||
			c.Discipline.IsSet() && !c.Discipline.Valid() ||
			c.MmiCode.IsSet() && !c.MmiCode.Valid() {
			return fmt.Errorf("%w: row %d has an unknown code", ErrInvalidItem, item.RowID)
		}
	}
	return nil
}

func validateItems(items []model.LineItem) error {
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return err
		}
		if _, dup := seen[item.RowID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateRowID, item.RowID)
		}
		seen[item.RowID] = struct{}{}
	}
	return nil
}
