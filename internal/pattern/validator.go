package pattern

import (
	"errors"
	"fmt"
	"math"

	"github.com/EdvardGK/reduzer-summary/internal/model"
)

var (
	// ErrInvalidCode is returned for edits naming an unknown code.
	ErrInvalidCode = errors.New("invalid code")
	// ErrInvalidWeighting is returned for NaN or infinite weightings.
	ErrInvalidWeighting = errors.New("weighting must be a finite number")
)

// Validator implements EditValidator.
type Validator struct{}

// NewValidator creates a new mapping edit validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEdit ensures every code in the edit is empty or known and the
// weighting, if any, is finite. Range is not checked: the store clamps.
func (v *Validator) ValidateEdit(edit model.MappingEdit) error {
	if edit.Scenario != nil && edit.Scenario.IsSet() && !edit.Scenario.Valid() {
		return fmt.Errorf("scenario %q: %w", *edit.Scenario, ErrInvalidCode)
	}
	if edit.Discipline != nil && edit.Discipline.IsSet() && !edit.Discipline.Valid() {
		return fmt.Errorf("discipline %q: %w", *edit.Discipline, ErrInvalidCode)
	}
	if edit.MmiCode != nil && edit.MmiCode.IsSet() && !edit.MmiCode.Valid() {
		return fmt.Errorf("MMI code %q: %w", *edit.MmiCode, ErrInvalidCode)
	}
	if edit.Weighting != nil {
		w := *edit.Weighting
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%v: %w", w, ErrInvalidWeighting)
		}
	}
	return nil
}

// ValidateClassification checks that a complete classification uses known codes.
func (v *Validator) ValidateClassification(c model.Classification) error {
	if !model.ValidCombination(c.Scenario, c.Discipline, c.MmiCode) {
		return fmt.Errorf("combination %s/%s/%s: %w", c.Scenario, c.Discipline, c.MmiCode, ErrInvalidCode)
	}
	return nil
}
