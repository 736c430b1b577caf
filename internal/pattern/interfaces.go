// Package pattern provides lexical noise filtering and mapping validation
// shared by ingest and the mapping editor.
package pattern

import "github.com/EdvardGK/reduzer-summary/internal/model"

// NoiseMatcher flags categories that are leftovers from editing the source
// model rather than real line items.
type NoiseMatcher interface {
	// Match returns the first noise token found in category.
	Match(category string) (token string, ok bool)
}

// EditValidator checks a mapping edit before it is applied.
type EditValidator interface {
	// ValidateEdit rejects unknown codes and out-of-range weightings.
	ValidateEdit(edit model.MappingEdit) error
}
