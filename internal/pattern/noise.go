package pattern

import "strings"

// DefaultNoiseTokens are the markers the export tool leaves on outdated or
// duplicated objects.
var DefaultNoiseTokens = []string{"utdatert", "outdated", "copy", "kopi"}

// NoiseFilter matches categories containing any configured token,
// case-insensitively and as a substring.
type NoiseFilter struct {
	tokens []string
}

// NewNoiseFilter builds a filter from tokens. Blank tokens are ignored and
// duplicates are collapsed; a nil slice means DefaultNoiseTokens.
func NewNoiseFilter(tokens []string) *NoiseFilter {
	if tokens == nil {
		tokens = DefaultNoiseTokens
	}

	seen := make(map[string]bool, len(tokens))
	normalized := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		normalized = append(normalized, tok)
	}

	return &NoiseFilter{tokens: normalized}
}

// Tokens returns the normalized token list.
func (f *NoiseFilter) Tokens() []string {
	return append([]string(nil), f.tokens...)
}

// Match returns the first token contained in category.
func (f *NoiseFilter) Match(category string) (string, bool) {
	lower := strings.ToLower(category)
	for _, tok := range f.tokens {
		if strings.Contains(lower, tok) {
			return tok, true
		}
	}
	return "", false
}
