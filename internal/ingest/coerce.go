package ingest

import (
	"math"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/spf13/cast"
)

var spaceReplacer = strings.NewReplacer(
	" ", "",
	"\u00a0", "", // no-break space
	"\u202f", "", // narrow no-break space
	"'", "",
	"\t", "",
)

// ParseAmount converts a spreadsheet cell to a number. It accepts grouped
// thousands ("1 234", "1,234.5", "1.234,5"), a decimal comma and accounting
// negatives "(12)". Anything unparsable is 0.
func ParseAmount(s string) float64 {
	v, ok := parseNumber(s)
	if !ok {
		return 0
	}
	return v
}

// ParseWeighting converts a weighting cell. Blank or unparsable cells yield
// the default weighting; a trailing percent sign is allowed. The result is
// clamped to [0, 100].
func ParseWeighting(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, ok := parseNumber(s)
	if !ok {
		return model.DefaultWeighting
	}
	return model.ClampWeighting(v)
}

func parseNumber(s string) (float64, bool) {
	s = spaceReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.Replace(s, "\u2212", "-", 1) // minus sign

	s = normalizeSeparators(s)

	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// normalizeSeparators rewrites s to use '.' as the only decimal separator.
// When both ',' and '.' appear the last one is the decimal separator. A lone
// ',' is a decimal comma; repeated ones group thousands.
func normalizeSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas == 1:
		return strings.Replace(s, ",", ".", 1)
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}
