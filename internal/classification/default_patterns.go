package classification

import "github.com/EdvardGK/reduzer-summary/internal/model"

// Token boundaries: string edges or one of space, underscore, hyphen.
const (
	tokenStart = `(?:^|[\s_-])`
	tokenEnd   = `(?:$|[\s_-])`
)

func bounded(expr string) string {
	return tokenStart + `(?:` + expr + `)` + tokenEnd
}

var defaultDetector = MustNewDetector(DefaultPatterns())

// Default returns the detector built from DefaultPatterns.
func Default() *Detector {
	return defaultDetector
}

// DefaultPatterns returns the built-in rule tables. Order within a field is
// significant and encoded in Priority.
func DefaultPatterns() []Pattern {
	patterns := make([]Pattern, 0, 24)
	patterns = append(patterns, scenarioPatterns()...)
	patterns = append(patterns, disciplinePatterns()...)
	patterns = append(patterns, mmiPatterns()...)
	patterns = append(patterns, summaryPatterns()...)
	return patterns
}

func scenarioPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "scenario-marker",
			Field:    FieldScenario,
			Regex:    `scenario[\s_-]*([abcd])(?:[^a-z]|$)`,
			Priority: 100,
		},
		{
			// "A - Scenario C": the letter after the word wins over the prefix.
			Name:     "prefixed-scenario-marker",
			Field:    FieldScenario,
			Regex:    `^[abcd][\s_]*-[\s_]*scenario[\s_-]*([abcd])(?:[^a-z]|$)`,
			Priority: 90,
		},
		{
			Name:     "leading-letter",
			Field:    FieldScenario,
			Regex:    `^([abcd])[\s_-]`,
			Priority: 80,
		},
	}
}

func disciplinePatterns() []Pattern {
	// RIBp must be tried before RIB.
	order := []model.Discipline{
		model.DisciplineRIBp,
		model.DisciplineRIB,
		model.DisciplineRIV,
		model.DisciplineARK,
		model.DisciplineRIE,
	}

	patterns := make([]Pattern, 0, len(order))
	for i, d := range order {
		patterns = append(patterns, Pattern{
			Name:     "discipline-" + string(d),
			Field:    FieldDiscipline,
			Regex:    bounded(string(d)),
			Value:    string(d),
			Priority: 100 - i*10,
		})
	}
	return patterns
}

func mmiPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "mmi-marker",
			Field:    FieldMmi,
			Regex:    `mmi[\s_-]*(300|700|800|900)(?:[^0-9]|$)`,
			Priority: 100,
		},
		{
			Name:     "bare-code",
			Field:    FieldMmi,
			Regex:    tokenStart + `(300|700|800|900)` + tokenEnd,
			Priority: 90,
		},
		{
			// Superstring of "existing"; must run before the 700 keywords.
			Name:     "keyword-existing-waste",
			Field:    FieldMmi,
			Regex:    bounded(`existing[\s_-]+waste`),
			Value:    string(model.MmiDemolish),
			Priority: 50,
		},
		{
			Name:     "keyword-demolish",
			Field:    FieldMmi,
			Regex:    bounded(`riving|rives|revet|demolish|demolished|demolition`),
			Value:    string(model.MmiDemolish),
			Priority: 45,
		},
		{
			Name:     "keyword-reuse",
			Field:    FieldMmi,
			Regex:    bounded(`reused|reuse|gjenbruk|gjenbrukt|gjenbrukes|gjen`),
			Value:    string(model.MmiReused),
			Priority: 40,
		},
		{
			Name:     "keyword-existing",
			Field:    FieldMmi,
			Regex:    bounded(`existing|eksisterende|eks|beholdes|beholdt|kept`),
			Value:    string(model.MmiExisting),
			Priority: 35,
		},
		{
			Name:     "keyword-new",
			Field:    FieldMmi,
			Regex:    bounded(`new|nybygg|ny`),
			Value:    string(model.MmiNew),
			Priority: 30,
		},
	}
}

func summaryPatterns() []Pattern {
	return []Pattern{
		{
			// RAMBELL, RAMBOELL, RAMBØLL
			Name:     "consultant-name",
			Field:    FieldSummary,
			Regex:    `ramb.{0,2}ll`,
			Priority: 100,
		},
		{
			Name:     "section-prefix",
			Field:    FieldSummary,
			Regex:    `^s\d+\s*-`,
			Priority: 90,
		},
		{
			Name:     "total-word",
			Field:    FieldSummary,
			Regex:    `total|sum`,
			Priority: 80,
		},
	}
}

// DetectScenario detects the scenario with the default rules.
func DetectScenario(category string) model.Scenario {
	return defaultDetector.DetectScenario(category)
}

// DetectDiscipline detects the discipline with the default rules.
func DetectDiscipline(category string) model.Discipline {
	return defaultDetector.DetectDiscipline(category)
}

// DetectMmi detects the MMI code with the default rules.
func DetectMmi(category string) model.MmiCode {
	return defaultDetector.DetectMmi(category)
}

// DetectAll classifies category with the default rules.
func DetectAll(category string) model.Classification {
	return defaultDetector.DetectAll(category)
}

// IsSummaryRow applies the default summary-row rules.
func IsSummaryRow(category string) bool {
	return defaultDetector.IsSummaryRow(category)
}

// Explain reports which default rules fire for category.
func Explain(category string) Explanation {
	return defaultDetector.Explain(category)
}

// MmiLabel returns the fixed label for code.
func MmiLabel(code model.MmiCode) string {
	return model.MmiLabel(code)
}
