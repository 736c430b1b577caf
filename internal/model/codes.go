// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Scenario identifies one of the design alternatives being compared.
// The zero value means no scenario was detected or assigned.
type Scenario string

// Scenario constants.
const (
	ScenarioA Scenario = "A"
	ScenarioB Scenario = "B"
	ScenarioC Scenario = "C"
	ScenarioD Scenario = "D"
)

// Discipline is an engineering trade code.
// The zero value means no discipline was detected or assigned.
type Discipline string

// Discipline constants.
const (
	DisciplineRIV  Discipline = "RIV"
	DisciplineARK  Discipline = "ARK"
	DisciplineRIE  Discipline = "RIE"
	DisciplineRIB  Discipline = "RIB"
	DisciplineRIBp Discipline = "RIBp"
)

// MmiCode is the lifecycle status of a building element.
// The zero value means no code was detected or assigned.
type MmiCode string

// MMI code constants.
const (
	MmiNew      MmiCode = "300"
	MmiExisting MmiCode = "700"
	MmiReused   MmiCode = "800"
	MmiDemolish MmiCode = "900"
)

// UnknownMmiLabel is the label of a missing or unrecognized MMI code.
const UnknownMmiLabel = "UKJENT"

var (
	scenarios   = []Scenario{ScenarioA, ScenarioB, ScenarioC, ScenarioD}
	disciplines = []Discipline{DisciplineRIV, DisciplineARK, DisciplineRIE, DisciplineRIB, DisciplineRIBp}
	mmiCodes    = []MmiCode{MmiNew, MmiExisting, MmiReused, MmiDemolish}

	mmiLabels = map[MmiCode]string{
		MmiNew:      "NY",
		MmiExisting: "EKS",
		MmiReused:   "GJEN",
		MmiDemolish: "RIVES",
	}

	mmiDescriptions = map[MmiCode]string{
		MmiNew:      "New",
		MmiExisting: "Existing",
		MmiReused:   "Reuse",
		MmiDemolish: "Demolish",
	}
)

// Scenarios returns all scenarios in canonical order.
func Scenarios() []Scenario {
	return append([]Scenario(nil), scenarios...)
}

// Disciplines returns all disciplines in canonical order.
func Disciplines() []Discipline {
	return append([]Discipline(nil), disciplines...)
}

// MmiCodes returns all MMI codes in canonical order.
func MmiCodes() []MmiCode {
	return append([]MmiCode(nil), mmiCodes...)
}

// IsSet reports whether a scenario has been assigned.
func (s Scenario) IsSet() bool { return s != "" }

// Valid reports whether s is one of the known scenarios.
func (s Scenario) Valid() bool {
	for _, known := range scenarios {
		if s == known {
			return true
		}
	}
	return false
}

// IsSet reports whether a discipline has been assigned.
func (d Discipline) IsSet() bool { return d != "" }

// Valid reports whether d is one of the known disciplines.
func (d Discipline) Valid() bool {
	for _, known := range disciplines {
		if d == known {
			return true
		}
	}
	return false
}

// IsSet reports whether an MMI code has been assigned.
func (c MmiCode) IsSet() bool { return c != "" }

// Valid reports whether c is one of the known MMI codes.
func (c MmiCode) Valid() bool {
	_, ok := mmiLabels[c]
	return ok
}

// Label returns the short Norwegian label for the code.
func (c MmiCode) Label() string {
	return MmiLabel(c)
}

// MmiLabel returns the fixed label for an MMI code, or UnknownMmiLabel.
func MmiLabel(code MmiCode) string {
	if label, ok := mmiLabels[code]; ok {
		return label
	}
	return UnknownMmiLabel
}

// MmiDescription returns a label with its English gloss, e.g. "NY (New)".
func MmiDescription(code MmiCode) string {
	desc, ok := mmiDescriptions[code]
	if !ok {
		return UnknownMmiLabel
	}
	return MmiLabel(code) + " (" + desc + ")"
}

// ParseScenario accepts "a", " C ", "Scenario B" and similar input.
func ParseScenario(s string) (Scenario, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "SCENARIO"))
	candidate := Scenario(s)
	return candidate, candidate.Valid()
}

// ParseDiscipline accepts any casing of a known discipline code.
func ParseDiscipline(s string) (Discipline, bool) {
	s = strings.TrimSpace(s)
	for _, d := range disciplines {
		if strings.EqualFold(s, string(d)) {
			return d, true
		}
	}
	return "", false
}

// ParseMmiCode accepts "300", "MMI 300", "mmi-700" or a label such as "GJEN".
func ParseMmiCode(s string) (MmiCode, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimLeft(strings.TrimPrefix(s, "MMI"), " _-")
	for code, label := range mmiLabels {
		if s == string(code) || s == label {
			return code, true
		}
	}
	return "", false
}

// ValidCombination reports whether every part of a mapping is a known code.
func ValidCombination(s Scenario, d Discipline, m MmiCode) bool {
	return s.Valid() && d.Valid() && m.Valid()
}

// CombinationID renders a mapping as "A_RIV_300".
func CombinationID(s Scenario, d Discipline, m MmiCode) string {
	return string(s) + "_" + string(d) + "_" + string(m)
}
