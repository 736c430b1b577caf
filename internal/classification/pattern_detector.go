// Package classification detects scenario, discipline and MMI status from
// free-text category labels using ordered pattern tables.
package classification

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// Field names the part of a classification a pattern detects.
type Field string

const (
	// FieldScenario patterns yield a scenario letter.
	FieldScenario Field = "scenario"
	// FieldDiscipline patterns yield a discipline code.
	FieldDiscipline Field = "discipline"
	// FieldMmi patterns yield an MMI code.
	FieldMmi Field = "mmi"
	// FieldSummary patterns flag report subtotal rows.
	FieldSummary Field = "summary"
)

var (
	// ErrUnknownField is returned for patterns with an unsupported field.
	ErrUnknownField = errors.New("unknown pattern field")
	// ErrNoResult is returned for value patterns without a value or capture group.
	ErrNoResult = errors.New("pattern has no value and no capture group")
)

// Pattern is one detection rule.
type Pattern struct {
	Name  string
	Field Field
	Regex string
	// Value is the fixed result of the rule. When empty the first capture
	// group of Regex is the result.
	Value    string
	Priority int // Higher priority patterns are checked first
}

// CompiledPattern holds a compiled regex pattern with metadata.
type CompiledPattern struct {
	compiledRegex *regexp.Regexp
	Pattern
}

// Match records which rule fired and what it produced.
type Match struct {
	PatternName string `json:"pattern"`
	Value       string `json:"value"`
}

// Detector applies ordered pattern tables. It is immutable once built and
// safe for concurrent use.
type Detector struct {
	byField map[Field][]CompiledPattern
}

// NewDetector compiles patterns and orders each field's rules by priority.
// Rules with equal priority keep their input order.
func NewDetector(patterns []Pattern) (*Detector, error) {
	byField := make(map[Field][]CompiledPattern, 4)

	for _, p := range patterns {
		switch p.Field {
		case FieldScenario, FieldDiscipline, FieldMmi, FieldSummary:
		default:
			return nil, fmt.Errorf("pattern %s: %w: %q", p.Name, ErrUnknownField, p.Field)
		}

		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr // Make case-insensitive by default
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		if p.Field != FieldSummary && p.Value == "" && regex.NumSubexp() == 0 {
			return nil, fmt.Errorf("pattern %s: %w", p.Name, ErrNoResult)
		}

		byField[p.Field] = append(byField[p.Field], CompiledPattern{
			Pattern:       p,
			compiledRegex: regex,
		})
	}

	for field := range byField {
		rules := byField[field]
		sort.SliceStable(rules, func(i, j int) bool {
			return rules[i].Priority > rules[j].Priority
		})
	}

	return &Detector{byField: byField}, nil
}

// MustNewDetector is like NewDetector but panics on invalid patterns.
func MustNewDetector(patterns []Pattern) *Detector {
	d, err := NewDetector(patterns)
	if err != nil {
		panic(err)
	}
	return d
}

// Patterns returns the rules for a field in evaluation order.
func (d *Detector) Patterns(field Field) []Pattern {
	rules := d.byField[field]
	out := make([]Pattern, len(rules))
	for i, r := range rules {
		out[i] = r.Pattern
	}
	return out
}

// PatternCount returns the number of loaded patterns.
func (d *Detector) PatternCount() int {
	n := 0
	for _, rules := range d.byField {
		n += len(rules)
	}
	return n
}

// first returns the first rule of field that matches text and yields a
// value accepted by normalize.
func (d *Detector) first(field Field, text string, normalize func(string) (string, bool)) *Match {
	for _, rule := range d.byField[field] {
		groups := rule.compiledRegex.FindStringSubmatch(text)
		if groups == nil {
			continue
		}

		value := rule.Value
		if value == "" && len(groups) > 1 {
			value = groups[1]
		}
		if normalize != nil {
			var ok bool
			if value, ok = normalize(value); !ok {
				continue
			}
		}

		return &Match{PatternName: rule.Name, Value: value}
	}
	return nil
}

func normalizeScenario(v string) (string, bool) {
	s, ok := model.ParseScenario(v)
	return string(s), ok
}

func normalizeDiscipline(v string) (string, bool) {
	d, ok := model.ParseDiscipline(v)
	return string(d), ok
}

func normalizeMmi(v string) (string, bool) {
	m, ok := model.ParseMmiCode(v)
	return string(m), ok
}

// DetectScenario returns the scenario named in category, or "".
func (d *Detector) DetectScenario(category string) model.Scenario {
	if m := d.first(FieldScenario, category, normalizeScenario); m != nil {
		return model.Scenario(m.Value)
	}
	return ""
}

// DetectDiscipline returns the discipline named in category, or "".
func (d *Detector) DetectDiscipline(category string) model.Discipline {
	if m := d.first(FieldDiscipline, category, normalizeDiscipline); m != nil {
		return model.Discipline(m.Value)
	}
	return ""
}

// DetectMmi returns the MMI code implied by category, or "".
func (d *Detector) DetectMmi(category string) model.MmiCode {
	if m := d.first(FieldMmi, category, normalizeMmi); m != nil {
		return model.MmiCode(m.Value)
	}
	return ""
}

// DetectAll runs the three detectors independently. It never fails.
func (d *Detector) DetectAll(category string) model.Classification {
	return model.NewClassification(
		d.DetectScenario(category),
		d.DetectDiscipline(category),
		d.DetectMmi(category),
	)
}

// IsSummaryRow reports whether category looks like a subtotal row injected
// by the export tool.
func (d *Detector) IsSummaryRow(category string) bool {
	return d.first(FieldSummary, category, nil) != nil
}

// Explanation lists the rule that fired for each field; nil means no rule matched.
type Explanation struct {
	Scenario   *Match `json:"scenario,omitempty"`
	Discipline *Match `json:"discipline,omitempty"`
	Mmi        *Match `json:"mmi,omitempty"`
	Summary    *Match `json:"summary,omitempty"`
}

// Explain reports which rules fire for category.
func (d *Detector) Explain(category string) Explanation {
	return Explanation{
		Scenario:   d.first(FieldScenario, category, normalizeScenario),
		Discipline: d.first(FieldDiscipline, category, normalizeDiscipline),
		Mmi:        d.first(FieldMmi, category, normalizeMmi),
		Summary:    d.first(FieldSummary, category, nil),
	}
}
