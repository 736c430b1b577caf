// Package diagnostics explains why rows were or were not classified, for
// tuning the detection rules.
package diagnostics

import (
	"fmt"

	"github.com/EdvardGK/reduzer-summary/internal/classification"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
)

// DefaultFailureLimit caps the detection failures listed in a report.
const DefaultFailureLimit = 20

// MmiRow counts one MMI code's rows by origin.
type MmiRow struct {
	Code             model.MmiCode `json:"code"`
	Label            string        `json:"label"`
	SuggestedTotal   int           `json:"suggested_total"`
	SuggestedActive  int           `json:"suggested_active"`
	MappedTotal      int           `json:"mapped_total"`
	MappedActive     int           `json:"mapped_active"`
	WithNonZeroTotal int           `json:"with_nonzero_total"`
	// WeightedTotal sums the total GWP of active rows mapped to the code.
	WeightedTotal float64 `json:"total_gwp"`
}

// MmiDistribution counts suggested and mapped rows for every MMI code.
func MmiDistribution(items []model.LineItem) []MmiRow {
	codes := model.MmiCodes()
	rows := make([]MmiRow, len(codes))
	index := make(map[model.MmiCode]*MmiRow, len(codes))
	for i, code := range codes {
		rows[i] = MmiRow{Code: code, Label: model.MmiDescription(code)}
		index[code] = &rows[i]
	}

	for _, item := range items {
		if row, ok := index[item.Suggested.MmiCode]; ok {
			row.SuggestedTotal++
			if item.Active() {
				row.SuggestedActive++
			}
		}
		if row, ok := index[item.Mapped.MmiCode]; ok {
			row.MappedTotal++
			if item.Active() {
				row.MappedActive++
				row.WeightedTotal += item.WeightedTotal
				if item.WeightedTotal != 0 {
					row.WithNonZeroTotal++
				}
			}
		}
	}
	return rows
}

// SampleCategories returns up to n distinct categories for code: rows
// suggested as code first, then rows mapped to it.
func SampleCategories(items []model.LineItem, code model.MmiCode, n int) []string {
	seen := map[string]bool{}
	out := make([]string, 0, n)

	collect := func(match func(model.LineItem) bool) {
		for _, item := range items {
			if len(out) >= n {
				return
			}
			if match(item) && !seen[item.Category] {
				seen[item.Category] = true
				out = append(out, item.Category)
			}
		}
	}
	collect(func(li model.LineItem) bool { return li.Suggested.MmiCode == code })
	collect(func(li model.LineItem) bool { return li.Mapped.MmiCode == code })
	return out
}

// DetectionFailures returns up to limit active rows for which the detector
// found no MMI code. A limit <= 0 returns all of them.
func DetectionFailures(items []model.LineItem, limit int) []model.LineItem {
	var out []model.LineItem
	for _, item := range items {
		if limit > 0 && len(out) >= limit {
			break
		}
		if item.Active() && !item.Suggested.MmiCode.IsSet() {
			out = append(out, item)
		}
	}
	return out
}

// Mismatch is a row whose mapping disagrees with the detector.
type Mismatch struct {
	Fields []string       `json:"fields"`
	Item   model.LineItem `json:"item"`
}

// Mismatches lists active rows where a non-empty suggestion was changed by
// the user.
func Mismatches(items []model.LineItem) []Mismatch {
	var out []Mismatch
	for _, item := range items {
		if !item.Active() {
			continue
		}
		var fields []string
		s, m := item.Suggested, item.Mapped
		if s.Scenario.IsSet() && s.Scenario != m.Scenario {
			fields = append(fields, "scenario")
		}
		if s.Discipline.IsSet() && s.Discipline != m.Discipline {
			fields = append(fields, "discipline")
		}
		if s.MmiCode.IsSet() && s.MmiCode != m.MmiCode {
			fields = append(fields, "mmi")
		}
		if len(fields) > 0 {
			out = append(out, Mismatch{Item: item, Fields: fields})
		}
	}
	return out
}

// RowExplanation says why a row is excluded or incompletely classified.
type RowExplanation struct {
	Rules   classification.Explanation `json:"rules"`
	Reasons []string                   `json:"reasons"`
	RowID   int                        `json:"row_id"`
}

// ExplainRow re-runs the detector and noise filter on a row's category.
func ExplainRow(item model.LineItem, detector *classification.Detector, noise pattern.NoiseMatcher) RowExplanation {
	exp := RowExplanation{RowID: item.RowID, Rules: detector.Explain(item.Category)}

	if exp.Rules.Summary != nil {
		exp.Reasons = append(exp.Reasons, fmt.Sprintf("summary row (rule %s)", exp.Rules.Summary.PatternName))
	}
	if noise != nil {
		if tok, ok := noise.Match(item.Category); ok {
			exp.Reasons = append(exp.Reasons, fmt.Sprintf("noise token %q", tok))
		}
	}
	if item.Excluded && exp.Rules.Summary == nil && len(exp.Reasons) == 0 {
		exp.Reasons = append(exp.Reasons, "excluded by user")
	}
	if !item.Excluded && item.IsSummary {
		exp.Reasons = append(exp.Reasons, "summary row included by user")
	}

	if exp.Rules.Scenario == nil {
		exp.Reasons = append(exp.Reasons, "no scenario rule matched")
	}
	if exp.Rules.Discipline == nil {
		exp.Reasons = append(exp.Reasons, "no discipline rule matched")
	}
	if exp.Rules.Mmi == nil {
		exp.Reasons = append(exp.Reasons, "no MMI rule matched")
	}
	switch {
	case !item.Mapped.Complete() && item.Suggested.Complete():
		exp.Reasons = append(exp.Reasons, "mapping cleared by user")
	case item.Mapped.Partial():
		exp.Reasons = append(exp.Reasons, "partially mapped")
	}
	return exp
}

// Options controls Build.
type Options struct {
	Detector     *classification.Detector
	Noise        pattern.NoiseMatcher
	SampleSize   int
	FailureLimit int
}

// Report bundles all diagnostics for a dataset.
type Report struct {
	Samples      map[model.MmiCode][]string `json:"samples"`
	Distribution []MmiRow                   `json:"mmi_distribution"`
	Failures     []model.LineItem           `json:"detection_failures"`
	Mismatches   []Mismatch                 `json:"mismatches"`
	Explanations []RowExplanation           `json:"explanations"`
}

// Build runs every diagnostic. Explanations cover the listed failures.
func Build(items []model.LineItem, opts Options) Report {
	if opts.Detector == nil {
		opts.Detector = classification.Default()
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = 5
	}
	if opts.FailureLimit == 0 {
		opts.FailureLimit = DefaultFailureLimit
	}

	r := Report{
		Distribution: MmiDistribution(items),
		Samples:      map[model.MmiCode][]string{},
		Failures:     DetectionFailures(items, opts.FailureLimit),
		Mismatches:   Mismatches(items),
	}
	for _, code := range model.MmiCodes() {
		r.Samples[code] = SampleCategories(items, code, opts.SampleSize)
	}
	for _, item := range r.Failures {
		r.Explanations = append(r.Explanations, ExplainRow(item, opts.Detector, opts.Noise))
	}
	return r
}
