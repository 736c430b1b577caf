package report

import (
	"fmt"
	"math"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/compare"
)

// PhaseShiftThreshold is how far (in percentage points from 100) a phase
// ratio must move to be reported as a finding.
const PhaseShiftThreshold = 10.0

// CompletenessTarget is the mapping completeness below which more mapping
// work is recommended.
const CompletenessTarget = 90.0

// Tone tells renderers how to colour a finding.
type Tone string

// Finding tones.
const (
	ToneGood Tone = "good"
	ToneBad  Tone = "bad"
	ToneInfo Tone = "info"
)

// Finding is one headline number with context.
type Finding struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Tone        Tone   `json:"tone"`
}

// Insights are the prose parts of a report.
type Insights struct {
	Summary         []string  `json:"executive_summary"`
	Findings        []Finding `json:"key_findings"`
	Recommendations []string  `json:"recommendations"`
}

// GenerateInsights derives summary sentences, findings and recommendations
// from already computed report data.
func GenerateInsights(d *Data) Insights {
	var in Insights
	s := d.Stats

	in.Summary = append(in.Summary, fmt.Sprintf(
		"The analysis covers %d rows: %d are fully mapped (%.0f%% of active rows) and %d are excluded. "+
			"Average weighting is %.0f%% (%d rows discounted).",
		s.TotalRows, s.FullyMapped, s.CompletenessPct, s.ExcludedRows,
		d.Weighting.Mean, d.Weighting.Discounted))

	if c := d.Comparison; c != nil {
		total := c.Total()
		in.Summary = append(in.Summary, fmt.Sprintf(
			"Scenario %s shows a %s in emissions compared with Scenario %s (%s, %s kg CO2e).",
			c.Target, d.Verdict, c.Base, formatRatio(total.Ratio), formatSigned(total.Difference)))

		in.Findings = append(in.Findings, Finding{
			Title:       fmt.Sprintf("Scenario %s vs %s", c.Target, c.Base),
			Value:       formatRatio(total.Ratio),
			Description: fmt.Sprintf("Difference: %s kg CO2e", formatSigned(total.Difference)),
			Tone:        verdictTone(d.Verdict),
		})

		for _, m := range []aggregate.Metric{aggregate.MetricConstruction, aggregate.MetricOperation, aggregate.MetricEndOfLife} {
			mc := c.Metric(m)
			if mc.Ratio == nil || math.Abs(100-*mc.Ratio) <= PhaseShiftThreshold {
				continue
			}
			change, tone := "increase", ToneBad
			if *mc.Ratio < 100 {
				change, tone = "reduction", ToneGood
			}
			in.Findings = append(in.Findings, Finding{
				Title:       fmt.Sprintf("%s: %s", m.Label(), change),
				Value:       formatRatio(mc.Ratio),
				Description: formatSigned(mc.Difference) + " kg CO2e",
				Tone:        tone,
			})
		}

		for _, drv := range d.Drivers {
			if drv.ShareOfChange == nil {
				continue
			}
			in.Findings = append(in.Findings, Finding{
				Title:       fmt.Sprintf("Driver: %s", drv.Discipline),
				Value:       formatSigned(drv.Difference) + " kg CO2e",
				Description: fmt.Sprintf("%.1f%% of the total change", *drv.ShareOfChange),
				Tone:        ToneInfo,
			})
		}
	}

	for _, sc := range d.Tree.Scenarios() {
		if mmi := aggregate.MmiSummary(d.Tree, sc); len(mmi) > 0 {
			top := mmi[0]
			in.Findings = append(in.Findings, Finding{
				Title:       fmt.Sprintf("Scenario %s: dominant MMI", sc),
				Value:       fmt.Sprintf("%s - %s", top.Code, top.Label),
				Description: fmt.Sprintf("%.1f%% of total GWP (%s kg CO2e)", top.SharePct, formatNumber(top.Totals.WeightedTotal)),
				Tone:        ToneInfo,
			})
		}
		if disc := aggregate.DisciplineContribution(d.Tree, sc); len(disc) > 0 {
			top := disc[0]
			in.Findings = append(in.Findings, Finding{
				Title:       fmt.Sprintf("Scenario %s: largest contributor", sc),
				Value:       string(top.Discipline),
				Description: fmt.Sprintf("%.1f%% of total (%s kg CO2e)", top.SharePct, formatNumber(top.Totals.WeightedTotal)),
				Tone:        ToneInfo,
			})
		}
	}

	if c := d.Comparison; c != nil {
		if r := c.Total().Ratio; r != nil {
			switch {
			case *r > 110:
				in.Recommendations = append(in.Recommendations, fmt.Sprintf(
					"Scenario %s emits considerably more than Scenario %s. Consider alternatives, "+
						"starting with the phases and disciplines with the largest increase.", c.Target, c.Base))
			case *r < 90:
				in.Recommendations = append(in.Recommendations, fmt.Sprintf(
					"Scenario %s shows a clear reduction. Document the measures behind it.", c.Target))
			case *r >= 100:
				in.Recommendations = append(in.Recommendations, fmt.Sprintf(
					"Scenario %s is close to Scenario %s. Further measures are needed to achieve a reduction.",
					c.Target, c.Base))
			}
		}
	}

	if s.CompletenessPct < CompletenessTarget {
		in.Recommendations = append(in.Recommendations, fmt.Sprintf(
			"Mapping completeness is %.0f%%. Map the remaining rows for a more complete analysis.",
			s.CompletenessPct))
	}

	return in
}

func verdictTone(v compare.Verdict) Tone {
	switch {
	case v.IsReduction():
		return ToneGood
	case v == compare.VerdictNotComparable:
		return ToneInfo
	default:
		return ToneBad
	}
}
