package compare

// Verdict classifies a total GWP ratio.
type Verdict string

// Verdicts from most favourable to least.
const (
	VerdictSignificantReduction Verdict = "significant reduction"
	VerdictModerateReduction    Verdict = "moderate reduction"
	VerdictSmallIncrease        Verdict = "small increase"
	VerdictSignificantIncrease  Verdict = "significant increase"
	VerdictNotComparable        Verdict = "not comparable"
)

// Judge maps a ratio (target as a percentage of base) to a verdict.
func Judge(ratio *float64) Verdict {
	if ratio == nil {
		return VerdictNotComparable
	}
	switch r := *ratio; {
	case r < 90:
		return VerdictSignificantReduction
	case r < 100:
		return VerdictModerateReduction
	case r < 110:
		return VerdictSmallIncrease
	default:
		return VerdictSignificantIncrease
	}
}

// IsReduction reports whether the verdict favours the target scenario.
func (v Verdict) IsReduction() bool {
	return v == VerdictSignificantReduction || v == VerdictModerateReduction
}
