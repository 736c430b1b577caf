package report

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatNumber renders v with thousands grouping and no decimals.
func formatNumber(v float64) string {
	return printer.Sprintf("%.0f", roundZero(v))
}

// formatSigned is formatNumber with an explicit sign.
func formatSigned(v float64) string {
	v = roundZero(v)
	if v > 0 {
		return "+" + formatNumber(v)
	}
	return formatNumber(v)
}

func formatRatio(r *float64) string {
	if r == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *r)
}

// roundZero keeps -0.4 from rendering as "-0".
func roundZero(v float64) float64 {
	if math.Abs(v) < 0.5 {
		return 0
	}
	return v
}
