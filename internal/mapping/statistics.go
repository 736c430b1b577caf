package mapping

import (
	"fmt"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/montanaflynn/stats"
)

// Stats summarises how much of a dataset is classified.
type Stats struct {
	TotalRows       int     `json:"total_rows"`
	ExcludedRows    int     `json:"excluded_rows"`
	ActiveRows      int     `json:"active_rows"`
	FullyMapped     int     `json:"fully_mapped"`
	PartiallyMapped int     `json:"partially_mapped"`
	CompletenessPct float64 `json:"mapping_completeness"`
}

// Statistics counts mapped rows. Mapped counts cover active rows only and
// completeness is 0 when nothing is active.
func Statistics(items []model.LineItem) Stats {
	s := Stats{TotalRows: len(items)}
	for _, item := range items {
		if item.Excluded {
			s.ExcludedRows++
			continue
		}
		if item.FullyMapped() {
			s.FullyMapped++
		} else {
			s.PartiallyMapped++
		}
	}
	s.ActiveRows = s.TotalRows - s.ExcludedRows
	if s.ActiveRows > 0 {
		s.CompletenessPct = float64(s.FullyMapped) / float64(s.ActiveRows) * 100
	}
	return s
}

// WeightingSummary describes the weightings of active rows.
type WeightingSummary struct {
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Min        float64 `json:"min"`
	Discounted int     `json:"discounted_rows"`
}

// WeightingStats summarises weightings over active rows. Rows below 100 %
// count as discounted.
func WeightingStats(items []model.LineItem) (WeightingSummary, error) {
	data := make(stats.Float64Data, 0, len(items))
	summary := WeightingSummary{}
	for _, item := range items {
		if !item.Active() {
			continue
		}
		data = append(data, item.Weighting)
		if item.Weighting < model.DefaultWeighting {
			summary.Discounted++
		}
	}
	if len(data) == 0 {
		return summary, nil
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, fmt.Errorf("failed to compute mean weighting: %w", err)
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, fmt.Errorf("failed to compute median weighting: %w", err)
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, fmt.Errorf("failed to compute minimum weighting: %w", err)
	}
	return summary, nil
}
