package model

// DefaultWeighting is the weighting of an item that was never discounted.
const DefaultWeighting = 100.0

// LineItem is one ingested row of GWP data.
//
// Suggested is written once at ingest and is the audit trail of what the
// detector proposed. Mapped starts equal to Suggested and is the authoritative
// classification afterwards. WeightedTotal is derived state: it is only ever
// written by Recompute.
type LineItem struct {
	Category      string         `json:"category"`
	Suggested     Classification `json:"suggested"`
	Mapped        Classification `json:"mapped"`
	RowID         int            `json:"row_id"`
	Construction  float64        `json:"construction"`
	Operation     float64        `json:"operation"`
	EndOfLife     float64        `json:"end_of_life"`
	Weighting     float64        `json:"weighting"`
	BaseTotal     float64        `json:"base_total"`
	WeightedTotal float64        `json:"total_gwp"`
	IsSummary     bool           `json:"is_summary"`
	Excluded      bool           `json:"excluded"`
}

// ClampWeighting limits a weighting percentage to [0, 100].
func ClampWeighting(w float64) float64 {
	switch {
	case w != w: // NaN
		return DefaultWeighting
	case w < 0:
		return 0
	case w > 100:
		return 100
	default:
		return w
	}
}

// Recompute re-derives BaseTotal and WeightedTotal from the phases and weighting.
func (li *LineItem) Recompute() {
	li.Weighting = ClampWeighting(li.Weighting)
	li.BaseTotal = li.Construction + li.Operation + li.EndOfLife
	li.WeightedTotal = li.BaseTotal * li.Weighting / 100
}

// SetWeighting clamps w and recomputes the weighted total.
func (li *LineItem) SetWeighting(w float64) {
	li.Weighting = w
	li.Recompute()
}

// SetPhases replaces the three phase amounts and recomputes both totals.
func (li *LineItem) SetPhases(construction, operation, endOfLife float64) {
	li.Construction = construction
	li.Operation = operation
	li.EndOfLife = endOfLife
	li.Recompute()
}

// Active reports whether the item takes part in aggregation.
func (li LineItem) Active() bool {
	return !li.Excluded
}

// FullyMapped reports whether the mapped classification is complete.
func (li LineItem) FullyMapped() bool {
	return li.Mapped.Complete()
}

// Aggregatable reports whether the item is active and fully mapped.
func (li LineItem) Aggregatable() bool {
	return li.Active() && li.FullyMapped()
}

// CloneItems returns a copy of items that can be edited independently.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
