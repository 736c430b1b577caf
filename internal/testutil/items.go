package testutil

import (
	"math/rand"
	"testing"

	"github.com/EdvardGK/reduzer-summary/internal/classification"
	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// ItemBuilder builds line items the way ingest would, without a source file.
//
// Example:
//
//	items := testutil.NewItemBuilder(t).
//		Add("Scenario A - RIV - New", 1000, 0, 0).
//		Add("Scenario C - RIV - New", 800, 0, 0).Weighted(50).
//		Build()
type ItemBuilder struct {
	t     *testing.T
	items []model.LineItem
}

// NewItemBuilder creates an empty builder.
func NewItemBuilder(t *testing.T) *ItemBuilder {
	t.Helper()
	return &ItemBuilder{t: t}
}

// Add appends a row classified by the default detector.
func (b *ItemBuilder) Add(category string, construction, operation, endOfLife float64) *ItemBuilder {
	suggested := classification.DetectAll(category)
	summary := classification.IsSummaryRow(category)

	item := model.LineItem{
		RowID:        len(b.items),
		Category:     category,
		Construction: construction,
		Operation:    operation,
		EndOfLife:    endOfLife,
		IsSummary:    summary,
		Excluded:     summary,
		Suggested:    suggested,
		Mapped:       suggested,
		Weighting:    model.DefaultWeighting,
	}
	item.Recompute()
	b.items = append(b.items, item)
	return b
}

// Mapped overrides the mapped classification of the last row.
func (b *ItemBuilder) Mapped(s model.Scenario, d model.Discipline, m model.MmiCode) *ItemBuilder {
	b.t.Helper()
	last := b.last()
	last.Mapped = model.NewClassification(s, d, m)
	return b
}

// Weighted sets the weighting of the last row.
func (b *ItemBuilder) Weighted(w float64) *ItemBuilder {
	b.t.Helper()
	b.last().SetWeighting(w)
	return b
}

// Excluded marks the last row as excluded.
func (b *ItemBuilder) Excluded() *ItemBuilder {
	b.t.Helper()
	b.last().Excluded = true
	return b
}

// Build returns a copy of the rows added so far.
func (b *ItemBuilder) Build() []model.LineItem {
	return model.CloneItems(b.items)
}

func (b *ItemBuilder) last() *model.LineItem {
	if len(b.items) == 0 {
		b.t.Fatal("no rows added to builder")
	}
	return &b.items[len(b.items)-1]
}

// EndToEndItems is the four-row new-build versus renovation fixture:
// Scenario A totals 1000 and Scenario C totals 950.
func EndToEndItems() []model.LineItem {
	rows := []struct {
		category     string
		construction float64
	}{
		{"Scenario A - RIV - New", 1000},
		{"Scenario C - RIV - New", 800},
		{"Scenario C - RIV - Existing", 100},
		{"Scenario C - RIV - Reused", 50},
	}

	items := make([]model.LineItem, 0, len(rows))
	for i, r := range rows {
		c := classification.DetectAll(r.category)
		item := model.LineItem{
			RowID:        i,
			Category:     r.category,
			Construction: r.construction,
			Suggested:    c,
			Mapped:       c,
			Weighting:    model.DefaultWeighting,
		}
		item.Recompute()
		items = append(items, item)
	}
	return items
}

// RandomItems generates n items with random codes (some missing), phases,
// weightings and exclusion flags.
func RandomItems(r *rand.Rand, n int) []model.LineItem {
	scenarios := append(model.Scenarios(), "")
	disciplines := append(model.Disciplines(), "")
	codes := append(model.MmiCodes(), "")

	items := make([]model.LineItem, n)
	for i := range items {
		mapped := model.NewClassification(
			scenarios[r.Intn(len(scenarios))],
			disciplines[r.Intn(len(disciplines))],
			codes[r.Intn(len(codes))],
		)
		items[i] = model.LineItem{
			RowID:        i,
			Category:     "generated",
			Construction: r.Float64()*2000 - 200,
			Operation:    r.Float64() * 500,
			EndOfLife:    r.Float64()*300 - 50,
			Excluded:     r.Intn(5) == 0,
			Mapped:       mapped,
			Suggested:    mapped,
			Weighting:    float64(r.Intn(101)),
		}
		items[i].Recompute()
	}
	return items
}
