package ingest

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/EdvardGK/reduzer-summary/internal/classification"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
	"golang.org/x/text/unicode/norm"
)

// Ingestor converts raw tables into line items. It holds no per-dataset
// state and can be reused.
type Ingestor struct {
	detector *classification.Detector
	noise    pattern.NoiseMatcher
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithDetector replaces the default detection rules.
func WithDetector(d *classification.Detector) Option {
	return func(in *Ingestor) {
		in.detector = d
	}
}

// WithNoiseFilter replaces the default noise tokens.
func WithNoiseFilter(n pattern.NoiseMatcher) Option {
	return func(in *Ingestor) {
		in.noise = n
	}
}

// New creates an ingestor with the default detector and noise tokens.
func New(opts ...Option) *Ingestor {
	in := &Ingestor{
		detector: classification.Default(),
		noise:    pattern.NewNoiseFilter(nil),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest resolves the table's columns and builds one line item per row with
// a non-blank category. A schema mismatch fails the whole table; bad numeric
// cells become 0.
func (in *Ingestor) Ingest(table *RawTable) ([]model.LineItem, error) {
	if table == nil {
		return nil, ErrEmptyTable
	}

	cols, err := ResolveColumns(table.Headers)
	if err != nil {
		return nil, err
	}

	items := make([]model.LineItem, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		category := NormalizeCategory(cell(row, cols.Category))
		if category == "" {
			dropped++
			continue
		}

		item := in.newItem(len(items), category, row, cols)
		items = append(items, item)
	}

	slog.Debug("Ingested table",
		"source", table.Source,
		"rows", len(items),
		"dropped", dropped,
		"weighting_column", cols.HasWeighting())

	return items, nil
}

func (in *Ingestor) newItem(rowID int, category string, row []string, cols Columns) model.LineItem {
	suggested := in.detector.DetectAll(category)
	isSummary := in.detector.IsSummaryRow(category)
	_, noisy := in.noise.Match(category)

	weighting := model.DefaultWeighting
	if cols.HasWeighting() {
		weighting = ParseWeighting(cell(row, cols.Weighting))
	}

	item := model.LineItem{
		RowID:        rowID,
		Category:     category,
		Construction: ParseAmount(cell(row, cols.Construction)),
		Operation:    ParseAmount(cell(row, cols.Operation)),
		EndOfLife:    ParseAmount(cell(row, cols.EndOfLife)),
		IsSummary:    isSummary,
		Excluded:     isSummary || noisy,
		Suggested:    suggested,
		Mapped:       suggested,
		Weighting:    weighting,
	}
	item.Recompute()
	return item
}

// IngestFile reads path and ingests its table.
func (in *Ingestor) IngestFile(path string, opts ReadOptions) ([]model.LineItem, error) {
	table, err := ReadFile(path, opts)
	if err != nil {
		return nil, err
	}

	items, err := in.Ingest(table)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", path, err)
	}

	slog.Info("Loaded dataset", "file", path, "rows", len(items))
	return items, nil
}

// NormalizeCategory trims the label and puts it in NFC form so composed and
// decomposed Norwegian letters compare equal.
func NormalizeCategory(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
