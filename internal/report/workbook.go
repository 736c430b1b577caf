package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names in workbook order.
const (
	SheetMetadata    = "Metadata"
	SheetScenarios   = "Scenarios"
	SheetDisciplines = "Disciplines"
	SheetMmi         = "MMI"
	SheetComparison  = "Comparison"
	SheetDataset     = "Dataset"
)

// DatasetHeaders are the column titles of the Dataset sheet. The phase and
// weighting titles resolve to the same columns when the sheet is ingested
// again; the others are ignored by ingestion.
var DatasetHeaders = []string{
	"Row ID",
	"Category",
	"Construction (A)",
	"Operation (B)",
	"End-of-life (C)",
	"Weighting",
	"Total GWP (weighted)",
	"Suggested scenario",
	"Suggested discipline",
	"Suggested MMI",
	"Mapped scenario",
	"Mapped discipline",
	"Mapped MMI",
	"Combination",
	"Summary row",
	"Excluded",
}

var columnDefinitions = [][]any{
	{"Category", "Source category text"},
	{"Construction (A)", "GWP of the construction phase, kg CO2e"},
	{"Operation (B)", "GWP of the operation phase, kg CO2e"},
	{"End-of-life (C)", "GWP of the end-of-life phase, kg CO2e"},
	{"Weighting", "Percentage of the row total that is counted (0-100)"},
	{"Total GWP (weighted)", "(A + B + C) x Weighting / 100"},
	{"MMI", "300 NY (new), 700 EKS (existing), 800 GJEN (reuse), 900 RIVES (demolish)"},
}

// WriteWorkbook writes d as an xlsx workbook to w.
func WriteWorkbook(w io.Writer, d *Data) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close workbook", "error", err)
		}
	}()

	wb := &workbook{file: f}
	if err := wb.init(); err != nil {
		return err
	}

	wb.metadata(d)
	wb.scenarios(d)
	wb.disciplines(d)
	wb.mmi(d)
	if d.Comparison != nil {
		wb.comparison(d)
	}
	wb.dataset(d.Items)
	if wb.err != nil {
		return fmt.Errorf("failed to build workbook: %w", wb.err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes d to path.
func SaveWorkbook(path string, d *Data) (err error) {
	out, err := os.Create(path) //nolint:gosec // user-selected output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := WriteWorkbook(out, d); err != nil {
		return err
	}
	slog.Info("Wrote workbook", "path", path, "rows", len(d.Items))
	return nil
}

// workbook collects the first error so sheet builders stay linear.
type workbook struct {
	file   *excelize.File
	err    error
	header int
}

func (wb *workbook) init() error {
	if err := wb.file.SetSheetName("Sheet1", SheetMetadata); err != nil {
		return err
	}
	style, err := wb.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	wb.header = style
	return nil
}

func (wb *workbook) sheet(name string) {
	if wb.err != nil || name == SheetMetadata {
		return
	}
	_, wb.err = wb.file.NewSheet(name)
}

func (wb *workbook) row(sheet string, rowIdx int, values []any) {
	if wb.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		wb.err = err
		return
	}
	wb.err = wb.file.SetSheetRow(sheet, cell, &values)
}

func (wb *workbook) headerRow(sheet string, rowIdx int, titles ...string) {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	wb.row(sheet, rowIdx, values)
	if wb.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, rowIdx)
	last, _ := excelize.CoordinatesToCellName(len(titles), rowIdx)
	wb.err = wb.file.SetCellStyle(sheet, first, last, wb.header)
}

// table writes a header and rows starting at row 1 of a new sheet.
func (wb *workbook) table(sheet string, headers []string, rows [][]any) {
	wb.sheet(sheet)
	wb.headerRow(sheet, 1, headers...)
	for i, r := range rows {
		wb.row(sheet, i+2, r)
	}
	if wb.err == nil && len(headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		wb.err = wb.file.SetColWidth(sheet, "A", last, 18)
	}
}

func (wb *workbook) metadata(d *Data) {
	rows := [][]any{
		{"Title", d.Title},
		{"Generated", d.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Base scenario", string(d.Base)},
		{"Target scenario", string(d.Target)},
		{"Verdict", string(d.Verdict)},
		{"Total rows", d.Stats.TotalRows},
		{"Active rows", d.Stats.ActiveRows},
		{"Excluded rows", d.Stats.ExcludedRows},
		{"Fully mapped rows", d.Stats.FullyMapped},
		{"Completeness (%)", d.Stats.CompletenessPct},
		{"Mean weighting (%)", d.Weighting.Mean},
		{},
	}
	wb.table(SheetMetadata, []string{"Field", "Value"}, rows)

	start := len(rows) + 2
	wb.headerRow(SheetMetadata, start, "Column", "Definition")
	for i, def := range columnDefinitions {
		wb.row(SheetMetadata, start+1+i, def)
	}
	if wb.err == nil {
		wb.err = wb.file.SetColWidth(SheetMetadata, "B", "B", 70)
	}
}

func (wb *workbook) scenarios(d *Data) {
	rows := make([][]any, 0, len(d.Scenarios))
	for _, r := range d.Scenarios {
		rows = append(rows, []any{
			string(r.Scenario), r.Totals.Count,
			r.Totals.Construction, r.Totals.Operation, r.Totals.EndOfLife, r.Totals.WeightedTotal,
		})
	}
	wb.table(SheetScenarios, []string{
		"Scenario", "Rows", "Construction (A)", "Operation (B)", "End-of-life (C)", "Total GWP",
	}, rows)
}

func (wb *workbook) disciplines(d *Data) {
	var rows [][]any
	for _, sc := range d.Tree.Scenarios() {
		for _, r := range aggregate.DisciplineSummary(d.Tree, sc) {
			rows = append(rows, []any{
				string(sc), string(r.Discipline), r.Totals.Count,
				r.Totals.Construction, r.Totals.Operation, r.Totals.EndOfLife,
				r.Totals.WeightedTotal, r.SharePct,
			})
		}
	}
	wb.table(SheetDisciplines, []string{
		"Scenario", "Discipline", "Rows", "Construction (A)", "Operation (B)", "End-of-life (C)",
		"Total GWP", "Share (%)",
	}, rows)
}

func (wb *workbook) mmi(d *Data) {
	var rows [][]any
	for _, sc := range d.Tree.Scenarios() {
		for _, r := range aggregate.MmiSummary(d.Tree, sc) {
			rows = append(rows, []any{
				string(sc), string(r.Code), r.Label, r.Totals.Count, r.Totals.WeightedTotal, r.SharePct,
			})
		}
	}
	wb.table(SheetMmi, []string{"Scenario", "MMI", "Label", "Rows", "Total GWP", "Share (%)"}, rows)
}

func (wb *workbook) comparison(d *Data) {
	c := d.Comparison
	base, target := "Scenario "+string(c.Base), "Scenario "+string(c.Target)

	rows := make([][]any, 0, len(c.Metrics)+len(d.Disciplines)+2)
	for _, m := range c.Metrics {
		rows = append(rows, []any{m.Metric.Label(), m.Base, m.Target, m.Difference, RatioCell(m.Ratio)})
	}
	wb.table(SheetComparison, []string{"Metric", base, target, "Difference", "Ratio (%)"}, rows)

	start := len(rows) + 3
	wb.headerRow(SheetComparison, start, "Discipline", base, target, "Difference", "Ratio (%)")
	for i, r := range d.Disciplines {
		wb.row(SheetComparison, start+1+i, []any{
			string(r.Discipline), r.BaseTotal, r.TargetTotal, r.Difference, RatioCell(r.Ratio),
		})
	}
}

func (wb *workbook) dataset(items []model.LineItem) {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, DatasetRow(item))
	}
	wb.table(SheetDataset, DatasetHeaders, rows)
	if wb.err == nil {
		wb.err = wb.file.SetColWidth(SheetDataset, "B", "B", 50)
	}
}

// DatasetRow is item's row under DatasetHeaders.
func DatasetRow(item model.LineItem) []any {
	return []any{
		item.RowID,
		item.Category,
		item.Construction,
		item.Operation,
		item.EndOfLife,
		item.Weighting,
		item.WeightedTotal,
		string(item.Suggested.Scenario),
		string(item.Suggested.Discipline),
		string(item.Suggested.MmiCode),
		string(item.Mapped.Scenario),
		string(item.Mapped.Discipline),
		string(item.Mapped.MmiCode),
		item.Mapped.ID(),
		item.IsSummary,
		item.Excluded,
	}
}

// RatioCell is a ratio as a cell value; empty when there is none.
func RatioCell(r *float64) any {
	if r == nil {
		return ""
	}
	return *r
}

// WorkbookWriter is a Writer that saves an xlsx file.
type WorkbookWriter struct {
	Path string
}

// Write saves d to w.Path.
func (w WorkbookWriter) Write(_ context.Context, d *Data) error {
	return SaveWorkbook(w.Path, d)
}
