package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EdvardGK/reduzer-summary/internal/classification"
	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/EdvardGK/reduzer-summary/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reduzerTable(rows ...[]string) *RawTable {
	return &RawTable{
		Headers: []string{"Category", "Construction (A)", "Operation (B)", "End-of-life (C)"},
		Rows:    rows,
	}
}

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Columns
		missing []string
	}{
		{
			name:    "reduzer export",
			headers: []string{"Category", "Construction (A)", "Operation (B)", "End-of-life (C)"},
			want:    Columns{Category: 0, Construction: 1, Operation: 2, EndOfLife: 3, Weighting: -1},
		},
		{
			name:    "suffix only and category fallback",
			headers: []string{"Objekt", "GWP (A)", "GWP (B)", "GWP (C)"},
			want:    Columns{Category: 0, Construction: 1, Operation: 2, EndOfLife: 3, Weighting: -1},
		},
		{
			name:    "norwegian headers with weighting",
			headers: []string{"Vekting", "Kategori", "Konstruksjon", "Drift", "Avslutning"},
			want:    Columns{Category: 1, Construction: 2, Operation: 3, EndOfLife: 4, Weighting: 0},
		},
		{
			name:    "first matching header wins",
			headers: []string{"Category", "Construction", "Construction (A)", "Operation", "End of life"},
			want:    Columns{Category: 0, Construction: 1, Operation: 3, EndOfLife: 4, Weighting: -1},
		},
		{
			name:    "round-trip export",
			headers: []string{"Row ID", "Category", "Construction (A)", "Operation (B)", "End-of-life (C)", "Weighting", "Total GWP (weighted)"},
			want:    Columns{Category: 1, Construction: 2, Operation: 3, EndOfLife: 4, Weighting: 5},
		},
		{
			name:    "missing phases",
			headers: []string{"Category", "Construction (A)"},
			missing: []string{ColumnOperation, ColumnEndOfLife},
		},
		{
			name:    "first column already claimed",
			headers: []string{"Construction", "Operation", "End"},
			missing: []string{ColumnCategory},
		},
		{
			name:    "no headers",
			headers: nil,
			missing: []string{ColumnCategory, ColumnConstruction, ColumnOperation, ColumnEndOfLife},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveColumns(tt.headers)
			if tt.missing != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrSchema)

				var schemaErr *SchemaError
				require.ErrorAs(t, err, &schemaErr)
				assert.Equal(t, tt.missing, schemaErr.Missing)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1000", 1000},
		{"  12.5 ", 12.5},
		{"12,5", 12.5},
		{"1 234,5", 1234.5},
		{"1 234", 1234},
		{"1,234,567", 1234567},
		{"1,234.5", 1234.5},
		{"1.234,5", 1234.5},
		{"1.234.567", 1234567},
		{"-42", -42},
		{"\u221242", -42},
		{"(12)", -12},
		{"1e3", 1000},
		{"", 0},
		{"n/a", 0},
		{"NaN", 0},
		{"Inf", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.in), 1e-9)
		})
	}
}

func TestParseWeighting(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"50", 50},
		{"50%", 50},
		{"33,3", 33.3},
		{"", 100},
		{"abc", 100},
		{"150", 100},
		{"-5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseWeighting(tt.in), 1e-9)
		})
	}
}

func TestIngest(t *testing.T) {
	table := reduzerTable(
		[]string{"Scenario A - RIV - New", "1000", "10", "5"},
		[]string{"   ", "99", "99", "99"},
		[]string{"S8 - RAMBELL", "5000", "0", "0"},
		[]string{"Scenario C - ARK - Existing (copy)", "100", "", "x"},
		[]string{"Random text", "1,5", "0", "0"},
	)

	items, err := New().Ingest(table)
	require.NoError(t, err)
	require.Len(t, items, 4)

	first := items[0]
	assert.Equal(t, 0, first.RowID)
	assert.Equal(t, model.NewClassification(model.ScenarioA, model.DisciplineRIV, model.MmiNew), first.Suggested)
	assert.Equal(t, first.Suggested, first.Mapped)
	assert.InDelta(t, 1015, first.BaseTotal, 1e-9)
	assert.InDelta(t, 1015, first.WeightedTotal, 1e-9)
	assert.Equal(t, model.DefaultWeighting, first.Weighting)
	assert.False(t, first.Excluded)

	summary := items[1]
	assert.Equal(t, 1, summary.RowID, "blank rows do not consume row IDs")
	assert.True(t, summary.IsSummary)
	assert.True(t, summary.Excluded)

	noisy := items[2]
	assert.False(t, noisy.IsSummary)
	assert.True(t, noisy.Excluded)
	assert.InDelta(t, 100, noisy.BaseTotal, 1e-9, "unparsable cells are 0")

	unknown := items[3]
	assert.False(t, unknown.Suggested.Partial())
	assert.Equal(t, model.UnknownMmiLabel, unknown.Suggested.MmiLabel)
	assert.InDelta(t, 1.5, unknown.Construction, 1e-9)
}

func TestIngest_Weighting(t *testing.T) {
	table := &RawTable{
		Headers: []string{"Category", "Construction (A)", "Operation (B)", "End-of-life (C)", "Weighting"},
		Rows: [][]string{
			{"Scenario A - RIV - New", "200", "0", "0", "50"},
			{"Scenario A - RIV - New", "200", "0", "0", ""},
			{"Scenario A - RIV - New", "200", "0", "0", "250"},
		},
	}

	items, err := New().Ingest(table)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.InDelta(t, 100, items[0].WeightedTotal, 1e-9)
	assert.InDelta(t, 200, items[1].WeightedTotal, 1e-9)
	assert.InDelta(t, 100, items[2].Weighting, 1e-9)
	for _, item := range items {
		assert.InDelta(t, item.BaseTotal*item.Weighting/100, item.WeightedTotal, 1e-9)
	}
}

func TestIngest_SchemaErrorIsAtomic(t *testing.T) {
	table := &RawTable{
		Headers: []string{"Category", "Construction (A)"},
		Rows:    [][]string{{"Scenario A - RIV - New", "1"}},
	}

	items, err := New().Ingest(table)
	require.Error(t, err)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), ColumnOperation)
	assert.Contains(t, err.Error(), ColumnEndOfLife)
}

func TestIngest_Idempotent(t *testing.T) {
	table := reduzerTable(
		[]string{"Scenario A - RIBp - MMI300", "1 000", "0", "0"},
		[]string{"ScenarioC_RIV_Existing Waste", "12,5", "3", "1"},
		[]string{"S8 - RAMBELL", "1", "1", "1"},
	)

	first, err := New().Ingest(table)
	require.NoError(t, err)
	second, err := New().Ingest(table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIngest_Options(t *testing.T) {
	detector, err := classification.NewDetector([]classification.Pattern{})
	require.NoError(t, err)

	in := New(
		WithDetector(detector),
		WithNoiseFilter(pattern.NewNoiseFilter([]string{"draft"})),
	)
	items, err := in.Ingest(reduzerTable(
		[]string{"Scenario A - RIV - New (copy)", "1", "0", "0"},
		[]string{"Scenario A - RIV - draft", "1", "0", "0"},
	))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.False(t, items[0].Suggested.Scenario.IsSet(), "empty rule set detects nothing")
	assert.False(t, items[0].Excluded, "default tokens replaced")
	assert.True(t, items[1].Excluded)
}

func TestNormalizeCategory(t *testing.T) {
	decomposed := "Gjenbruk a\u030a"
	assert.Equal(t, "Gjenbruk \u00e5", NormalizeCategory("  "+decomposed+" "))
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "comma",
			data: "Category,Construction (A),Operation (B),End-of-life (C)\nScenario A - RIV - New,1000,0,0\n",
		},
		{
			name: "semicolon with bom and decimal comma",
			data: "\xef\xbb\xbfCategory;Construction (A);Operation (B);End-of-life (C)\nScenario A - RIV - New;1000,0;0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, "Category", table.Headers[0])
			require.Len(t, table.Rows, 1)
			assert.Len(t, table.Rows[0], 4, "short rows are padded")

			items, err := New().Ingest(table)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.InDelta(t, 1000, items[0].Construction, 1e-9)
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("\n,,\n"))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func writeWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := writeWorkbook(t, "Resultater", [][]any{
		{},
		{"Category", "Construction (A)", "Operation (B)", "End-of-life (C)"},
		{"Scenario A - RIV - New", 1000.25, 0, 0},
		{"Scenario C - RIV - Reused", 50, 1, 2},
	})

	table, err := ReadXLSX(bytes.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Category", "Construction (A)", "Operation (B)", "End-of-life (C)"}, table.Headers)

	items, err := New().Ingest(table)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.InDelta(t, 1000.25, items[0].Construction, 1e-9)
	assert.InDelta(t, 53, items[1].BaseTotal, 1e-9)

	_, err = ReadXLSX(bytes.NewReader(data), "Missing")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Category,Construction (A),Operation (B),End-of-life (C)\nScenario A - RIV - New,1000,0,0\n"), 0o600))

	items, err := New().IngestFile(csvPath, ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	xlsxPath := filepath.Join(dir, "export.xlsx")
	require.NoError(t, os.WriteFile(xlsxPath, writeWorkbook(t, "Sheet1", [][]any{
		{"Category", "Construction (A)", "Operation (B)"},
		{"Scenario A - RIV - New", 1, 2},
	}), 0o600))

	_, err = New().IngestFile(xlsxPath, ReadOptions{})
	assert.ErrorIs(t, err, ErrSchema)

	_, err = New().IngestFile(filepath.Join(dir, "export.pdf"), ReadOptions{})
	require.Error(t, err)

	pdf := filepath.Join(dir, "real.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o600))
	_, err = New().IngestFile(pdf, ReadOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
