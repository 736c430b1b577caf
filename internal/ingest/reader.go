// Package ingest turns exported spreadsheets into classified line items.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyTable is returned when a source has no header row.
	ErrEmptyTable = errors.New("no header row found")
	// ErrSheetNotFound is returned when the requested worksheet does not exist.
	ErrSheetNotFound = errors.New("worksheet not found")
)

// RawTable is the untyped boundary between file readers and the ingestor.
// Every row has exactly len(Headers) cells.
type RawTable struct {
	Source  string
	Headers []string
	Rows    [][]string
}

// ReadOptions controls how source files are read.
type ReadOptions struct {
	// Sheet selects an xlsx worksheet; empty means the first sheet.
	Sheet string
}

// ReadFile reads an xlsx or csv file based on its extension.
func ReadFile(path string, opts ReadOptions) (*RawTable, error) {
	f, err := os.Open(path) //nolint:gosec // path is user supplied by design
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var table *RawTable
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		table, err = ReadXLSX(f, opts.Sheet)
	case ".csv", ".txt":
		table, err = ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	table.Source = path
	return table, nil
}

// ReadXLSX reads one worksheet. Cells are read unformatted so numbers keep
// full precision.
func ReadXLSX(r io.Reader, sheet string) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return newRawTable(rows)
}

// ReadCSV reads comma or semicolon separated data. The delimiter is taken
// from the header line.
func ReadCSV(r io.Reader) (*RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	return newRawTable(rows)
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// newRawTable takes the first non-blank row as the header and pads or
// truncates the remaining rows to its width.
func newRawTable(rows [][]string) (*RawTable, error) {
	start := -1
	for i, row := range rows {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrEmptyTable
	}

	headers := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		headers[i] = strings.TrimSpace(h)
	}

	table := &RawTable{
		Headers: headers,
		Rows:    make([][]string, 0, len(rows)-start-1),
	}
	for _, row := range rows[start+1:] {
		cells := make([]string, len(headers))
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
