package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is the sentinel wrapped by every SchemaError.
var ErrSchema = errors.New("schema error")

// Canonical column names.
const (
	ColumnCategory     = "category"
	ColumnConstruction = "construction"
	ColumnOperation    = "operation"
	ColumnEndOfLife    = "end_of_life"
	ColumnWeighting    = "weighting"
)

// SchemaError names the required columns that could not be resolved.
type SchemaError struct {
	Headers []string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s (found: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// Columns holds the source index of each canonical column; -1 means absent.
type Columns struct {
	Category     int
	Construction int
	Operation    int
	EndOfLife    int
	Weighting    int
}

// HasWeighting reports whether the source carries a weighting column.
func (c Columns) HasWeighting() bool {
	return c.Weighting >= 0
}

type columnRule struct {
	name     string
	contains []string
	suffix   string
}

// Rules are tried in order for every header; the first rule that matches
// claims the header.
var columnRules = []columnRule{
	{name: ColumnConstruction, contains: []string{"construction", "konstruksjon"}, suffix: "(a)"},
	{name: ColumnOperation, contains: []string{"operation", "drift"}, suffix: "(b)"},
	{name: ColumnEndOfLife, contains: []string{"end", "avslutning"}, suffix: "(c)"},
	{name: ColumnWeighting, contains: []string{"weighting", "vekting"}},
	{name: ColumnCategory, contains: []string{"category", "kategori"}},
}

func (r columnRule) matches(header string) bool {
	if r.suffix != "" && strings.HasSuffix(header, r.suffix) {
		return true
	}
	for _, c := range r.contains {
		if strings.Contains(header, c) {
			return true
		}
	}
	return false
}

// ResolveColumns maps source headers onto canonical columns. The first header
// matching a column wins. Without an explicit category header the first
// column is used if nothing else claimed it.
func ResolveColumns(headers []string) (Columns, error) {
	found := map[string]int{}

	for i, h := range headers {
		header := strings.ToLower(strings.TrimSpace(h))
		if header == "" {
			continue
		}
		for _, rule := range columnRules {
			if rule.matches(header) {
				if _, taken := found[rule.name]; !taken {
					found[rule.name] = i
				}
				break
			}
		}
	}

	if _, ok := found[ColumnCategory]; !ok && len(headers) > 0 {
		claimed := false
		for _, idx := range found {
			if idx == 0 {
				claimed = true
				break
			}
		}
		if !claimed {
			found[ColumnCategory] = 0
		}
	}

	var missing []string
	for _, name := range []string{ColumnCategory, ColumnConstruction, ColumnOperation, ColumnEndOfLife} {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Columns{}, &SchemaError{Headers: headers, Missing: missing}
	}

	cols := Columns{
		Category:     found[ColumnCategory],
		Construction: found[ColumnConstruction],
		Operation:    found[ColumnOperation],
		EndOfLife:    found[ColumnEndOfLife],
		Weighting:    -1,
	}
	if idx, ok := found[ColumnWeighting]; ok {
		cols.Weighting = idx
	}
	return cols, nil
}
