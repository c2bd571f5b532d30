package sensor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Table is a parsed CSV sheet: one header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadTable parses delimited text. A leading UTF-8 BOM (as written by Excel
// exports) is dropped, and header names are trimmed and NFC-normalised so
// "°" matches regardless of how the sheet encoded it.
func ReadTable(r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: %w", ErrNoRows)
	}

	t := &Table{
		Header: make([]string, len(records[0])),
		index:  make(map[string]int, len(records[0])),
	}
	for i, name := range records[0] {
		key := normaliseHeader(name)
		t.Header[i] = key
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Column returns the index of a header, or -1.
func (t *Table) Column(name string) int {
	if idx, ok := t.index[normaliseHeader(name)]; ok {
		return idx
	}
	return -1
}

// ReadingAt extracts the three feature columns of data row i. Row numbers in
// errors are 1-based sheet rows, counting the header.
func (t *Table) ReadingAt(i int) (Reading, error) {
	if i < 0 || i >= len(t.Rows) {
		return Reading{}, ErrNoRows
	}
	row := t.Rows[i]
	values := make([]float64, 0, FeatureCount)
	for _, name := range FeatureNames() {
		idx := t.Column(name)
		if idx < 0 {
			return Reading{}, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		if idx >= len(row) {
			return Reading{}, fmt.Errorf("row %d: %w: %q", i+2, ErrMissingColumn, name)
		}
		v, err := parseNumber(row[idx])
		if err != nil {
			return Reading{}, fmt.Errorf("row %d column %q: %w", i+2, name, err)
		}
		values = append(values, v)
	}
	return Reading{Temperature: values[0], SpO2: values[1], HeartRate: values[2]}, nil
}

// Last returns the final data row's reading.
func (t *Table) Last() (Reading, error) {
	if len(t.Rows) == 0 {
		return Reading{}, ErrNoRows
	}
	return t.ReadingAt(len(t.Rows) - 1)
}

// Tail returns up to n trailing rows.
func (t *Table) Tail(n int) [][]string {
	if n <= 0 || len(t.Rows) == 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([][]string, n)
	copy(out, t.Rows[len(t.Rows)-n:])
	return out
}

func normaliseHeader(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
