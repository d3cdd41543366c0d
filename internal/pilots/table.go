// Package pilots resolves the weather minimums that apply to a takeoff: the
// pilot's certification on the takeoff date, whether the flight was
// instructed, the filed flight rules, and whether it was day or night.
package pilots

import (
	"fmt"
	"strconv"
	"strings"
)

// table is a CSV file addressed by header name.
type table struct {
	name  string
	index map[string]int
	rows  [][]string
}

// newTable takes rows as read from a CSV file, header first, and checks the
// required columns are present. Header names are matched case-insensitively.
func newTable(name string, rows [][]string, required ...string) (*table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", name)
	}
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", name, col)
		}
	}
	return &table{name: name, index: index, rows: rows[1:]}, nil
}

// get returns the trimmed value of col in row, or "" when the row is short.
func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// float parses col as a number; line is 1-based including the header.
func (t *table) float(row []string, col string, line int) (float64, error) {
	v := t.get(row, col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %s: invalid number %q", t.name, line, col, v)
	}
	return f, nil
}
