// Package report renders audit results as CSV and as a console summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
)

// Header is the first row of every violations report.
var Header = []string{"STUDENT", "AIRPLANE", "INSTRUCTOR", "TAKEOFF", "LANDING", "FILED", "AREA", "REASON"}

// WriteCSV writes the header followed by one row per violation.
func WriteCSV(w io.Writer, vs []domain.ViolationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, v := range vs {
		if err := cw.Write(v.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, replacing any existing file.
func WriteFile(path string, vs []domain.ViolationRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()

	if err := WriteCSV(f, vs); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Summary is the one-line console result.
func Summary(n int) string {
	switch n {
	case 0:
		return "No violations found."
	case 1:
		return "1 violation found."
	default:
		return fmt.Sprintf("%d violations found.", n)
	}
}
