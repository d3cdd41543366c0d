package pilots

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
)

var (
	// ErrNoMinimums is returned when no row of the minimums table applies.
	ErrNoMinimums = errors.New("no applicable minimums")
	// ErrUnknownStudent is returned for a lesson naming a student missing
	// from the roster.
	ErrUnknownStudent = errors.New("unknown student")
)

// Column values used by minimums.csv.
const (
	CategoryDual       = "Dual"
	CategoryStudent    = "Student"
	CategoryCertified  = "Certified"
	CategoryFiftyHours = "50 Hours"

	ConditionsVMC = "VMC"
	ConditionsIMC = "IMC"

	TimeDay   = "Day"
	TimeNight = "Night"

	anyValue = "Any"
)

type minimumsRow struct {
	category   string
	conditions string
	area       string
	time       string
	limits     domain.Minimums
}

// MinimumsTable is the parsed minimums.csv.
type MinimumsTable struct {
	rows []minimumsRow
}

// ParseMinimums builds the table from minimums.csv rows (header first).
func ParseMinimums(rows [][]string) (*MinimumsTable, error) {
	t, err := newTable("minimums", rows,
		"CATEGORY", "CONDITIONS", "AREA", "TIME", "CEILING", "VISIBILITY", "WIND", "CROSSWIND")
	if err != nil {
		return nil, err
	}

	out := &MinimumsTable{rows: make([]minimumsRow, 0, len(t.rows))}
	for i, row := range t.rows {
		line := i + 2
		r := minimumsRow{
			category:   t.get(row, "CATEGORY"),
			conditions: t.get(row, "CONDITIONS"),
			area:       t.get(row, "AREA"),
			time:       t.get(row, "TIME"),
		}
		if r.limits.CeilingFt, err = t.float(row, "CEILING", line); err != nil {
			return nil, err
		}
		if r.limits.VisibilitySM, err = t.float(row, "VISIBILITY", line); err != nil {
			return nil, err
		}
		if r.limits.MaxWindKt, err = t.float(row, "WIND", line); err != nil {
			return nil, err
		}
		if r.limits.MaxCrosswindKt, err = t.float(row, "CROSSWIND", line); err != nil {
			return nil, err
		}
		out.rows = append(out.rows, r)
	}
	return out, nil
}

// Len reports the number of rows.
func (m *MinimumsTable) Len() int { return len(m.rows) }

// Category maps a flight to its minimums.csv category. Instructed flights
// always use the dual category; solo flights need at least a solo
// endorsement.
func Category(cert Certification, instructed bool) (string, error) {
	if instructed {
		return CategoryDual, nil
	}
	switch cert {
	case Student:
		return CategoryStudent, nil
	case Certified:
		return CategoryCertified, nil
	case FiftyHours:
		return CategoryFiftyHours, nil
	default:
		return "", fmt.Errorf("solo flight by %s pilot: %w", cert, ErrNoMinimums)
	}
}

// Lookup returns the minimums for a flight. When several rows apply, the
// most restrictive one wins per field: the highest ceiling and visibility
// floors and the lowest wind and crosswind caps.
func (m *MinimumsTable) Lookup(cert Certification, area string, instructed, vfr, day bool) (domain.Minimums, error) {
	category, err := Category(cert, instructed)
	if err != nil {
		return domain.Minimums{}, err
	}
	conditions := ConditionsIMC
	if vfr {
		conditions = ConditionsVMC
	}
	timeOfDay := TimeNight
	if day {
		timeOfDay = TimeDay
	}

	out := domain.Minimums{
		CeilingFt:      math.Inf(-1),
		VisibilitySM:   math.Inf(-1),
		MaxWindKt:      math.Inf(1),
		MaxCrosswindKt: math.Inf(1),
	}
	matched := false
	for _, r := range m.rows {
		if !strings.EqualFold(r.category, category) ||
			!strings.EqualFold(r.conditions, conditions) ||
			!matchOrAny(r.area, area) ||
			!matchOrAny(r.time, timeOfDay) {
			continue
		}
		matched = true
		out.CeilingFt = math.Max(out.CeilingFt, r.limits.CeilingFt)
		out.VisibilitySM = math.Max(out.VisibilitySM, r.limits.VisibilitySM)
		out.MaxWindKt = math.Min(out.MaxWindKt, r.limits.MaxWindKt)
		out.MaxCrosswindKt = math.Min(out.MaxCrosswindKt, r.limits.MaxCrosswindKt)
	}
	if !matched {
		return domain.Minimums{}, fmt.Errorf("%s %s %s in %q: %w", category, conditions, timeOfDay, area, ErrNoMinimums)
	}
	return out, nil
}

func matchOrAny(cell, want string) bool {
	return strings.EqualFold(cell, anyValue) || strings.EqualFold(cell, want)
}
