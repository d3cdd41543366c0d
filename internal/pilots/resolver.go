package pilots

import (
	"fmt"
	"time"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
)

// Resolver answers which minimums govern a given takeoff.
type Resolver struct {
	students Students
	table    *MinimumsTable
	daycycle Daycycle
}

// NewResolver combines the roster, minimums table, and daycycle.
func NewResolver(students Students, table *MinimumsTable, daycycle Daycycle) *Resolver {
	return &Resolver{students: students, table: table, daycycle: daycycle}
}

// MinimumsFor returns the minimums for rec taking off at takeoff.
func (r *Resolver) MinimumsFor(rec domain.TakeoffRecord, takeoff time.Time) (domain.Minimums, error) {
	pilot, ok := r.students[rec.Student]
	if !ok {
		return domain.Minimums{}, fmt.Errorf("student %q: %w", rec.Student, ErrUnknownStudent)
	}
	rules, err := domain.ParseFlightRules(rec.Filed)
	if err != nil {
		return domain.Minimums{}, err
	}
	day, err := r.daycycle.IsDaytime(takeoff)
	if err != nil {
		return domain.Minimums{}, err
	}
	return r.table.Lookup(pilot.CertificationAt(takeoff), rec.Area, rec.Instructed(), rules == domain.VFR, day)
}
