package pilots

import (
	"fmt"
	"time"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
)

// Certification is a pilot's standing on a given date, lowest first.
type Certification int

const (
	Invalid    Certification = -1 // not yet enrolled
	Novice     Certification = 0  // enrolled, not soloed
	Student    Certification = 1  // soloed, no license
	Certified  Certification = 2  // licensed, under 50 hours
	FiftyHours Certification = 3  // licensed with 50+ hours
)

func (c Certification) String() string {
	switch c {
	case Invalid:
		return "invalid"
	case Novice:
		return "novice"
	case Student:
		return "student"
	case Certified:
		return "certified"
	case FiftyHours:
		return "50 hours"
	default:
		return fmt.Sprintf("Certification(%d)", int(c))
	}
}

// Pilot is one row of students.csv. Milestone dates are nil when the pilot
// has not reached them.
type Pilot struct {
	ID         string
	LastName   string
	FirstName  string
	Joined     time.Time
	Solo       *time.Time
	License    *time.Time
	FiftyHours *time.Time
}

// CertificationAt returns the pilot's certification at the takeoff instant.
// A milestone counts from its own instant onward.
func (p Pilot) CertificationAt(takeoff time.Time) Certification {
	switch {
	case takeoff.Before(p.Joined):
		return Invalid
	case !reached(takeoff, p.Solo):
		return Novice
	case !reached(takeoff, p.License):
		return Student
	case !reached(takeoff, p.FiftyHours):
		return Certified
	default:
		return FiftyHours
	}
}

func reached(t time.Time, milestone *time.Time) bool {
	return milestone != nil && !t.Before(*milestone)
}

// Students is the pilot roster keyed by student id.
type Students map[string]Pilot

// ParseStudents builds the roster from students.csv rows (header first).
// Milestone columns may be empty; naive dates are interpreted in loc.
func ParseStudents(rows [][]string, loc *time.Location) (Students, error) {
	t, err := newTable("students", rows, "ID", "JOINED", "SOLO", "LICENSE", "50 HOURS")
	if err != nil {
		return nil, err
	}

	out := make(Students, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		id := t.get(row, "ID")
		if id == "" {
			return nil, fmt.Errorf("students line %d: empty ID", line)
		}

		joined, err := domain.ParseTimestamp(t.get(row, "JOINED"), loc)
		if err != nil {
			return nil, fmt.Errorf("students line %d: joined: %w", line, err)
		}
		p := Pilot{
			ID:        id,
			LastName:  t.get(row, "LASTNAME"),
			FirstName: t.get(row, "FIRSTNAME"),
			Joined:    joined,
		}
		for _, m := range []struct {
			col string
			dst **time.Time
		}{
			{"SOLO", &p.Solo},
			{"LICENSE", &p.License},
			{"50 HOURS", &p.FiftyHours},
		} {
			v := t.get(row, m.col)
			if v == "" {
				continue
			}
			ts, err := domain.ParseTimestamp(v, loc)
			if err != nil {
				return nil, fmt.Errorf("students line %d: %s: %w", line, m.col, err)
			}
			*m.dst = &ts
		}
		out[id] = p
	}
	return out, nil
}
