package domain

import (
	"fmt"
	"strings"
)

// Minimums are the insurance-mandated weather floors for one takeoff.
type Minimums struct {
	CeilingFt      float64 `json:"ceiling_ft"`
	VisibilitySM   float64 `json:"visibility_sm"`
	MaxWindKt      float64 `json:"max_wind_kt"`
	MaxCrosswindKt float64 `json:"max_crosswind_kt"`
}

// FlightRules is the rule set a flight was filed under.
type FlightRules string

const (
	VFR FlightRules = "VFR"
	IFR FlightRules = "IFR"
)

// ParseFlightRules accepts VFR or IFR.
func ParseFlightRules(s string) (FlightRules, error) {
	switch r := FlightRules(strings.ToUpper(strings.TrimSpace(s))); r {
	case VFR, IFR:
		return r, nil
	default:
		return "", fmt.Errorf("unknown flight rules %q", s)
	}
}

// TakeoffRecord is one row of lessons.csv, kept as the raw column strings so
// violations echo the input verbatim.
type TakeoffRecord struct {
	Student    string `json:"student"`
	Airplane   string `json:"airplane"`
	Instructor string `json:"instructor"`
	Takeoff    string `json:"takeoff"`
	Landing    string `json:"landing"`
	Filed      string `json:"filed"`
	Area       string `json:"area"`
}

// LessonColumns is the number of columns in a lessons.csv row.
const LessonColumns = 7

// TakeoffRecordFromRow maps a lessons.csv row onto a TakeoffRecord.
func TakeoffRecordFromRow(row []string) (TakeoffRecord, error) {
	if len(row) < LessonColumns {
		return TakeoffRecord{}, fmt.Errorf("lesson row has %d columns, want %d", len(row), LessonColumns)
	}
	return TakeoffRecord{
		Student:    strings.TrimSpace(row[0]),
		Airplane:   strings.TrimSpace(row[1]),
		Instructor: strings.TrimSpace(row[2]),
		Takeoff:    strings.TrimSpace(row[3]),
		Landing:    strings.TrimSpace(row[4]),
		Filed:      strings.TrimSpace(row[5]),
		Area:       strings.TrimSpace(row[6]),
	}, nil
}

// Instructed reports whether an instructor was aboard.
func (r TakeoffRecord) Instructed() bool {
	return r.Instructor != ""
}

// ViolationLabel names why a takeoff broke its minimums. The empty label
// means the takeoff complied.
type ViolationLabel string

const (
	Compliant           ViolationLabel = ""
	ViolationVisibility ViolationLabel = "Visibility"
	ViolationWinds      ViolationLabel = "Winds"
	ViolationCeiling    ViolationLabel = "Ceiling"
	ViolationWeather    ViolationLabel = "Weather" // two or more categories
	ViolationUnknown    ViolationLabel = "Unknown" // no governing observation
)

// ViolationRecord is a non-compliant takeoff with its reason.
type ViolationRecord struct {
	TakeoffRecord
	Reason ViolationLabel `json:"reason"`
}

// Row renders the record as report columns, reason last.
func (v ViolationRecord) Row() []string {
	return []string{
		v.Student, v.Airplane, v.Instructor, v.Takeoff,
		v.Landing, v.Filed, v.Area, string(v.Reason),
	}
}

// Classify labels an observation against a minimums profile. A nil
// observation is Unknown. When more than one category fails the label
// collapses to Weather.
func Classify(obs *Observation, m Minimums) ViolationLabel {
	if obs == nil {
		return ViolationUnknown
	}

	var failed []ViolationLabel
	if BadVisibility(obs.Visibility, m.VisibilitySM) {
		failed = append(failed, ViolationVisibility)
	}
	if BadWinds(obs.Wind, m.MaxWindKt, m.MaxCrosswindKt) {
		failed = append(failed, ViolationWinds)
	}
	if BadCeiling(obs.Ceiling, m.CeilingFt) {
		failed = append(failed, ViolationCeiling)
	}

	switch len(failed) {
	case 0:
		return Compliant
	case 1:
		return failed[0]
	default:
		return ViolationWeather
	}
}
