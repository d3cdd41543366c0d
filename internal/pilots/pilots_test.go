package pilots

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
)

var studentRows = [][]string{
	{"ID", "LASTNAME", "FIRSTNAME", "JOINED", "SOLO", "LICENSE", "50 HOURS", "INSTRUMENT", "ADVANCED", "MULTIENGINE"},
	{"S00687", "Elliot", "Reid", "2016-09-01T00:00:00-04:00", "2016-12-01T00:00:00-05:00", "", "", "", "", ""},
	{"S00758", "Turk", "Chris", "2015-01-15T00:00:00-05:00", "2015-04-01T00:00:00-04:00", "2015-09-01T00:00:00-04:00", "2016-03-01T00:00:00-05:00", "", "", ""},
	{"S00901", "Cox", "Perry", "2017-01-02", "", "", "", "", "", ""},
}

var minimumsRows = [][]string{
	{"CATEGORY", "CONDITIONS", "AREA", "TIME", "CEILING", "VISIBILITY", "WIND", "CROSSWIND"},
	{"Student", "VMC", "Pattern", "Day", "2000", "5", "20", "8"},
	{"Student", "VMC", "Practice Area", "Day", "3000", "10", "20", "8"},
	{"Certified", "VMC", "Any", "Day", "3000", "5", "20", "20"},
	{"Certified", "VMC", "Any", "Night", "5000", "10", "20", "20"},
	{"50 Hours", "VMC", "Any", "Any", "2000", "3", "30", "20"},
	{"Dual", "VMC", "Any", "Any", "2000", "5", "30", "20"},
	{"Dual", "VMC", "Pattern", "Any", "1000", "3", "30", "15"},
	{"Dual", "IMC", "Any", "Any", "500", "0.75", "30", "20"},
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := domain.ParseTimestamp(s, time.UTC)
	require.NoError(t, err)
	return ts
}

func mustStudents(t *testing.T) Students {
	t.Helper()
	s, err := ParseStudents(studentRows, time.UTC)
	require.NoError(t, err)
	return s
}

func mustTable(t *testing.T) *MinimumsTable {
	t.Helper()
	m, err := ParseMinimums(minimumsRows)
	require.NoError(t, err)
	return m
}

func TestParseStudents(t *testing.T) {
	students := mustStudents(t)
	require.Len(t, students, 3)

	reid := students["S00687"]
	assert.Equal(t, "Elliot", reid.LastName)
	assert.Equal(t, "Reid", reid.FirstName)
	require.NotNil(t, reid.Solo)
	assert.Nil(t, reid.License)
	assert.Nil(t, reid.FiftyHours)

	cox := students["S00901"]
	assert.True(t, time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC).Equal(cox.Joined))
}

func TestParseStudents_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		msg  string
	}{
		{"empty", nil, "missing header"},
		{"missing column", [][]string{{"ID", "JOINED"}}, "missing column"},
		{"bad joined", [][]string{studentRows[0], {"S1", "a", "b", "whenever", "", "", ""}}, "line 2"},
		{"bad solo", [][]string{studentRows[0], {"S1", "a", "b", "2016-01-01", "soon", "", ""}}, "SOLO"},
		{"empty id", [][]string{studentRows[0], {"", "a", "b", "2016-01-01", "", "", ""}}, "empty ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStudents(tt.rows, time.UTC)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestPilot_CertificationAt(t *testing.T) {
	turk := mustStudents(t)["S00758"]

	tests := []struct {
		name     string
		at       string
		expected Certification
	}{
		{"before joining", "2015-01-14T23:59:00-05:00", Invalid},
		{"on joining", "2015-01-15T00:00:00-05:00", Novice},
		{"before solo", "2015-03-31T12:00:00-04:00", Novice},
		{"on solo", "2015-04-01T00:00:00-04:00", Student},
		{"licensed", "2015-10-01T09:00:00-04:00", Certified},
		{"fifty hours", "2017-01-08T14:00:00-05:00", FiftyHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, turk.CertificationAt(mustTime(t, tt.at)))
		})
	}

	t.Run("missing milestones cap certification", func(t *testing.T) {
		reid := mustStudents(t)["S00687"]
		assert.Equal(t, Student, reid.CertificationAt(mustTime(t, "2017-06-01T10:00:00-04:00")))
	})
}

func TestMinimumsTable_LookupMostRestrictive(t *testing.T) {
	table, err := ParseMinimums([][]string{
		{"CATEGORY", "CONDITIONS", "AREA", "TIME", "CEILING", "VISIBILITY", "WIND", "CROSSWIND"},
		{"Dual", "VMC", "Any", "Any", "3000", "5", "30", "20"},
		{"Dual", "VMC", "Pattern", "Day", "1000", "3", "10", "15"},
	})
	require.NoError(t, err)

	got, err := table.Lookup(Novice, "Pattern", true, true, true)
	require.NoError(t, err)
	assert.Equal(t, domain.Minimums{CeilingFt: 3000, VisibilitySM: 5, MaxWindKt: 10, MaxCrosswindKt: 15}, got)

	// Only the first row applies outside the pattern.
	got, err = table.Lookup(Novice, "Local", true, true, true)
	require.NoError(t, err)
	assert.Equal(t, domain.Minimums{CeilingFt: 3000, VisibilitySM: 5, MaxWindKt: 30, MaxCrosswindKt: 20}, got)
}

func TestCertification_String(t *testing.T) {
	assert.Equal(t, "50 hours", FiftyHours.String())
	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "Certification(9)", Certification(9).String())
}

func TestMinimumsTable_Lookup(t *testing.T) {
	table := mustTable(t)
	assert.Equal(t, 8, table.Len())

	tests := []struct {
		name       string
		cert       Certification
		area       string
		instructed bool
		vfr        bool
		day        bool
		expected   domain.Minimums
	}{
		{
			name: "student pattern day", cert: Student, area: "Pattern", vfr: true, day: true,
			expected: domain.Minimums{CeilingFt: 2000, VisibilitySM: 5, MaxWindKt: 20, MaxCrosswindKt: 8},
		},
		{
			name: "certified any area at night", cert: Certified, area: "Local", vfr: true, day: false,
			expected: domain.Minimums{CeilingFt: 5000, VisibilitySM: 10, MaxWindKt: 20, MaxCrosswindKt: 20},
		},
		{
			name: "fifty hours any time", cert: FiftyHours, area: "Local", vfr: true, day: false,
			expected: domain.Minimums{CeilingFt: 2000, VisibilitySM: 3, MaxWindKt: 30, MaxCrosswindKt: 20},
		},
		{
			name: "dual takes the strictest of matching rows", cert: Novice, area: "Pattern", instructed: true, vfr: true, day: true,
			expected: domain.Minimums{CeilingFt: 2000, VisibilitySM: 5, MaxWindKt: 30, MaxCrosswindKt: 15},
		},
		{
			name: "dual ignores certification", cert: Invalid, area: "Local", instructed: true, vfr: true, day: true,
			expected: domain.Minimums{CeilingFt: 2000, VisibilitySM: 5, MaxWindKt: 30, MaxCrosswindKt: 20},
		},
		{
			name: "dual instrument", cert: FiftyHours, area: "Local", instructed: true, vfr: false, day: false,
			expected: domain.Minimums{CeilingFt: 500, VisibilitySM: 0.75, MaxWindKt: 30, MaxCrosswindKt: 20},
		},
		{
			name: "area match is case-insensitive", cert: Student, area: "practice area", vfr: true, day: true,
			expected: domain.Minimums{CeilingFt: 3000, VisibilitySM: 10, MaxWindKt: 20, MaxCrosswindKt: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Lookup(tt.cert, tt.area, tt.instructed, tt.vfr, tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMinimumsTable_LookupMisses(t *testing.T) {
	table := mustTable(t)

	tests := []struct {
		name       string
		cert       Certification
		area       string
		instructed bool
		vfr        bool
		day        bool
	}{
		{"novice solo", Novice, "Pattern", false, true, true},
		{"invalid solo", Invalid, "Pattern", false, true, true},
		{"student at night", Student, "Pattern", false, true, false},
		{"student outside listed areas", Student, "Local", false, true, true},
		{"solo instrument", Certified, "Local", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.Lookup(tt.cert, tt.area, tt.instructed, tt.vfr, tt.day)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoMinimums))
		})
	}
}

func TestParseMinimums_BadNumber(t *testing.T) {
	_, err := ParseMinimums([][]string{
		minimumsRows[0],
		{"Dual", "VMC", "Any", "Any", "low", "5", "30", "20"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "CEILING")
}

func TestDaycycle_IsDaytime(t *testing.T) {
	cycle := Daycycle{"2017": {"04-21": {Sunrise: "06:24", Sunset: "19:46"}}}

	tests := []struct {
		at       string
		expected bool
	}{
		{"2017-04-21T06:23:00-04:00", false},
		{"2017-04-21T06:24:00-04:00", true},
		{"2017-04-21T12:00:00-04:00", true},
		{"2017-04-21T19:45:59-04:00", true},
		{"2017-04-21T19:46:00-04:00", false},
		{"2017-04-21T23:00:00-04:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			day, err := cycle.IsDaytime(mustTime(t, tt.at))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, day)
		})
	}

	t.Run("missing date", func(t *testing.T) {
		_, err := cycle.IsDaytime(mustTime(t, "2017-04-22T12:00:00-04:00"))
		assert.Error(t, err)
	})
	t.Run("missing year", func(t *testing.T) {
		_, err := cycle.IsDaytime(mustTime(t, "2018-04-21T12:00:00-04:00"))
		assert.Error(t, err)
	})
	t.Run("malformed clock", func(t *testing.T) {
		bad := Daycycle{"2017": {"04-21": {Sunrise: "dawn", Sunset: "19:46"}}}
		_, err := bad.IsDaytime(mustTime(t, "2017-04-21T12:00:00-04:00"))
		assert.Error(t, err)
	})
}

func TestResolver_MinimumsFor(t *testing.T) {
	cycle := Daycycle{"2017": {"01-08": {Sunrise: "07:20", Sunset: "17:00"}}}
	r := NewResolver(mustStudents(t), mustTable(t), cycle)

	rec := domain.TakeoffRecord{Student: "S00687", Airplane: "548QR", Filed: "VFR", Area: "Pattern"}
	takeoff := mustTime(t, "2017-01-08T14:00:00-05:00")

	got, err := r.MinimumsFor(rec, takeoff)
	require.NoError(t, err)
	assert.Equal(t, domain.Minimums{CeilingFt: 2000, VisibilitySM: 5, MaxWindKt: 20, MaxCrosswindKt: 8}, got)

	t.Run("unknown student", func(t *testing.T) {
		_, err := r.MinimumsFor(domain.TakeoffRecord{Student: "S99999", Filed: "VFR"}, takeoff)
		assert.ErrorIs(t, err, ErrUnknownStudent)
	})
	t.Run("bad flight rules", func(t *testing.T) {
		bad := rec
		bad.Filed = "SVFR"
		_, err := r.MinimumsFor(bad, takeoff)
		assert.Error(t, err)
	})
	t.Run("night solo student has no minimums", func(t *testing.T) {
		_, err := r.MinimumsFor(rec, mustTime(t, "2017-01-08T18:00:00-05:00"))
		assert.ErrorIs(t, err, ErrNoMinimums)
	})
	t.Run("missing daycycle entry", func(t *testing.T) {
		_, err := r.MinimumsFor(rec, mustTime(t, "2017-01-09T14:00:00-05:00"))
		assert.Error(t, err)
	})
}
