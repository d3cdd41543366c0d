package domain

import (
	"fmt"
	"strings"
	"time"
)

// offsetLayouts carry an explicit UTC offset.
var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

// localLayouts have no offset and are interpreted in a caller-supplied location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. A timestamp without a UTC
// offset is interpreted in loc (UTC when loc is nil).
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse timestamp: empty value")
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not ISO-8601", s)
}

// FormatTimestamp renders t the way weather.json keys are written:
// 2017-04-21T08:00:00-04:00. The offset is always numeric (UTC is +00:00)
// and microseconds appear only when non-zero.
func FormatTimestamp(t time.Time) string {
	layout := "2006-01-02T15:04:05-07:00"
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		layout = "2006-01-02T15:04:05.000000-07:00"
	}
	return t.Format(layout)
}

// utcOffset returns t's offset from UTC in seconds.
func utcOffset(t time.Time) int {
	_, off := t.Zone()
	return off
}
