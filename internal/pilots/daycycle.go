package pilots

import (
	"fmt"
	"time"
)

// SunTimes holds local sunrise and sunset as HH:MM.
type SunTimes struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// Daycycle is daycycle.json: year ("2017") to month-day ("04-21") to the
// sunrise and sunset for that date.
type Daycycle map[string]map[string]SunTimes

// IsDaytime reports whether t falls between sunrise (inclusive) and sunset
// (exclusive) on its own calendar date, in its own zone.
func (d Daycycle) IsDaytime(t time.Time) (bool, error) {
	days, ok := d[t.Format("2006")]
	if !ok {
		return false, fmt.Errorf("daycycle: no entries for year %s", t.Format("2006"))
	}
	sun, ok := days[t.Format("01-02")]
	if !ok {
		return false, fmt.Errorf("daycycle: no entry for %s", t.Format("2006-01-02"))
	}

	sunrise, err := clockOn(t, sun.Sunrise)
	if err != nil {
		return false, fmt.Errorf("daycycle %s sunrise: %w", t.Format("2006-01-02"), err)
	}
	sunset, err := clockOn(t, sun.Sunset)
	if err != nil {
		return false, fmt.Errorf("daycycle %s sunset: %w", t.Format("2006-01-02"), err)
	}
	return !t.Before(sunrise) && t.Before(sunset), nil
}

// clockOn places an HH:MM wall clock time on t's date and zone.
func clockOn(t time.Time, hhmm string) (time.Time, error) {
	c, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q", hhmm)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, t.Location()), nil
}
