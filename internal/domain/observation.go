package domain

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Observation is a single hourly weather report. Fields other than
// visibility, wind and sky are ignored.
type Observation struct {
	Key        string     `json:"-"`
	Time       time.Time  `json:"-"`
	Visibility Visibility `json:"visibility"`
	Wind       Wind       `json:"wind"`
	Ceiling    Ceiling    `json:"sky"`
}

// LogValue renders the report for debug logging.
func (o Observation) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("key", o.Key),
		slog.String("visibility", o.Visibility.Kind().String()),
		slog.String("wind", o.Wind.Kind().String()),
		slog.String("sky", o.Ceiling.Kind().String()),
	}
	if o.Visibility.Kind() == Reported {
		attrs = append(attrs,
			slog.Float64("visibility_sm", o.Visibility.StatuteMiles()),
			slog.String("visibility_units", string(o.Visibility.Units())))
		if maximum, ok := o.Visibility.Maximum(); ok {
			attrs = append(attrs, slog.Float64("visibility_max", maximum))
		}
	}
	if o.Wind.Kind() == Reported {
		attrs = append(attrs,
			slog.Float64("wind_kt", o.Wind.Knots()),
			slog.Float64("crosswind_kt", o.Wind.CrosswindKnots()))
	}
	if o.Ceiling.Kind() == Reported {
		attrs = append(attrs, slog.Int("layers", len(o.Ceiling.Layers())))
		if height, ok := o.Ceiling.Governing(); ok {
			attrs = append(attrs, slog.Float64("ceiling_ft", height))
		}
	}
	return slog.GroupValue(attrs...)
}

// LookupPath records how a governing observation was found.
type LookupPath string

const (
	LookupExact    LookupPath = "exact"
	LookupFallback LookupPath = "fallback"
	LookupMissing  LookupPath = "missing"
)

// ObservationLog is an immutable, timestamp-keyed set of observations.
// It is safe for concurrent reads.
type ObservationLog struct {
	byKey map[string]Observation

	// byOffset holds observations grouped by UTC offset (seconds), each
	// group sorted by time ascending.
	byOffset map[int][]Observation
}

// NewObservationLog indexes reports keyed by ISO-8601 timestamp. Keys without
// an offset are interpreted in loc. An unparsable key is an error.
func NewObservationLog(reports map[string]Observation, loc *time.Location) (*ObservationLog, error) {
	l := &ObservationLog{
		byKey:    make(map[string]Observation, len(reports)),
		byOffset: make(map[int][]Observation),
	}
	for key, obs := range reports {
		t, err := ParseTimestamp(key, loc)
		if err != nil {
			return nil, fmt.Errorf("observation log: %w", err)
		}
		obs.Key = key
		obs.Time = t
		l.byKey[key] = obs
		off := utcOffset(t)
		l.byOffset[off] = append(l.byOffset[off], obs)
	}
	for _, group := range l.byOffset {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Time.Equal(group[j].Time) {
				return group[i].Key < group[j].Key
			}
			return group[i].Time.Before(group[j].Time)
		})
	}
	return l, nil
}

// Len returns the number of observations in the log.
func (l *ObservationLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.byKey)
}

// Resolve returns the observation governing a takeoff at the given instant,
// or nil when no report applies.
func (l *ObservationLog) Resolve(takeoff time.Time) *Observation {
	obs, _ := l.ResolveDetailed(takeoff)
	return obs
}

// ResolveDetailed is Resolve plus the lookup path taken:
//   - exact: a report keyed by the takeoff's ISO representation, or by
//     another spelling of the same instant and offset
//   - fallback: the latest report strictly before takeoff with the same UTC offset
//   - missing: neither exists
func (l *ObservationLog) ResolveDetailed(takeoff time.Time) (*Observation, LookupPath) {
	if l == nil {
		return nil, LookupMissing
	}
	if obs, ok := l.byKey[FormatTimestamp(takeoff)]; ok {
		return &obs, LookupExact
	}

	group := l.byOffset[utcOffset(takeoff)]
	i := sort.Search(len(group), func(i int) bool {
		return !group[i].Time.Before(takeoff)
	})
	// Keys spelled differently (Z, fractional seconds) still name the instant.
	if i < len(group) && group[i].Time.Equal(takeoff) {
		obs := group[i]
		return &obs, LookupExact
	}
	if i == 0 {
		return nil, LookupMissing
	}
	obs := group[i-1]
	return &obs, LookupFallback
}
