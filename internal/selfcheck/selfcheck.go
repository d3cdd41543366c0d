// Package selfcheck runs the auditor's built-in sanity cases: the canonical
// measurement, lookup, and classification cases evaluated against the
// domain package, with no dataset on disk.
package selfcheck

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
)

// Result is the outcome of one case. Err is nil when it passed.
type Result struct {
	Name string
	Err  error
}

// Passed reports whether the case succeeded.
func (r Result) Passed() bool { return r.Err == nil }

type check struct {
	name string
	run  func() error
}

var checks = []check{
	{"visibility below minimum in feet", visibilityFeet},
	{"visibility equal to minimum violates", visibilityBoundary},
	{"wind limits in knots", windKnots},
	{"wind limits after MPS conversion", windMPS},
	{"ceiling from broken or overcast layers", ceilingLayers},
	{"ceiling ignores scattered layers", ceilingScatteredOnly},
	{"resolver falls back to prior report", resolverFallback},
	{"resolver exact key wins", resolverExact},
	{"classifier collapses to weather", classifierCollapse},
}

// Run evaluates every case in order.
func Run() []Result {
	out := make([]Result, len(checks))
	for i, c := range checks {
		out[i] = Result{Name: c.name, Err: c.run()}
	}
	return out
}

// Report prints one line per case and a final tally, returning true when
// every case passed.
func Report(w io.Writer, results []Result) bool {
	failed := 0
	for _, r := range results {
		if r.Passed() {
			_, _ = fmt.Fprintf(w, "PASS %s\n", r.Name)
			continue
		}
		failed++
		_, _ = fmt.Fprintf(w, "FAIL %s: %v\n", r.Name, r.Err)
	}
	if failed > 0 {
		_, _ = fmt.Fprintf(w, "%d of %d checks failed.\n", failed, len(results))
		return false
	}
	_, _ = fmt.Fprintf(w, "All %d checks passed.\n", len(results))
	return true
}

func expect(what string, got, want bool) error {
	if got != want {
		return fmt.Errorf("%s: got %t, want %t", what, got, want)
	}
	return nil
}

func decode[T any](data string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(data), &v)
	return v, err
}

func visibilityFeet() error {
	v, err := decode[domain.Visibility](`{"minimum": 1400.0, "units": "FT"}`)
	if err != nil {
		return err
	}
	if err := expect("limit 0.25 SM", domain.BadVisibility(v, 0.25), false); err != nil {
		return err
	}
	return expect("limit 0.3 SM", domain.BadVisibility(v, 0.3), true)
}

func visibilityBoundary() error {
	v, err := decode[domain.Visibility](`{"minimum": 1320.0, "units": "FT"}`)
	if err != nil {
		return err
	}
	return expect("limit 0.25 SM against 1320 FT", domain.BadVisibility(v, 0.25), true)
}

func windKnots() error {
	w, err := decode[domain.Wind](`{"speed": 12.0, "crosswind": 10.0, "gusts": 18.0, "units": "KT"}`)
	if err != nil {
		return err
	}
	if err := expect("limits 15/5", domain.BadWinds(w, 15, 5), true); err != nil {
		return err
	}
	return expect("limits 20/10", domain.BadWinds(w, 20, 10), false)
}

func windMPS() error {
	w, err := decode[domain.Wind](`{"speed": 12.0, "crosswind": 10.0, "gusts": 18.0, "units": "MPS"}`)
	if err != nil {
		return err
	}
	if err := expect("limits 15/5", domain.BadWinds(w, 15, 5), true); err != nil {
		return err
	}
	if err := expect("limits 20/10", domain.BadWinds(w, 20, 10), true); err != nil {
		return err
	}
	return expect("limits 35/20", domain.BadWinds(w, 35, 20), false)
}

func ceilingLayers() error {
	c, err := decode[domain.Ceiling](`[
		{"type": "scattered", "height": 700.0, "units": "FT"},
		{"type": "overcast", "height": 1200.0, "units": "FT"}
	]`)
	if err != nil {
		return err
	}
	if err := expect("minimum 2000", domain.BadCeiling(c, 2000), true); err != nil {
		return err
	}
	return expect("minimum 1000", domain.BadCeiling(c, 1000), false)
}

func ceilingScatteredOnly() error {
	c, err := decode[domain.Ceiling](`[{"type": "scattered", "height": 700.0, "units": "FT"}]`)
	if err != nil {
		return err
	}
	for _, minimum := range []float64{500, 2000, 100000} {
		if err := expect(fmt.Sprintf("minimum %.0f", minimum), domain.BadCeiling(c, minimum), false); err != nil {
			return err
		}
	}
	return nil
}

func resolverLog(keys ...string) (*domain.ObservationLog, error) {
	reports := make(map[string]domain.Observation, len(keys))
	for _, k := range keys {
		reports[k] = domain.Observation{Wind: domain.CalmWind(), Ceiling: domain.ClearCeiling()}
	}
	return domain.NewObservationLog(reports, nil)
}

func resolve(log *domain.ObservationLog, takeoff string) (*domain.Observation, error) {
	t, err := domain.ParseTimestamp(takeoff, nil)
	if err != nil {
		return nil, err
	}
	return log.Resolve(t), nil
}

func resolverFallback() error {
	log, err := resolverLog("2017-04-21T07:00:00-04:00")
	if err != nil {
		return err
	}
	obs, err := resolve(log, "2017-04-21T08:00:00-04:00")
	if err != nil {
		return err
	}
	if obs == nil || obs.Key != "2017-04-21T07:00:00-04:00" {
		return fmt.Errorf("08:00 takeoff: want the 07:00 report, got %v", obs)
	}
	obs, err = resolve(log, "2017-04-21T06:00:00-04:00")
	if err != nil {
		return err
	}
	if obs != nil {
		return fmt.Errorf("06:00 takeoff: want no report, got %s", obs.Key)
	}
	return nil
}

func resolverExact() error {
	const exact = "2017-04-21T08:00:00-04:00"
	log, err := resolverLog(exact, "2017-04-21T07:30:00-05:00")
	if err != nil {
		return err
	}
	obs, err := resolve(log, exact)
	if err != nil {
		return err
	}
	if obs == nil || obs.Key != exact {
		return fmt.Errorf("want exact report %s, got %v", exact, obs)
	}
	return nil
}

func classifierCollapse() error {
	obs, err := decode[domain.Observation](`{
		"visibility": {"prevailing": 10.0, "units": "SM"},
		"wind": {"speed": 30.0, "crosswind": 2.0, "units": "KT"},
		"sky": [{"type": "broken", "height": 800.0, "units": "FT"}]
	}`)
	if err != nil {
		return err
	}
	m := domain.Minimums{CeilingFt: 2000, VisibilitySM: 5, MaxWindKt: 20, MaxCrosswindKt: 8}
	if got := domain.Classify(&obs, m); got != domain.ViolationWeather {
		return fmt.Errorf("got %q, want %q", got, domain.ViolationWeather)
	}
	return nil
}
