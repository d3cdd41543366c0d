package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidMeasurement reports a measurement whose shape cannot be interpreted.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// MeasurementKind tags which variant a measurement holds. The zero value is
// Unavailable so a measurement missing from a report reads as bad record keeping.
type MeasurementKind uint8

const (
	Unavailable MeasurementKind = iota
	Reported
	Calm  // wind only
	Clear // ceiling only
)

func (k MeasurementKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case Reported:
		return "reported"
	case Calm:
		return "calm"
	case Clear:
		return "clear"
	default:
		return fmt.Sprintf("MeasurementKind(%d)", k)
	}
}

// optional is a float that may be absent from a report.
type optional struct {
	value float64
	ok    bool
}

func some(v float64) optional { return optional{value: v, ok: true} }

func fromPtr(p *float64) optional {
	if p == nil {
		return optional{}
	}
	return some(*p)
}

// --- Visibility ---

// Visibility is either Unavailable or a reported distance.
type Visibility struct {
	kind       MeasurementKind
	prevailing float64
	minimum    optional
	maximum    optional
	units      DistanceUnit
}

// UnavailableVisibility marks a report without a visibility measurement.
func UnavailableVisibility() Visibility {
	return Visibility{kind: Unavailable}
}

// ReportedVisibility builds a visibility from its prevailing distance.
func ReportedVisibility(prevailing float64, units DistanceUnit) (Visibility, error) {
	u, err := parseDistanceUnit(string(units))
	if err != nil {
		return Visibility{}, fmt.Errorf("visibility: %w", err)
	}
	if err := checkFinite("visibility prevailing", prevailing); err != nil {
		return Visibility{}, err
	}
	return Visibility{kind: Reported, prevailing: prevailing, units: u}, nil
}

// WithMinimum returns a copy carrying the reported minimum distance.
func (v Visibility) WithMinimum(minimum float64) Visibility {
	v.minimum = some(minimum)
	return v
}

// WithMaximum returns a copy carrying the reported maximum distance.
func (v Visibility) WithMaximum(maximum float64) Visibility {
	v.maximum = some(maximum)
	return v
}

func (v Visibility) Kind() MeasurementKind { return v.kind }
func (v Visibility) Units() DistanceUnit   { return v.units }
func (v Visibility) Prevailing() float64   { return v.prevailing }

// Minimum returns the reported minimum distance, if any.
func (v Visibility) Minimum() (float64, bool) { return v.minimum.value, v.minimum.ok }

// Maximum returns the reported maximum distance, if any.
func (v Visibility) Maximum() (float64, bool) { return v.maximum.value, v.maximum.ok }

// StatuteMiles returns the governing distance in statute miles: the minimum
// when reported, otherwise the prevailing visibility. Zero for Unavailable.
func (v Visibility) StatuteMiles() float64 {
	if v.kind != Reported {
		return 0
	}
	d := v.prevailing
	if v.minimum.ok {
		d = v.minimum.value
	}
	return v.units.ToStatuteMiles(d)
}

type visibilityJSON struct {
	Prevailing *float64 `json:"prevailing"`
	Minimum    *float64 `json:"minimum"`
	Maximum    *float64 `json:"maximum"`
	Units      string   `json:"units"`
}

// UnmarshalJSON accepts "unavailable" or a visibility object.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	if tag, ok, err := decodeTag(data); ok || err != nil {
		if err != nil {
			return fmt.Errorf("visibility: %w", err)
		}
		if tag == "unavailable" {
			*v = UnavailableVisibility()
			return nil
		}
		return fmt.Errorf("visibility: %w: unexpected value %q", ErrInvalidMeasurement, tag)
	}

	var raw visibilityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("visibility: %w: %v", ErrInvalidMeasurement, err)
	}

	var prevailing float64
	switch {
	case raw.Prevailing != nil:
		prevailing = *raw.Prevailing
	case raw.Minimum != nil:
		prevailing = *raw.Minimum
	default:
		return fmt.Errorf("visibility: %w: missing prevailing distance", ErrInvalidMeasurement)
	}

	out, err := ReportedVisibility(prevailing, DistanceUnit(raw.Units))
	if err != nil {
		return err
	}
	out.minimum = fromPtr(raw.Minimum)
	out.maximum = fromPtr(raw.Maximum)
	*v = out
	return nil
}

// --- Wind ---

// Wind is Calm, Unavailable, or a reported speed with optional gusts and crosswind.
type Wind struct {
	kind      MeasurementKind
	speed     float64
	crosswind optional
	gusts     optional
	units     SpeedUnit
}

// CalmWind marks calm winds.
func CalmWind() Wind { return Wind{kind: Calm} }

// UnavailableWind marks a report without a wind measurement.
func UnavailableWind() Wind { return Wind{kind: Unavailable} }

// ReportedWind builds a wind measurement from its sustained speed.
func ReportedWind(speed float64, units SpeedUnit) (Wind, error) {
	u, err := parseSpeedUnit(string(units))
	if err != nil {
		return Wind{}, fmt.Errorf("wind: %w", err)
	}
	if err := checkFinite("wind speed", speed); err != nil {
		return Wind{}, err
	}
	return Wind{kind: Reported, speed: speed, units: u}, nil
}

// WithCrosswind returns a copy carrying the crosswind component.
func (w Wind) WithCrosswind(crosswind float64) Wind {
	w.crosswind = some(crosswind)
	return w
}

// WithGusts returns a copy carrying the gust speed.
func (w Wind) WithGusts(gusts float64) Wind {
	w.gusts = some(gusts)
	return w
}

func (w Wind) Kind() MeasurementKind { return w.kind }
func (w Wind) Units() SpeedUnit      { return w.units }
func (w Wind) Speed() float64        { return w.speed }

// Gusts returns the reported gust speed, if any.
func (w Wind) Gusts() (float64, bool) { return w.gusts.value, w.gusts.ok }

// Crosswind returns the reported crosswind component, if any.
func (w Wind) Crosswind() (float64, bool) { return w.crosswind.value, w.crosswind.ok }

// Knots returns the worse of gusts and sustained speed, in knots.
func (w Wind) Knots() float64 {
	if w.kind != Reported {
		return 0
	}
	s := w.speed
	if w.gusts.ok && w.gusts.value > s {
		s = w.gusts.value
	}
	return w.units.ToKnots(s)
}

// CrosswindKnots returns the crosswind component in knots. An unreported
// crosswind counts as zero.
func (w Wind) CrosswindKnots() float64 {
	if w.kind != Reported || !w.crosswind.ok {
		return 0
	}
	return w.units.ToKnots(w.crosswind.value)
}

type windJSON struct {
	Speed     *float64 `json:"speed"`
	Crosswind *float64 `json:"crosswind"`
	Gusts     *float64 `json:"gusts"`
	Units     string   `json:"units"`
}

// UnmarshalJSON accepts "calm", "unavailable", or a wind object.
func (w *Wind) UnmarshalJSON(data []byte) error {
	if tag, ok, err := decodeTag(data); ok || err != nil {
		if err != nil {
			return fmt.Errorf("wind: %w", err)
		}
		switch tag {
		case "calm":
			*w = CalmWind()
			return nil
		case "unavailable":
			*w = UnavailableWind()
			return nil
		}
		return fmt.Errorf("wind: %w: unexpected value %q", ErrInvalidMeasurement, tag)
	}

	var raw windJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("wind: %w: %v", ErrInvalidMeasurement, err)
	}
	if raw.Speed == nil {
		return fmt.Errorf("wind: %w: missing speed", ErrInvalidMeasurement)
	}

	out, err := ReportedWind(*raw.Speed, SpeedUnit(raw.Units))
	if err != nil {
		return err
	}
	out.crosswind = fromPtr(raw.Crosswind)
	out.gusts = fromPtr(raw.Gusts)
	*w = out
	return nil
}

// --- Ceiling ---

// CoverType is the sky-cover category of a cloud layer.
type CoverType string

const (
	Few               CoverType = "few"
	Scattered         CoverType = "scattered"
	Broken            CoverType = "broken"
	Overcast          CoverType = "overcast"
	IndefiniteCeiling CoverType = "indefinite-ceiling"
)

// ParseCoverType accepts both the canonical names and the spellings used in
// weather.json ("a few", "indefinite ceiling").
func ParseCoverType(s string) (CoverType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "few", "a few":
		return Few, nil
	case "scattered":
		return Scattered, nil
	case "broken":
		return Broken, nil
	case "overcast":
		return Overcast, nil
	case "indefinite-ceiling", "indefinite ceiling":
		return IndefiniteCeiling, nil
	default:
		return "", fmt.Errorf("%w: unknown cloud cover %q", ErrInvalidMeasurement, s)
	}
}

// FormsCeiling reports whether layers of this type legally constitute a ceiling.
func (c CoverType) FormsCeiling() bool {
	return c == Broken || c == Overcast || c == IndefiniteCeiling
}

// CloudLayer is a single reported cloud layer.
type CloudLayer struct {
	Cover  CoverType
	Height float64
	Units  DistanceUnit
}

// NewCloudLayer validates a layer. Heights are always reported in feet.
func NewCloudLayer(cover CoverType, height float64) (CloudLayer, error) {
	c, err := ParseCoverType(string(cover))
	if err != nil {
		return CloudLayer{}, err
	}
	if err := checkFinite("cloud height", height); err != nil {
		return CloudLayer{}, err
	}
	return CloudLayer{Cover: c, Height: height, Units: Feet}, nil
}

type cloudLayerJSON struct {
	Type   string   `json:"type"`
	Height *float64 `json:"height"`
	Units  string   `json:"units"`
}

// Ceiling is Clear, Unavailable, or an ordered list of cloud layers.
type Ceiling struct {
	kind   MeasurementKind
	layers []CloudLayer
}

// ClearCeiling marks a clear sky.
func ClearCeiling() Ceiling { return Ceiling{kind: Clear} }

// UnavailableCeiling marks a report without sky information.
func UnavailableCeiling() Ceiling { return Ceiling{kind: Unavailable} }

// LayeredCeiling builds a reported ceiling from zero or more layers.
func LayeredCeiling(layers ...CloudLayer) Ceiling {
	return Ceiling{kind: Reported, layers: append([]CloudLayer(nil), layers...)}
}

func (c Ceiling) Kind() MeasurementKind { return c.kind }

// Layers returns a copy of the reported layers.
func (c Ceiling) Layers() []CloudLayer {
	return append([]CloudLayer(nil), c.layers...)
}

// Governing returns the height of the lowest broken, overcast or
// indefinite-ceiling layer. ok is false when no layer forms a ceiling.
func (c Ceiling) Governing() (height float64, ok bool) {
	if c.kind != Reported {
		return 0, false
	}
	for _, l := range c.layers {
		if !l.Cover.FormsCeiling() {
			continue
		}
		if !ok || l.Height < height {
			height, ok = l.Height, true
		}
	}
	return height, ok
}

// UnmarshalJSON accepts "clear", "unavailable", or a list of layers.
func (c *Ceiling) UnmarshalJSON(data []byte) error {
	if tag, ok, err := decodeTag(data); ok || err != nil {
		if err != nil {
			return fmt.Errorf("ceiling: %w", err)
		}
		switch tag {
		case "clear":
			*c = ClearCeiling()
			return nil
		case "unavailable":
			*c = UnavailableCeiling()
			return nil
		}
		return fmt.Errorf("ceiling: %w: unexpected value %q", ErrInvalidMeasurement, tag)
	}

	var raw []cloudLayerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ceiling: %w: %v", ErrInvalidMeasurement, err)
	}

	layers := make([]CloudLayer, 0, len(raw))
	for i, r := range raw {
		if r.Height == nil {
			return fmt.Errorf("ceiling layer %d: %w: missing height", i, ErrInvalidMeasurement)
		}
		if r.Units != "" {
			if u, err := parseDistanceUnit(r.Units); err != nil || u != Feet {
				return fmt.Errorf("ceiling layer %d: %w: height units must be FT, got %q", i, ErrInvalidMeasurement, r.Units)
			}
		}
		layer, err := NewCloudLayer(CoverType(r.Type), *r.Height)
		if err != nil {
			return fmt.Errorf("ceiling layer %d: %w", i, err)
		}
		layers = append(layers, layer)
	}
	*c = Ceiling{kind: Reported, layers: layers}
	return nil
}

// decodeTag reads a bare string (or null) measurement. ok is false when the
// payload is not a string, so the caller decodes the structured form.
func decodeTag(data []byte) (tag string, ok bool, err error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return "unavailable", true, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrInvalidMeasurement, err)
	}
	return strings.ToLower(strings.TrimSpace(s)), true, nil
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidMeasurement, field)
	}
	return nil
}
