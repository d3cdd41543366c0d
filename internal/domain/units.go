package domain

import (
	"fmt"
	"strings"
)

const (
	// FeetPerStatuteMile converts FT visibility to statute miles.
	FeetPerStatuteMile = 5280.0

	// KnotsPerMPS converts MPS wind speeds to knots.
	KnotsPerMPS = 1.94384
)

// DistanceUnit is the unit of a visibility or cloud height measurement.
type DistanceUnit string

const (
	Feet         DistanceUnit = "FT"
	StatuteMiles DistanceUnit = "SM"
)

// SpeedUnit is the unit of a wind measurement.
type SpeedUnit string

const (
	Knots           SpeedUnit = "KT"
	MetersPerSecond SpeedUnit = "MPS"
)

// FeetToStatuteMiles converts a distance in feet to statute miles.
func FeetToStatuteMiles(ft float64) float64 {
	return ft / FeetPerStatuteMile
}

// MPSToKnots converts a speed in meters per second to knots.
func MPSToKnots(mps float64) float64 {
	return mps * KnotsPerMPS
}

// ToStatuteMiles converts value in unit u to statute miles.
func (u DistanceUnit) ToStatuteMiles(value float64) float64 {
	if u == Feet {
		return FeetToStatuteMiles(value)
	}
	return value
}

// ToKnots converts value in unit u to knots.
func (u SpeedUnit) ToKnots(value float64) float64 {
	if u == MetersPerSecond {
		return MPSToKnots(value)
	}
	return value
}

// parseDistanceUnit accepts FT or SM, case-insensitively.
func parseDistanceUnit(s string) (DistanceUnit, error) {
	switch u := DistanceUnit(strings.ToUpper(strings.TrimSpace(s))); u {
	case Feet, StatuteMiles:
		return u, nil
	default:
		return "", fmt.Errorf("%w: unknown distance unit %q", ErrInvalidMeasurement, s)
	}
}

// parseSpeedUnit accepts KT or MPS, case-insensitively.
func parseSpeedUnit(s string) (SpeedUnit, error) {
	switch u := SpeedUnit(strings.ToUpper(strings.TrimSpace(s))); u {
	case Knots, MetersPerSecond:
		return u, nil
	default:
		return "", fmt.Errorf("%w: unknown speed unit %q", ErrInvalidMeasurement, s)
	}
}
