// Package domain models hourly airport weather observations and the
// insurance-mandated weather minimums a flight school audits takeoffs against.
//
// # Data Source
//
// Observations come from the school's weather.json file: an object keyed by
// ISO-8601 timestamps (with UTC offset), one METAR-derived report per key.
// Takeoff records come from lessons.csv. Minimums are supplied per takeoff by
// the pilots package.
//
// # Measurement Conventions
//
// Visibility:
//
//	"unavailable"                                   → bad record keeping
//	{"prevailing": 10.0, "units": "SM"}             → statute miles
//	{"prevailing": 21120.0, "minimum": 1400.0,
//	 "maximum": 21120.0, "units": "FT"}             → feet; minimum governs
//
// Wind:
//
//	"calm" | "unavailable"
//	{"speed": 12.0, "crosswind": 10.0, "gusts": 18.0, "units": "KT"}
//	Units are KT (knots) or MPS (meters per second, 1 MPS = 1.94384 KT).
//	Gusts are optional; the worse of gusts and speed is compared.
//
// Ceiling ("sky" in the source file):
//
//	"clear" | "unavailable" | [layer, ...]
//	layer: {"type": "overcast", "height": 1200.0, "units": "FT"}
//	Types: "a few", "scattered", "broken", "overcast", "indefinite ceiling".
//	Only broken, overcast and indefinite-ceiling layers form a ceiling.
//
// A measurement key missing from a report is treated as "unavailable".
// Any other shape (unknown unit, unknown layer type, missing required field)
// is rejected when the report is decoded.
//
// # Comparison Policy
//
// Visibility violates when minimum >= reported (equality violates).
// Wind and crosswind violate when reported > maximum (equality complies).
// Ceiling violates when minimum > lowest ceiling layer.
//
// # Governing Observation
//
// The report whose key equals the takeoff's ISO representation governs.
// Otherwise the most recent report strictly before takeoff that shares the
// takeoff's UTC offset governs. With neither, the takeoff is labeled Unknown.
package domain
