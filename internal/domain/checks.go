package domain

// BadVisibility reports whether visibility violates minimumSM (statute miles).
// Unavailable visibility is bad record keeping and always violates. A reported
// distance equal to the minimum violates.
func BadVisibility(v Visibility, minimumSM float64) bool {
	if v.Kind() != Reported {
		return true
	}
	return minimumSM >= v.StatuteMiles()
}

// BadWinds reports whether wind exceeds maxWindKt or its crosswind component
// exceeds maxCrosswindKt. Calm winds never violate; unavailable winds always
// do. A reported value equal to the maximum complies.
func BadWinds(w Wind, maxWindKt, maxCrosswindKt float64) bool {
	switch w.Kind() {
	case Calm:
		return false
	case Reported:
		return w.Knots() > maxWindKt || w.CrosswindKnots() > maxCrosswindKt
	default:
		return true
	}
}

// BadCeiling reports whether the lowest broken, overcast or indefinite-ceiling
// layer sits below minimumFt. A clear sky, or one with only few/scattered
// layers, never violates; an unavailable ceiling always does.
func BadCeiling(c Ceiling, minimumFt float64) bool {
	switch c.Kind() {
	case Clear:
		return false
	case Reported:
		height, ok := c.Governing()
		return ok && minimumFt > height
	default:
		return true
	}
}
