package severity

import "time"

// Trend classifies the short-term movement of a parameter.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// DailyStatus is the dashboard status of a parameter for the current day.
type DailyStatus string

const (
	StatusNormal   DailyStatus = "normal"
	StatusWarning  DailyStatus = "warning"
	StatusCritical DailyStatus = "critical"
	StatusMissing  DailyStatus = "missing"
)

// windowEdge is the number of readings averaged at each end of the trend window.
const windowEdge = 3

// TrendFor classifies rising/falling/stable over values ordered oldest first.
// It compares the mean of the first three values with the mean of the last
// three; a difference exceeding 10% of the parameter's configured range
// (defaultMax - defaultMin) counts as movement. Fewer than six values, or a
// non-positive range, is always stable.
func TrendFor(values []float64, defaultMin, defaultMax float64) Trend {
	if len(values) < 2*windowEdge {
		return TrendStable
	}

	span := defaultMax - defaultMin
	if span <= 0 {
		return TrendStable
	}

	startAvg := mean(values[:windowEdge])
	endAvg := mean(values[len(values)-windowEdge:])
	delta := endAvg - startAvg

	switch {
	case delta > 0.1*span:
		return TrendRising
	case delta < -0.1*span:
		return TrendFalling
	default:
		return TrendStable
	}
}

// DailyStatusFor derives today's status from a single reading against the
// threshold min/max. A value out of bounds by more than half the threshold
// range is critical, otherwise warning. hasReading=false means no reading
// was entered today.
func DailyStatusFor(value float64, min, max float64, hasReading bool) DailyStatus {
	if !hasReading {
		return StatusMissing
	}
	if value >= min && value <= max {
		return StatusNormal
	}

	var deviation float64
	if value < min {
		deviation = min - value
	} else {
		deviation = value - max
	}

	if deviation > (max-min)/2 {
		return StatusCritical
	}
	return StatusWarning
}

// SameDay reports whether two timestamps fall on the same calendar day in
// the timestamps' respective locations.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
