package severity

// Level is the severity tier of a reading relative to its configured bands.
type Level string

const (
	LevelOK    Level = "ok"
	LevelWatch Level = "watch"
	LevelAlarm Level = "alarm"
)

// Direction reports which side of a band a value crossed.
type Direction string

const (
	DirectionLow  Direction = "low"
	DirectionHigh Direction = "high"
)

// Band is a {min,max} pair. A nil side leaves that side unconstrained.
type Band struct {
	Min *float64
	Max *float64
}

// Bands holds the two nested tiers configured for a parameter.
// The alarm band is expected to be at least as wide as the watch band.
type Bands struct {
	Watch Band
	Alarm Band
}

// Breach describes a band crossing: which side was crossed and its limit.
type Breach struct {
	Direction Direction
	Limit     float64
}

// contains reports whether value is inside the band. Bounds are inclusive:
// a value exactly equal to min or max is in-band.
func (b Band) contains(value float64) bool {
	if b.Min != nil && value < *b.Min {
		return false
	}
	if b.Max != nil && value > *b.Max {
		return false
	}
	return true
}

// breach returns the crossing details for a value outside the band.
func (b Band) breach(value float64) *Breach {
	if b.Min != nil && value < *b.Min {
		return &Breach{Direction: DirectionLow, Limit: *b.Min}
	}
	if b.Max != nil && value > *b.Max {
		return &Breach{Direction: DirectionHigh, Limit: *b.Max}
	}
	return nil
}

// For classifies a reading value against the parameter's bands. The alarm
// band is checked first; a value outside it on either side is "alarm". Else
// a value outside the watch band is "watch", else "ok". The second return
// carries the crossed bound for non-ok results and is nil for "ok".
//
// The function is total and deterministic; callers filter out non-finite
// values before invoking it.
func For(value float64, bands Bands) (Level, *Breach) {
	if br := bands.Alarm.breach(value); br != nil {
		return LevelAlarm, br
	}
	if br := bands.Watch.breach(value); br != nil {
		return LevelWatch, br
	}
	return LevelOK, nil
}

// Float64 returns a pointer to v. Convenience for building bands.
func Float64(v float64) *float64 {
	return &v
}
