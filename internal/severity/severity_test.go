package severity

import "testing"

func bands(watchMin, watchMax, alarmMin, alarmMax float64) Bands {
	return Bands{
		Watch: Band{Min: Float64(watchMin), Max: Float64(watchMax)},
		Alarm: Band{Min: Float64(alarmMin), Max: Float64(alarmMax)},
	}
}

func TestFor_InBand(t *testing.T) {
	b := bands(6.5, 8.5, 6.0, 9.0)

	level, breach := For(7.2, b)
	if level != LevelOK {
		t.Errorf("Expected ok, got %s", level)
	}
	if breach != nil {
		t.Errorf("Expected nil breach for in-band value, got %+v", breach)
	}
}

func TestFor_BoundaryInclusive(t *testing.T) {
	b := bands(6.5, 8.5, 6.0, 9.0)

	// Value exactly equal to a bound is in-band
	for _, v := range []float64{6.5, 8.5} {
		if level, _ := For(v, b); level != LevelOK {
			t.Errorf("Value %v on watch bound: expected ok, got %s", v, level)
		}
	}
	if level, _ := For(6.0, b); level != LevelWatch {
		t.Errorf("Value 6.0 on alarm bound: expected watch, got %s", level)
	}
}

func TestFor_WatchBreach(t *testing.T) {
	b := bands(6.5, 8.5, 6.0, 9.0)

	level, breach := For(6.49, b)
	if level != LevelWatch {
		t.Fatalf("Expected watch, got %s", level)
	}
	if breach == nil || breach.Direction != DirectionLow || breach.Limit != 6.5 {
		t.Errorf("Expected low breach at 6.5, got %+v", breach)
	}
}

func TestFor_AlarmBreach(t *testing.T) {
	b := bands(65, 85, 60, 90)

	level, breach := For(95, b)
	if level != LevelAlarm {
		t.Fatalf("Expected alarm, got %s", level)
	}
	if breach == nil || breach.Direction != DirectionHigh || breach.Limit != 90 {
		t.Errorf("Expected high breach at 90, got %+v", breach)
	}

	level, _ = For(10, b)
	if level != LevelAlarm {
		t.Errorf("Expected alarm below alarm min, got %s", level)
	}
}

func TestFor_AlarmCheckedBeforeWatch(t *testing.T) {
	// Alarm min is above the checked value: alarm wins even though
	// the value is also outside the watch band.
	b := Bands{
		Watch: Band{Min: Float64(6.5)},
		Alarm: Band{Min: Float64(6.5)},
	}
	level, _ := For(6.49, b)
	if level != LevelAlarm {
		t.Errorf("Expected alarm when both bands breached, got %s", level)
	}
}

func TestFor_MissingSideUnconstrained(t *testing.T) {
	// Only an upper watch bound configured: any low value is ok.
	b := Bands{Watch: Band{Max: Float64(30)}}

	if level, _ := For(-100, b); level != LevelOK {
		t.Errorf("Expected ok with unconstrained min, got %s", level)
	}
	if level, _ := For(31, b); level != LevelWatch {
		t.Errorf("Expected watch above max, got %s", level)
	}
}

func TestFor_NoBands(t *testing.T) {
	if level, _ := For(42, Bands{}); level != LevelOK {
		t.Errorf("Expected ok with no bands configured, got %s", level)
	}
}
