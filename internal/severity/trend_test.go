package severity

import "testing"

func TestTrendFor_Rising(t *testing.T) {
	// Range 0..10, 10% = 1.0. First-3 avg = 2, last-3 avg = 8.
	values := []float64{2, 2, 2, 5, 8, 8, 8}
	if trend := TrendFor(values, 0, 10); trend != TrendRising {
		t.Errorf("Expected rising, got %s", trend)
	}
}

func TestTrendFor_Falling(t *testing.T) {
	values := []float64{8, 8, 8, 5, 2, 2, 2}
	if trend := TrendFor(values, 0, 10); trend != TrendFalling {
		t.Errorf("Expected falling, got %s", trend)
	}
}

func TestTrendFor_StableWithinTenPercent(t *testing.T) {
	// Delta of 0.9 is within 10% of the 0..10 range.
	values := []float64{5, 5, 5, 5.5, 5.9, 5.9, 5.9}
	if trend := TrendFor(values, 0, 10); trend != TrendStable {
		t.Errorf("Expected stable, got %s", trend)
	}
}

func TestTrendFor_TooFewReadings(t *testing.T) {
	values := []float64{1, 9, 1, 9, 1}
	if trend := TrendFor(values, 0, 10); trend != TrendStable {
		t.Errorf("Expected stable with fewer than 6 readings, got %s", trend)
	}
}

func TestTrendFor_DegenerateRange(t *testing.T) {
	values := []float64{1, 1, 1, 9, 9, 9}
	if trend := TrendFor(values, 5, 5); trend != TrendStable {
		t.Errorf("Expected stable with zero-width range, got %s", trend)
	}
}

func TestDailyStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		min, max   float64
		hasReading bool
		want       DailyStatus
	}{
		{"in range", 7.0, 6.5, 8.5, true, StatusNormal},
		{"on bound", 6.5, 6.5, 8.5, true, StatusNormal},
		{"small deviation", 6.0, 6.5, 8.5, true, StatusWarning},
		{"deviation beyond half range", 5.0, 6.5, 8.5, true, StatusCritical},
		{"high side critical", 10.0, 6.5, 8.5, true, StatusCritical},
		{"no reading", 0, 6.5, 8.5, false, StatusMissing},
	}

	for _, tt := range tests {
		got := DailyStatusFor(tt.value, tt.min, tt.max, tt.hasReading)
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}
