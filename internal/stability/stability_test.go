package stability

import (
	"testing"
	"time"
)

func TestClassFor_StrongInsolationLightWind(t *testing.T) {
	if c := ClassFor(1.5, InsolationStrong, 10); c != ClassA {
		t.Errorf("Expected A for 1.5 m/s + strong insolation, got %s", c)
	}
}

func TestClassFor_HighWindDaytime(t *testing.T) {
	for _, insolation := range []Insolation{InsolationStrong, InsolationModerate, InsolationSlight} {
		if c := ClassFor(6, insolation, 10); c != ClassD {
			t.Errorf("Expected D for 6 m/s + %s insolation, got %s", insolation, c)
		}
	}
}

func TestClassFor_ClearCalmNight(t *testing.T) {
	if c := ClassFor(1.0, InsolationNight, 30); c != ClassF {
		t.Errorf("Expected F for clear calm night, got %s", c)
	}
}

func TestClassFor_NightRows(t *testing.T) {
	tests := []struct {
		wind  float64
		cloud float64
		want  Class
	}{
		{3.5, 20, ClassE}, // clear night, moderate wind
		{6.0, 20, ClassD}, // clear night, high wind
		{1.0, 80, ClassE}, // overcast night, light wind
		{4.0, 80, ClassD}, // overcast night
	}
	for _, tt := range tests {
		if c := ClassFor(tt.wind, InsolationNight, tt.cloud); c != tt.want {
			t.Errorf("wind=%.1f cloud=%.0f: expected %s, got %s", tt.wind, tt.cloud, tt.want, c)
		}
	}
}

func TestInsolationFor_Buckets(t *testing.T) {
	tests := []struct {
		elevation float64
		cloud     float64
		want      Insolation
	}{
		{70, 0, InsolationStrong},
		{45, 0, InsolationModerate},
		{20, 0, InsolationSlight},
		{-5, 0, InsolationNight},
		{70, 90, InsolationModerate}, // heavy overcast downgrades
		{45, 90, InsolationSlight},
	}
	for _, tt := range tests {
		if got := InsolationFor(tt.elevation, tt.cloud); got != tt.want {
			t.Errorf("elevation=%.0f cloud=%.0f: expected %s, got %s",
				tt.elevation, tt.cloud, tt.want, got)
		}
	}
}

func TestSolarElevation_NoonVsMidnight(t *testing.T) {
	// Greenwich at the June solstice: high sun at solar noon, below the
	// horizon at midnight.
	noon := time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC)
	midnight := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)

	elevNoon := SolarElevation(51.5, 0, noon)
	if elevNoon < 55 || elevNoon > 65 {
		t.Errorf("Expected noon solstice elevation near 62 degrees, got %.1f", elevNoon)
	}

	elevMidnight := SolarElevation(51.5, 0, midnight)
	if elevMidnight >= 0 {
		t.Errorf("Expected sun below horizon at midnight, got %.1f", elevMidnight)
	}
}

func TestClassify_NightFallsBackToTable(t *testing.T) {
	midnight := time.Date(2025, 1, 10, 0, 30, 0, 0, time.UTC)
	if c := Classify(51.5, 0, midnight, 1.0, 20); c != ClassF {
		t.Errorf("Expected F for calm clear winter night, got %s", c)
	}
}
