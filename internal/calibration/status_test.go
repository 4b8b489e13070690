package calibration

import (
	"testing"
	"time"
)

var now = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func TestDueFor_Overdue(t *testing.T) {
	due := DueFor(now.AddDate(0, 0, -3), now, DueSoonDays)
	if due.Status != StatusOverdue {
		t.Errorf("Expected overdue, got %s", due.Status)
	}
	if due.DaysUntil != -3 {
		t.Errorf("Expected -3 days, got %d", due.DaysUntil)
	}
}

func TestDueFor_DueToday(t *testing.T) {
	// Same calendar day, earlier clock time: still due-today, not overdue
	dueAt := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	due := DueFor(dueAt, now, DueSoonDays)
	if due.Status != StatusDueToday {
		t.Errorf("Expected due-today, got %s", due.Status)
	}
}

func TestDueFor_DueSoon(t *testing.T) {
	due := DueFor(now.AddDate(0, 0, 2), now, DueSoonDays)
	if due.Status != StatusDueSoon {
		t.Errorf("Expected due-soon at 2 days out, got %s", due.Status)
	}
	if due.DaysUntil != 2 {
		t.Errorf("Expected 2 days, got %d", due.DaysUntil)
	}
}

func TestDueFor_OK(t *testing.T) {
	due := DueFor(now.AddDate(0, 0, 3), now, DueSoonDays)
	if due.Status != StatusOK {
		t.Errorf("Expected ok at 3 days out, got %s", due.Status)
	}
}

func TestDeviationPercent(t *testing.T) {
	if d := DeviationPercent(7.0, 7.07); d < 0.99 || d > 1.01 {
		t.Errorf("Expected ~1%%, got %.3f", d)
	}
	if d := DeviationPercent(7.0, 6.93); d > -0.99 || d < -1.01 {
		t.Errorf("Expected ~-1%%, got %.3f", d)
	}
	if d := DeviationPercent(0, 5); d != 0 {
		t.Errorf("Expected 0 for zero reference, got %.3f", d)
	}
}

func TestPassed(t *testing.T) {
	if !Passed(1.5, 2.0) {
		t.Error("Expected pass within tolerance")
	}
	if !Passed(-2.0, 2.0) {
		t.Error("Expected pass at tolerance boundary")
	}
	if Passed(2.1, 2.0) {
		t.Error("Expected fail beyond tolerance")
	}
}

func TestNextDue(t *testing.T) {
	calibrated := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	next := NextDue(calibrated, 30)
	if next != time.Date(2025, 4, 9, 9, 0, 0, 0, time.UTC) {
		t.Errorf("Unexpected next due date: %s", next)
	}
}
