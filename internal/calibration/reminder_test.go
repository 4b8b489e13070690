package calibration

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/plantops/plantwatch/internal/database"
)

func newSweepDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return &database.DB{DB: mockDB}, mock
}

func scheduleRows(nextDueAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "site_id", "instrument", "parameter_key", "interval_days",
		"tolerance_percent", "last_calibrated_at", "next_due_at", "created_at",
	}).AddRow(5, 1, "ph-analyzer-01", "ph", 30, 2.0, nil, nextDueAt, nextDueAt.AddDate(0, 0, -30))
}

func siteRow(id int64, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "latitude", "longitude", "created_at",
	}).AddRow(id, name, "east-works", 51.5, -0.6, time.Now())
}

// A due date two calendar days out still counts as due-soon even when its
// clock time is later in the day than the sweep runs.
func TestSweepDueWindowIsDatePrecise(t *testing.T) {
	db, mock := newSweepDB(t)

	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	nextDueAt := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	wantCutoff := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM calibration_schedules`).
		WithArgs(wantCutoff).
		WillReturnRows(scheduleRows(nextDueAt))
	mock.ExpectQuery(`SELECT .+ FROM sites`).
		WithArgs(int64(1)).
		WillReturnRows(siteRow(1, "East Works"))

	items, err := SweepDue(db, now, DueSoonDays)
	if err != nil {
		t.Fatalf("SweepDue failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 due item, got %d", len(items))
	}
	if items[0].Due.Status != StatusDueSoon {
		t.Errorf("expected due-soon, got %s", items[0].Due.Status)
	}
	if items[0].Due.DaysUntil != 2 {
		t.Errorf("expected 2 days until due, got %d", items[0].Due.DaysUntil)
	}
	if items[0].SiteName != "East Works" {
		t.Errorf("expected site name East Works, got %q", items[0].SiteName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSweepDueOverdue(t *testing.T) {
	db, mock := newSweepDB(t)

	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	nextDueAt := time.Date(2026, 3, 8, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM calibration_schedules`).
		WithArgs(time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(scheduleRows(nextDueAt))
	mock.ExpectQuery(`SELECT .+ FROM sites`).
		WithArgs(int64(1)).
		WillReturnRows(siteRow(1, "East Works"))

	items, err := SweepDue(db, now, DueSoonDays)
	if err != nil {
		t.Fatalf("SweepDue failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 due item, got %d", len(items))
	}
	if items[0].Due.Status != StatusOverdue {
		t.Errorf("expected overdue, got %s", items[0].Due.Status)
	}
	if items[0].Due.DaysUntil != -2 {
		t.Errorf("expected -2 days until due, got %d", items[0].Due.DaysUntil)
	}
}
