package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return &DB{mockDB}, mock
}

func TestInsertAlertEvent(t *testing.T) {
	db, mock := newMockDB(t)

	alert := &AlertEvent{
		SiteID:         1,
		ParameterKey:   "ph",
		Value:          5.2,
		Severity:       "alarm",
		Direction:      "low",
		ThresholdValue: 6.0,
		Status:         AlertStatusActive,
		TriggeredAt:    time.Now(),
	}

	mock.ExpectQuery(`INSERT INTO alert_events`).
		WithArgs(
			alert.SiteID, alert.ParameterKey, alert.Value, alert.Severity,
			alert.Direction, alert.ThresholdValue, alert.Status, alert.TriggeredAt,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	if err := db.InsertAlertEvent(alert); err != nil {
		t.Fatalf("InsertAlertEvent failed: %v", err)
	}
	if alert.ID != 42 {
		t.Errorf("expected ID 42, got %d", alert.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetAlertEvent_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM alert_events`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "site_id", "parameter_key", "value", "severity", "direction",
			"threshold_value", "status", "triggered_at", "acknowledged_by",
			"acknowledged_at", "resolved_at",
		}))

	alert, err := db.GetAlertEvent(99)
	if err != nil {
		t.Fatalf("GetAlertEvent failed: %v", err)
	}
	if alert != nil {
		t.Errorf("expected nil for missing alert, got %+v", alert)
	}
}

func TestAcknowledgeAlertEvent(t *testing.T) {
	db, mock := newMockDB(t)
	at := time.Now()

	mock.ExpectExec(`UPDATE alert_events`).
		WithArgs(AlertStatusAcknowledged, "operator1", at, int64(7), AlertStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := db.AcknowledgeAlertEvent(7, "operator1", at)
	if err != nil {
		t.Fatalf("AcknowledgeAlertEvent failed: %v", err)
	}
	if !ok {
		t.Error("expected acknowledge to succeed for active alert")
	}
}

func TestAcknowledgeAlertEvent_NotActive(t *testing.T) {
	db, mock := newMockDB(t)
	at := time.Now()

	// No rows updated when the alert is already acknowledged or resolved
	mock.ExpectExec(`UPDATE alert_events`).
		WithArgs(AlertStatusAcknowledged, "operator1", at, int64(7), AlertStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := db.AcknowledgeAlertEvent(7, "operator1", at)
	if err != nil {
		t.Fatalf("AcknowledgeAlertEvent failed: %v", err)
	}
	if ok {
		t.Error("expected acknowledge to report false for non-active alert")
	}
}

func TestResolveAlertEvent(t *testing.T) {
	db, mock := newMockDB(t)
	at := time.Now()

	mock.ExpectExec(`UPDATE alert_events`).
		WithArgs(AlertStatusResolved, at, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := db.ResolveAlertEvent(7, at)
	if err != nil {
		t.Fatalf("ResolveAlertEvent failed: %v", err)
	}
	if !ok {
		t.Error("expected resolve to succeed for unresolved alert")
	}
}

func TestListAlertEvents_StatusFilter(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "site_id", "parameter_key", "value", "severity", "direction",
		"threshold_value", "status", "triggered_at", "acknowledged_by",
		"acknowledged_at", "resolved_at",
	}).AddRow(2, 1, "do", 1.1, "watch", "low", 1.5, AlertStatusActive, now, nil, nil, nil).
		AddRow(1, 1, "ph", 5.2, "alarm", "low", 6.0, AlertStatusActive, now.Add(-time.Hour), nil, nil, nil)

	mock.ExpectQuery(`SELECT .+ FROM alert_events`).
		WithArgs(int64(1), AlertStatusActive, 50).
		WillReturnRows(rows)

	alerts, err := db.ListAlertEvents(1, AlertStatusActive, 50)
	if err != nil {
		t.Fatalf("ListAlertEvents failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].ParameterKey != "do" || alerts[1].ParameterKey != "ph" {
		t.Errorf("alerts out of order: %s, %s", alerts[0].ParameterKey, alerts[1].ParameterKey)
	}
}

func TestGetSitePlaybook_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM site_playbooks`).
		WithArgs(int64(1), "ph", "low").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "site_id", "parameter_key", "direction", "steps", "reference_links", "updated_at",
		}))

	pb, err := db.GetSitePlaybook(1, "ph", "low")
	if err != nil {
		t.Fatalf("GetSitePlaybook failed: %v", err)
	}
	if pb != nil {
		t.Errorf("expected nil for missing playbook, got %+v", pb)
	}
}
