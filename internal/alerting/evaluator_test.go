package alerting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/protocol"
	"github.com/plantops/plantwatch/internal/severity"
)

// capturePublisher records published notifications instead of writing to Kafka
type capturePublisher struct {
	mu            sync.Mutex
	notifications []*protocol.AlertNotification
}

func (p *capturePublisher) Publish(ctx context.Context, key string, value []byte) error {
	notification, err := protocol.DecodeAlertNotification(value)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.notifications = append(p.notifications, notification)
	p.mu.Unlock()
	return nil
}

func (p *capturePublisher) last(t *testing.T) *protocol.AlertNotification {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notifications) == 0 {
		t.Fatal("expected a published notification")
	}
	return p.notifications[len(p.notifications)-1]
}

func newTestEvaluator(t *testing.T) (*Evaluator, sqlmock.Sqlmock, *StateManager, *capturePublisher) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sm := NewStateManager(client)
	publisher := &capturePublisher{}
	evaluator := NewEvaluator(&database.DB{DB: mockDB}, sm, publisher)

	return evaluator, mock, sm, publisher
}

// expectParameters primes the parameter cache query with a ph row using the
// standard bands: watch 6.5-8.5, alarm 6.0-9.0.
func expectParameters(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{
		"key", "display_name", "unit", "decimals", "default_min", "default_max",
		"watch_min", "watch_max", "alarm_min", "alarm_max", "updated_at",
	}).AddRow("ph", "pH", "pH", 2, 6.0, 9.0, 6.5, 8.5, 6.0, 9.0, time.Now())

	mock.ExpectQuery(`SELECT .+ FROM parameters`).WillReturnRows(rows)
}

func expectSiteLookup(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"id", "name", "slug", "latitude", "longitude", "created_at"}).
		AddRow(1, "East Works", "east-works", 51.5, -0.1, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM sites`).WithArgs(int64(1)).WillReturnRows(rows)
}

func expectNoPlaybookOverride(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT .+ FROM site_playbooks`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "site_id", "parameter_key", "direction", "steps", "reference_links", "updated_at",
		}))
}

func reading(value float64) *protocol.ReadingMessage {
	now := time.Now()
	return &protocol.ReadingMessage{
		SiteSlug:     "east-works",
		SiteID:       1,
		ParameterKey: "ph",
		Value:        value,
		RecordedAt:   now,
		ReceivedAt:   now,
		Source:       database.SourceAnalyzer,
	}
}

func TestEvaluateReading_InBandNoState(t *testing.T) {
	evaluator, mock, _, publisher := newTestEvaluator(t)
	expectParameters(mock)

	if err := evaluator.EvaluateReading(context.Background(), reading(7.2)); err != nil {
		t.Fatalf("EvaluateReading failed: %v", err)
	}

	if len(publisher.notifications) != 0 {
		t.Errorf("expected no notifications, got %d", len(publisher.notifications))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEvaluateReading_NewWatchBreach(t *testing.T) {
	evaluator, mock, sm, publisher := newTestEvaluator(t)
	ctx := context.Background()

	expectParameters(mock)
	mock.ExpectQuery(`INSERT INTO alert_events`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	expectSiteLookup(mock)
	expectNoPlaybookOverride(mock)

	// 6.2 is below the watch floor of 6.5 but above the alarm floor of 6.0
	if err := evaluator.EvaluateReading(ctx, reading(6.2)); err != nil {
		t.Fatalf("EvaluateReading failed: %v", err)
	}

	notification := publisher.last(t)
	if notification.Type != protocol.AlertTypeTriggered {
		t.Errorf("expected %s, got %s", protocol.AlertTypeTriggered, notification.Type)
	}
	if notification.Severity != "watch" {
		t.Errorf("expected severity watch, got %s", notification.Severity)
	}
	if notification.Direction != "low" {
		t.Errorf("expected direction low, got %s", notification.Direction)
	}
	if notification.Threshold != 6.5 {
		t.Errorf("expected threshold 6.5, got %f", notification.Threshold)
	}
	if notification.AlertID != 31 {
		t.Errorf("expected alert ID 31, got %d", notification.AlertID)
	}
	if len(notification.Playbook) == 0 {
		t.Error("expected default playbook steps in notification")
	}

	state, err := sm.GetState(ctx, 1, "ph")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state == nil || state.Severity != severity.LevelWatch {
		t.Errorf("expected stored watch state, got %+v", state)
	}
}

func TestEvaluateReading_EscalationToAlarm(t *testing.T) {
	evaluator, mock, sm, publisher := newTestEvaluator(t)
	ctx := context.Background()

	// Existing watch breach with an open event
	now := time.Now()
	sm.SetState(ctx, 1, "ph", &BreachState{
		Severity:    severity.LevelWatch,
		Direction:   "low",
		StartedAt:   now,
		LastChecked: now,
		LastValue:   6.2,
		AlertID:     31,
	})

	expectParameters(mock)
	// The superseded watch event is resolved before the alarm event opens
	mock.ExpectExec(`UPDATE alert_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO alert_events`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(32))
	expectSiteLookup(mock)
	expectNoPlaybookOverride(mock)

	// 5.8 is below the alarm floor of 6.0
	if err := evaluator.EvaluateReading(ctx, reading(5.8)); err != nil {
		t.Fatalf("EvaluateReading failed: %v", err)
	}

	notification := publisher.last(t)
	if notification.Type != protocol.AlertTypeEscalated {
		t.Errorf("expected %s, got %s", protocol.AlertTypeEscalated, notification.Type)
	}
	if notification.Severity != "alarm" {
		t.Errorf("expected severity alarm, got %s", notification.Severity)
	}

	state, err := sm.GetState(ctx, 1, "ph")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state == nil || state.Severity != severity.LevelAlarm || state.AlertID != 32 {
		t.Errorf("expected alarm state with alert 32, got %+v", state)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEvaluateReading_OngoingBreachRefreshesState(t *testing.T) {
	evaluator, mock, sm, publisher := newTestEvaluator(t)
	ctx := context.Background()

	now := time.Now()
	sm.SetState(ctx, 1, "ph", &BreachState{
		Severity:    severity.LevelWatch,
		Direction:   "low",
		StartedAt:   now,
		LastChecked: now,
		LastValue:   6.2,
		AlertID:     31,
	})

	expectParameters(mock)

	// Still in the watch band: no new event, no notification
	if err := evaluator.EvaluateReading(ctx, reading(6.3)); err != nil {
		t.Fatalf("EvaluateReading failed: %v", err)
	}

	if len(publisher.notifications) != 0 {
		t.Errorf("expected no notifications, got %d", len(publisher.notifications))
	}

	state, err := sm.GetState(ctx, 1, "ph")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state == nil || state.LastValue != 6.3 {
		t.Errorf("expected refreshed state with last value 6.3, got %+v", state)
	}
	if state.AlertID != 31 {
		t.Errorf("expected alert ID 31 preserved, got %d", state.AlertID)
	}
}

func TestEvaluateReading_ReturnToOKClearsAlert(t *testing.T) {
	evaluator, mock, sm, publisher := newTestEvaluator(t)
	ctx := context.Background()

	now := time.Now()
	sm.SetState(ctx, 1, "ph", &BreachState{
		Severity:    severity.LevelWatch,
		Direction:   "low",
		StartedAt:   now,
		LastChecked: now,
		LastValue:   6.2,
		AlertID:     31,
	})

	expectParameters(mock)
	mock.ExpectExec(`UPDATE alert_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectSiteLookup(mock)

	if err := evaluator.EvaluateReading(ctx, reading(7.0)); err != nil {
		t.Fatalf("EvaluateReading failed: %v", err)
	}

	notification := publisher.last(t)
	if notification.Type != protocol.AlertTypeCleared {
		t.Errorf("expected %s, got %s", protocol.AlertTypeCleared, notification.Type)
	}
	if notification.AlertID != 31 {
		t.Errorf("expected alert ID 31, got %d", notification.AlertID)
	}

	state, err := sm.GetState(ctx, 1, "ph")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state != nil {
		t.Errorf("expected state cleared, got %+v", state)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEvaluateReading_UnknownParameterIgnored(t *testing.T) {
	evaluator, mock, _, publisher := newTestEvaluator(t)

	expectParameters(mock)

	msg := reading(99.0)
	msg.ParameterKey = "conductivity"
	if err := evaluator.EvaluateReading(context.Background(), msg); err != nil {
		t.Fatalf("EvaluateReading failed: %v", err)
	}

	if len(publisher.notifications) != 0 {
		t.Errorf("expected no notifications, got %d", len(publisher.notifications))
	}
}

func TestSiteNameCacheExpires(t *testing.T) {
	evaluator, mock, _, _ := newTestEvaluator(t)

	expectSiteLookup(mock)
	if name := evaluator.siteName(1); name != "East Works" {
		t.Fatalf("expected East Works, got %q", name)
	}

	// Within the validity window the cached name is served without a query
	if name := evaluator.siteName(1); name != "East Works" {
		t.Errorf("expected cached East Works, got %q", name)
	}

	// After the window a rename is picked up on the next lookup
	evaluator.siteCacheLoad = time.Now().Add(-10 * time.Minute)
	renamed := sqlmock.NewRows([]string{"id", "name", "slug", "latitude", "longitude", "created_at"}).
		AddRow(1, "East Works WWTW", "east-works", 51.5, -0.1, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM sites`).WithArgs(int64(1)).WillReturnRows(renamed)

	if name := evaluator.siteName(1); name != "East Works WWTW" {
		t.Errorf("expected renamed site, got %q", name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
