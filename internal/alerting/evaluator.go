package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/playbook"
	"github.com/plantops/plantwatch/internal/protocol"
	"github.com/plantops/plantwatch/internal/severity"
)

// Publisher is the slice of producer behaviour the evaluator needs;
// *queue.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Evaluator classifies readings against parameter bands and manages the
// alert event lifecycle.
type Evaluator struct {
	db             *database.DB
	stateManager   *StateManager
	alertProducer  Publisher
	parameterCache map[string]*database.Parameter
	siteCache      map[int64]*database.Site
	lastCacheLoad  time.Time
	siteCacheLoad  time.Time
	cacheValidity  time.Duration
}

// NewEvaluator creates a new alert evaluator
func NewEvaluator(db *database.DB, stateManager *StateManager, alertProducer Publisher) *Evaluator {
	return &Evaluator{
		db:             db,
		stateManager:   stateManager,
		alertProducer:  alertProducer,
		parameterCache: make(map[string]*database.Parameter),
		siteCache:      make(map[int64]*database.Site),
		cacheValidity:  5 * time.Minute,
	}
}

// EvaluateReading classifies one reading and applies any resulting state
// transition: open a new alert, escalate watch to alarm, or clear.
func (e *Evaluator) EvaluateReading(ctx context.Context, msg *protocol.ReadingMessage) error {
	param, err := e.getParameter(msg.ParameterKey)
	if err != nil {
		return fmt.Errorf("failed to get parameter: %w", err)
	}
	if param == nil {
		// Unknown parameter: nothing to evaluate against
		return nil
	}

	bands := severity.Bands{
		Watch: severity.Band{Min: param.WatchMin, Max: param.WatchMax},
		Alarm: severity.Band{Min: param.AlarmMin, Max: param.AlarmMax},
	}

	level, breach := severity.For(msg.Value, bands)

	state, err := e.stateManager.GetState(ctx, msg.SiteID, msg.ParameterKey)
	if err != nil {
		return err
	}

	now := time.Now()

	if level == severity.LevelOK {
		return e.handleInBand(ctx, msg, state, now)
	}
	return e.handleBreach(ctx, msg, level, breach, state, now)
}

func (e *Evaluator) handleBreach(ctx context.Context, msg *protocol.ReadingMessage, level severity.Level, breach *severity.Breach, state *BreachState, now time.Time) error {
	if state == nil {
		// New breach: open an alert event
		return e.triggerAlert(ctx, msg, level, breach, now, protocol.AlertTypeTriggered)
	}

	if state.Severity == severity.LevelWatch && level == severity.LevelAlarm {
		// Escalation: close the watch event as superseded, open an alarm event
		if state.AlertID > 0 {
			if _, err := e.db.ResolveAlertEvent(state.AlertID, now); err != nil {
				return fmt.Errorf("failed to resolve superseded alert: %w", err)
			}
		}
		return e.triggerAlert(ctx, msg, level, breach, now, protocol.AlertTypeEscalated)
	}

	// Ongoing breach at the same (or lower) tier: refresh the state only.
	// De-escalation from alarm to watch keeps the alarm event open until
	// the value is fully back in-band.
	state.LastChecked = now
	state.LastValue = msg.Value
	return e.stateManager.SetState(ctx, msg.SiteID, msg.ParameterKey, state)
}

func (e *Evaluator) handleInBand(ctx context.Context, msg *protocol.ReadingMessage, state *BreachState, now time.Time) error {
	if state == nil {
		return nil
	}

	fmt.Printf("Alert cleared: site=%d parameter=%s value=%.3f\n",
		msg.SiteID, msg.ParameterKey, msg.Value)

	if state.AlertID > 0 {
		if _, err := e.db.ResolveAlertEvent(state.AlertID, now); err != nil {
			return fmt.Errorf("failed to resolve alert: %w", err)
		}
	}

	if err := e.stateManager.DeleteState(ctx, msg.SiteID, msg.ParameterKey); err != nil {
		return err
	}

	notification := &protocol.AlertNotification{
		Type:         protocol.AlertTypeCleared,
		SiteID:       msg.SiteID,
		SiteName:     e.siteName(msg.SiteID),
		ParameterKey: msg.ParameterKey,
		Value:        msg.Value,
		Severity:     string(state.Severity),
		Direction:    state.Direction,
		AlertID:      state.AlertID,
	}

	return e.sendNotification(ctx, notification)
}

func (e *Evaluator) triggerAlert(ctx context.Context, msg *protocol.ReadingMessage, level severity.Level, breach *severity.Breach, now time.Time, notificationType string) error {
	fmt.Printf("Alert %s: site=%d parameter=%s value=%.3f severity=%s\n",
		notificationType, msg.SiteID, msg.ParameterKey, msg.Value, level)

	alert := &database.AlertEvent{
		SiteID:         msg.SiteID,
		ParameterKey:   msg.ParameterKey,
		Value:          msg.Value,
		Severity:       string(level),
		Direction:      string(breach.Direction),
		ThresholdValue: breach.Limit,
		Status:         database.AlertStatusActive,
		TriggeredAt:    now,
	}

	if err := e.db.InsertAlertEvent(alert); err != nil {
		return fmt.Errorf("failed to insert alert event: %w", err)
	}

	newState := &BreachState{
		Severity:    level,
		Direction:   string(breach.Direction),
		StartedAt:   now,
		LastChecked: now,
		LastValue:   msg.Value,
		AlertID:     alert.ID,
	}
	if err := e.stateManager.SetState(ctx, msg.SiteID, msg.ParameterKey, newState); err != nil {
		return err
	}

	notification := &protocol.AlertNotification{
		Type:         notificationType,
		SiteID:       msg.SiteID,
		SiteName:     e.siteName(msg.SiteID),
		ParameterKey: msg.ParameterKey,
		Value:        msg.Value,
		Severity:     string(level),
		Direction:    string(breach.Direction),
		Threshold:    breach.Limit,
		TriggeredAt:  now,
		AlertID:      alert.ID,
		Playbook:     e.playbookSteps(msg.SiteID, msg.ParameterKey, string(breach.Direction)),
	}

	return e.sendNotification(ctx, notification)
}

// playbookSteps resolves the effective remediation steps for a breach: the
// site override when one exists, else the built-in default.
func (e *Evaluator) playbookSteps(siteID int64, parameterKey, direction string) []string {
	pb, err := playbook.Effective(e.db, siteID, parameterKey, direction)
	if err != nil {
		fmt.Printf("Failed to load playbook for %s/%s: %v\n", parameterKey, direction, err)
		return nil
	}
	if pb == nil {
		return nil
	}
	return pb.Steps
}

func (e *Evaluator) sendNotification(ctx context.Context, notification *protocol.AlertNotification) error {
	data, err := protocol.EncodeAlertNotification(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	key := fmt.Sprintf("%d-%s", notification.SiteID, notification.ParameterKey)
	return e.alertProducer.Publish(ctx, key, data)
}

func (e *Evaluator) getParameter(key string) (*database.Parameter, error) {
	if time.Since(e.lastCacheLoad) < e.cacheValidity {
		if param, ok := e.parameterCache[key]; ok {
			return param, nil
		}
	}

	params, err := e.db.ListParameters()
	if err != nil {
		return nil, err
	}

	e.parameterCache = make(map[string]*database.Parameter, len(params))
	for _, p := range params {
		e.parameterCache[p.Key] = p
	}
	e.lastCacheLoad = time.Now()

	return e.parameterCache[key], nil
}

func (e *Evaluator) siteName(siteID int64) string {
	if time.Since(e.siteCacheLoad) >= e.cacheValidity {
		e.siteCache = make(map[int64]*database.Site)
		e.siteCacheLoad = time.Now()
	}

	if site, ok := e.siteCache[siteID]; ok {
		return site.Name
	}

	site, err := e.db.GetSite(siteID)
	if err != nil || site == nil {
		return ""
	}
	e.siteCache[siteID] = site
	return site.Name
}
