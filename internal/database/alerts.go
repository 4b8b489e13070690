package database

import (
	"database/sql"
	"time"
)

// InsertAlertEvent inserts a new active alert event and fills in its ID.
func (db *DB) InsertAlertEvent(alert *AlertEvent) error {
	query := `
		INSERT INTO alert_events (
			site_id, parameter_key, value, severity, direction,
			threshold_value, status, triggered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return db.QueryRow(
		query,
		alert.SiteID,
		alert.ParameterKey,
		alert.Value,
		alert.Severity,
		alert.Direction,
		alert.ThresholdValue,
		alert.Status,
		alert.TriggeredAt,
	).Scan(&alert.ID)
}

// GetAlertEvent retrieves one alert event. Returns nil when not found.
func (db *DB) GetAlertEvent(id int64) (*AlertEvent, error) {
	query := `
		SELECT id, site_id, parameter_key, value, severity, direction, threshold_value,
		       status, triggered_at, acknowledged_by, acknowledged_at, resolved_at
		FROM alert_events
		WHERE id = $1
	`

	var a AlertEvent
	err := db.QueryRow(query, id).Scan(
		&a.ID,
		&a.SiteID,
		&a.ParameterKey,
		&a.Value,
		&a.Severity,
		&a.Direction,
		&a.ThresholdValue,
		&a.Status,
		&a.TriggeredAt,
		&a.AcknowledgedBy,
		&a.AcknowledgedAt,
		&a.ResolvedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// ListAlertEvents returns alert events for a site, optionally filtered by
// lifecycle status, newest first.
func (db *DB) ListAlertEvents(siteID int64, status string, limit int) ([]*AlertEvent, error) {
	query := `
		SELECT id, site_id, parameter_key, value, severity, direction, threshold_value,
		       status, triggered_at, acknowledged_by, acknowledged_at, resolved_at
		FROM alert_events
		WHERE site_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY triggered_at DESC
		LIMIT $3
	`

	rows, err := db.Query(query, siteID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*AlertEvent
	for rows.Next() {
		var a AlertEvent
		if err := rows.Scan(
			&a.ID,
			&a.SiteID,
			&a.ParameterKey,
			&a.Value,
			&a.Severity,
			&a.Direction,
			&a.ThresholdValue,
			&a.Status,
			&a.TriggeredAt,
			&a.AcknowledgedBy,
			&a.AcknowledgedAt,
			&a.ResolvedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

// AcknowledgeAlertEvent moves an active alert to acknowledged, recording
// the user. Returns false when the alert is not currently active.
func (db *DB) AcknowledgeAlertEvent(id int64, user string, at time.Time) (bool, error) {
	query := `
		UPDATE alert_events
		SET status = $1, acknowledged_by = $2, acknowledged_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := db.Exec(query, AlertStatusAcknowledged, user, at, id, AlertStatusActive)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

// ResolveAlertEvent moves an unresolved alert to resolved. Returns false
// when the alert is already resolved or does not exist.
func (db *DB) ResolveAlertEvent(id int64, at time.Time) (bool, error) {
	query := `
		UPDATE alert_events
		SET status = $1, resolved_at = $2
		WHERE id = $3 AND status <> $1
	`

	result, err := db.Exec(query, AlertStatusResolved, at, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

// UpsertSitePlaybook creates or replaces a site's playbook override for a
// parameter and direction.
func (db *DB) UpsertSitePlaybook(pb *SitePlaybook) error {
	query := `
		INSERT INTO site_playbooks (site_id, parameter_key, direction, steps, reference_links)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (site_id, parameter_key, direction) DO UPDATE
		SET steps = EXCLUDED.steps,
		    reference_links = EXCLUDED.reference_links,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	return db.QueryRow(
		query,
		pb.SiteID,
		pb.ParameterKey,
		pb.Direction,
		pb.StepsJSON,
		pb.ReferencesJSON,
	).Scan(&pb.ID)
}

// GetSitePlaybook retrieves a site's override for a parameter and
// direction. Returns nil when the site has no override.
func (db *DB) GetSitePlaybook(siteID int64, parameterKey, direction string) (*SitePlaybook, error) {
	query := `
		SELECT id, site_id, parameter_key, direction, steps, reference_links, updated_at
		FROM site_playbooks
		WHERE site_id = $1 AND parameter_key = $2 AND direction = $3
	`

	var pb SitePlaybook
	err := db.QueryRow(query, siteID, parameterKey, direction).Scan(
		&pb.ID,
		&pb.SiteID,
		&pb.ParameterKey,
		&pb.Direction,
		&pb.StepsJSON,
		&pb.ReferencesJSON,
		&pb.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &pb, nil
}

// DeleteSitePlaybook removes a site's override, reverting to the built-in
// defaults.
func (db *DB) DeleteSitePlaybook(siteID int64, parameterKey, direction string) error {
	query := `
		DELETE FROM site_playbooks
		WHERE site_id = $1 AND parameter_key = $2 AND direction = $3
	`
	_, err := db.Exec(query, siteID, parameterKey, direction)
	return err
}
