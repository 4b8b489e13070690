package database

import (
	"database/sql"
)

// InsertWeatherSnapshot persists a derived snapshot and fills in its ID.
func (db *DB) InsertWeatherSnapshot(snap *WeatherSnapshot) error {
	query := `
		INSERT INTO weather_snapshots (
			site_id, taken_at, temperature_c, wind_speed_ms,
			wind_direction_deg, cloud_cover_pct, stability_class, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return db.QueryRow(
		query,
		snap.SiteID,
		snap.TakenAt,
		snap.TemperatureC,
		snap.WindSpeedMS,
		snap.WindDirectionDeg,
		snap.CloudCoverPct,
		snap.StabilityClass,
		snap.Source,
	).Scan(&snap.ID)
}

// LatestWeatherSnapshot returns a site's most recent snapshot, or nil when
// none exists yet.
func (db *DB) LatestWeatherSnapshot(siteID int64) (*WeatherSnapshot, error) {
	query := `
		SELECT id, site_id, taken_at, temperature_c, wind_speed_ms,
		       wind_direction_deg, cloud_cover_pct, stability_class, source
		FROM weather_snapshots
		WHERE site_id = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`

	var snap WeatherSnapshot
	err := db.QueryRow(query, siteID).Scan(
		&snap.ID,
		&snap.SiteID,
		&snap.TakenAt,
		&snap.TemperatureC,
		&snap.WindSpeedMS,
		&snap.WindDirectionDeg,
		&snap.CloudCoverPct,
		&snap.StabilityClass,
		&snap.Source,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// ListWeatherSnapshots returns a site's snapshot history, newest first.
func (db *DB) ListWeatherSnapshots(siteID int64, limit int) ([]*WeatherSnapshot, error) {
	query := `
		SELECT id, site_id, taken_at, temperature_c, wind_speed_ms,
		       wind_direction_deg, cloud_cover_pct, stability_class, source
		FROM weather_snapshots
		WHERE site_id = $1
		ORDER BY taken_at DESC
		LIMIT $2
	`

	rows, err := db.Query(query, siteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*WeatherSnapshot
	for rows.Next() {
		var snap WeatherSnapshot
		if err := rows.Scan(
			&snap.ID,
			&snap.SiteID,
			&snap.TakenAt,
			&snap.TemperatureC,
			&snap.WindSpeedMS,
			&snap.WindDirectionDeg,
			&snap.CloudCoverPct,
			&snap.StabilityClass,
			&snap.Source,
		); err != nil {
			return nil, err
		}
		snaps = append(snaps, &snap)
	}

	return snaps, rows.Err()
}

// InsertOdourIncident records an odour report and fills in its ID.
func (db *DB) InsertOdourIncident(incident *OdourIncident) error {
	query := `
		INSERT INTO odour_incidents (
			site_id, latitude, longitude, intensity, description, reported_by, snapshot_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return db.QueryRow(
		query,
		incident.SiteID,
		incident.Latitude,
		incident.Longitude,
		incident.Intensity,
		incident.Description,
		incident.ReportedBy,
		incident.SnapshotID,
	).Scan(&incident.ID, &incident.CreatedAt)
}

// ListOdourIncidents returns a site's incident reports, newest first.
func (db *DB) ListOdourIncidents(siteID int64, limit int) ([]*OdourIncident, error) {
	query := `
		SELECT id, site_id, latitude, longitude, intensity, description,
		       reported_by, snapshot_id, created_at
		FROM odour_incidents
		WHERE site_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := db.Query(query, siteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []*OdourIncident
	for rows.Next() {
		var incident OdourIncident
		if err := rows.Scan(
			&incident.ID,
			&incident.SiteID,
			&incident.Latitude,
			&incident.Longitude,
			&incident.Intensity,
			&incident.Description,
			&incident.ReportedBy,
			&incident.SnapshotID,
			&incident.CreatedAt,
		); err != nil {
			return nil, err
		}
		incidents = append(incidents, &incident)
	}

	return incidents, rows.Err()
}
