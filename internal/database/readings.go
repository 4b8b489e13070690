package database

import (
	"time"
)

// InsertReading inserts a new reading and fills in its generated ID.
func (db *DB) InsertReading(r *Reading) error {
	query := `
		INSERT INTO readings (
			site_id, parameter_key, value, recorded_at, entered_by, note, source, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return db.QueryRow(
		query,
		r.SiteID,
		r.ParameterKey,
		r.Value,
		r.RecordedAt,
		r.EnteredBy,
		r.Note,
		r.Source,
		r.ReceivedAt,
	).Scan(&r.ID)
}

// ListReadings returns readings for a site and parameter within [from, to),
// oldest first.
func (db *DB) ListReadings(siteID int64, parameterKey string, from, to time.Time) ([]*Reading, error) {
	query := `
		SELECT id, site_id, parameter_key, value, recorded_at, entered_by, note, source, received_at
		FROM readings
		WHERE site_id = $1 AND parameter_key = $2
		  AND recorded_at >= $3 AND recorded_at < $4
		ORDER BY recorded_at
	`

	rows, err := db.Query(query, siteID, parameterKey, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(
			&r.ID,
			&r.SiteID,
			&r.ParameterKey,
			&r.Value,
			&r.RecordedAt,
			&r.EnteredBy,
			&r.Note,
			&r.Source,
			&r.ReceivedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, &r)
	}

	return readings, rows.Err()
}

// RecentReadings returns the most recent limit readings for a site and
// parameter, oldest first so callers can feed them to the trend classifier
// directly.
func (db *DB) RecentReadings(siteID int64, parameterKey string, limit int) ([]*Reading, error) {
	query := `
		SELECT id, site_id, parameter_key, value, recorded_at, entered_by, note, source, received_at
		FROM (
			SELECT id, site_id, parameter_key, value, recorded_at, entered_by, note, source, received_at
			FROM readings
			WHERE site_id = $1 AND parameter_key = $2
			ORDER BY recorded_at DESC
			LIMIT $3
		) recent
		ORDER BY recorded_at
	`

	rows, err := db.Query(query, siteID, parameterKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(
			&r.ID,
			&r.SiteID,
			&r.ParameterKey,
			&r.Value,
			&r.RecordedAt,
			&r.EnteredBy,
			&r.Note,
			&r.Source,
			&r.ReceivedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, &r)
	}

	return readings, rows.Err()
}

// LatestReadingForDay returns the most recent reading recorded on the given
// calendar day, or nil when none exists.
func (db *DB) LatestReadingForDay(siteID int64, parameterKey string, day time.Time) (*Reading, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	readings, err := db.ListReadings(siteID, parameterKey, start, end)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return readings[len(readings)-1], nil
}

// ListDailyRollups returns rollups for a site and parameter between two
// dates inclusive, oldest first.
func (db *DB) ListDailyRollups(siteID int64, parameterKey string, from, to time.Time) ([]*DailyRollup, error) {
	query := `
		SELECT site_id, parameter_key, date, min_value, avg_value, max_value, sample_count
		FROM daily_rollups
		WHERE site_id = $1 AND parameter_key = $2
		  AND date >= $3::date AND date <= $4::date
		ORDER BY date
	`

	rows, err := db.Query(query, siteID, parameterKey, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rollups []*DailyRollup
	for rows.Next() {
		var r DailyRollup
		if err := rows.Scan(
			&r.SiteID,
			&r.ParameterKey,
			&r.Date,
			&r.MinValue,
			&r.AvgValue,
			&r.MaxValue,
			&r.SampleCount,
		); err != nil {
			return nil, err
		}
		rollups = append(rollups, &r)
	}

	return rollups, rows.Err()
}
