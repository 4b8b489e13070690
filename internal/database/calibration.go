package database

import (
	"database/sql"
	"time"
)

// InsertCalibrationSchedule creates a schedule and fills in its ID.
func (db *DB) InsertCalibrationSchedule(s *CalibrationSchedule) error {
	query := `
		INSERT INTO calibration_schedules (
			site_id, instrument, parameter_key, interval_days,
			tolerance_percent, last_calibrated_at, next_due_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return db.QueryRow(
		query,
		s.SiteID,
		s.Instrument,
		s.ParameterKey,
		s.IntervalDays,
		s.TolerancePercent,
		s.LastCalibratedAt,
		s.NextDueAt,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetCalibrationSchedule retrieves one schedule. Returns nil when not found.
func (db *DB) GetCalibrationSchedule(id int64) (*CalibrationSchedule, error) {
	query := `
		SELECT id, site_id, instrument, parameter_key, interval_days,
		       tolerance_percent, last_calibrated_at, next_due_at, created_at
		FROM calibration_schedules
		WHERE id = $1
	`

	var s CalibrationSchedule
	err := db.QueryRow(query, id).Scan(
		&s.ID,
		&s.SiteID,
		&s.Instrument,
		&s.ParameterKey,
		&s.IntervalDays,
		&s.TolerancePercent,
		&s.LastCalibratedAt,
		&s.NextDueAt,
		&s.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ListCalibrationSchedules returns all schedules for a site ordered by due
// date, soonest first.
func (db *DB) ListCalibrationSchedules(siteID int64) ([]*CalibrationSchedule, error) {
	query := `
		SELECT id, site_id, instrument, parameter_key, interval_days,
		       tolerance_percent, last_calibrated_at, next_due_at, created_at
		FROM calibration_schedules
		WHERE site_id = $1
		ORDER BY next_due_at
	`

	rows, err := db.Query(query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// ListSchedulesDueBy returns all schedules across sites whose next due date
// falls strictly before the cutoff. Used by the calibration reminder sweep,
// which passes an exclusive end-of-window instant.
func (db *DB) ListSchedulesDueBy(cutoff time.Time) ([]*CalibrationSchedule, error) {
	query := `
		SELECT id, site_id, instrument, parameter_key, interval_days,
		       tolerance_percent, last_calibrated_at, next_due_at, created_at
		FROM calibration_schedules
		WHERE next_due_at < $1
		ORDER BY next_due_at
	`

	rows, err := db.Query(query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSchedules(rows)
}

func scanSchedules(rows *sql.Rows) ([]*CalibrationSchedule, error) {
	var schedules []*CalibrationSchedule
	for rows.Next() {
		var s CalibrationSchedule
		if err := rows.Scan(
			&s.ID,
			&s.SiteID,
			&s.Instrument,
			&s.ParameterKey,
			&s.IntervalDays,
			&s.TolerancePercent,
			&s.LastCalibratedAt,
			&s.NextDueAt,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		schedules = append(schedules, &s)
	}

	return schedules, rows.Err()
}

// InsertCalibrationLog records a performed calibration and advances the
// schedule's last calibrated / next due timestamps in one transaction.
func (db *DB) InsertCalibrationLog(log *CalibrationLog, nextDueAt time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO calibration_logs (
			schedule_id, calibrated_at, reference_value, measured_value,
			deviation_percent, passed, technician, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	if err := tx.QueryRow(
		insertQuery,
		log.ScheduleID,
		log.CalibratedAt,
		log.ReferenceValue,
		log.MeasuredValue,
		log.DeviationPercent,
		log.Passed,
		log.Technician,
		log.Note,
	).Scan(&log.ID); err != nil {
		return err
	}

	updateQuery := `
		UPDATE calibration_schedules
		SET last_calibrated_at = $1, next_due_at = $2
		WHERE id = $3
	`
	if _, err := tx.Exec(updateQuery, log.CalibratedAt, nextDueAt, log.ScheduleID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListCalibrationLogs returns a schedule's history, newest first.
func (db *DB) ListCalibrationLogs(scheduleID int64, limit int) ([]*CalibrationLog, error) {
	query := `
		SELECT id, schedule_id, calibrated_at, reference_value, measured_value,
		       deviation_percent, passed, technician, note
		FROM calibration_logs
		WHERE schedule_id = $1
		ORDER BY calibrated_at DESC
		LIMIT $2
	`

	rows, err := db.Query(query, scheduleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*CalibrationLog
	for rows.Next() {
		var l CalibrationLog
		if err := rows.Scan(
			&l.ID,
			&l.ScheduleID,
			&l.CalibratedAt,
			&l.ReferenceValue,
			&l.MeasuredValue,
			&l.DeviationPercent,
			&l.Passed,
			&l.Technician,
			&l.Note,
		); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}
