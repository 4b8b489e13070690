package aggregation

import (
	"fmt"
	"time"

	"github.com/plantops/plantwatch/internal/database"
)

// DailyRollup computes per-site, per-parameter min/avg/max summaries of a
// day's readings for the dashboard calendar.
type DailyRollup struct {
	db *database.DB
}

// NewDailyRollup creates a new daily rollup job
func NewDailyRollup(db *database.DB) *DailyRollup {
	return &DailyRollup{db: db}
}

// Aggregate performs the rollup for the specified date
func (d *DailyRollup) Aggregate(targetDate time.Time) error {
	date := targetDate.Truncate(24 * time.Hour)

	fmt.Printf("Running daily rollup for %s\n", date.Format("2006-01-02"))

	query := `
		INSERT INTO daily_rollups (
			site_id, parameter_key, date, min_value, avg_value, max_value, sample_count
		)
		SELECT
			site_id,
			parameter_key,
			$1::date AS date,
			MIN(value) AS min_value,
			AVG(value) AS avg_value,
			MAX(value) AS max_value,
			COUNT(*) AS sample_count
		FROM
			readings
		WHERE
			DATE(recorded_at) = $1::date
		GROUP BY
			site_id, parameter_key
		ON CONFLICT (site_id, parameter_key, date) DO UPDATE
		SET
			min_value = EXCLUDED.min_value,
			avg_value = EXCLUDED.avg_value,
			max_value = EXCLUDED.max_value,
			sample_count = EXCLUDED.sample_count
	`

	result, err := d.db.Exec(query, date)
	if err != nil {
		return fmt.Errorf("failed to roll up daily readings: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	fmt.Printf("Daily rollup completed: %d site/parameter pairs processed\n", rowsAffected)

	return nil
}

// AggregatePreviousDay rolls up the previous full day
func (d *DailyRollup) AggregatePreviousDay() error {
	return d.Aggregate(time.Now().AddDate(0, 0, -1))
}

// CalculateNextRunTime calculates when the rollup should next run, given a
// time of day in "HH:MM" format.
func (d *DailyRollup) CalculateNextRunTime(timeOfDay string) (time.Time, error) {
	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", timeOfDay, err)
	}

	now := time.Now()
	nextRun := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())

	if now.After(nextRun) {
		nextRun = nextRun.AddDate(0, 0, 1)
	}

	return nextRun, nil
}
