package calibration

import (
	"fmt"
	"time"

	"github.com/plantops/plantwatch/internal/database"
)

// DueItem pairs a schedule with its derived due status for the reminder
// sweep.
type DueItem struct {
	Schedule *database.CalibrationSchedule
	SiteName string
	Due      Due
}

// SweepDue finds every schedule whose due date falls within the reminder
// window (overdue through dueSoonDays out) and derives its status. The
// window is computed at date precision, matching DueFor, so a due date
// later in the clock than the sweep still counts toward its calendar day.
// A site lookup failure marks the item with an empty name rather than
// dropping it.
func SweepDue(db *database.DB, now time.Time, dueSoonDays int) ([]DueItem, error) {
	year, month, day := now.Date()
	cutoff := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, dueSoonDays+1)

	schedules, err := db.ListSchedulesDueBy(cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}

	siteNames := make(map[int64]string)

	var items []DueItem
	for _, schedule := range schedules {
		name, ok := siteNames[schedule.SiteID]
		if !ok {
			site, err := db.GetSite(schedule.SiteID)
			if err != nil {
				fmt.Printf("Failed to look up site %d: %v\n", schedule.SiteID, err)
			} else if site != nil {
				name = site.Name
			}
			siteNames[schedule.SiteID] = name
		}

		items = append(items, DueItem{
			Schedule: schedule,
			SiteName: name,
			Due:      DueFor(schedule.NextDueAt, now, dueSoonDays),
		})
	}

	return items, nil
}
