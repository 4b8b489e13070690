// Package calibration derives instrument calibration due status and
// verifies calibration check readings against a schedule's tolerance.
package calibration

import (
	"math"
	"time"
)

// DueStatus is the derived state of a calibration schedule relative to now.
type DueStatus string

const (
	StatusOverdue  DueStatus = "overdue"
	StatusDueToday DueStatus = "due-today"
	StatusDueSoon  DueStatus = "due-soon"
	StatusOK       DueStatus = "ok"
)

// DueSoonDays is the default window for the due-soon tier.
const DueSoonDays = 2

// Due pairs the derived status with a whole-day count to (or since) the due
// date. DaysUntil is negative when overdue.
type Due struct {
	Status    DueStatus
	DaysUntil int
}

// DueFor derives the due status by comparing nextDueAt against now at date
// precision: a due date in the past (not today) is overdue, today is
// due-today, within dueSoonDays is due-soon, anything later is ok.
func DueFor(nextDueAt, now time.Time, dueSoonDays int) Due {
	days := daysBetween(now, nextDueAt)

	switch {
	case days < 0:
		return Due{Status: StatusOverdue, DaysUntil: days}
	case days == 0:
		return Due{Status: StatusDueToday, DaysUntil: 0}
	case days <= dueSoonDays:
		return Due{Status: StatusDueSoon, DaysUntil: days}
	default:
		return Due{Status: StatusOK, DaysUntil: days}
	}
}

// DeviationPercent computes the relative error of a measured calibration
// check value against the reference standard, as a percentage. A zero
// reference yields 0 to avoid a meaningless division.
func DeviationPercent(reference, measured float64) float64 {
	if reference == 0 {
		return 0
	}
	return (measured - reference) / reference * 100
}

// Passed reports whether a deviation percentage is within tolerance.
func Passed(deviationPercent, tolerancePercent float64) bool {
	return math.Abs(deviationPercent) <= tolerancePercent
}

// NextDue advances the due date by the schedule interval from the
// calibration that was just performed.
func NextDue(calibratedAt time.Time, intervalDays int) time.Time {
	return calibratedAt.AddDate(0, 0, intervalDays)
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
