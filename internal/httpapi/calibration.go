package httpapi

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/calibration"
	"github.com/plantops/plantwatch/internal/database"
)

// scheduleView is a calibration schedule with its derived due status.
type scheduleView struct {
	*database.CalibrationSchedule
	DueStatus calibration.DueStatus `json:"due_status"`
	DaysUntil int                   `json:"days_until"`
}

func (h *Handlers) listCalibrations(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	schedules, err := h.db.ListCalibrationSchedules(id)
	if err != nil {
		return errJSON(c, 500, err)
	}

	now := time.Now()
	views := make([]scheduleView, 0, len(schedules))
	for _, s := range schedules {
		due := calibration.DueFor(s.NextDueAt, now, calibration.DueSoonDays)
		views = append(views, scheduleView{
			CalibrationSchedule: s,
			DueStatus:           due.Status,
			DaysUntil:           due.DaysUntil,
		})
	}
	return c.JSON(views)
}

type createCalibrationRequest struct {
	Instrument       string    `json:"instrument"`
	ParameterKey     string    `json:"parameter_key"`
	IntervalDays     int       `json:"interval_days"`
	TolerancePercent float64   `json:"tolerance_percent"`
	NextDueAt        time.Time `json:"next_due_at"`
}

func (h *Handlers) createCalibration(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	var req createCalibrationRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if req.Instrument == "" || req.ParameterKey == "" {
		return msgJSON(c, 400, "instrument and parameter_key are required")
	}
	if req.IntervalDays <= 0 {
		return msgJSON(c, 400, "interval_days must be positive")
	}
	if req.TolerancePercent <= 0 {
		return msgJSON(c, 400, "tolerance_percent must be positive")
	}

	site, err := h.db.GetSite(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if site == nil {
		return msgJSON(c, 404, "site not found")
	}

	nextDueAt := req.NextDueAt
	if nextDueAt.IsZero() {
		nextDueAt = time.Now().AddDate(0, 0, req.IntervalDays)
	}

	schedule := &database.CalibrationSchedule{
		SiteID:           id,
		Instrument:       req.Instrument,
		ParameterKey:     req.ParameterKey,
		IntervalDays:     req.IntervalDays,
		TolerancePercent: req.TolerancePercent,
		NextDueAt:        nextDueAt,
	}
	if err := h.db.InsertCalibrationSchedule(schedule); err != nil {
		return errJSON(c, 500, err)
	}
	return c.Status(201).JSON(schedule)
}

// calibrationsDue summarizes schedules that are overdue, due today or due
// soon across all sites.
func (h *Handlers) calibrationsDue(c *fiber.Ctx) error {
	items, err := calibration.SweepDue(h.db, time.Now(), calibration.DueSoonDays)
	if err != nil {
		return errJSON(c, 500, err)
	}

	type dueView struct {
		Schedule  *database.CalibrationSchedule `json:"schedule"`
		SiteName  string                        `json:"site_name"`
		DueStatus calibration.DueStatus         `json:"due_status"`
		DaysUntil int                           `json:"days_until"`
	}

	views := make([]dueView, 0, len(items))
	for _, item := range items {
		views = append(views, dueView{
			Schedule:  item.Schedule,
			SiteName:  item.SiteName,
			DueStatus: item.Due.Status,
			DaysUntil: item.Due.DaysUntil,
		})
	}
	return c.JSON(views)
}

func (h *Handlers) listCalibrationLogs(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid schedule id")
	}

	limit := c.QueryInt("limit", 50)
	logs, err := h.db.ListCalibrationLogs(id, limit)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(logs)
}

type createCalibrationLogRequest struct {
	CalibratedAt   time.Time `json:"calibrated_at"`
	ReferenceValue float64   `json:"reference_value"`
	MeasuredValue  float64   `json:"measured_value"`
	Technician     string    `json:"technician"`
	Note           string    `json:"note"`
}

// createCalibrationLog records a performed calibration. The deviation and
// pass verdict are computed server-side, and the schedule's next due date
// advances by its interval.
func (h *Handlers) createCalibrationLog(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid schedule id")
	}

	var req createCalibrationLogRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if math.IsNaN(req.ReferenceValue) || math.IsNaN(req.MeasuredValue) {
		return msgJSON(c, 400, "values must be finite numbers")
	}

	schedule, err := h.db.GetCalibrationSchedule(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if schedule == nil {
		return msgJSON(c, 404, "schedule not found")
	}

	calibratedAt := req.CalibratedAt
	if calibratedAt.IsZero() {
		calibratedAt = time.Now()
	}

	deviation := calibration.DeviationPercent(req.ReferenceValue, req.MeasuredValue)
	log := &database.CalibrationLog{
		ScheduleID:       id,
		CalibratedAt:     calibratedAt,
		ReferenceValue:   req.ReferenceValue,
		MeasuredValue:    req.MeasuredValue,
		DeviationPercent: deviation,
		Passed:           calibration.Passed(deviation, schedule.TolerancePercent),
	}
	if req.Technician != "" {
		log.Technician = &req.Technician
	}
	if req.Note != "" {
		log.Note = &req.Note
	}

	nextDueAt := calibration.NextDue(calibratedAt, schedule.IntervalDays)
	if err := h.db.InsertCalibrationLog(log, nextDueAt); err != nil {
		return errJSON(c, 500, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"log":         log,
		"next_due_at": nextDueAt,
	})
}
