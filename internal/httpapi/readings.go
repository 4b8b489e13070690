package httpapi

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/protocol"
)

func (h *Handlers) listReadings(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	parameterKey := c.Query("parameter")
	if parameterKey == "" {
		return msgJSON(c, 400, "parameter query is required")
	}

	from, to, err := timeRange(c)
	if err != nil {
		return errJSON(c, 400, err)
	}

	readings, err := h.db.ListReadings(id, parameterKey, from, to)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(readings)
}

type createReadingRequest struct {
	ParameterKey string    `json:"parameter_key"`
	Value        float64   `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
	EnteredBy    string    `json:"entered_by"`
	Note         string    `json:"note"`
}

// createReading records a manual entry. The reading is written to the
// database directly so the operator sees it on the next query, then
// published for alert evaluation. The recorder skips manual messages so
// the row is not written twice.
func (h *Handlers) createReading(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	var req createReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if req.ParameterKey == "" {
		return msgJSON(c, 400, "parameter_key is required")
	}
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		return msgJSON(c, 400, "value must be a finite number")
	}

	site, err := h.db.GetSite(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if site == nil {
		return msgJSON(c, 404, "site not found")
	}
	param, err := h.db.GetParameter(req.ParameterKey)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if param == nil {
		return msgJSON(c, 404, "parameter not found")
	}

	now := time.Now()
	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = now
	}
	if recordedAt.After(now) {
		return msgJSON(c, 400, "recorded_at must not be in the future")
	}

	reading := &database.Reading{
		SiteID:       id,
		ParameterKey: req.ParameterKey,
		Value:        req.Value,
		RecordedAt:   recordedAt,
		Source:       database.SourceManual,
		ReceivedAt:   now,
	}
	if req.EnteredBy != "" {
		reading.EnteredBy = &req.EnteredBy
	}
	if req.Note != "" {
		reading.Note = &req.Note
	}

	if err := h.db.InsertReading(reading); err != nil {
		return errJSON(c, 500, err)
	}

	msg := &protocol.ReadingMessage{
		SiteSlug:     site.Slug,
		SiteID:       site.ID,
		ParameterKey: req.ParameterKey,
		Value:        req.Value,
		RecordedAt:   recordedAt,
		ReceivedAt:   now,
		Source:       database.SourceManual,
		EnteredBy:    req.EnteredBy,
		Note:         req.Note,
	}
	data, err := protocol.EncodeReadingMessage(msg)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if err := h.producer.Publish(c.Context(), site.Slug, data); err != nil {
		// The reading is stored; evaluation will catch up on the next
		// entry for this parameter.
		return c.Status(201).JSON(fiber.Map{
			"reading": reading,
			"warning": "reading stored but not queued for evaluation",
		})
	}

	return c.Status(201).JSON(reading)
}

func (h *Handlers) listRollups(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	parameterKey := c.Query("parameter")
	if parameterKey == "" {
		return msgJSON(c, 400, "parameter query is required")
	}

	from, to, err := timeRange(c)
	if err != nil {
		return errJSON(c, 400, err)
	}

	rollups, err := h.db.ListDailyRollups(id, parameterKey, from, to)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(rollups)
}

// timeRange parses from/to query params, defaulting to the last 7 days.
func timeRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7)
	to := now

	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be RFC3339")
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be RFC3339")
		}
		to = t
	}
	return from, to, nil
}
