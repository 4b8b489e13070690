package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/playbook"
	"github.com/plantops/plantwatch/internal/severity"
)

func (h *Handlers) listAlerts(c *fiber.Ctx) error {
	var siteID int64
	if s := c.Query("site_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return msgJSON(c, 400, "invalid site_id")
		}
		siteID = id
	}

	status := c.Query("status")
	limit := c.QueryInt("limit", 100)

	alerts, err := h.db.ListAlertEvents(siteID, status, limit)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(alerts)
}

type acknowledgeRequest struct {
	User string `json:"user"`
}

func (h *Handlers) acknowledgeAlert(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid alert id")
	}

	var req acknowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if req.User == "" {
		return msgJSON(c, 400, "user is required")
	}

	alert, err := h.db.GetAlertEvent(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if alert == nil {
		return msgJSON(c, 404, "alert not found")
	}

	ok, err := h.db.AcknowledgeAlertEvent(id, req.User, time.Now())
	if err != nil {
		return errJSON(c, 500, err)
	}
	if !ok {
		return msgJSON(c, 409, "alert is not active")
	}

	alert, err = h.db.GetAlertEvent(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(alert)
}

func (h *Handlers) resolveAlert(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid alert id")
	}

	alert, err := h.db.GetAlertEvent(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if alert == nil {
		return msgJSON(c, 404, "alert not found")
	}

	ok, err := h.db.ResolveAlertEvent(id, time.Now())
	if err != nil {
		return errJSON(c, 500, err)
	}
	if !ok {
		return msgJSON(c, 409, "alert is already resolved")
	}

	alert, err = h.db.GetAlertEvent(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(alert)
}

func playbookParams(c *fiber.Ctx) (int64, string, string, error) {
	id, err := idParam(c)
	if err != nil {
		return 0, "", "", errors.New("invalid site id")
	}

	direction := c.Params("direction")
	if direction != string(severity.DirectionLow) && direction != string(severity.DirectionHigh) {
		return 0, "", "", errors.New("direction must be low or high")
	}

	return id, c.Params("parameter"), direction, nil
}

// getPlaybook returns the effective playbook: the site override when one
// exists, the built-in default otherwise.
func (h *Handlers) getPlaybook(c *fiber.Ctx) error {
	id, parameterKey, direction, err := playbookParams(c)
	if err != nil {
		return errJSON(c, 400, err)
	}

	pb, err := playbook.Effective(h.db, id, parameterKey, direction)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if pb == nil {
		return msgJSON(c, 404, "no playbook for this parameter and direction")
	}
	return c.JSON(pb)
}

type putPlaybookRequest struct {
	Steps          []string                 `json:"steps"`
	ReferenceLinks []playbook.ReferenceLink `json:"reference_links"`
}

func (h *Handlers) putPlaybook(c *fiber.Ctx) error {
	id, parameterKey, direction, err := playbookParams(c)
	if err != nil {
		return errJSON(c, 400, err)
	}

	var req putPlaybookRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if len(req.Steps) == 0 {
		return msgJSON(c, 400, "steps must not be empty")
	}

	pb := &playbook.Playbook{
		ParameterKey:   parameterKey,
		Direction:      direction,
		Steps:          req.Steps,
		ReferenceLinks: req.ReferenceLinks,
		SiteOverride:   true,
	}

	stored, err := playbook.ToStored(id, pb)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if err := h.db.UpsertSitePlaybook(stored); err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(pb)
}

// deletePlaybook removes a site override; the built-in default applies again.
func (h *Handlers) deletePlaybook(c *fiber.Ctx) error {
	id, parameterKey, direction, err := playbookParams(c)
	if err != nil {
		return errJSON(c, 400, err)
	}

	if err := h.db.DeleteSitePlaybook(id, parameterKey, direction); err != nil {
		return errJSON(c, 500, err)
	}
	return c.SendStatus(204)
}
