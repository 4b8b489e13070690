package httpapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/database"
)

func (h *Handlers) listRecipients(c *fiber.Ctx) error {
	recipients, err := h.db.ListEmailRecipients()
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(recipients)
}

type recipientRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Active     *bool  `json:"active"`
	AlertTypes string `json:"alert_types"`
}

func validAlertTypes(s string) bool {
	return s == database.AlertTypesAll || s == database.AlertTypesAlerts || s == database.AlertTypesCalibration
}

func (h *Handlers) createRecipient(c *fiber.Ctx) error {
	var req recipientRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if req.Name == "" || req.Email == "" {
		return msgJSON(c, 400, "name and email are required")
	}
	if req.AlertTypes == "" {
		req.AlertTypes = database.AlertTypesAll
	}
	if !validAlertTypes(req.AlertTypes) {
		return msgJSON(c, 400, "alert_types must be all, alerts or calibration")
	}

	recipient := &database.EmailRecipient{
		Name:       req.Name,
		Email:      req.Email,
		Active:     true,
		AlertTypes: req.AlertTypes,
	}
	if req.Active != nil {
		recipient.Active = *req.Active
	}

	if err := h.db.InsertEmailRecipient(recipient); err != nil {
		return errJSON(c, 500, err)
	}
	return c.Status(201).JSON(recipient)
}

func (h *Handlers) updateRecipient(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid recipient id")
	}

	var req recipientRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if req.Name == "" || req.Email == "" {
		return msgJSON(c, 400, "name and email are required")
	}
	if !validAlertTypes(req.AlertTypes) {
		return msgJSON(c, 400, "alert_types must be all, alerts or calibration")
	}

	recipient := &database.EmailRecipient{
		ID:         id,
		Name:       req.Name,
		Email:      req.Email,
		Active:     req.Active == nil || *req.Active,
		AlertTypes: req.AlertTypes,
	}
	if err := h.db.UpdateEmailRecipient(recipient); err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(recipient)
}

// uploadSiteMap stores the request body as the site's map image.
func (h *Handlers) uploadSiteMap(c *fiber.Ctx) error {
	if h.maps == nil {
		return msgJSON(c, 503, "map storage is not configured")
	}

	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}
	site, err := h.db.GetSite(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if site == nil {
		return msgJSON(c, 404, "site not found")
	}

	body := c.Body()
	if len(body) == 0 {
		return msgJSON(c, 400, "request body is empty")
	}

	contentType := c.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("site-maps/%d", id)
	if err := h.maps.Upload(c.Context(), key, body, contentType); err != nil {
		return errJSON(c, 502, err)
	}

	siteMap := &database.SiteMap{
		SiteID:      id,
		ObjectKey:   key,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	if err := h.db.UpsertSiteMap(siteMap); err != nil {
		return errJSON(c, 500, err)
	}
	return c.Status(201).JSON(siteMap)
}

// getSiteMap returns a presigned download URL for the site's map image.
func (h *Handlers) getSiteMap(c *fiber.Ctx) error {
	if h.maps == nil {
		return msgJSON(c, 503, "map storage is not configured")
	}

	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	siteMap, err := h.db.GetSiteMap(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if siteMap == nil {
		return msgJSON(c, 404, "no map uploaded for this site")
	}

	url, err := h.maps.PresignedURL(c.Context(), siteMap.ObjectKey)
	if err != nil {
		return errJSON(c, 502, err)
	}

	return c.JSON(fiber.Map{
		"url":          url,
		"content_type": siteMap.ContentType,
		"uploaded_at":  siteMap.UploadedAt,
	})
}

// deleteSiteMap removes the site's map image from storage and clears the
// stored reference.
func (h *Handlers) deleteSiteMap(c *fiber.Ctx) error {
	if h.maps == nil {
		return msgJSON(c, 503, "map storage is not configured")
	}

	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	siteMap, err := h.db.GetSiteMap(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if siteMap == nil {
		return msgJSON(c, 404, "no map uploaded for this site")
	}

	if err := h.maps.Delete(c.Context(), siteMap.ObjectKey); err != nil {
		return errJSON(c, 502, err)
	}
	if err := h.db.DeleteSiteMap(id); err != nil {
		return errJSON(c, 500, err)
	}
	return c.SendStatus(204)
}
