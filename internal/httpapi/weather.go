package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/stability"
)

// currentWeather fetches live conditions for the site and derives the
// atmospheric stability class on the fly.
func (h *Handlers) currentWeather(c *fiber.Ctx) error {
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

	obs, err := h.weather.Current(site.Latitude, site.Longitude)
	if err != nil {
		return errJSON(c, 502, err)
	}

	class := stability.Classify(site.Latitude, site.Longitude, obs.ObservedAt, obs.WindSpeedMS, obs.CloudCoverPct)

	return c.JSON(fiber.Map{
		"site_id":            site.ID,
		"temperature_c":      obs.TemperatureC,
		"wind_speed_ms":      obs.WindSpeedMS,
		"wind_direction_deg": obs.WindDirectionDeg,
		"cloud_cover_pct":    obs.CloudCoverPct,
		"observed_at":        obs.ObservedAt,
		"stability_class":    class,
		"source":             obs.Source,
	})
}

func (h *Handlers) listWeatherSnapshots(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	limit := c.QueryInt("limit", 48)
	snapshots, err := h.db.ListWeatherSnapshots(id, limit)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(snapshots)
}

func (h *Handlers) listOdourIncidents(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	limit := c.QueryInt("limit", 100)
	incidents, err := h.db.ListOdourIncidents(id, limit)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(incidents)
}

type createOdourRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Intensity   int     `json:"intensity"`
	Description string  `json:"description"`
	ReportedBy  string  `json:"reported_by"`
}

// createOdourIncident records an operator odour report and links it to the
// site's latest weather snapshot so dispersion conditions at report time
// are preserved.
func (h *Handlers) createOdourIncident(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return msgJSON(c, 400, "invalid site id")
	}

	var req createOdourRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if req.Intensity < 1 || req.Intensity > 5 {
		return msgJSON(c, 400, "intensity must be between 1 and 5")
	}

	site, err := h.db.GetSite(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if site == nil {
		return msgJSON(c, 404, "site not found")
	}

	incident := &database.OdourIncident{
		SiteID:      id,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Intensity:   req.Intensity,
		Description: req.Description,
	}
	if req.ReportedBy != "" {
		incident.ReportedBy = &req.ReportedBy
	}

	snapshot, err := h.db.LatestWeatherSnapshot(id)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if snapshot != nil {
		incident.SnapshotID = &snapshot.ID
	}

	if err := h.db.InsertOdourIncident(incident); err != nil {
		return errJSON(c, 500, err)
	}
	return c.Status(201).JSON(incident)
}
