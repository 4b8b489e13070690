package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/severity"
)

func (h *Handlers) listSites(c *fiber.Ctx) error {
	sites, err := h.db.ListSites()
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(sites)
}

type createSiteRequest struct {
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handlers) createSite(c *fiber.Ctx) error {
	var req createSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}
	if req.Name == "" || req.Slug == "" {
		return msgJSON(c, 400, "name and slug are required")
	}

	site := &database.Site{
		Name:      req.Name,
		Slug:      req.Slug,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.db.InsertSite(site); err != nil {
		return errJSON(c, 500, err)
	}
	return c.Status(201).JSON(site)
}

func (h *Handlers) getSite(c *fiber.Ctx) error {
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
	return c.JSON(site)
}

func (h *Handlers) listParameters(c *fiber.Ctx) error {
	params, err := h.db.ListParameters()
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(params)
}

type updateBandsRequest struct {
	WatchMin *float64 `json:"watch_min"`
	WatchMax *float64 `json:"watch_max"`
	AlarmMin *float64 `json:"alarm_min"`
	AlarmMax *float64 `json:"alarm_max"`
}

func (h *Handlers) updateParameterBands(c *fiber.Ctx) error {
	key := c.Params("key")

	var req updateBandsRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, 400, err)
	}

	// A threshold pair with min above max can never be satisfied
	if req.WatchMin != nil && req.WatchMax != nil && *req.WatchMin > *req.WatchMax {
		return msgJSON(c, 400, "watch_min must not exceed watch_max")
	}
	if req.AlarmMin != nil && req.AlarmMax != nil && *req.AlarmMin > *req.AlarmMax {
		return msgJSON(c, 400, "alarm_min must not exceed alarm_max")
	}

	param, err := h.db.GetParameter(key)
	if err != nil {
		return errJSON(c, 500, err)
	}
	if param == nil {
		return msgJSON(c, 404, "parameter not found")
	}

	if err := h.db.UpdateParameterBands(key, req.WatchMin, req.WatchMax, req.AlarmMin, req.AlarmMax); err != nil {
		return errJSON(c, 500, err)
	}

	param, err = h.db.GetParameter(key)
	if err != nil {
		return errJSON(c, 500, err)
	}
	return c.JSON(param)
}

// parameterStatus is one row of the site status board.
type parameterStatus struct {
	ParameterKey string               `json:"parameter_key"`
	DisplayName  string               `json:"display_name"`
	Unit         string               `json:"unit"`
	LatestValue  *float64             `json:"latest_value"`
	RecordedAt   *time.Time           `json:"recorded_at"`
	Status       severity.DailyStatus `json:"status"`
	Trend        severity.Trend       `json:"trend"`
	Severity     severity.Level       `json:"severity"`
}

// trendWindow is how many recent readings feed the trend calculation.
const trendWindow = 10

func (h *Handlers) siteStatus(c *fiber.Ctx) error {
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

	params, err := h.db.ListParameters()
	if err != nil {
		return errJSON(c, 500, err)
	}

	now := time.Now()
	statuses := make([]parameterStatus, 0, len(params))
	for _, p := range params {
		ps := parameterStatus{
			ParameterKey: p.Key,
			DisplayName:  p.DisplayName,
			Unit:         p.Unit,
			Status:       severity.StatusMissing,
			Trend:        severity.TrendStable,
			Severity:     severity.LevelOK,
		}

		latest, err := h.db.LatestReadingForDay(id, p.Key, now)
		if err != nil {
			return errJSON(c, 500, err)
		}
		if latest != nil {
			ps.LatestValue = &latest.Value
			ps.RecordedAt = &latest.RecordedAt

			min, max := thresholdRange(p)
			ps.Status = severity.DailyStatusFor(latest.Value, min, max, true)

			level, _ := severity.For(latest.Value, bandsFor(p))
			ps.Severity = level
		}

		recent, err := h.db.RecentReadings(id, p.Key, trendWindow)
		if err != nil {
			return errJSON(c, 500, err)
		}
		values := make([]float64, len(recent))
		for i, r := range recent {
			values[i] = r.Value
		}
		ps.Trend = severity.TrendFor(values, p.DefaultMin, p.DefaultMax)

		statuses = append(statuses, ps)
	}

	return c.JSON(fiber.Map{
		"site_id":    id,
		"date":       now.Format("2006-01-02"),
		"parameters": statuses,
	})
}

// thresholdRange picks the bounds daily status is judged against: the watch
// band where configured, the parameter's default range otherwise.
func thresholdRange(p *database.Parameter) (float64, float64) {
	min := p.DefaultMin
	max := p.DefaultMax
	if p.WatchMin != nil {
		min = *p.WatchMin
	}
	if p.WatchMax != nil {
		max = *p.WatchMax
	}
	return min, max
}

func bandsFor(p *database.Parameter) severity.Bands {
	return severity.Bands{
		Watch: severity.Band{Min: p.WatchMin, Max: p.WatchMax},
		Alarm: severity.Band{Min: p.AlarmMin, Max: p.AlarmMax},
	}
}
