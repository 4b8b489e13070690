// Package httpapi exposes the dashboard REST API over Fiber.
package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/queue"
	"github.com/plantops/plantwatch/internal/storage"
	"github.com/plantops/plantwatch/internal/weather"
)

// Handlers bundles the dependencies the API routes need.
type Handlers struct {
	db       *database.DB
	producer *queue.Producer
	weather  *weather.Client
	maps     *storage.S3Client
}

// New creates the API handler set. The S3 client may be nil when map
// storage is not configured; the map routes then return 503.
func New(db *database.DB, producer *queue.Producer, weatherClient *weather.Client, maps *storage.S3Client) *Handlers {
	return &Handlers{
		db:       db,
		producer: producer,
		weather:  weatherClient,
		maps:     maps,
	}
}

// Register mounts all API routes on the app.
func Register(app *fiber.App, h *Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api")

	api.Get("/sites", h.listSites)
	api.Post("/sites", h.createSite)
	api.Get("/sites/:id", h.getSite)
	api.Get("/sites/:id/status", h.siteStatus)

	api.Get("/parameters", h.listParameters)
	api.Put("/parameters/:key/bands", h.updateParameterBands)

	api.Get("/sites/:id/readings", h.listReadings)
	api.Post("/sites/:id/readings", h.createReading)
	api.Get("/sites/:id/rollups", h.listRollups)

	api.Get("/alerts", h.listAlerts)
	api.Post("/alerts/:id/acknowledge", h.acknowledgeAlert)
	api.Post("/alerts/:id/resolve", h.resolveAlert)

	api.Get("/sites/:id/playbooks/:parameter/:direction", h.getPlaybook)
	api.Put("/sites/:id/playbooks/:parameter/:direction", h.putPlaybook)
	api.Delete("/sites/:id/playbooks/:parameter/:direction", h.deletePlaybook)

	api.Get("/calibrations/due", h.calibrationsDue)
	api.Get("/sites/:id/calibrations", h.listCalibrations)
	api.Post("/sites/:id/calibrations", h.createCalibration)
	api.Get("/calibrations/:id/logs", h.listCalibrationLogs)
	api.Post("/calibrations/:id/logs", h.createCalibrationLog)

	api.Get("/sites/:id/weather", h.currentWeather)
	api.Get("/sites/:id/weather/snapshots", h.listWeatherSnapshots)

	api.Get("/sites/:id/odour", h.listOdourIncidents)
	api.Post("/sites/:id/odour", h.createOdourIncident)

	api.Get("/recipients", h.listRecipients)
	api.Post("/recipients", h.createRecipient)
	api.Put("/recipients/:id", h.updateRecipient)

	api.Get("/sites/:id/map", h.getSiteMap)
	api.Post("/sites/:id/map", h.uploadSiteMap)
	api.Delete("/sites/:id/map", h.deleteSiteMap)
}

func idParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func errJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func msgJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
