package weather

import (
	"fmt"
	"time"

	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/stability"
)

// Snapshotter polls current weather for every site and persists a snapshot
// with the derived stability class.
type Snapshotter struct {
	db     *database.DB
	client *Client
	pacing time.Duration
}

// NewSnapshotter creates a snapshotter. The pacing delay is inserted
// between per-site fetches to stay inside upstream rate limits.
func NewSnapshotter(db *database.DB, client *Client, pacing time.Duration) *Snapshotter {
	return &Snapshotter{db: db, client: client, pacing: pacing}
}

// Run fetches and persists one snapshot per site. A failed site is logged
// and skipped; the run always visits every site.
func (s *Snapshotter) Run() error {
	sites, err := s.db.ListSites()
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	var stored int
	for i, site := range sites {
		if i > 0 {
			time.Sleep(s.pacing)
		}

		if err := s.snapshotSite(site); err != nil {
			fmt.Printf("Failed to snapshot site %s: %v\n", site.Slug, err)
			continue
		}
		stored++
	}

	fmt.Printf("Weather snapshot run complete: %d/%d sites\n", stored, len(sites))
	return nil
}

func (s *Snapshotter) snapshotSite(site *database.Site) error {
	obs, err := s.client.Current(site.Latitude, site.Longitude)
	if err != nil {
		return err
	}

	class := stability.Classify(site.Latitude, site.Longitude, obs.ObservedAt,
		obs.WindSpeedMS, obs.CloudCoverPct)

	snap := &database.WeatherSnapshot{
		SiteID:           site.ID,
		TakenAt:          obs.ObservedAt,
		TemperatureC:     &obs.TemperatureC,
		WindSpeedMS:      &obs.WindSpeedMS,
		WindDirectionDeg: &obs.WindDirectionDeg,
		CloudCoverPct:    &obs.CloudCoverPct,
		StabilityClass:   string(class),
		Source:           obs.Source,
	}

	if err := s.db.InsertWeatherSnapshot(snap); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}
