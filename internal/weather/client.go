// Package weather fetches current conditions from a third-party provider
// and derives per-site snapshots with an atmospheric stability class.
package weather

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/plantops/plantwatch/pkg/config"
)

// Observation is a provider-independent current-conditions reading.
type Observation struct {
	TemperatureC     float64
	WindSpeedMS      float64
	WindDirectionDeg float64
	CloudCoverPct    float64
	ObservedAt       time.Time
	Source           string
}

// Client fetches current weather for coordinates from the configured
// provider. Open-Meteo needs no key; OpenWeatherMap requires one.
type Client struct {
	http *resty.Client
	cfg  *config.WeatherConfig
}

// NewClient creates a weather client
func NewClient(cfg *config.WeatherConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Accept", "application/json")

	return &Client{http: client, cfg: cfg}
}

// Current fetches the current conditions for the given coordinates.
func (c *Client) Current(latitude, longitude float64) (*Observation, error) {
	switch c.cfg.Provider {
	case "openweathermap":
		return c.currentOpenWeather(latitude, longitude)
	default:
		return c.currentOpenMeteo(latitude, longitude)
	}
}

type openMeteoResponse struct {
	Current struct {
		Time          string  `json:"time"`
		Temperature   float64 `json:"temperature_2m"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
		CloudCover    float64 `json:"cloud_cover"`
	} `json:"current"`
}

func (c *Client) currentOpenMeteo(latitude, longitude float64) (*Observation, error) {
	var result openMeteoResponse

	resp, err := c.http.R().
		SetQueryParams(map[string]string{
			"latitude":        fmt.Sprintf("%.4f", latitude),
			"longitude":       fmt.Sprintf("%.4f", longitude),
			"current":         "temperature_2m,wind_speed_10m,wind_direction_10m,cloud_cover",
			"wind_speed_unit": "ms",
			"timezone":        "UTC",
		}).
		SetResult(&result).
		Get(c.cfg.OpenMeteoURL + "/v1/forecast")

	if err != nil {
		return nil, fmt.Errorf("open-meteo request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("open-meteo returned status %d", resp.StatusCode())
	}

	observedAt := time.Now().UTC()
	if t, err := time.Parse("2006-01-02T15:04", result.Current.Time); err == nil {
		observedAt = t
	}

	return &Observation{
		TemperatureC:     result.Current.Temperature,
		WindSpeedMS:      result.Current.WindSpeed,
		WindDirectionDeg: result.Current.WindDirection,
		CloudCoverPct:    result.Current.CloudCover,
		ObservedAt:       observedAt,
		Source:           "open-meteo",
	}, nil
}

type openWeatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Dt int64 `json:"dt"`
}

func (c *Client) currentOpenWeather(latitude, longitude float64) (*Observation, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("openweathermap provider requires an API key")
	}

	var result openWeatherResponse

	resp, err := c.http.R().
		SetQueryParams(map[string]string{
			"lat":   fmt.Sprintf("%.4f", latitude),
			"lon":   fmt.Sprintf("%.4f", longitude),
			"units": "metric",
			"appid": c.cfg.APIKey,
		}).
		SetResult(&result).
		Get(c.cfg.OpenWeatherURL + "/data/2.5/weather")

	if err != nil {
		return nil, fmt.Errorf("openweathermap request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openweathermap returned status %d", resp.StatusCode())
	}

	return &Observation{
		TemperatureC:     result.Main.Temp,
		WindSpeedMS:      result.Wind.Speed,
		WindDirectionDeg: result.Wind.Deg,
		CloudCoverPct:    result.Clouds.All,
		ObservedAt:       time.Unix(result.Dt, 0).UTC(),
		Source:           "openweathermap",
	}, nil
}
