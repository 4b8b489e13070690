package database

import (
	"time"
)

// Site is a physical treatment facility; the unit of scoping for readings,
// thresholds and alerts.
type Site struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// Parameter is a monitored process parameter with its display settings and
// watch/alarm bands. Band sides are nullable; a missing side is
// unconstrained.
type Parameter struct {
	Key         string    `json:"key"`
	DisplayName string    `json:"display_name"`
	Unit        string    `json:"unit"`
	Decimals    int       `json:"decimals"`
	DefaultMin  float64   `json:"default_min"`
	DefaultMax  float64   `json:"default_max"`
	WatchMin    *float64  `json:"watch_min"`
	WatchMax    *float64  `json:"watch_max"`
	AlarmMin    *float64  `json:"alarm_min"`
	AlarmMax    *float64  `json:"alarm_max"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reading is a single process measurement, entered by an operator or
// received from an online analyzer through the gateway.
type Reading struct {
	ID           int64     `json:"id"`
	SiteID       int64     `json:"site_id"`
	ParameterKey string    `json:"parameter_key"`
	Value        float64   `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
	EnteredBy    *string   `json:"entered_by"`
	Note         *string   `json:"note"`
	Source       string    `json:"source"` // "manual" or "analyzer"
	ReceivedAt   time.Time `json:"received_at"`
}

// Reading sources
const (
	SourceManual   = "manual"
	SourceAnalyzer = "analyzer"
)

// DailyRollup is the per-site, per-parameter daily min/avg/max used by the
// dashboard calendar.
type DailyRollup struct {
	SiteID       int64     `json:"site_id"`
	ParameterKey string    `json:"parameter_key"`
	Date         time.Time `json:"date"`
	MinValue     *float64  `json:"min_value"`
	AvgValue     *float64  `json:"avg_value"`
	MaxValue     *float64  `json:"max_value"`
	SampleCount  int       `json:"sample_count"`
}

// AlertEvent is a raised threshold breach with its operator lifecycle.
type AlertEvent struct {
	ID             int64      `json:"id"`
	SiteID         int64      `json:"site_id"`
	ParameterKey   string     `json:"parameter_key"`
	Value          float64    `json:"value"`
	Severity       string     `json:"severity"` // "watch" or "alarm"
	Direction      string     `json:"direction"`
	ThresholdValue float64    `json:"threshold_value"`
	Status         string     `json:"status"`
	TriggeredAt    time.Time  `json:"triggered_at"`
	AcknowledgedBy *string    `json:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}

// Alert lifecycle states
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// SitePlaybook is a site-level override of a built-in remediation playbook.
// Steps and reference links are stored as JSON to preserve ordering.
type SitePlaybook struct {
	ID             int64     `json:"id"`
	SiteID         int64     `json:"site_id"`
	ParameterKey   string    `json:"parameter_key"`
	Direction      string    `json:"direction"`
	StepsJSON      string    `json:"-"`
	ReferencesJSON string    `json:"-"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CalibrationSchedule tracks one instrument's calibration cadence.
type CalibrationSchedule struct {
	ID               int64      `json:"id"`
	SiteID           int64      `json:"site_id"`
	Instrument       string     `json:"instrument"`
	ParameterKey     string     `json:"parameter_key"`
	IntervalDays     int        `json:"interval_days"`
	TolerancePercent float64    `json:"tolerance_percent"`
	LastCalibratedAt *time.Time `json:"last_calibrated_at"`
	NextDueAt        time.Time  `json:"next_due_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CalibrationLog is one performed calibration with the computed deviation.
type CalibrationLog struct {
	ID               int64     `json:"id"`
	ScheduleID       int64     `json:"schedule_id"`
	CalibratedAt     time.Time `json:"calibrated_at"`
	ReferenceValue   float64   `json:"reference_value"`
	MeasuredValue    float64   `json:"measured_value"`
	DeviationPercent float64   `json:"deviation_percent"`
	Passed           bool      `json:"passed"`
	Technician       *string   `json:"technician"`
	Note             *string   `json:"note"`
}

// WeatherSnapshot is a persisted per-site weather observation with the
// derived stability class.
type WeatherSnapshot struct {
	ID               int64     `json:"id"`
	SiteID           int64     `json:"site_id"`
	TakenAt          time.Time `json:"taken_at"`
	TemperatureC     *float64  `json:"temperature_c"`
	WindSpeedMS      *float64  `json:"wind_speed_ms"`
	WindDirectionDeg *float64  `json:"wind_direction_deg"`
	CloudCoverPct    *float64  `json:"cloud_cover_pct"`
	StabilityClass   string    `json:"stability_class"`
	Source           string    `json:"source"`
}

// OdourIncident is an operator-reported odour observation at a map point,
// optionally linked to the weather snapshot current at report time.
type OdourIncident struct {
	ID          int64     `json:"id"`
	SiteID      int64     `json:"site_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Intensity   int       `json:"intensity"` // 1 (faint) .. 5 (very strong)
	Description string    `json:"description"`
	ReportedBy  *string   `json:"reported_by"`
	SnapshotID  *int64    `json:"snapshot_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmailRecipient is a configured notification target.
type EmailRecipient struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Active     bool   `json:"active"`
	AlertTypes string `json:"alert_types"` // "all", "alerts" or "calibration"
}

// Recipient alert-type filters
const (
	AlertTypesAll         = "all"
	AlertTypesAlerts      = "alerts"
	AlertTypesCalibration = "calibration"
)

// EmailLog records a single delivery attempt and its outcome.
type EmailLog struct {
	ID             int64     `json:"id"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Kind           string    `json:"kind"` // "alert" or "calibration"
	Status         string    `json:"status"`
	Error          *string   `json:"error"`
	SentAt         time.Time `json:"sent_at"`
}

// Email delivery outcomes
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// SiteMap is the stored object reference for a site's uploaded map image.
type SiteMap struct {
	SiteID      int64     `json:"site_id"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
