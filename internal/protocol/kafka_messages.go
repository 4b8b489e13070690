package protocol

import (
	"encoding/json"
	"time"
)

// ReadingMessage is the internal per-value message format for Kafka. The
// gateway fans a readings batch out into one message per parameter value;
// the API publishes one per manual entry.
type ReadingMessage struct {
	SiteSlug     string    `json:"site_slug"`
	SiteID       int64     `json:"site_id"`
	ParameterKey string    `json:"parameter_key"`
	Value        float64   `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
	ReceivedAt   time.Time `json:"received_at"`
	Source       string    `json:"source"`
	EnteredBy    string    `json:"entered_by,omitempty"`
	Note         string    `json:"note,omitempty"`
}

// AlertNotification is the message format for alert notifications on the
// alerts topic.
type AlertNotification struct {
	Type         string    `json:"type"` // ALERT_TRIGGERED, ALERT_ESCALATED, ALERT_CLEARED
	SiteID       int64     `json:"site_id"`
	SiteName     string    `json:"site_name"`
	ParameterKey string    `json:"parameter_key"`
	Value        float64   `json:"value"`
	Severity     string    `json:"severity"`
	Direction    string    `json:"direction"`
	Threshold    float64   `json:"threshold"`
	TriggeredAt  time.Time `json:"triggered_at"`
	AlertID      int64     `json:"alert_id,omitempty"`
	Playbook     []string  `json:"playbook,omitempty"`
}

const (
	AlertTypeTriggered = "ALERT_TRIGGERED"
	AlertTypeEscalated = "ALERT_ESCALATED"
	AlertTypeCleared   = "ALERT_CLEARED"
)

// EncodeReadingMessage encodes a ReadingMessage to JSON
func EncodeReadingMessage(msg *ReadingMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeReadingMessage decodes JSON to ReadingMessage
func DecodeReadingMessage(data []byte) (*ReadingMessage, error) {
	var msg ReadingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EncodeAlertNotification encodes an AlertNotification to JSON
func EncodeAlertNotification(alert *AlertNotification) ([]byte, error) {
	return json.Marshal(alert)
}

// DecodeAlertNotification decodes JSON to AlertNotification
func DecodeAlertNotification(data []byte) (*AlertNotification, error) {
	var alert AlertNotification
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}
