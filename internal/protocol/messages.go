package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MessageType represents the type of message
type MessageType string

const (
	// Analyzer to gateway
	MsgTypeIdentify  MessageType = "identify"
	MsgTypeReadings  MessageType = "readings"
	MsgTypeKeepalive MessageType = "keepalive"

	// Gateway to analyzer
	MsgTypeAck MessageType = "ack"
)

// BaseMessage is the common structure for all messages
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// IdentifyMessage is sent by an online analyzer on connection.
type IdentifyMessage struct {
	Type       MessageType `json:"type"`
	SiteSlug   string      `json:"site_slug"`
	Instrument string      `json:"instrument"`
}

// ReadingValue is one measured parameter value.
type ReadingValue struct {
	ParameterKey string  `json:"parameter_key"`
	Value        float64 `json:"value"`
}

// ReadingsMessage carries one timestamped batch of analyzer measurements.
type ReadingsMessage struct {
	Type      MessageType    `json:"type"`
	Timestamp string         `json:"timestamp"`
	Values    []ReadingValue `json:"values"`
}

// KeepaliveMessage is sent periodically by idle analyzers.
type KeepaliveMessage struct {
	Type MessageType `json:"type"`
}

// AckMessage is sent by the gateway in response to messages
type AckMessage struct {
	Type   MessageType `json:"type"`
	Status string      `json:"status"`
}

// AckStatus constants
const (
	AckStatusIdentified = "identified"
	AckStatusAlive      = "alive"
	AckStatusError      = "error"
)

// ParseMessage parses a JSON line into the appropriate message type
func ParseMessage(data []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch base.Type {
	case MsgTypeIdentify:
		var msg IdentifyMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid identify message: %w", err)
		}
		if err := validateIdentify(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MsgTypeReadings:
		var msg ReadingsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid readings message: %w", err)
		}
		if err := validateReadings(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MsgTypeKeepalive:
		var msg KeepaliveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid keepalive message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", base.Type)
	}
}

// validateIdentify validates an identify message
func validateIdentify(msg *IdentifyMessage) error {
	if msg.SiteSlug == "" {
		return fmt.Errorf("site_slug is required")
	}
	if msg.Instrument == "" {
		return fmt.Errorf("instrument is required")
	}
	return nil
}

// validateReadings validates a readings message. Non-finite values are
// rejected here so the evaluator only ever sees finite numbers.
func validateReadings(msg *ReadingsMessage) error {
	if msg.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		return fmt.Errorf("invalid timestamp format (must be RFC3339): %w", err)
	}
	if len(msg.Values) == 0 {
		return fmt.Errorf("at least one value is required")
	}
	for _, v := range msg.Values {
		if v.ParameterKey == "" {
			return fmt.Errorf("parameter_key is required")
		}
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return fmt.Errorf("value for %s is not finite", v.ParameterKey)
		}
	}
	return nil
}

// EncodeMessage encodes a message to JSON
func EncodeMessage(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}

// NewAckMessage creates a new acknowledgment message
func NewAckMessage(status string) *AckMessage {
	return &AckMessage{
		Type:   MsgTypeAck,
		Status: status,
	}
}
