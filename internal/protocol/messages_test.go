package protocol

import (
	"testing"
)

func TestParseIdentifyMessage(t *testing.T) {
	data := []byte(`{"type":"identify","site_slug":"east-works","instrument":"ph-analyzer-01"}`)

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	identify, ok := msg.(*IdentifyMessage)
	if !ok {
		t.Fatalf("expected *IdentifyMessage, got %T", msg)
	}
	if identify.SiteSlug != "east-works" {
		t.Errorf("expected site slug east-works, got %s", identify.SiteSlug)
	}
	if identify.Instrument != "ph-analyzer-01" {
		t.Errorf("expected instrument ph-analyzer-01, got %s", identify.Instrument)
	}
}

func TestParseIdentifyMessage_MissingSite(t *testing.T) {
	data := []byte(`{"type":"identify","instrument":"ph-analyzer-01"}`)

	if _, err := ParseMessage(data); err == nil {
		t.Error("expected error for identify without site_slug")
	}
}

func TestParseReadingsMessage(t *testing.T) {
	data := []byte(`{
		"type": "readings",
		"timestamp": "2026-03-14T09:30:00Z",
		"values": [
			{"parameter_key": "ph", "value": 7.1},
			{"parameter_key": "do", "value": 2.4}
		]
	}`)

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	readings, ok := msg.(*ReadingsMessage)
	if !ok {
		t.Fatalf("expected *ReadingsMessage, got %T", msg)
	}
	if len(readings.Values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(readings.Values))
	}
	if readings.Values[0].ParameterKey != "ph" || readings.Values[0].Value != 7.1 {
		t.Errorf("unexpected first value: %+v", readings.Values[0])
	}
}

func TestParseReadingsMessage_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing timestamp", `{"type":"readings","values":[{"parameter_key":"ph","value":7.1}]}`},
		{"bad timestamp", `{"type":"readings","timestamp":"14/03/2026","values":[{"parameter_key":"ph","value":7.1}]}`},
		{"no values", `{"type":"readings","timestamp":"2026-03-14T09:30:00Z","values":[]}`},
		{"missing parameter key", `{"type":"readings","timestamp":"2026-03-14T09:30:00Z","values":[{"value":7.1}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseMessage([]byte(tc.data)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestParseKeepaliveMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"keepalive"}`))
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}
	if _, ok := msg.(*KeepaliveMessage); !ok {
		t.Fatalf("expected *KeepaliveMessage, got %T", msg)
	}
}

func TestParseMessage_UnknownType(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":"telemetry"}`)); err == nil {
		t.Error("expected error for unknown message type")
	}
}

func TestNewAckMessage(t *testing.T) {
	ack := NewAckMessage(AckStatusIdentified)
	if ack.Type != MsgTypeAck {
		t.Errorf("expected type ack, got %s", ack.Type)
	}
	if ack.Status != AckStatusIdentified {
		t.Errorf("expected status identified, got %s", ack.Status)
	}
}
