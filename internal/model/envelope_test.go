package model

import (
	"strings"
	"testing"
)

func TestEnvelope_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		wantErr bool
	}{
		{"valid", Envelope{Type: "quote"}, false},
		{"missing type", Envelope{Data: "x"}, true},
		{"reserved type", Envelope{Type: TypePing}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantType string
		wantErr  bool
	}{
		{
			name:     "application message",
			data:     `{"type":"orderUpdate","data":{"orderId":"abc"},"timestamp":1700000000000,"id":"m1"}`,
			wantType: "orderUpdate",
		},
		{
			name:     "unknown type passes through",
			data:     `{"type":"somethingNew","data":42}`,
			wantType: "somethingNew",
		},
		{
			name:    "not json",
			data:    `not json`,
			wantErr: true,
		},
		{
			name:    "missing type",
			data:    `{"data":{"a":1}}`,
			wantErr: true,
		},
		{
			name:    "empty type",
			data:    `{"type":"","data":1}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && env.Type != tt.wantType {
				t.Errorf("Decode() type = %q, want %q", env.Type, tt.wantType)
			}
		})
	}
}

func TestStamp(t *testing.T) {
	stamped := Stamp(Envelope{Type: "quote"})
	if stamped.Timestamp == 0 {
		t.Error("expected timestamp to be set")
	}
	if stamped.ID == "" {
		t.Error("expected id to be set")
	}

	// Existing values are preserved.
	orig := Envelope{Type: "quote", Timestamp: 42, ID: "fixed"}
	stamped = Stamp(orig)
	if stamped.Timestamp != 42 || stamped.ID != "fixed" {
		t.Errorf("Stamp() overwrote fields: %+v", stamped)
	}
}

func TestEncode_RequiresType(t *testing.T) {
	if _, err := Encode(Envelope{}); err == nil {
		t.Error("expected error for empty type")
	}

	data, err := Encode(Envelope{Type: "quote", Data: map[string]int{"px": 100}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"type":"quote"`) {
		t.Errorf("unexpected wire form: %s", data)
	}
}

func TestNewPing(t *testing.T) {
	ping := NewPing()
	if ping.Type != TypePing {
		t.Errorf("type = %q, want %q", ping.Type, TypePing)
	}
	payload, ok := ping.Data.(map[string]int64)
	if !ok || payload["timestamp"] == 0 {
		t.Errorf("expected timestamp payload, got %#v", ping.Data)
	}
}
