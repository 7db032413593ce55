package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reserved envelope types used by the heartbeat protocol.
const (
	TypePing = "ping"
	TypePong = "pong"
)

// ErrMissingType is returned when an envelope has no type field.
var ErrMissingType = errors.New("envelope missing type")

// Envelope is the wire message envelope. Type is required and non-empty;
// unknown type values are passed through rather than rejected.
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // ms since epoch
	ID        string `json:"id,omitempty"`
}

// Validate checks the envelope invariants.
func (e Envelope) Validate() error {
	if e.Type == "" {
		return ErrMissingType
	}
	return nil
}

// Stamp fills in the timestamp and ID if they are unset.
func Stamp(e Envelope) Envelope {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return e
}

// Encode marshals an envelope to its JSON wire form.
func Encode(e Envelope) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Decode parses a JSON payload into an envelope. Payloads that are not
// valid JSON or have an empty type are rejected.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// NewPing builds a heartbeat probe envelope.
func NewPing() Envelope {
	return Envelope{
		Type: TypePing,
		Data: map[string]int64{"timestamp": time.Now().UnixMilli()},
	}
}

// NewPong builds the response to a server-initiated ping.
func NewPong() Envelope {
	return Envelope{
		Type: TypePong,
		Data: map[string]int64{"timestamp": time.Now().UnixMilli()},
	}
}
