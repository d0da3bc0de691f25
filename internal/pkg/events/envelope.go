// Package events defines the envelope every message on the delivery topics is
// wrapped in, together with the payloads of the events the service consumes and
// produces.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderConfirmed        = "OrderConfirmed"
	EventDeliveryCreated       = "DeliveryCreated"
	EventDeliveryStatusChanged = "DeliveryStatusChanged"
	EventDeliveryUnassigned    = "DeliveryUnassigned"
)

const CurrentVersion = 1

var (
	ErrEventIDRequired   = errors.New("event_id is required")
	ErrEventTypeRequired = errors.New("event_type is required")
	ErrPayloadRequired   = errors.New("payload is required")
)

// Envelope wraps every event. CorrelationID carries the order id so all events of
// one order can be followed across services.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope encodes payload into a fresh envelope.
func NewEnvelope(eventType, producer, correlationID string, occurredAt time.Time, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  CurrentVersion,
		OccurredAt:    occurredAt.UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Decode parses and validates an envelope.
func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == "" {
		return Envelope{}, ErrEventIDRequired
	}
	if env.EventType == "" {
		return Envelope{}, ErrEventTypeRequired
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return Envelope{}, ErrPayloadRequired
	}
	return env, nil
}

// UnwrapPayload decodes the payload of env into T.
func UnwrapPayload[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", env.EventType, err)
	}
	return t, nil
}
