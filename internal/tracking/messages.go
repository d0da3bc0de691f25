package tracking

import "time"

// Outbound events.
const (
	EventPartnerLocation = "partner-location"
	EventDeliveryStatus  = "delivery-status"
	EventDeliveryCreated = "delivery-created"
	EventError           = "error"
)

// Inbound events. A delivery-status frame uses the same name in both directions.
const (
	EventLocationUpdate = "location-update"
	EventTrackDelivery  = "track-delivery"
	EventStopTracking   = "stop-tracking"
)

// Message is one frame on the wire: {"event": "...", "data": {...}}.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type LocationPayload struct {
	DeliveryID string    `json:"deliveryId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Timestamp  time.Time `json:"timestamp"`
}

type StatusPayload struct {
	DeliveryID            string     `json:"deliveryId"`
	Status                string     `json:"status"`
	EstimatedDeliveryTime *time.Time `json:"estimatedDeliveryTime"`
}

type PartnerContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CreatedPayload struct {
	DeliveryID            string         `json:"deliveryId"`
	OrderID               string         `json:"orderId"`
	Status                string         `json:"status"`
	EstimatedDeliveryTime time.Time      `json:"estimatedDeliveryTime"`
	Partner               PartnerContact `json:"partner"`
}

// ErrorPayload tells a client why its inbound event was rejected.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
