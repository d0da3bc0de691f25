package ws

import (
	"encoding/json"
	"time"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type locationUpdate struct {
	DeliveryID string    `json:"deliveryId" validate:"required"`
	Lat        *float64  `json:"lat" validate:"required,latitude"`
	Lng        *float64  `json:"lng" validate:"required,longitude"`
	Timestamp  time.Time `json:"timestamp" validate:"required"`
}

type statusUpdate struct {
	DeliveryID            string     `json:"deliveryId" validate:"required,uuid"`
	Status                string     `json:"status" validate:"required"`
	EstimatedDeliveryTime *time.Time `json:"estimatedDeliveryTime"`
	Lat                   *float64   `json:"lat" validate:"required_with=Lng,omitempty,latitude"`
	Lng                   *float64   `json:"lng" validate:"required_with=Lat,omitempty,longitude"`
}

type trackRequest struct {
	DeliveryID string `json:"deliveryId" validate:"required"`
}
