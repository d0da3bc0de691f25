package events

import (
	"encoding/json"
	"time"
)

// Customer is the recipient of an order.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// OrderConfirmedPayload is published by the order service once a store accepts an
// order. It triggers the assignment of a delivery partner.
type OrderConfirmedPayload struct {
	OrderID             string          `json:"order_id" validate:"required,uuid"`
	StoreID             string          `json:"store_id" validate:"required,uuid"`
	Customer            Customer        `json:"customer" validate:"required"`
	Items               json.RawMessage `json:"items" validate:"required"`
	TotalAmount         string          `json:"total_amount" validate:"required,numeric"`
	EstimatedPickupTime time.Time       `json:"estimated_pickup_time" validate:"required"`
}

type PartnerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type DeliveryCreatedPayload struct {
	DeliveryID            string     `json:"delivery_id"`
	OrderID               string     `json:"order_id"`
	StoreID               string     `json:"store_id"`
	Partner               PartnerRef `json:"partner"`
	Status                string     `json:"status"`
	EstimatedDeliveryTime time.Time  `json:"estimated_delivery_time"`
}

type LocationPayload struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type DeliveryStatusChangedPayload struct {
	DeliveryID            string           `json:"delivery_id"`
	OrderID               string           `json:"order_id"`
	PartnerID             string           `json:"partner_id"`
	PreviousStatus        string           `json:"previous_status"`
	Status                string           `json:"status"`
	EstimatedDeliveryTime *time.Time       `json:"estimated_delivery_time,omitempty"`
	Location              *LocationPayload `json:"location,omitempty"`
}

type DeliveryUnassignedPayload struct {
	OrderID string `json:"order_id"`
	StoreID string `json:"store_id"`
	Reason  string `json:"reason"`
}
