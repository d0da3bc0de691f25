package http

import (
	"encoding/json"
	"time"

	"deliveryhub/internal/core/application/usecases/queries"

	"github.com/shopspring/decimal"
)

// CustomerRequest is the recipient of the order.
type CustomerRequest struct {
	Name    string `json:"name" validate:"required" example:"Asha"`
	Phone   string `json:"phone" validate:"required" example:"+919000000002"`
	Address string `json:"address" validate:"required" example:"12 Jubilee Hills, Hyderabad"`
}

// CreateDeliveryRequest asks for a partner to carry a confirmed order.
type CreateDeliveryRequest struct {
	OrderID             string          `json:"orderId" validate:"required,uuid"`
	StoreID             string          `json:"storeId" validate:"required,uuid"`
	Customer            CustomerRequest `json:"customer" validate:"required"`
	Items               json.RawMessage `json:"items" validate:"required" swaggertype:"object"`
	TotalAmount         decimal.Decimal `json:"totalAmount" swaggertype:"string" example:"349.50"`
	EstimatedPickupTime time.Time       `json:"estimatedPickupTime" validate:"required"`
}

// LocationRequest is a partner position.
type LocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude" example:"17.45"`
	Lng *float64 `json:"lng" validate:"required,longitude" example:"78.39"`
}

// UpdateStatusRequest moves a delivery forward.
type UpdateStatusRequest struct {
	Status                string           `json:"status" validate:"required" example:"PICKED_UP"`
	Location              *LocationRequest `json:"location,omitempty" validate:"omitempty"`
	EstimatedDeliveryTime *time.Time       `json:"estimatedDeliveryTime,omitempty"`
}

// PartnerResponse is the partner contact shown to customers.
type PartnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreateDeliveryResponse is returned once a partner was assigned.
type CreateDeliveryResponse struct {
	DeliveryID            string          `json:"deliveryId"`
	OrderID               string          `json:"orderId"`
	Status                string          `json:"status"`
	AssignedAt            time.Time       `json:"assignedAt"`
	EstimatedPickupTime   time.Time       `json:"estimatedPickupTime"`
	EstimatedDeliveryTime time.Time       `json:"estimatedDeliveryTime"`
	Partner               PartnerResponse `json:"partner"`
}

// DeliveryStatusResponse is the committed state after a status update.
type DeliveryStatusResponse struct {
	DeliveryID            string     `json:"deliveryId"`
	Status                string     `json:"status"`
	StatusChangedAt       time.Time  `json:"statusChangedAt"`
	EstimatedDeliveryTime time.Time  `json:"estimatedDeliveryTime"`
	PickedUpAt            *time.Time `json:"pickedUpAt,omitempty"`
	DeliveredAt           *time.Time `json:"deliveredAt,omitempty"`
	FailedAt              *time.Time `json:"failedAt,omitempty"`
	CancelledAt           *time.Time `json:"cancelledAt,omitempty"`
}

// TrackingLocationResponse is the last live position.
type TrackingLocationResponse struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackingResponse is the live state held by the tracking hub.
type TrackingResponse struct {
	Status                string                    `json:"status"`
	EstimatedDeliveryTime *time.Time                `json:"estimatedDeliveryTime,omitempty"`
	Location              *TrackingLocationResponse `json:"location,omitempty"`
	Subscribers           int                       `json:"subscribers"`
}

// GetDeliveryResponse combines the stored delivery with live tracking, when any.
type GetDeliveryResponse struct {
	Delivery queries.DeliveryView `json:"delivery"`
	Tracking *TrackingResponse    `json:"tracking,omitempty"`
}

// ErrorResponse is the body of every non-2xx response. Reason is a stable code
// clients can branch on.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Reason  string            `json:"reason"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}
