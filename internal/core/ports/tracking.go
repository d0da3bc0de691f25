package ports

import (
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
)

// LocationReading is a partner position with the time the partner reported it.
type LocationReading struct {
	Location  kernel.Location
	Timestamp time.Time
}

// TrackingSnapshot is a copy of the live tracking state of one delivery.
type TrackingSnapshot struct {
	DeliveryID            string
	Status                delivery.Status
	EstimatedDeliveryTime *time.Time
	Location              *LocationReading
	Subscribers           int
}

// TrackingReader exposes the live tracking state kept in memory.
type TrackingReader interface {
	GetDeliveryStatus(deliveryID string) (TrackingSnapshot, bool)
}
