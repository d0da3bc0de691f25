package ports

import (
	"context"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
)

// DeliveryCreated is emitted once a delivery and its capacity reservation are committed.
type DeliveryCreated struct {
	DeliveryID            kernel.UUID
	OrderID               kernel.UUID
	StoreID               kernel.UUID
	PartnerID             kernel.UUID
	PartnerName           string
	PartnerPhone          string
	Status                delivery.Status
	EstimatedDeliveryTime time.Time
	OccurredAt            time.Time
}

// DeliveryStatusChanged is emitted after a status update is committed.
// Location is set only when the update carried a position.
type DeliveryStatusChanged struct {
	DeliveryID            kernel.UUID
	OrderID               kernel.UUID
	PartnerID             kernel.UUID
	From                  delivery.Status
	Status                delivery.Status
	EstimatedDeliveryTime *time.Time
	Location              *kernel.Location
	LocationAt            *time.Time
	OccurredAt            time.Time
}

// DeliveryUnassigned is emitted when a confirmed order found no partner.
type DeliveryUnassigned struct {
	OrderID    kernel.UUID
	StoreID    kernel.UUID
	Reason     string
	OccurredAt time.Time
}

// DeliveryEventPublisher fans delivery events out to live viewers and downstream
// services. Publishing is fire-and-forget: implementations log failures and never
// block the caller on slow consumers.
type DeliveryEventPublisher interface {
	DeliveryCreated(ctx context.Context, event DeliveryCreated)
	DeliveryStatusChanged(ctx context.Context, event DeliveryStatusChanged)
	DeliveryUnassigned(ctx context.Context, event DeliveryUnassigned)
}
