package ports

import (
	"context"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
)

// DeliveryRepository persists Delivery aggregates.
type DeliveryRepository interface {
	// Add stores a new delivery. A second delivery for the same order returns
	// errs.ObjectAlreadyExistsError.
	Add(ctx context.Context, d *delivery.Delivery) error

	// Update writes the mutable state of the delivery.
	Update(ctx context.Context, d *delivery.Delivery) error

	// Get returns the delivery or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetForUpdate is Get with the row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)
}
