package ports

import (
	"context"
	"time"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
)

// PartnerRepository persists delivery partners. Counter changes are expressed as
// atomic conditional updates so concurrent transactions cannot push current_orders
// outside [0, partner.MaxConcurrentOrders].
type PartnerRepository interface {
	// Add stores a new partner.
	Add(ctx context.Context, p *partner.Partner) error

	// Get returns the partner or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*partner.Partner, error)

	// FindEligibleForUpdate returns up to limit active, available partners below the
	// cap, ordered by id and row-locked for the rest of the transaction.
	FindEligibleForUpdate(ctx context.Context, limit int) ([]*partner.Partner, error)

	// ReserveCapacity increments current_orders if the partner is still below the cap.
	// It returns false when the slot was taken by a concurrent transaction.
	ReserveCapacity(ctx context.Context, id kernel.UUID) (bool, error)

	// ReleaseCapacity decrements current_orders, never below zero, and increments
	// total_deliveries when completed is true. It returns false when the decrement
	// had to be clamped.
	ReleaseCapacity(ctx context.Context, id kernel.UUID, completed bool) (bool, error)

	// UpdateLocation stores the last known position of the partner.
	UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location, at time.Time) error
}
