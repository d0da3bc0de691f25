// Package commands contains the write operations of the delivery service: assigning
// a partner to a confirmed order and advancing a delivery through its lifecycle.
// Every handler validates its command, runs inside one unit of work and publishes
// events only after the commit succeeded.
package commands

import (
	"context"

	"deliveryhub/internal/core/ports"
)

type (
	// TxManager handles the transaction lifecycle of a unit of work.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// DeliveryRepoFactory provides the delivery repository bound to the transaction.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// PartnerRepoFactory provides the partner repository bound to the transaction.
	PartnerRepoFactory interface {
		PartnerRepository() ports.PartnerRepository
	}

	// UoW spans both aggregates: a delivery and the capacity counter of its partner
	// always change together.
	//
	// Example:
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil { ... }
	//   defer func() { _ = uow.Rollback(ctx) }()
	//
	//   deliveries := uow.DeliveryRepository()
	//   partners := uow.PartnerRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DeliveryRepoFactory
		PartnerRepoFactory
	}

	// UoWFactory creates a unit of work per command.
	UoWFactory interface {
		Create() UoW
	}

	// CacheInvalidator drops cached read models of a delivery after it changed.
	CacheInvalidator interface {
		Invalidate(ctx context.Context, deliveryID string) error
	}
)
