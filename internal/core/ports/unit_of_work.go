package ports

import (
	"context"
)

// UnitOfWorkFactory creates a UnitOfWork per command so concurrent commands never
// share a transaction.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is the transaction boundary of a command. Repositories obtained from it
// run inside the transaction opened by Begin.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit returns an error if no transaction is active or the commit fails.
	Commit(ctx context.Context) error

	// Rollback is a no-op after a successful Commit.
	Rollback(ctx context.Context) error

	DeliveryRepository() DeliveryRepository

	PartnerRepository() PartnerRepository
}
