package commands

import (
	"errors"
	"fmt"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/services"
	"deliveryhub/internal/pkg/errs"
)

var (
	// ErrNoPartnerAvailable is returned when every partner is inactive, unavailable or full.
	// No delivery is created; the caller retries or queues the order.
	ErrNoPartnerAvailable = services.ErrNoPartnerAvailable

	// ErrInvalidStatusValue is returned for a status string outside the known set.
	ErrInvalidStatusValue = errors.New("invalid status value")

	// ErrInvalidStatusTransition is returned when a status change breaks the lifecycle.
	ErrInvalidStatusTransition = delivery.ErrInvalidStatusTransition

	// ErrDeliveryAlreadyExists is returned when the order already has a delivery.
	ErrDeliveryAlreadyExists = errs.ErrObjectAlreadyExists

	// ErrStorageFailure wraps persistence errors; nothing was committed and the live
	// tracking state was not touched.
	ErrStorageFailure = errors.New("storage failure")
)

// storageFailure tags unexpected persistence errors. Domain and lookup errors pass
// through unchanged so callers can still classify them.
func storageFailure(err error) error {
	if err == nil ||
		errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, errs.ErrObjectAlreadyExists) ||
		errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
