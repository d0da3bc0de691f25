package commands

import (
	"context"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// UpdateDeliveryStatusCommandHandler advances a delivery and keeps the partner's
// counters in step with it.
//
// Business rules:
//   - PICKED_UP stamps pickedUpAt
//   - DELIVERED stamps deliveredAt, releases the partner's slot and counts the delivery
//   - FAILED and CANCELLED release the slot if it is still held
//   - re-applying a terminal status is a no-op, so retries never release twice
//   - illegal transitions are rejected with ErrInvalidStatusTransition
//
// Live viewers and downstream consumers are notified only after the commit.
type UpdateDeliveryStatusCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.DeliveryEventPublisher
	cache      CacheInvalidator
	metrics    *metrics.AssignmentMetrics
	logger     zerolog.Logger
}

// NewUpdateDeliveryStatusCommandHandler wires the handler. cache may be nil.
func NewUpdateDeliveryStatusCommandHandler(
	uowFactory UoWFactory,
	publisher ports.DeliveryEventPublisher,
	cache CacheInvalidator,
	assignmentMetrics *metrics.AssignmentMetrics,
	logger zerolog.Logger,
) UpdateDeliveryStatusCommandHandler {
	return UpdateDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		cache:      cache,
		metrics:    assignmentMetrics,
		logger:     logger.With().Str("component", "update-delivery-status").Logger(),
	}
}

// Handle applies the command and returns the delivery as committed.
//
// Returns:
//   - errs.ObjectNotFoundError when the delivery does not exist
//   - ErrInvalidStatusTransition for a move the lifecycle forbids
//   - an error wrapping ErrStorageFailure when persistence fails
func (h UpdateDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	command UpdateDeliveryStatusCommand,
) (*delivery.Delivery, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	d, change, err := h.apply(ctx, command)
	if err != nil {
		return nil, err
	}
	if d.Status().IsTerminal() && !change.Changed {
		return d, nil
	}

	if h.cache != nil {
		if err = h.cache.Invalidate(ctx, d.ID().String()); err != nil {
			h.logger.Warn().Err(err).Str("deliveryId", d.ID().String()).Msg("delivery cache invalidation failed")
		}
	}

	event := ports.DeliveryStatusChanged{
		DeliveryID:            d.ID(),
		OrderID:               d.OrderID(),
		PartnerID:             d.PartnerID(),
		From:                  change.From,
		Status:                d.Status(),
		EstimatedDeliveryTime: command.EstimatedDeliveryTime(),
		Location:              command.Location(),
		OccurredAt:            d.StatusChangedAt(),
	}
	if command.Location() != nil {
		event.LocationAt = d.LocationUpdatedAt()
	}
	h.publisher.DeliveryStatusChanged(ctx, event)

	return d, nil
}

func (h UpdateDeliveryStatusCommandHandler) apply(
	ctx context.Context,
	command UpdateDeliveryStatusCommand,
) (*delivery.Delivery, delivery.StatusChange, error) {
	var change delivery.StatusChange

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, change, storageFailure(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveries := uow.DeliveryRepository()
	partners := uow.PartnerRepository()

	d, err := deliveries.GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return nil, change, storageFailure(err)
	}
	// Read the clock under the row lock so timestamps follow the commit order.
	now := time.Now().UTC()

	if d.Status().IsTerminal() {
		change, err = d.ChangeStatus(command.Status(), now)
		return d, change, err
	}

	if loc := command.Location(); loc != nil {
		if err = d.UpdateLocation(*loc, now); err != nil {
			return nil, change, err
		}
	}
	if eta := command.EstimatedDeliveryTime(); eta != nil {
		if err = d.SetEstimatedDeliveryTime(*eta); err != nil {
			return nil, change, err
		}
	}

	change, err = d.ChangeStatus(command.Status(), now)
	if err != nil {
		return nil, change, err
	}

	if change.ReleaseCapacity {
		if err = h.releaseCapacity(ctx, partners, d, change); err != nil {
			return nil, change, err
		}
	}

	if loc := command.Location(); loc != nil {
		if err = partners.UpdateLocation(ctx, d.PartnerID(), *loc, now); err != nil {
			return nil, change, storageFailure(err)
		}
	}

	if err = deliveries.Update(ctx, d); err != nil {
		return nil, change, storageFailure(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, change, storageFailure(err)
	}

	return d, change, nil
}

func (h UpdateDeliveryStatusCommandHandler) releaseCapacity(
	ctx context.Context,
	partners ports.PartnerRepository,
	d *delivery.Delivery,
	change delivery.StatusChange,
) error {
	released, err := partners.ReleaseCapacity(ctx, d.PartnerID(), change.Completed)
	if err != nil {
		return storageFailure(err)
	}

	reason := metrics.ReleaseReasonAbort
	if change.Completed {
		reason = metrics.ReleaseReasonDone
	}
	h.metrics.IncRelease(reason)

	if !released {
		h.metrics.IncClamped()
		h.logger.Warn().
			Str("deliveryId", d.ID().String()).
			Str("partnerId", d.PartnerID().String()).
			Str("status", change.To.String()).
			Msg("partner current orders already at zero, release clamped")
	}
	return nil
}
