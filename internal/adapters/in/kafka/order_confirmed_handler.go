package kafka

import (
	"context"
	"errors"
	"fmt"

	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/events"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// DedupScopeOrderConfirmed namespaces the processed order-confirmed event ids.
const DedupScopeOrderConfirmed = "order-confirmed"

// Reasons attached to DeliveryUnassigned events.
const (
	ReasonNoPartnerAvailable = "NO_PARTNER_AVAILABLE"
	ReasonAssignmentFailed   = "ASSIGNMENT_FAILED"
)

// AssignDeliveryHandler is satisfied by commands.AssignDeliveryCommandHandler.
type AssignDeliveryHandler interface {
	Handle(ctx context.Context, command commands.AssignDeliveryCommand) (commands.AssignedDelivery, error)
}

// Deduplicator remembers which events were already handled.
type Deduplicator interface {
	Seen(ctx context.Context, scope, eventID string) (bool, error)
	Mark(ctx context.Context, scope, eventID string) error
}

// OrderConfirmedHandler assigns a partner to every confirmed order exactly once.
//
// Malformed events are logged and committed. A redelivered event id is skipped.
// The event id is recorded only after the outcome is durable; the unique order
// index catches a redelivery that slips past a lost record. When no partner is
// available a DeliveryUnassigned event is published so the order service can
// retry or escalate; an order that already has a delivery is treated as done.
// Storage failures are returned so the consumer retries, and Exhausted reports
// the order as unassigned once it gives up.
type OrderConfirmedHandler struct {
	assign    AssignDeliveryHandler
	dedup     Deduplicator
	publisher ports.DeliveryEventPublisher
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewOrderConfirmedHandler(
	assign AssignDeliveryHandler,
	dedup Deduplicator,
	publisher ports.DeliveryEventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) *OrderConfirmedHandler {
	return &OrderConfirmedHandler{
		assign:    assign,
		dedup:     dedup,
		publisher: publisher,
		validate:  validate,
		logger:    logger.With().Str("component", "order-confirmed-handler").Logger(),
	}
}

func (h *OrderConfirmedHandler) Handle(ctx context.Context, msg kafka.Message) error {
	env, err := events.Decode(msg.Value)
	if err != nil {
		h.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("malformed envelope dropped")
		return nil
	}
	if env.EventType != events.EventOrderConfirmed {
		h.logger.Debug().Str("eventType", env.EventType).Msg("event ignored")
		return nil
	}

	log := h.logger.With().Str("eventId", env.EventID).Str("correlationId", env.CorrelationID).Logger()

	seen, err := h.dedup.Seen(ctx, DedupScopeOrderConfirmed, env.EventID)
	if err != nil {
		return err
	}
	if seen {
		log.Info().Msg("duplicate event skipped")
		return nil
	}

	command, err := h.command(env)
	if err != nil {
		log.Warn().Err(err).Msg("invalid order-confirmed payload dropped")
		return nil
	}

	_, err = h.assign.Handle(ctx, command)
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrDeliveryAlreadyExists):
		log.Info().Str("orderId", command.OrderID().String()).Msg("order already has a delivery")
	case errors.Is(err, commands.ErrNoPartnerAvailable):
		h.unassigned(ctx, command, ReasonNoPartnerAvailable, env)
	default:
		return err
	}

	if err = h.dedup.Mark(ctx, DedupScopeOrderConfirmed, env.EventID); err != nil {
		log.Warn().Err(err).Msg("handled event not recorded")
	}
	return nil
}

// Exhausted is the consumer's give-up hook. The order never got a delivery, so
// the order service hears about it the same way as when no partner is free.
func (h *OrderConfirmedHandler) Exhausted(ctx context.Context, msg kafka.Message, cause error) {
	env, err := events.Decode(msg.Value)
	if err != nil || env.EventType != events.EventOrderConfirmed {
		return
	}
	command, err := h.command(env)
	if err != nil {
		return
	}

	h.logger.Error().Err(cause).
		Str("eventId", env.EventID).
		Str("orderId", command.OrderID().String()).
		Msg("order left unassigned after retries")
	h.unassigned(ctx, command, ReasonAssignmentFailed, env)
}

func (h *OrderConfirmedHandler) unassigned(ctx context.Context, command commands.AssignDeliveryCommand, reason string, env events.Envelope) {
	h.publisher.DeliveryUnassigned(ctx, ports.DeliveryUnassigned{
		OrderID:    command.OrderID(),
		StoreID:    command.StoreID(),
		Reason:     reason,
		OccurredAt: env.OccurredAt,
	})
}

func (h *OrderConfirmedHandler) command(env events.Envelope) (commands.AssignDeliveryCommand, error) {
	payload, err := events.UnwrapPayload[events.OrderConfirmedPayload](env)
	if err != nil {
		return commands.AssignDeliveryCommand{}, err
	}
	if err := h.validate.Struct(payload); err != nil {
		return commands.AssignDeliveryCommand{}, err
	}

	orderID, err := kernel.UUIDFromString(payload.OrderID)
	if err != nil {
		return commands.AssignDeliveryCommand{}, fmt.Errorf("order_id: %w", err)
	}
	storeID, err := kernel.UUIDFromString(payload.StoreID)
	if err != nil {
		return commands.AssignDeliveryCommand{}, fmt.Errorf("store_id: %w", err)
	}
	amount, err := decimal.NewFromString(payload.TotalAmount)
	if err != nil {
		return commands.AssignDeliveryCommand{}, fmt.Errorf("total_amount: %w", err)
	}
	customer, err := delivery.NewCustomer(payload.Customer.Name, payload.Customer.Phone, payload.Customer.Address)
	if err != nil {
		return commands.AssignDeliveryCommand{}, err
	}

	return commands.NewAssignDeliveryCommand(orderID, storeID, customer, payload.Items, amount, payload.EstimatedPickupTime)
}
