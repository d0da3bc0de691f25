package kafka

import (
	"context"
	"encoding/json"
	"time"

	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/events"

	"github.com/rs/zerolog"
)

// Publisher queues raw messages for a topic.
type Publisher interface {
	Publish(key, value []byte) bool
}

// EventPublisher writes delivery events to the delivery events topic, keyed by
// order id. It implements ports.DeliveryEventPublisher.
type EventPublisher struct {
	publisher Publisher
	producer  string
	logger    zerolog.Logger
}

// NewEventPublisher returns a publisher stamping producer into every envelope.
func NewEventPublisher(publisher Publisher, producer string, logger zerolog.Logger) *EventPublisher {
	return &EventPublisher{
		publisher: publisher,
		producer:  producer,
		logger:    logger.With().Str("component", "delivery-events").Logger(),
	}
}

func (p *EventPublisher) DeliveryCreated(_ context.Context, event ports.DeliveryCreated) {
	orderID := event.OrderID.String()
	p.publish(events.EventDeliveryCreated, orderID, event.OccurredAt, events.DeliveryCreatedPayload{
		DeliveryID: event.DeliveryID.String(),
		OrderID:    orderID,
		StoreID:    event.StoreID.String(),
		Partner: events.PartnerRef{
			ID:    event.PartnerID.String(),
			Name:  event.PartnerName,
			Phone: event.PartnerPhone,
		},
		Status:                event.Status.String(),
		EstimatedDeliveryTime: event.EstimatedDeliveryTime,
	})
}

func (p *EventPublisher) DeliveryStatusChanged(_ context.Context, event ports.DeliveryStatusChanged) {
	orderID := event.OrderID.String()
	payload := events.DeliveryStatusChangedPayload{
		DeliveryID:            event.DeliveryID.String(),
		OrderID:               orderID,
		PartnerID:             event.PartnerID.String(),
		PreviousStatus:        event.From.String(),
		Status:                event.Status.String(),
		EstimatedDeliveryTime: event.EstimatedDeliveryTime,
	}
	if event.Location != nil && event.LocationAt != nil {
		payload.Location = &events.LocationPayload{
			Lat:       event.Location.Lat(),
			Lng:       event.Location.Lng(),
			Timestamp: *event.LocationAt,
		}
	}
	p.publish(events.EventDeliveryStatusChanged, orderID, event.OccurredAt, payload)
}

func (p *EventPublisher) DeliveryUnassigned(_ context.Context, event ports.DeliveryUnassigned) {
	orderID := event.OrderID.String()
	p.publish(events.EventDeliveryUnassigned, orderID, event.OccurredAt, events.DeliveryUnassignedPayload{
		OrderID: orderID,
		StoreID: event.StoreID.String(),
		Reason:  event.Reason,
	})
}

func (p *EventPublisher) publish(eventType, orderID string, occurredAt time.Time, payload any) {
	env, err := events.NewEnvelope(eventType, p.producer, orderID, occurredAt, payload)
	if err != nil {
		p.logger.Error().Err(err).Str("eventType", eventType).Str("orderId", orderID).Msg("event not encoded")
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("eventType", eventType).Str("orderId", orderID).Msg("envelope not encoded")
		return
	}
	p.publisher.Publish([]byte(orderID), value)
}
