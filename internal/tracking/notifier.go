package tracking

import (
	"context"

	"deliveryhub/internal/core/ports"

	"github.com/rs/zerolog"
)

// Notifier turns committed delivery events into hub updates. It implements
// ports.DeliveryEventPublisher.
type Notifier struct {
	hub    *Hub
	logger zerolog.Logger
}

func NewNotifier(hub *Hub, logger zerolog.Logger) *Notifier {
	return &Notifier{hub: hub, logger: logger.With().Str("component", "tracking-notifier").Logger()}
}

// DeliveryCreated announces the delivery to every connected client.
func (n *Notifier) DeliveryCreated(_ context.Context, event ports.DeliveryCreated) {
	n.hub.BroadcastAll(Message{Event: EventDeliveryCreated, Data: CreatedPayload{
		DeliveryID:            event.DeliveryID.String(),
		OrderID:               event.OrderID.String(),
		Status:                event.Status.String(),
		EstimatedDeliveryTime: event.EstimatedDeliveryTime,
		Partner: PartnerContact{
			Name:  event.PartnerName,
			Phone: event.PartnerPhone,
		},
	}})
}

// DeliveryStatusChanged forwards the position first, then the status, so a
// terminal status can drop the record without it being recreated by the position.
// Events are published after commit and may overtake each other; OccurredAt lets
// the hub drop the older one.
func (n *Notifier) DeliveryStatusChanged(_ context.Context, event ports.DeliveryStatusChanged) {
	id := event.DeliveryID.String()

	if event.Location != nil && event.LocationAt != nil {
		if err := n.hub.OnLocationUpdate("", id, *event.Location, *event.LocationAt); err != nil {
			n.logger.Warn().Err(err).Str("deliveryId", id).Msg("location not mirrored")
		}
	}

	if err := n.hub.OnStatusUpdateAt("", id, event.Status, event.EstimatedDeliveryTime, event.OccurredAt); err != nil {
		n.logger.Warn().Err(err).Str("deliveryId", id).Msg("status not mirrored")
	}
}

// DeliveryUnassigned has no live viewers: the order never got a delivery id.
func (n *Notifier) DeliveryUnassigned(_ context.Context, event ports.DeliveryUnassigned) {
	n.logger.Debug().Str("orderId", event.OrderID.String()).Str("reason", event.Reason).Msg("unassigned order not tracked")
}
