package tracking_test

import (
	"testing"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/tracking"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliveryCreatedIsBroadcast(t *testing.T) {
	hub := newHub(newClock())
	conn := newConn("c")
	hub.OnConnect(conn)
	notifier := tracking.NewNotifier(hub, zerolog.Nop())
	eta := time.Date(2026, 3, 1, 12, 45, 0, 0, time.UTC)
	event := ports.DeliveryCreated{
		DeliveryID:            kernel.NewUUID(),
		OrderID:               kernel.NewUUID(),
		PartnerName:           "Ravi",
		PartnerPhone:          "+919000000001",
		Status:                delivery.Assigned,
		EstimatedDeliveryTime: eta,
	}

	notifier.DeliveryCreated(t.Context(), event)

	got := conn.received()
	require.Len(t, got, 1)
	assert.Equal(t, tracking.EventDeliveryCreated, got[0].Event)
	payload := got[0].Data.(tracking.CreatedPayload)
	assert.Equal(t, event.DeliveryID.String(), payload.DeliveryID)
	assert.Equal(t, "ASSIGNED", payload.Status)
	assert.Equal(t, tracking.PartnerContact{Name: "Ravi", Phone: "+919000000001"}, payload.Partner)
	assert.Equal(t, tracking.Stats{Connections: 1}, hub.Stats(), "no record is created for untracked deliveries")
}

func TestNotifier_StatusChangedMirrorsLocationThenStatus(t *testing.T) {
	clock := newClock()
	hub := newHub(clock)
	conn := newConn("c")
	hub.OnConnect(conn)
	id := kernel.NewUUID()
	require.NoError(t, hub.Subscribe("c", id.String()))
	notifier := tracking.NewNotifier(hub, zerolog.Nop())
	loc := location(t, 17.45, 78.39)
	at := clock.Now()

	notifier.DeliveryStatusChanged(t.Context(), ports.DeliveryStatusChanged{
		DeliveryID: id,
		From:       delivery.ArrivedAtStore,
		Status:     delivery.PickedUp,
		Location:   &loc,
		LocationAt: &at,
	})

	got := conn.received()
	require.Len(t, got, 3)
	assert.Equal(t, tracking.EventPartnerLocation, got[1].Event)
	assert.Equal(t, tracking.EventDeliveryStatus, got[2].Event)
	snapshot, ok := hub.GetDeliveryStatus(id.String())
	require.True(t, ok)
	assert.Equal(t, delivery.PickedUp, snapshot.Status)
}

func TestNotifier_TerminalStatusWithoutViewersLeavesNoRecord(t *testing.T) {
	clock := newClock()
	hub := newHub(clock)
	notifier := tracking.NewNotifier(hub, zerolog.Nop())
	loc := location(t, 17.45, 78.39)
	at := clock.Now()
	id := kernel.NewUUID()

	notifier.DeliveryStatusChanged(t.Context(), ports.DeliveryStatusChanged{
		DeliveryID: id,
		Status:     delivery.Delivered,
		Location:   &loc,
		LocationAt: &at,
	})

	_, ok := hub.GetDeliveryStatus(id.String())
	assert.False(t, ok)
}

func TestNotifier_OutOfOrderEventsKeepTheLatestStatus(t *testing.T) {
	clock := newClock()
	hub := newHub(clock)
	notifier := tracking.NewNotifier(hub, zerolog.Nop())
	id := kernel.NewUUID()
	customer := newConn("customer")
	hub.OnConnect(customer)
	require.NoError(t, hub.Subscribe("customer", id.String()))

	notifier.DeliveryStatusChanged(t.Context(), ports.DeliveryStatusChanged{
		DeliveryID: id,
		From:       delivery.PickedUp,
		Status:     delivery.OnTheWay,
		OccurredAt: clock.Now().Add(2 * time.Second),
	})
	notifier.DeliveryStatusChanged(t.Context(), ports.DeliveryStatusChanged{
		DeliveryID: id,
		From:       delivery.ArrivedAtStore,
		Status:     delivery.PickedUp,
		OccurredAt: clock.Now().Add(time.Second),
	})

	snapshot, ok := hub.GetDeliveryStatus(id.String())
	require.True(t, ok)
	assert.Equal(t, delivery.OnTheWay, snapshot.Status)
}
