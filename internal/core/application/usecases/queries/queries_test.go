package queries_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"deliveryhub/internal/adapters/out/postgres/deliveryrepo"
	"deliveryhub/internal/adapters/out/postgres/partnerrepo"
	"deliveryhub/internal/adapters/out/postgres/testdb"
	"deliveryhub/internal/core/application/usecases/queries"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mapCache struct {
	mu      sync.Mutex
	views   map[string]queries.DeliveryView
	gets    int
	sets    int
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{views: make(map[string]queries.DeliveryView)}
}

func (c *mapCache) Get(_ context.Context, id string) (queries.DeliveryView, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return queries.DeliveryView{}, false, errors.New("cache unavailable")
	}
	view, ok := c.views[id]
	return view, ok, nil
}

func (c *mapCache) Set(_ context.Context, view queries.DeliveryView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.views[view.ID] = view
	return nil
}

type stubTracking map[string]ports.TrackingSnapshot

func (s stubTracking) GetDeliveryStatus(id string) (ports.TrackingSnapshot, bool) {
	snapshot, ok := s[id]
	return snapshot, ok
}

type fixture struct {
	db      *gorm.DB
	partner *partner.Partner
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testdb.New(t)
	p, err := partner.NewPartner(kernel.NewUUID(), "Ravi", "+919000000001")
	require.NoError(t, err)
	require.NoError(t, partnerrepo.NewGormPartnerRepository(db).Add(t.Context(), p))
	return fixture{db: db, partner: p}
}

func (f fixture) addDelivery(t *testing.T, assignedAt time.Time, status delivery.Status) *delivery.Delivery {
	t.Helper()
	customer, err := delivery.NewCustomer("Asha", "+919000000002", "12 Jubilee Hills, Hyderabad")
	require.NoError(t, err)

	d, err := delivery.NewDelivery(delivery.NewParams{
		ID:                  kernel.NewUUID(),
		OrderID:             kernel.NewUUID(),
		StoreID:             kernel.NewUUID(),
		PartnerID:           f.partner.ID(),
		Customer:            customer,
		Items:               json.RawMessage(`[{"sku":"paneer-200g","qty":1}]`),
		TotalAmount:         decimal.RequireFromString("180.00"),
		EstimatedPickupTime: assignedAt.Add(10 * time.Minute),
		AssignedAt:          assignedAt,
	})
	require.NoError(t, err)

	at := assignedAt.Add(time.Minute)
	for _, step := range pathTo(status) {
		_, err = d.ChangeStatus(step, at)
		require.NoError(t, err)
		at = at.Add(time.Minute)
	}
	require.NoError(t, deliveryrepo.NewGormDeliveryRepository(f.db).Add(t.Context(), d))
	return d
}

func pathTo(status delivery.Status) []delivery.Status {
	switch status {
	case delivery.PickedUp:
		return []delivery.Status{delivery.PickedUp}
	case delivery.Delivered:
		return []delivery.Status{delivery.PickedUp, delivery.Delivered}
	case delivery.Cancelled:
		return []delivery.Status{delivery.Cancelled}
	default:
		return nil
	}
}
