package commands_test

import (
	"context"
	"sync"
	"time"

	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockPartnerRepository struct{ mock.Mock }

func (m *MockPartnerRepository) Add(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Get(ctx context.Context, id kernel.UUID) (*partner.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindEligibleForUpdate(ctx context.Context, limit int) ([]*partner.Partner, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) ReserveCapacity(ctx context.Context, id kernel.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartnerRepository) ReleaseCapacity(ctx context.Context, id kernel.UUID, completed bool) (bool, error) {
	args := m.Called(ctx, id, completed)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartnerRepository) UpdateLocation(
	ctx context.Context, id kernel.UUID, location kernel.Location, at time.Time,
) error {
	args := m.Called(ctx, id, location, at)
	return args.Error(0)
}

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) PartnerRepository() ports.PartnerRepository {
	args := m.Called()
	return args.Get(0).(ports.PartnerRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockCacheInvalidator struct{ mock.Mock }

func (m *MockCacheInvalidator) Invalidate(ctx context.Context, deliveryID string) error {
	args := m.Called(ctx, deliveryID)
	return args.Error(0)
}

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	mu         sync.Mutex
	created    []ports.DeliveryCreated
	changed    []ports.DeliveryStatusChanged
	unassigned []ports.DeliveryUnassigned
}

func (p *recordingPublisher) DeliveryCreated(_ context.Context, event ports.DeliveryCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
}

func (p *recordingPublisher) DeliveryStatusChanged(_ context.Context, event ports.DeliveryStatusChanged) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, event)
}

func (p *recordingPublisher) DeliveryUnassigned(_ context.Context, event ports.DeliveryUnassigned) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unassigned = append(p.unassigned, event)
}
