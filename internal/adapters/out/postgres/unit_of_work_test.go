package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"deliveryhub/internal/adapters/out/postgres"
	"deliveryhub/internal/adapters/out/postgres/partnerrepo"
	"deliveryhub/internal/adapters/out/postgres/testdb"
	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/errs"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type uowFactory struct {
	factory *postgres.GormUnitOfWorkFactory
}

func (f uowFactory) Create() commands.UoW {
	return f.factory.Create()
}

type nopPublisher struct{}

func (nopPublisher) DeliveryCreated(context.Context, ports.DeliveryCreated)             {}
func (nopPublisher) DeliveryStatusChanged(context.Context, ports.DeliveryStatusChanged) {}
func (nopPublisher) DeliveryUnassigned(context.Context, ports.DeliveryUnassigned)       {}

func addPartner(t *testing.T, db *gorm.DB, currentOrders int) *partner.Partner {
	t.Helper()
	p, err := partner.RestorePartner(partner.RestoreParams{
		ID:            kernel.NewUUID(),
		Name:          "Ravi",
		Phone:         "+919000000001",
		IsActive:      true,
		IsAvailable:   true,
		CurrentOrders: currentOrders,
	})
	require.NoError(t, err)
	require.NoError(t, partnerrepo.NewGormPartnerRepository(db).Add(t.Context(), p))
	return p
}

func assignCommand(t *testing.T) commands.AssignDeliveryCommand {
	t.Helper()
	customer, err := delivery.NewCustomer("Asha", "+919000000002", "12 Jubilee Hills, Hyderabad")
	require.NoError(t, err)
	cmd, err := commands.NewAssignDeliveryCommand(
		kernel.NewUUID(),
		kernel.NewUUID(),
		customer,
		json.RawMessage(`[]`),
		decimal.NewFromInt(250),
		time.Now().UTC().Add(15*time.Minute),
	)
	require.NoError(t, err)
	return cmd
}

func countDeliveries(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table("deliveries").Count(&n).Error)
	return n
}

func TestGormUnitOfWork_TransactionLifecycle(t *testing.T) {
	ctx := t.Context()
	uow := postgres.NewGormUnitOfWorkFactory(testdb.New(t)).Create()

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.Begin(ctx), "a second Begin reuses the transaction")
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Rollback(ctx), "rollback after commit is a no-op")

	require.ErrorIs(t, uow.Commit(ctx), gorm.ErrInvalidTransaction)
}

func TestGormUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	ctx := t.Context()
	db := testdb.New(t)
	p := addPartner(t, db, 0)
	uow := postgres.NewGormUnitOfWorkFactory(db).Create()

	require.NoError(t, uow.Begin(ctx))
	reserved, err := uow.PartnerRepository().ReserveCapacity(ctx, p.ID())
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, uow.Rollback(ctx))

	got, err := partnerrepo.NewGormPartnerRepository(db).Get(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentOrders())
}

func TestAssignDelivery_ConcurrentAssignmentsNeverExceedCapacity(t *testing.T) {
	ctx := t.Context()
	db := testdb.New(t)
	p := addPartner(t, db, 0)
	handler := commands.NewAssignDeliveryCommandHandler(
		uowFactory{factory: postgres.NewGormUnitOfWorkFactory(db)},
		nopPublisher{},
		nil,
		zerolog.Nop(),
	)

	const attempts = 10
	cmds := make([]commands.AssignDeliveryCommand, attempts)
	for i := range cmds {
		cmds[i] = assignCommand(t)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
		other     []error
	)
	for _, cmd := range cmds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := handler.Handle(ctx, cmd)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, commands.ErrNoPartnerAvailable):
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, partner.MaxConcurrentOrders, succeeded)
	assert.Equal(t, attempts-partner.MaxConcurrentOrders, rejected)
	assert.Equal(t, int64(partner.MaxConcurrentOrders), countDeliveries(t, db))

	got, err := partnerrepo.NewGormPartnerRepository(db).Get(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, partner.MaxConcurrentOrders, got.CurrentOrders())
}

func TestAssignDelivery_FillsLastSlotThenRejects(t *testing.T) {
	ctx := t.Context()
	db := testdb.New(t)
	p := addPartner(t, db, 2)
	handler := commands.NewAssignDeliveryCommandHandler(
		uowFactory{factory: postgres.NewGormUnitOfWorkFactory(db)},
		nopPublisher{},
		nil,
		zerolog.Nop(),
	)

	assigned, err := handler.Handle(ctx, assignCommand(t))
	require.NoError(t, err)
	assert.True(t, p.IsEqual(assigned.Partner))

	_, err = handler.Handle(ctx, assignCommand(t))
	require.ErrorIs(t, err, commands.ErrNoPartnerAvailable)
	assert.Equal(t, int64(1), countDeliveries(t, db))
}

func TestAssignDelivery_DuplicateOrderRollsBackReservation(t *testing.T) {
	ctx := t.Context()
	db := testdb.New(t)
	p := addPartner(t, db, 0)
	handler := commands.NewAssignDeliveryCommandHandler(
		uowFactory{factory: postgres.NewGormUnitOfWorkFactory(db)},
		nopPublisher{},
		nil,
		zerolog.Nop(),
	)
	cmd := assignCommand(t)

	_, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	_, err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectAlreadyExists)

	got, err := partnerrepo.NewGormPartnerRepository(db).Get(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentOrders(), "the losing reservation is rolled back with the delivery")
}

func TestUpdateDeliveryStatus_DeliveredTwiceReleasesOnce(t *testing.T) {
	ctx := t.Context()
	db := testdb.New(t)
	p := addPartner(t, db, 0)
	factory := uowFactory{factory: postgres.NewGormUnitOfWorkFactory(db)}
	assign := commands.NewAssignDeliveryCommandHandler(factory, nopPublisher{}, nil, zerolog.Nop())
	update := commands.NewUpdateDeliveryStatusCommandHandler(factory, nopPublisher{}, nil, nil, zerolog.Nop())

	assigned, err := assign.Handle(ctx, assignCommand(t))
	require.NoError(t, err)

	for _, status := range []string{"PICKED_UP", "DELIVERED", "DELIVERED"} {
		cmd, cmdErr := commands.NewUpdateDeliveryStatusCommand(assigned.Delivery.ID(), status, nil, nil)
		require.NoError(t, cmdErr)
		_, err = update.Handle(ctx, cmd)
		require.NoError(t, err)
	}

	got, err := partnerrepo.NewGormPartnerRepository(db).Get(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentOrders())
	assert.Equal(t, 1, got.TotalDeliveries())
}
