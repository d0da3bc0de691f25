package partner_test

import (
	"testing"
	"time"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createValidPartner(t *testing.T) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner(kernel.NewUUID(), "Ravi", "+919000000001")
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestNewPartner(t *testing.T) {
	t.Run("should create active available partner", func(t *testing.T) {
		id := kernel.NewUUID()

		p, err := partner.NewPartner(id, "  Ravi ", "+919000000001")

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.True(t, p.ID().IsEqual(id))
		assert.Equal(t, "Ravi", p.Name())
		assert.True(t, p.IsActive())
		assert.True(t, p.IsAvailable())
		assert.Zero(t, p.CurrentOrders())
		assert.Zero(t, p.TotalDeliveries())
		assert.Nil(t, p.LastLocation())
		assert.True(t, p.CanTakeOrder())
	})

	t.Run("should aggregate validation errors", func(t *testing.T) {
		p, err := partner.NewPartner(kernel.UUID{}, "", " ")

		require.Error(t, err)
		assert.Nil(t, p)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "name")
		assert.Contains(t, err.Error(), "phone")
		assert.Contains(t, err.Error(), kernel.ErrUUIDIsNotConstructed.Error())
	})
}

func TestRestorePartner(t *testing.T) {
	t.Run("should restore persisted state", func(t *testing.T) {
		loc, err := kernel.NewLocation(17.45, 78.39)
		require.NoError(t, err)
		at := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

		p, err := partner.RestorePartner(partner.RestoreParams{
			ID:              kernel.NewUUID(),
			Name:            "Ravi",
			Phone:           "+919000000001",
			IsActive:        true,
			IsAvailable:     false,
			CurrentOrders:   2,
			TotalDeliveries: 40,
			LastLocation:    &loc,
			LastLocationAt:  &at,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, p.CurrentOrders())
		assert.Equal(t, 40, p.TotalDeliveries())
		assert.False(t, p.CanTakeOrder())
		assert.Equal(t, at, *p.LastLocationAt())
	})

	t.Run("should reject counters outside the cap", func(t *testing.T) {
		_, err := partner.RestorePartner(partner.RestoreParams{
			ID:            kernel.NewUUID(),
			Name:          "Ravi",
			Phone:         "+919000000001",
			CurrentOrders: partner.MaxConcurrentOrders + 1,
		})

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject negative totals", func(t *testing.T) {
		_, err := partner.RestorePartner(partner.RestoreParams{
			ID:              kernel.NewUUID(),
			Name:            "Ravi",
			Phone:           "+919000000001",
			TotalDeliveries: -1,
		})

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestPartner_Validate(t *testing.T) {
	var p partner.Partner
	assert.Equal(t, partner.ErrPartnerIsNotConstructed, p.Validate())

	var nilPartner *partner.Partner
	assert.Equal(t, partner.ErrPartnerIsNotConstructed, nilPartner.Validate())
}

func TestPartner_TakeOrder(t *testing.T) {
	t.Run("should fill up to the cap and then refuse", func(t *testing.T) {
		p := createValidPartner(t)

		for range partner.MaxConcurrentOrders {
			require.NoError(t, p.TakeOrder())
		}

		assert.Equal(t, partner.MaxConcurrentOrders, p.CurrentOrders())
		assert.False(t, p.CanTakeOrder())
		require.ErrorIs(t, p.TakeOrder(), partner.ErrPartnerAtCapacity)
		assert.Equal(t, partner.MaxConcurrentOrders, p.CurrentOrders())
	})

	t.Run("should refuse when unavailable", func(t *testing.T) {
		p := restorePartner(t, true, false)

		require.ErrorIs(t, p.TakeOrder(), partner.ErrPartnerUnavailable)
		assert.Zero(t, p.CurrentOrders())
	})

	t.Run("should refuse when inactive", func(t *testing.T) {
		p := restorePartner(t, false, true)

		assert.False(t, p.CanTakeOrder())
		require.ErrorIs(t, p.TakeOrder(), partner.ErrPartnerUnavailable)
	})
}

func TestPartner_ReleaseOrder(t *testing.T) {
	p := createValidPartner(t)
	require.NoError(t, p.TakeOrder())

	assert.True(t, p.ReleaseOrder())
	assert.Zero(t, p.CurrentOrders())

	assert.False(t, p.ReleaseOrder(), "release below zero must be clamped")
	assert.Zero(t, p.CurrentOrders())
}

func TestPartner_CompleteDelivery(t *testing.T) {
	p := createValidPartner(t)
	require.NoError(t, p.TakeOrder())

	assert.True(t, p.CompleteDelivery())
	assert.Zero(t, p.CurrentOrders())
	assert.Equal(t, 1, p.TotalDeliveries())

	assert.False(t, p.CompleteDelivery())
	assert.Zero(t, p.CurrentOrders())
	assert.Equal(t, 2, p.TotalDeliveries())
}

func TestPartner_UpdateLocation(t *testing.T) {
	p := createValidPartner(t)
	loc, err := kernel.NewLocation(17.45, 78.39)
	require.NoError(t, err)
	at := time.Now().UTC()

	require.NoError(t, p.UpdateLocation(loc, at))
	assert.True(t, p.LastLocation().IsEqual(loc))
	assert.Equal(t, at, *p.LastLocationAt())

	require.ErrorIs(t, p.UpdateLocation(kernel.Location{}, at), errs.ErrValueIsRequired)
	require.ErrorIs(t, p.UpdateLocation(loc, time.Time{}), errs.ErrValueIsRequired)
}

func restorePartner(t *testing.T, active, available bool) *partner.Partner {
	t.Helper()
	p, err := partner.RestorePartner(partner.RestoreParams{
		ID:          kernel.NewUUID(),
		Name:        "Ravi",
		Phone:       "+919000000001",
		IsActive:    active,
		IsAvailable: available,
	})
	require.NoError(t, err)
	return p
}
