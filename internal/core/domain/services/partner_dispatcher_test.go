package services_test

import (
	"testing"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPartner(t *testing.T, name string, currentOrders int, available bool) *partner.Partner {
	t.Helper()
	p, err := partner.RestorePartner(partner.RestoreParams{
		ID:            kernel.NewUUID(),
		Name:          name,
		Phone:         "+91900000000" + name[:1],
		IsActive:      true,
		IsAvailable:   available,
		CurrentOrders: currentOrders,
	})
	require.NoError(t, err)
	return p
}

func TestPartnerDispatcher_Dispatch(t *testing.T) {
	dispatcher := services.NewPartnerDispatcher()

	t.Run("should pick the first eligible candidate", func(t *testing.T) {
		full := newPartner(t, "Full", partner.MaxConcurrentOrders, true)
		off := newPartner(t, "Off", 0, false)
		first := newPartner(t, "First", 1, true)
		second := newPartner(t, "Second", 0, true)

		chosen, err := dispatcher.Dispatch([]*partner.Partner{full, off, first, second})

		require.NoError(t, err)
		assert.True(t, chosen.IsEqual(first), "no ranking: input order wins over lower load")
		assert.Equal(t, 2, chosen.CurrentOrders())
		assert.Equal(t, 0, second.CurrentOrders())
	})

	t.Run("partner at two takes a third and is then full", func(t *testing.T) {
		p := newPartner(t, "Ravi", 2, true)

		chosen, err := dispatcher.Dispatch([]*partner.Partner{p})
		require.NoError(t, err)
		assert.Equal(t, partner.MaxConcurrentOrders, chosen.CurrentOrders())

		_, err = dispatcher.Dispatch([]*partner.Partner{p})
		require.ErrorIs(t, err, services.ErrNoPartnerAvailable)
		assert.Equal(t, partner.MaxConcurrentOrders, p.CurrentOrders())
	})

	t.Run("should report no partner for empty candidates", func(t *testing.T) {
		_, err := dispatcher.Dispatch(nil)

		require.ErrorIs(t, err, services.ErrNoPartnerAvailable)
	})

	t.Run("should reject partners built without a constructor", func(t *testing.T) {
		_, err := dispatcher.Dispatch([]*partner.Partner{{}})

		require.ErrorIs(t, err, partner.ErrPartnerIsNotConstructed)
	})
}
