package delivery_test

import (
	"testing"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want delivery.Status
	}{
		{"ASSIGNED", delivery.Assigned},
		{"ON_THE_WAY_TO_STORE", delivery.OnTheWayToStore},
		{"ARRIVED_AT_STORE", delivery.ArrivedAtStore},
		{"PICKED_UP", delivery.PickedUp},
		{"ON_THE_WAY", delivery.OnTheWay},
		{"ARRIVED", delivery.Arrived},
		{"DELIVERED", delivery.Delivered},
		{"FAILED", delivery.Failed},
		{"CANCELLED", delivery.Cancelled},
		{" picked_up ", delivery.PickedUp},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := delivery.ParseStatus(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown values are rejected", func(t *testing.T) {
		for _, in := range []string{"", "UNKNOWN", "LOST", "PICKEDUP"} {
			_, err := delivery.ParseStatus(in)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, in)
		}
	})
}

func TestStatus_StringRoundTrip(t *testing.T) {
	for s := delivery.Assigned; s <= delivery.Cancelled; s++ {
		parsed, err := delivery.ParseStatus(s.String())

		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	assert.Equal(t, "UNKNOWN", delivery.Status(42).String())
	require.Error(t, delivery.Unknown.Validate())
	require.Error(t, delivery.Status(42).Validate())
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := map[delivery.Status]bool{
		delivery.Delivered: true,
		delivery.Failed:    true,
		delivery.Cancelled: true,
	}

	for s := delivery.Assigned; s <= delivery.Cancelled; s++ {
		assert.Equal(t, terminal[s], s.IsTerminal(), s.String())
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to delivery.Status }{
		{delivery.Assigned, delivery.OnTheWayToStore},
		{delivery.Assigned, delivery.ArrivedAtStore},
		{delivery.Assigned, delivery.PickedUp},
		{delivery.OnTheWayToStore, delivery.ArrivedAtStore},
		{delivery.OnTheWayToStore, delivery.PickedUp},
		{delivery.ArrivedAtStore, delivery.PickedUp},
		{delivery.PickedUp, delivery.OnTheWay},
		{delivery.PickedUp, delivery.Arrived},
		{delivery.PickedUp, delivery.Delivered},
		{delivery.OnTheWay, delivery.Arrived},
		{delivery.OnTheWay, delivery.Delivered},
		{delivery.Arrived, delivery.Delivered},
		{delivery.Assigned, delivery.Cancelled},
		{delivery.Arrived, delivery.Failed},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	forbidden := []struct{ from, to delivery.Status }{
		{delivery.PickedUp, delivery.Assigned},
		{delivery.OnTheWay, delivery.ArrivedAtStore},
		{delivery.Assigned, delivery.OnTheWay},
		{delivery.Assigned, delivery.Delivered},
		{delivery.ArrivedAtStore, delivery.Arrived},
		{delivery.Delivered, delivery.Failed},
		{delivery.Failed, delivery.Delivered},
		{delivery.Cancelled, delivery.Assigned},
		{delivery.PickedUp, delivery.PickedUp},
		{delivery.Unknown, delivery.Assigned},
		{delivery.Assigned, delivery.Unknown},
	}
	for _, tc := range forbidden {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatus_TransitionTo(t *testing.T) {
	next, err := delivery.PickedUp.TransitionTo(delivery.OnTheWay)
	require.NoError(t, err)
	assert.Equal(t, delivery.OnTheWay, next)

	same, err := delivery.Delivered.TransitionTo(delivery.Assigned)
	require.ErrorIs(t, err, delivery.ErrInvalidStatusTransition)
	assert.Equal(t, delivery.Delivered, same)
	assert.Contains(t, err.Error(), "DELIVERED -> ASSIGNED")
}
