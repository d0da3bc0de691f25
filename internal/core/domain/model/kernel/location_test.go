package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/pkg/errs"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "hyderabad", lat: 17.45, lng: 78.39},
		{name: "min bounds", lat: kernel.MinLatitude, lng: kernel.MinLongitude},
		{name: "max bounds", lat: kernel.MaxLatitude, lng: kernel.MaxLongitude},
		{name: "latitude too small", lat: -90.01, lng: 0, wantErr: true},
		{name: "latitude too large", lat: 90.01, lng: 0, wantErr: true},
		{name: "longitude too small", lat: 0, lng: -180.5, wantErr: true},
		{name: "longitude too large", lat: 0, lng: 180.5, wantErr: true},
		{name: "NaN latitude", lat: math.NaN(), lng: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.lat, tt.lng)

			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				return
			}

			require.NoError(t, err)
			require.NoError(t, loc.Validate())
			assert.InDelta(t, tt.lat, loc.Lat(), 1e-9)
			assert.InDelta(t, tt.lng, loc.Lng(), 1e-9)
		})
	}
}

func TestLocation_BothCoordinatesInvalid(t *testing.T) {
	_, err := kernel.NewLocation(100, 200)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lat")
	assert.Contains(t, err.Error(), "lng")
}

func TestLocation_Validate(t *testing.T) {
	var zero kernel.Location

	assert.Equal(t, kernel.ErrLocationIsNotConstructed, zero.Validate())
}

func TestLocation_IsEqualAndString(t *testing.T) {
	a, err := kernel.NewLocation(17.45, 78.39)
	require.NoError(t, err)
	b, err := kernel.NewLocation(17.45, 78.39)
	require.NoError(t, err)
	c, err := kernel.NewLocation(17.46, 78.39)
	require.NoError(t, err)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
	assert.Equal(t, "Location(17.450000,78.390000)", a.String())
}
