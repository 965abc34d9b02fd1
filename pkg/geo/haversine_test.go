package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_SamePoint(t *testing.T) {
	d, err := DistanceKm(9.03, 38.74, 9.03, 38.74)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDistanceKm_Symmetry(t *testing.T) {
	d1, err := DistanceKm(9.03, 38.74, 55.75, 37.62)
	require.NoError(t, err)
	d2, err := DistanceKm(55.75, 37.62, 9.03, 38.74)
	require.NoError(t, err)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceKm_KnownPairs(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		expectedKm float64
	}{
		{
			name: "один градус широты на экваторе",
			lat1: 0.0, lon1: 0.0,
			lat2: 1.0, lon2: 0.0,
			expectedKm: 111.2,
		},
		{
			name: "один градус широты в средних широтах",
			lat1: 54.0, lon1: 37.0,
			lat2: 55.0, lon2: 37.0,
			expectedKm: 111.2,
		},
		{
			name: "Москва - Санкт-Петербург",
			lat1: 55.7558, lon1: 37.6173,
			lat2: 59.9343, lon2: 30.3351,
			expectedKm: 634.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedKm, d, 1.0)
		})
	}
}

func TestDistanceKm_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
	}{
		{"NaN широта первой точки", math.NaN(), 38.74, 9.03, 38.74},
		{"NaN долгота второй точки", 9.03, 38.74, 9.03, math.NaN()},
		{"Inf широта", math.Inf(1), 38.74, 9.03, 38.74},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCoordinate)
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(0, 0))
	assert.True(t, Valid(-90, 180))
	assert.False(t, Valid(math.NaN(), 0))
	assert.False(t, Valid(0, math.Inf(-1)))
}
