package geo

import (
	"math"
	"testing"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		want       float64
		delta      float64
	}{
		{"same point", 50.4501, 30.5234, 50.4501, 30.5234, 0, 0},
		{"adjacent fixes in Kyiv", 50.4501, 30.5234, 50.4502, 30.5235, 13.2, 0.5},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 5},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343500, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{50.4501, 30.5234, 50.4644, 30.5191},
		{-33.8688, 151.2093, 40.7128, -74.0060},
		{89.9, 179.9, -89.9, -179.9},
		{0, 0, 0, 180},
	}

	for _, p := range pairs {
		ab := DistanceMeters(p[0], p[1], p[2], p[3])
		ba := DistanceMeters(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-6)
		assert.Equal(t, 0.0, DistanceMeters(p[0], p[1], p[0], p[1]))
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 50.45, 30.52, false},
		{"poles and antimeridian", 90, -180, false},
		{"latitude too high", 90.01, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"nan latitude", math.NaN(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lon)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSpeedKmh(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewPoint(0, 0, t0)
	b := NewPoint(1, 0, t0.Add(time.Hour))

	assert.InDelta(t, 111.195, SpeedKmh(a, b), 0.01)

	t.Run("zero elapsed time yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, SpeedKmh(a, NewPoint(1, 0, t0)))
	})

	t.Run("negative elapsed time yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, SpeedKmh(b, a))
	})
}
