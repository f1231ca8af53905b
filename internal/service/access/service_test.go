package access

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
	"github.com/nodeorb/scm-risk-engine/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(bus security.EventBus, opts ...Option) Service {
	detector := geo.NewSpoofingDetector(120, geo.NoopPatternAnalyzer{})
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(detector, bus, zap.NewNop(), nil, opts...)
}

type denyZone struct{ err error }

func (d denyZone) IsInSecureZone(context.Context, float64, float64) (bool, error) { return false, d.err }

type clearance struct{ levels map[string]bool }

func (c clearance) HasSecurityLevel(_ context.Context, userID, _ string) (bool, error) {
	return c.levels[userID], nil
}

func TestService_ValidateCargoAccess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		req             CargoAccessRequest
		wantWithinRoute bool
		wantGranted     bool
	}{
		{
			name: "device next to cargo",
			req: CargoAccessRequest{
				UserID: "u1", OrderID: "o1",
				DeviceLatitude: 50.4501, DeviceLongitude: 30.5234,
				CargoLatitude: 50.4502, CargoLongitude: 30.5235,
			},
			wantWithinRoute: true,
			wantGranted:     true,
		},
		{
			name: "on route but too far from cargo",
			req: CargoAccessRequest{
				UserID: "u1", OrderID: "o1",
				DeviceLatitude: 50.4501, DeviceLongitude: 30.5234,
				CargoLatitude: 50.4571, CargoLongitude: 30.5234, // ~778 m
			},
			wantWithinRoute: true,
			wantGranted:     false,
		},
		{
			name: "off route",
			req: CargoAccessRequest{
				UserID: "u1", OrderID: "o1",
				DeviceLatitude: 50.4501, DeviceLongitude: 30.5234,
				CargoLatitude: 50.4701, CargoLongitude: 30.5234,
			},
			wantWithinRoute: false,
			wantGranted:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(mocks.EventBus)
			bus.ExpectPublish(security.EventCargoAccessCheck).Return(nil).Once()
			svc := newTestService(bus)

			result, err := svc.ValidateCargoAccess(ctx, tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantWithinRoute, result.IsWithinRoute)
			assert.Equal(t, tt.wantGranted, result.AccessGranted)

			bus.AssertExpectations(t)
			events := bus.Published()
			require.Len(t, events, 1)
			assert.Equal(t, security.FormatBool(tt.wantGranted), events[0].Details["access_granted"])
			assert.Equal(t, tt.req.OrderID, events[0].Details["order_id"])
			assert.Len(t, events[0].Details, 8)
		})
	}
}

func TestService_ValidateCargoAccess_Scenario(t *testing.T) {
	bus := new(mocks.EventBus)
	bus.ExpectPublish(security.EventCargoAccessCheck).Return(nil).Once()
	svc := newTestService(bus)

	result, err := svc.ValidateCargoAccess(context.Background(), CargoAccessRequest{
		UserID: "u1", OrderID: "o1",
		DeviceLatitude: 50.4501, DeviceLongitude: 30.5234,
		CargoLatitude: 50.4502, CargoLongitude: 30.5235,
	})
	require.NoError(t, err)

	assert.InDelta(t, 13.2, result.DistanceToCargo, 0.5)
	assert.True(t, result.IsWithinRoute)
	assert.True(t, result.AccessGranted)
	assert.Equal(t, fixedNow, result.Timestamp)

	event := bus.Published()[0]
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, "50.4501", event.Details["device_lat"])
	assert.Equal(t, "30.5235", event.Details["cargo_lon"])
	assert.Equal(t, "true", event.Details["is_within_route"])
}

func TestService_ValidateCargoAccess_BusFailure(t *testing.T) {
	bus := new(mocks.EventBus)
	bus.ExpectPublish(security.EventCargoAccessCheck).Return(stderrors.New("timeout"))
	svc := newTestService(bus)

	result, err := svc.ValidateCargoAccess(context.Background(), CargoAccessRequest{
		UserID: "u1", OrderID: "o1",
		DeviceLatitude: 50.4501, DeviceLongitude: 30.5234,
		CargoLatitude: 50.4502, CargoLongitude: 30.5235,
	})

	assert.Nil(t, result)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
}

func TestService_DetectGpsSpoofing(t *testing.T) {
	ctx := context.Background()
	prev := geo.NewPoint(50.0, 30.0, fixedNow)

	t.Run("alert on teleportation", func(t *testing.T) {
		bus := new(mocks.EventBus)
		bus.ExpectPublish(security.EventGpsSpoofingDetected).Return(nil).Once()
		svc := newTestService(bus)

		result, err := svc.DetectGpsSpoofing(ctx, "u1", geo.NewPoint(51.0, 31.0, fixedNow.Add(time.Second)), &prev)
		require.NoError(t, err)
		assert.True(t, result.IsSpoofingDetected)

		bus.AssertExpectations(t)
		assert.Equal(t, "0.8", bus.Published()[0].Details["confidence"])
	})

	t.Run("no alert below threshold", func(t *testing.T) {
		bus := new(mocks.EventBus)
		svc := newTestService(bus)

		prevAlt := prev.WithAltitude(0)
		result, err := svc.DetectGpsSpoofing(ctx, "u1", geo.NewPoint(50.001, 30.0, fixedNow.Add(10*time.Second)).WithAltitude(1500), &prevAlt)
		require.NoError(t, err)
		assert.False(t, result.IsSpoofingDetected)
		assert.InDelta(t, 0.4, result.Confidence, 1e-9)
		bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("no previous fix", func(t *testing.T) {
		bus := new(mocks.EventBus)
		svc := newTestService(bus)

		result, err := svc.DetectGpsSpoofing(ctx, "u1", prev, nil)
		require.NoError(t, err)
		assert.False(t, result.IsSpoofingDetected)
		assert.Empty(t, result.DetectedAnomalies)
	})
}

func TestService_ValidateSensitiveDataAccess(t *testing.T) {
	ctx := context.Background()
	req := SensitiveDataAccessRequest{
		UserID: "u1", DataType: "CUSTOMS_DECLARATION", Latitude: 50.45, Longitude: 30.52, RequiredSecurityLevel: "HIGH",
	}

	t.Run("default gates grant access", func(t *testing.T) {
		bus := new(mocks.EventBus)
		bus.ExpectPublish(security.EventSensitiveDataAccessCheck).Return(nil).Once()
		svc := newTestService(bus)

		result, err := svc.ValidateSensitiveDataAccess(ctx, req)
		require.NoError(t, err)
		assert.True(t, result.AccessGranted)
		bus.AssertExpectations(t)
	})

	t.Run("one failing gate denies and still reports", func(t *testing.T) {
		bus := new(mocks.EventBus)
		bus.ExpectPublish(security.EventSensitiveDataAccessCheck).Return(nil).Once()
		svc := newTestService(bus, WithSecurityLevelChecker(clearance{levels: map[string]bool{"u2": true}}))

		result, err := svc.ValidateSensitiveDataAccess(ctx, req)
		require.NoError(t, err)
		assert.False(t, result.HasRequiredSecurityLevel)
		assert.True(t, result.IsLocationAllowed)
		assert.True(t, result.IsInSecureZone)
		assert.False(t, result.AccessGranted)

		details := bus.Published()[0].Details
		assert.Equal(t, "false", details["has_required_level"])
		assert.Equal(t, "false", details["access_granted"])
		assert.Equal(t, "HIGH", details["required_security_level"])
	})

	t.Run("gate lookup failure propagates", func(t *testing.T) {
		bus := new(mocks.EventBus)
		svc := newTestService(bus, WithSecureZoneChecker(denyZone{err: stderrors.New("zone service down")}))

		_, err := svc.ValidateSensitiveDataAccess(ctx, req)
		assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
		bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
