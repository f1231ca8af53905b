package rest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
	"github.com/nodeorb/scm-risk-engine/internal/service/geofence"
	"github.com/nodeorb/scm-risk-engine/internal/service/hos"
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
	"github.com/nodeorb/scm-risk-engine/internal/service/sanctions"
)

type mockGeofenceService struct {
	mock.Mock
}

func (m *mockGeofenceService) ValidateGeofence(ctx context.Context, req geofence.ValidateGeofenceRequest) (*geofence.GeofenceValidationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geofence.GeofenceValidationResult), args.Error(1)
}

func (m *mockGeofenceService) ValidateRoute(ctx context.Context, userID string, points []geo.Point, width float64) (*geofence.RouteValidationResult, error) {
	args := m.Called(ctx, userID, points, width)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geofence.RouteValidationResult), args.Error(1)
}

func (m *mockGeofenceService) DetectGpsSpoofing(ctx context.Context, userID string, current geo.Point, previous *geo.Point) (*geo.SpoofingResult, error) {
	args := m.Called(ctx, userID, current, previous)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.SpoofingResult), args.Error(1)
}

type mockHOSService struct {
	mock.Mock
}

func (m *mockHOSService) ValidateHoursOfService(ctx context.Context, driverID, vehicleID string, at time.Time, region hos.Region) (*hos.HoursOfServiceResult, error) {
	args := m.Called(ctx, driverID, vehicleID, at, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hos.HoursOfServiceResult), args.Error(1)
}

func (m *mockHOSService) CanStartShift(ctx context.Context, driverID string, at time.Time, region hos.Region) (*hos.ShiftEligibilityResult, error) {
	args := m.Called(ctx, driverID, at, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hos.ShiftEligibilityResult), args.Error(1)
}

func (m *mockHOSService) DetectDriverFatigue(ctx context.Context, driverID string, speedKmh float64, acceleration []float64, hourOfDay int) (*hos.FatigueDetectionResult, error) {
	args := m.Called(ctx, driverID, speedKmh, acceleration, hourOfDay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hos.FatigueDetectionResult), args.Error(1)
}

type mockSanctionsService struct {
	mock.Mock
}

func (m *mockSanctionsService) CheckSanctions(ctx context.Context, userID string) (*sanctions.SanctionCheckResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sanctions.SanctionCheckResult), args.Error(1)
}

func (m *mockSanctionsService) CheckCompanySanctions(ctx context.Context, companyID string) (*sanctions.SanctionCheckResult, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sanctions.SanctionCheckResult), args.Error(1)
}

func (m *mockSanctionsService) CheckCountrySanctions(ctx context.Context, code string) (*sanctions.CountrySanctionResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sanctions.CountrySanctionResult), args.Error(1)
}

func (m *mockSanctionsService) CheckCounterparty(ctx context.Context, id, kind string) (*sanctions.SanctionCheckResult, error) {
	args := m.Called(ctx, id, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sanctions.SanctionCheckResult), args.Error(1)
}

type mockPricingService struct {
	mock.Mock
}

func (m *mockPricingService) ValidateManualInput(ctx context.Context, input pricing.ManualInput) (*pricing.ValidationVerdict, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.ValidationVerdict), args.Error(1)
}

func (m *mockPricingService) SaveManualEntry(ctx context.Context, input pricing.ManualInput, verdict *pricing.ValidationVerdict) (*compliance.ManualEntryValidation, error) {
	args := m.Called(ctx, input, verdict)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.ManualEntryValidation), args.Error(1)
}

func (m *mockPricingService) UpdateAppealStatus(ctx context.Context, id uuid.UUID, status compliance.AppealStatus, comment *string) error {
	args := m.Called(ctx, id, status, comment)
	return args.Error(0)
}

func (m *mockPricingService) ValidateAndRecord(ctx context.Context, input pricing.ManualInput) (*pricing.RecordedValidation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.RecordedValidation), args.Error(1)
}
