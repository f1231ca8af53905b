package hos

import (
	"context"
	"time"
)

// Service defines the hours-of-service validation interface
type Service interface {
	// ValidateHoursOfService evaluates every regional duty rule for a driver
	ValidateHoursOfService(ctx context.Context, driverID, vehicleID string, at time.Time, region Region) (*HoursOfServiceResult, error)
	// CanStartShift checks the daily rest requirement since the last shift
	CanStartShift(ctx context.Context, driverID string, at time.Time, region Region) (*ShiftEligibilityResult, error)
	// DetectDriverFatigue scores driving telemetry for signs of fatigue
	DetectDriverFatigue(ctx context.Context, driverID string, speedKmh float64, acceleration []float64, hourOfDay int) (*FatigueDetectionResult, error)
}

// DriverLogSource supplies electronic logging device data
type DriverLogSource interface {
	// DutySummary aggregates a driver's duty status up to at
	DutySummary(ctx context.Context, driverID string, at time.Time) (DutySummary, error)
	// LastShiftEnd returns when the driver's previous shift ended
	LastShiftEnd(ctx context.Context, driverID string, at time.Time) (time.Time, error)
}
