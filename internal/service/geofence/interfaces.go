package geofence

import (
	"context"

	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
)

// Service defines the geofence validation interface
type Service interface {
	// ValidateGeofence checks a location against a configured zone and reports violations
	ValidateGeofence(ctx context.Context, req ValidateGeofenceRequest) (*GeofenceValidationResult, error)
	// ValidateRoute checks every leg of a route for corridor and speed violations
	ValidateRoute(ctx context.Context, userID string, points []geo.Point, corridorWidthMeters float64) (*RouteValidationResult, error)
	// DetectGpsSpoofing scores a location against the previous fix
	DetectGpsSpoofing(ctx context.Context, userID string, current geo.Point, previous *geo.Point) (*geo.SpoofingResult, error)
}

// SpeedChecker evaluates the current movement speed of a user
type SpeedChecker interface {
	CheckSpeed(ctx context.Context, userID string, lat, lon float64) (SpeedCheck, error)
}

// RouteDeviationCalculator measures how far a leg strays from the planned corridor, in meters
type RouteDeviationCalculator interface {
	Deviation(from, to geo.Point, corridorWidthMeters float64) float64
}

// MovementHistoryAnalyzer inspects the stored track of a user
type MovementHistoryAnalyzer interface {
	Analyze(ctx context.Context, userID string, lat, lon float64, zone string) (MovementHistory, error)
}
