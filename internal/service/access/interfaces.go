package access

import (
	"context"

	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
)

// Service defines the location-aware access control interface
type Service interface {
	// ValidateCargoAccess decides whether a device may see cargo details. Every call is reported.
	ValidateCargoAccess(ctx context.Context, req CargoAccessRequest) (*CargoAccessValidationResult, error)
	// DetectGpsSpoofing scores a device location and raises an alert when spoofing is detected
	DetectGpsSpoofing(ctx context.Context, userID string, current geo.Point, previous *geo.Point) (*geo.SpoofingResult, error)
	// ValidateSensitiveDataAccess combines the security level, geographic and secure zone gates. Every call is reported.
	ValidateSensitiveDataAccess(ctx context.Context, req SensitiveDataAccessRequest) (*SensitiveDataAccessResult, error)
}

// SecurityLevelChecker verifies a user's clearance
type SecurityLevelChecker interface {
	HasSecurityLevel(ctx context.Context, userID, requiredLevel string) (bool, error)
}

// GeoRestrictionChecker verifies that a data type may be accessed from a location
type GeoRestrictionChecker interface {
	IsLocationAllowed(ctx context.Context, lat, lon float64, dataType string) (bool, error)
}

// SecureZoneChecker verifies that a location lies inside a secure zone
type SecureZoneChecker interface {
	IsInSecureZone(ctx context.Context, lat, lon float64) (bool, error)
}
