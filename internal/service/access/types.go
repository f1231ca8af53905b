package access

import (
	"context"
	"time"
)

const (
	// RouteCorridorWidthMeters bounds the device-to-cargo distance for route membership
	RouteCorridorWidthMeters = 1000.0
	// MaxDistanceFromCargoMeters bounds the device-to-cargo distance for access
	MaxDistanceFromCargoMeters = 500.0
)

// CargoAccessRequest is the input of ValidateCargoAccess
type CargoAccessRequest struct {
	UserID          string
	OrderID         string
	DeviceLatitude  float64
	DeviceLongitude float64
	CargoLatitude   float64
	CargoLongitude  float64
}

// CargoAccessValidationResult is the cargo access decision
type CargoAccessValidationResult struct {
	UserID          string    `json:"user_id"`
	OrderID         string    `json:"order_id"`
	IsWithinRoute   bool      `json:"is_within_route"`
	DistanceToCargo float64   `json:"distance_to_cargo"`
	AccessGranted   bool      `json:"access_granted"`
	Timestamp       time.Time `json:"timestamp"`
}

// SensitiveDataAccessRequest is the input of ValidateSensitiveDataAccess
type SensitiveDataAccessRequest struct {
	UserID                string
	DataType              string
	Latitude              float64
	Longitude             float64
	RequiredSecurityLevel string
}

// SensitiveDataAccessResult is the sensitive data access decision
type SensitiveDataAccessResult struct {
	UserID                   string    `json:"user_id"`
	DataType                 string    `json:"data_type"`
	HasRequiredSecurityLevel bool      `json:"has_required_security_level"`
	IsLocationAllowed        bool      `json:"is_location_allowed"`
	IsInSecureZone           bool      `json:"is_in_secure_zone"`
	AccessGranted            bool      `json:"access_granted"`
	Timestamp                time.Time `json:"timestamp"`
}

// AllowAll satisfies every gate. It is the default until clearance and zone data are wired.
type AllowAll struct{}

func (AllowAll) HasSecurityLevel(context.Context, string, string) (bool, error) { return true, nil }

func (AllowAll) IsLocationAllowed(context.Context, float64, float64, string) (bool, error) {
	return true, nil
}

func (AllowAll) IsInSecureZone(context.Context, float64, float64) (bool, error) { return true, nil }
