package geofence

import (
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
)

// Zone types
const (
	ZoneWarehouse    = "WAREHOUSE"
	ZoneCustoms      = "CUSTOMS"
	ZoneDeliveryZone = "DELIVERY_ZONE"
	ZoneDefault      = "DEFAULT"
)

// Route violation types
const (
	ViolationCorridor = "CORRIDOR_VIOLATION"
	ViolationSpeed    = "SPEED_VIOLATION"
)

// Violation reasons carried on results and events
const (
	ReasonOutsideBounds  = "Outside geofence bounds"
	ReasonSpeedViolation = "Speed violation"
)

// Defaults
const (
	DefaultRadiusMeters        = 500.0
	DefaultCorridorWidthMeters = 1000.0
	MaxSpeedKmh                = 120.0
)

// ZoneConfig is a circular zone
type ZoneConfig struct {
	CenterLat    float64 `json:"center_lat" koanf:"center_lat"`
	CenterLon    float64 `json:"center_lon" koanf:"center_lon"`
	RadiusMeters float64 `json:"radius" koanf:"radius"`
}

// DefaultZones returns the built-in zone table
func DefaultZones() map[string]ZoneConfig {
	return map[string]ZoneConfig{
		ZoneWarehouse:    {CenterLat: 50.4501, CenterLon: 30.5234, RadiusMeters: 500},
		ZoneCustoms:      {CenterLat: 50.4644, CenterLon: 30.5191, RadiusMeters: 1000},
		ZoneDeliveryZone: {CenterLat: 50.4547, CenterLon: 30.5238, RadiusMeters: 200},
		ZoneDefault:      {CenterLat: 50.4501, CenterLon: 30.5234, RadiusMeters: DefaultRadiusMeters},
	}
}

// Config holds validator settings
type Config struct {
	Zones       map[string]ZoneConfig
	MaxSpeedKmh float64
}

// DefaultConfig returns the built-in zones and speed limit
func DefaultConfig() Config {
	return Config{
		Zones:       DefaultZones(),
		MaxSpeedKmh: MaxSpeedKmh,
	}
}

// ValidateGeofenceRequest is the input of ValidateGeofence
type ValidateGeofenceRequest struct {
	UserID       string
	Latitude     float64
	Longitude    float64
	GeofenceType string
	OrderID      *string
}

// GeofenceValidationResult is the outcome of a zone check
type GeofenceValidationResult struct {
	IsInside        bool      `json:"is_inside"`
	GeofenceType    string    `json:"geofence_type"`
	DistanceMeters  float64   `json:"distance_meters"`
	ViolationReason *string   `json:"violation_reason"`
	SpeedViolation  bool      `json:"speed_violation"`
	Speed           float64   `json:"speed"`
	Timestamp       time.Time `json:"timestamp"`
	OrderID         *string   `json:"order_id,omitempty"`
}

// RouteViolation is one offending leg of a route
type RouteViolation struct {
	Point         geo.Point `json:"point"`
	Deviation     float64   `json:"deviation"`
	ViolationType string    `json:"violation_type"`
	Timestamp     time.Time `json:"timestamp"`
}

// RouteValidationResult aggregates all legs of a route
type RouteValidationResult struct {
	IsValid             bool             `json:"is_valid"`
	Violations          []RouteViolation `json:"violations"`
	TotalDistanceMeters float64          `json:"total_distance"`
	EstimatedTimeHours  float64          `json:"estimated_time"`
}

// SpeedCheck is the result of a SpeedChecker
type SpeedCheck struct {
	IsViolation bool    `json:"is_violation"`
	Speed       float64 `json:"speed"`
}

// MovementHistory is the result of a MovementHistoryAnalyzer
type MovementHistory struct {
	IsSuspicious bool   `json:"is_suspicious"`
	Pattern      string `json:"pattern"`
}
