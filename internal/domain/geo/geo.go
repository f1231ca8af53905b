// Package geo holds the geodesic primitives shared by every location check:
// haversine distance, coordinate bounds and point-to-point speed.
package geo

import (
	"math"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula
const EarthRadiusMeters = 6371000.0

// Point is an immutable location observation. It serves as device location,
// telemetry location point and route point alike.
type Point struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
}

// NewPoint creates a point without altitude or accuracy
func NewPoint(lat, lon float64, ts time.Time) Point {
	return Point{Latitude: lat, Longitude: lon, Timestamp: ts}
}

// WithAltitude returns a copy of p carrying the given altitude
func (p Point) WithAltitude(meters float64) Point {
	p.Altitude = &meters
	return p
}

// Validate checks the point's coordinates
func (p Point) Validate() error {
	return ValidateCoordinates(p.Latitude, p.Longitude)
}

// ValidateCoordinates rejects latitudes outside [-90,90] and longitudes outside [-180,180].
// DistanceMeters does not check bounds itself; callers validate at the boundary.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return errors.NewValidationError("INVALID_COORDINATES", "latitude must be within [-90, 90]").
			WithDetails(map[string]interface{}{"latitude": lat})
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return errors.NewValidationError("INVALID_COORDINATES", "longitude must be within [-180, 180]").
			WithDetails(map[string]interface{}{"longitude": lon})
	}
	return nil
}

// DistanceMeters returns the great-circle distance between two coordinates in meters
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	latDistance := toRadians(lat2 - lat1)
	lonDistance := toRadians(lon2 - lon1)

	a := math.Sin(latDistance/2)*math.Sin(latDistance/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(lonDistance/2)*math.Sin(lonDistance/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Distance returns the great-circle distance between two points in meters
func Distance(a, b Point) float64 {
	return DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// ElapsedMillis returns the time from a to b in milliseconds (negative when b precedes a)
func ElapsedMillis(a, b Point) int64 {
	return b.Timestamp.Sub(a.Timestamp).Milliseconds()
}

// SpeedKmh returns the average speed from a to b in km/h.
// Zero or negative elapsed time yields 0 rather than dividing by zero.
func SpeedKmh(a, b Point) float64 {
	hours := float64(ElapsedMillis(a, b)) / (1000.0 * 60 * 60)
	if hours <= 0 {
		return 0
	}
	return Distance(a, b) / 1000.0 / hours
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
