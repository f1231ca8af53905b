package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
)

// PointRequest is one GPS fix. A missing timestamp means "now".
type PointRequest struct {
	Latitude  float64    `json:"latitude" validate:"latitude"`
	Longitude float64    `json:"longitude" validate:"longitude"`
	Timestamp *time.Time `json:"timestamp"`
	Altitude  *float64   `json:"altitude"`
	Accuracy  *float64   `json:"accuracy" validate:"omitempty,gte=0"`
}

func (p PointRequest) toPoint(now time.Time) geo.Point {
	ts := now
	if p.Timestamp != nil {
		ts = *p.Timestamp
	}
	return geo.Point{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Timestamp: ts,
		Altitude:  p.Altitude,
		Accuracy:  p.Accuracy,
	}
}

type GeofenceValidateRequest struct {
	UserID       string  `json:"user_id" validate:"required"`
	Latitude     float64 `json:"latitude" validate:"latitude"`
	Longitude    float64 `json:"longitude" validate:"longitude"`
	GeofenceType string  `json:"geofence_type"`
	OrderID      *string `json:"order_id"`
}

type RouteValidateRequest struct {
	UserID              string         `json:"user_id" validate:"required"`
	Points              []PointRequest `json:"points" validate:"dive"`
	CorridorWidthMeters float64        `json:"corridor_width_meters" validate:"gte=0"`
}

type SpoofingRequest struct {
	UserID   string        `json:"user_id" validate:"required"`
	Current  PointRequest  `json:"current"`
	Previous *PointRequest `json:"previous"`
}

type CargoAccessRequest struct {
	UserID          string  `json:"user_id" validate:"required"`
	OrderID         string  `json:"order_id" validate:"required"`
	DeviceLatitude  float64 `json:"device_latitude" validate:"latitude"`
	DeviceLongitude float64 `json:"device_longitude" validate:"longitude"`
	CargoLatitude   float64 `json:"cargo_latitude" validate:"latitude"`
	CargoLongitude  float64 `json:"cargo_longitude" validate:"longitude"`
}

type SensitiveDataRequest struct {
	UserID                string  `json:"user_id" validate:"required"`
	DataType              string  `json:"data_type" validate:"required"`
	Latitude              float64 `json:"latitude" validate:"latitude"`
	Longitude             float64 `json:"longitude" validate:"longitude"`
	RequiredSecurityLevel string  `json:"required_security_level" validate:"required"`
}

type HoursOfServiceRequest struct {
	DriverID  string     `json:"driver_id" validate:"required"`
	VehicleID string     `json:"vehicle_id"`
	Timestamp *time.Time `json:"timestamp"`
	Region    string     `json:"region" validate:"omitempty,oneof=US EU us eu"`
}

type ShiftEligibilityRequest struct {
	DriverID  string     `json:"driver_id" validate:"required"`
	Timestamp *time.Time `json:"timestamp"`
	Region    string     `json:"region" validate:"omitempty,oneof=US EU us eu"`
}

type FatigueRequest struct {
	DriverID     string    `json:"driver_id" validate:"required"`
	SpeedKmh     float64   `json:"speed_kmh" validate:"gte=0"`
	Acceleration []float64 `json:"acceleration"`
	HourOfDay    *int      `json:"hour_of_day" validate:"required,min=0,max=23"`
}

type ConflictCheckRequest struct {
	ShipperUserID string `json:"shipper_user_id" validate:"required"`
	CarrierUserID string `json:"carrier_user_id" validate:"required"`
	OrderID       string `json:"order_id"`
}

type ManualPriceRequest struct {
	UserID        string          `json:"user_id" validate:"required"`
	OrderID       string          `json:"order_id" validate:"required"`
	MaterialsCost decimal.Decimal `json:"materials_cost"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
}

type AppealRequest struct {
	Status         string  `json:"status" validate:"required"`
	AuditorComment *string `json:"auditor_comment"`
}
