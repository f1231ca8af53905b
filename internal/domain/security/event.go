// Package security defines the security events the risk engine reports to
// the outward security event bus.
package security

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
)

// DefaultSourceService is stamped on every event unless the bus overrides it
const DefaultSourceService = "SCM_SERVICE"

// EventType is the closed set of events emitted by the validators
type EventType string

const (
	EventGeofenceViolation        EventType = "GEOFENCE_VIOLATION"
	EventGpsSpoofingDetected      EventType = "GPS_SPOOFING_DETECTED"
	EventHoursOfServiceViolation  EventType = "HOURS_OF_SERVICE_VIOLATION"
	EventPriceAnomalyDetected     EventType = "PRICE_ANOMALY_DETECTED"
	EventCargoAccessCheck         EventType = "CARGO_ACCESS_CHECK"
	EventSensitiveDataAccessCheck EventType = "SENSITIVE_DATA_ACCESS_CHECK"
)

// SecurityEvent is the wire shape consumed by the security pipeline.
// Details are always string valued.
type SecurityEvent struct {
	EventID       string            `json:"event_id"`
	EventType     EventType         `json:"event_type"`
	Timestamp     time.Time         `json:"timestamp"`
	UserID        string            `json:"user_id"`
	SourceService string            `json:"source_service"`
	Details       map[string]string `json:"details"`
}

// EventBus delivers security events. Implementations must be safe for concurrent use.
type EventBus interface {
	Publish(ctx context.Context, event SecurityEvent) error
}

// Publish hands event to bus. Failures come back as retryable external errors
// so no compliance decision is returned without its event being recorded.
func Publish(ctx context.Context, bus EventBus, event SecurityEvent) error {
	if err := bus.Publish(ctx, event); err != nil {
		return errors.NewExternalError("security-event-bus",
			fmt.Sprintf("failed to publish %s", event.EventType)).WithCause(err)
	}
	return nil
}

// NewEvent builds an event with an id of the form <TYPE>_<unix millis>_<suffix>
func NewEvent(eventType EventType, userID string, details map[string]string, at time.Time) SecurityEvent {
	if details == nil {
		details = map[string]string{}
	}
	return SecurityEvent{
		EventID:       fmt.Sprintf("%s_%d_%s", eventType, at.UnixMilli(), uuid.NewString()[:8]),
		EventType:     eventType,
		Timestamp:     at,
		UserID:        userID,
		SourceService: DefaultSourceService,
		Details:       details,
	}
}

// GeofenceViolation reports a location outside its zone or moving too fast
func GeofenceViolation(userID string, lat, lon float64, geofenceType, reason string, at time.Time) SecurityEvent {
	return NewEvent(EventGeofenceViolation, userID, map[string]string{
		"latitude":         FormatFloat(lat),
		"longitude":        FormatFloat(lon),
		"geofence_type":    geofenceType,
		"violation_reason": reason,
	}, at)
}

// GpsSpoofingAlert reports a location judged to be spoofed
func GpsSpoofingAlert(userID string, lat, lon, confidence float64, anomalies []string, at time.Time) SecurityEvent {
	return NewEvent(EventGpsSpoofingDetected, userID, map[string]string{
		"latitude":   FormatFloat(lat),
		"longitude":  FormatFloat(lon),
		"confidence": FormatFloat(confidence),
		"anomalies":  strings.Join(anomalies, "; "),
	}, at)
}

// HoursOfServiceViolation reports a driver over their regulated limits
func HoursOfServiceViolation(driverID, vehicleID string, remainingHours int, reasons []string, at time.Time) SecurityEvent {
	return NewEvent(EventHoursOfServiceViolation, driverID, map[string]string{
		"vehicle_id":       vehicleID,
		"remaining_hours":  strconv.Itoa(remainingHours),
		"violation_reason": strings.Join(reasons, ", "),
	}, at)
}

// PriceAnomaly reports a manual cost entry that deviates from the market median
func PriceAnomaly(userID, orderID string, deviation, suggestedMedian float64, at time.Time) SecurityEvent {
	return NewEvent(EventPriceAnomalyDetected, userID, map[string]string{
		"order_id":         orderID,
		"deviation":        FormatFloat(deviation),
		"suggested_median": FormatFloat(suggestedMedian),
		"risk_level":       PriceRiskLevel(deviation),
	}, at)
}

// PriceRiskLevel buckets a price deviation for the security pipeline
func PriceRiskLevel(deviation float64) string {
	switch {
	case deviation <= 0.15:
		return "LOW"
	case deviation <= 0.40:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}

// FormatFloat renders a float in its shortest exact decimal form
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatBool renders a boolean detail value
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}
