package access

import (
	"context"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const component = "access"

// service implements the Service interface
type service struct {
	detector *geo.SpoofingDetector
	bus      security.EventBus
	logger   *zap.Logger
	metrics  *metrics.Registry

	levels     SecurityLevelChecker
	geoRules   GeoRestrictionChecker
	secureZone SecureZoneChecker
	now        func() time.Time
}

// Option customises the validator
type Option func(*service)

func WithSecurityLevelChecker(c SecurityLevelChecker) Option {
	return func(s *service) { s.levels = c }
}

func WithGeoRestrictionChecker(c GeoRestrictionChecker) Option {
	return func(s *service) { s.geoRules = c }
}

func WithSecureZoneChecker(c SecureZoneChecker) Option {
	return func(s *service) { s.secureZone = c }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

// NewService creates a new access validator. The detector is shared with the
// geofence validator so both apply the same spoofing policy.
func NewService(detector *geo.SpoofingDetector, bus security.EventBus, logger *zap.Logger, registry *metrics.Registry, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		detector:   detector,
		bus:        bus,
		logger:     logger.Named(component),
		metrics:    registry,
		levels:     AllowAll{},
		geoRules:   AllowAll{},
		secureZone: AllowAll{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateCargoAccess grants access when the device is on the cargo's route and close enough
func (s *service) ValidateCargoAccess(ctx context.Context, req CargoAccessRequest) (result *CargoAccessValidationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "ValidateCargoAccess",
		attribute.String("user_id", req.UserID),
		attribute.String("order_id", req.OrderID),
	)
	defer span.End()

	start := s.now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "cargo_access", metrics.Outcome(result != nil && !result.AccessGranted, err), s.now().Sub(start))
	}()

	if req.UserID == "" || req.OrderID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "user id and order id are required")
	}
	if err := geo.ValidateCoordinates(req.DeviceLatitude, req.DeviceLongitude); err != nil {
		return nil, err
	}
	if err := geo.ValidateCoordinates(req.CargoLatitude, req.CargoLongitude); err != nil {
		return nil, err
	}

	distance := geo.DistanceMeters(req.DeviceLatitude, req.DeviceLongitude, req.CargoLatitude, req.CargoLongitude)
	withinRoute := distance <= RouteCorridorWidthMeters

	result = &CargoAccessValidationResult{
		UserID:          req.UserID,
		OrderID:         req.OrderID,
		IsWithinRoute:   withinRoute,
		DistanceToCargo: distance,
		AccessGranted:   withinRoute && distance <= MaxDistanceFromCargoMeters,
		Timestamp:       s.now(),
	}

	event := security.NewEvent(security.EventCargoAccessCheck, req.UserID, map[string]string{
		"order_id":          req.OrderID,
		"is_within_route":   security.FormatBool(result.IsWithinRoute),
		"distance_to_cargo": security.FormatFloat(result.DistanceToCargo),
		"access_granted":    security.FormatBool(result.AccessGranted),
		"device_lat":        security.FormatFloat(req.DeviceLatitude),
		"device_lon":        security.FormatFloat(req.DeviceLongitude),
		"cargo_lat":         security.FormatFloat(req.CargoLatitude),
		"cargo_lon":         security.FormatFloat(req.CargoLongitude),
	}, result.Timestamp)
	if err := security.Publish(ctx, s.bus, event); err != nil {
		return nil, err
	}

	if !result.AccessGranted {
		telemetry.WithTrace(ctx, s.logger).Warn("cargo access denied",
			zap.String("user_id", req.UserID),
			zap.String("order_id", req.OrderID),
			zap.Float64("distance_to_cargo", distance),
		)
	}
	return result, nil
}

// DetectGpsSpoofing scores the device location and alerts only on detection
func (s *service) DetectGpsSpoofing(ctx context.Context, userID string, current geo.Point, previous *geo.Point) (result *geo.SpoofingResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "DetectGpsSpoofing", attribute.String("user_id", userID))
	defer span.End()

	start := s.now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "device_spoofing", metrics.Outcome(result != nil && result.IsSpoofingDetected, err), s.now().Sub(start))
	}()

	if err := current.Validate(); err != nil {
		return nil, err
	}
	if previous != nil {
		if err := previous.Validate(); err != nil {
			return nil, err
		}
	}

	r := s.detector.Detect(current, previous)
	if r.IsSpoofingDetected {
		telemetry.WithTrace(ctx, s.logger).Warn("gps spoofing detected",
			zap.String("user_id", userID),
			zap.Float64("confidence", r.Confidence),
			zap.Strings("anomalies", r.DetectedAnomalies),
		)

		event := security.GpsSpoofingAlert(userID, current.Latitude, current.Longitude, r.Confidence, r.DetectedAnomalies, s.now())
		if err := security.Publish(ctx, s.bus, event); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

// ValidateSensitiveDataAccess grants access only when all three gates pass
func (s *service) ValidateSensitiveDataAccess(ctx context.Context, req SensitiveDataAccessRequest) (result *SensitiveDataAccessResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "ValidateSensitiveDataAccess",
		attribute.String("user_id", req.UserID),
		attribute.String("data_type", req.DataType),
	)
	defer span.End()

	start := s.now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "sensitive_data_access", metrics.Outcome(result != nil && !result.AccessGranted, err), s.now().Sub(start))
	}()

	if req.UserID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "user id is required")
	}
	if err := geo.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	hasLevel, err := s.levels.HasSecurityLevel(ctx, req.UserID, req.RequiredSecurityLevel)
	if err != nil {
		return nil, errors.NewExternalError("security-level", "clearance lookup failed").WithCause(err)
	}
	locationAllowed, err := s.geoRules.IsLocationAllowed(ctx, req.Latitude, req.Longitude, req.DataType)
	if err != nil {
		return nil, errors.NewExternalError("geo-restriction", "geographic restriction lookup failed").WithCause(err)
	}
	inSecureZone, err := s.secureZone.IsInSecureZone(ctx, req.Latitude, req.Longitude)
	if err != nil {
		return nil, errors.NewExternalError("secure-zone", "secure zone lookup failed").WithCause(err)
	}

	result = &SensitiveDataAccessResult{
		UserID:                   req.UserID,
		DataType:                 req.DataType,
		HasRequiredSecurityLevel: hasLevel,
		IsLocationAllowed:        locationAllowed,
		IsInSecureZone:           inSecureZone,
		AccessGranted:            hasLevel && locationAllowed && inSecureZone,
		Timestamp:                s.now(),
	}

	event := security.NewEvent(security.EventSensitiveDataAccessCheck, req.UserID, map[string]string{
		"data_type":               req.DataType,
		"required_security_level": req.RequiredSecurityLevel,
		"has_required_level":      security.FormatBool(hasLevel),
		"is_location_allowed":     security.FormatBool(locationAllowed),
		"is_in_secure_zone":       security.FormatBool(inSecureZone),
		"access_granted":          security.FormatBool(result.AccessGranted),
		"user_lat":                security.FormatFloat(req.Latitude),
		"user_lon":                security.FormatFloat(req.Longitude),
	}, result.Timestamp)
	if err := security.Publish(ctx, s.bus, event); err != nil {
		return nil, err
	}

	if !result.AccessGranted {
		telemetry.WithTrace(ctx, s.logger).Warn("sensitive data access denied",
			zap.String("user_id", req.UserID),
			zap.String("data_type", req.DataType),
			zap.Bool("has_required_level", hasLevel),
			zap.Bool("is_location_allowed", locationAllowed),
			zap.Bool("is_in_secure_zone", inSecureZone),
		)
	}
	return result, nil
}
