package geofence

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

const component = "geofence"

// service implements the Service interface
type service struct {
	cfg      Config
	detector *geo.SpoofingDetector
	bus      security.EventBus
	logger   *zap.Logger
	metrics  *metrics.Registry

	speed     SpeedChecker
	deviation RouteDeviationCalculator
	history   MovementHistoryAnalyzer
	now       func() time.Time
}

// Option customises the validator
type Option func(*service)

func WithSpeedChecker(c SpeedChecker) Option { return func(s *service) { s.speed = c } }

func WithRouteDeviationCalculator(c RouteDeviationCalculator) Option {
	return func(s *service) { s.deviation = c }
}

func WithMovementHistoryAnalyzer(a MovementHistoryAnalyzer) Option {
	return func(s *service) { s.history = a }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

// NewService creates a new geofence validator
func NewService(
	cfg Config,
	detector *geo.SpoofingDetector,
	bus security.EventBus,
	logger *zap.Logger,
	registry *metrics.Registry,
	opts ...Option,
) Service {
	if cfg.Zones == nil {
		cfg.Zones = DefaultZones()
	}
	if cfg.MaxSpeedKmh <= 0 {
		cfg.MaxSpeedKmh = MaxSpeedKmh
	}
	if detector == nil {
		detector = geo.NewSpoofingDetector(cfg.MaxSpeedKmh, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		cfg:       cfg,
		detector:  detector,
		bus:       bus,
		logger:    logger.Named(component),
		metrics:   registry,
		speed:     NoopSpeedChecker{},
		deviation: StraightLineDeviation{},
		history:   NoopMovementHistory{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// zone returns the configuration for a zone type, DEFAULT for unknown types
func (s *service) zone(zoneType string) ZoneConfig {
	if z, ok := s.cfg.Zones[zoneType]; ok {
		return z
	}
	if z, ok := s.cfg.Zones[ZoneDefault]; ok {
		return z
	}
	return DefaultZones()[ZoneDefault]
}

// ValidateGeofence checks a location against a zone
func (s *service) ValidateGeofence(ctx context.Context, req ValidateGeofenceRequest) (result *GeofenceValidationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "ValidateGeofence",
		attribute.String("user_id", req.UserID),
		attribute.String("geofence_type", req.GeofenceType),
	)
	defer span.End()

	start := s.now()
	defer func() {
		telemetry.WithSpanError(span, err)
		violation := result != nil && (!result.IsInside || result.SpeedViolation)
		s.metrics.RecordCheck(ctx, "geofence", metrics.Outcome(violation, err), s.now().Sub(start))
	}()

	if req.UserID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "user id is required")
	}
	if err := geo.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	zone := s.zone(req.GeofenceType)
	distance := geo.DistanceMeters(req.Latitude, req.Longitude, zone.CenterLat, zone.CenterLon)
	isInside := distance <= zone.RadiusMeters

	speed, err := s.speed.CheckSpeed(ctx, req.UserID, req.Latitude, req.Longitude)
	if err != nil {
		return nil, errors.NewExternalError("speed-checker", "speed check failed").WithCause(err)
	}

	history, err := s.history.Analyze(ctx, req.UserID, req.Latitude, req.Longitude, req.GeofenceType)
	if err != nil {
		return nil, errors.NewExternalError("movement-history", "movement history analysis failed").WithCause(err)
	}
	if history.IsSuspicious {
		telemetry.WithTrace(ctx, s.logger).Warn("suspicious movement history",
			zap.String("user_id", req.UserID),
			zap.String("pattern", history.Pattern),
		)
	}

	result = &GeofenceValidationResult{
		IsInside:       isInside,
		GeofenceType:   req.GeofenceType,
		DistanceMeters: distance,
		SpeedViolation: speed.IsViolation,
		Speed:          speed.Speed,
		Timestamp:      s.now(),
		OrderID:        req.OrderID,
	}
	if !isInside {
		reason := ReasonOutsideBounds
		result.ViolationReason = &reason
	}

	if !isInside || speed.IsViolation {
		reason := ReasonSpeedViolation
		if result.ViolationReason != nil {
			reason = *result.ViolationReason
		}

		telemetry.WithTrace(ctx, s.logger).Warn("geofence violation",
			zap.String("user_id", req.UserID),
			zap.String("geofence_type", req.GeofenceType),
			zap.Float64("distance_meters", distance),
			zap.String("reason", reason),
		)

		event := security.GeofenceViolation(req.UserID, req.Latitude, req.Longitude, req.GeofenceType, reason, result.Timestamp)
		if err := security.Publish(ctx, s.bus, event); err != nil {
			return nil, err
		}
		return result, nil
	}

	s.logger.Debug("geofence check passed",
		zap.String("user_id", req.UserID),
		zap.String("geofence_type", req.GeofenceType),
	)
	return result, nil
}

// ValidateRoute walks consecutive legs. No events are emitted.
func (s *service) ValidateRoute(ctx context.Context, userID string, points []geo.Point, corridorWidthMeters float64) (result *RouteValidationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "ValidateRoute",
		attribute.String("user_id", userID),
		attribute.Int("points", len(points)),
	)
	defer span.End()

	start := s.now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "route", metrics.Outcome(result != nil && !result.IsValid, err), s.now().Sub(start))
	}()

	if corridorWidthMeters <= 0 {
		corridorWidthMeters = DefaultCorridorWidthMeters
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	violations := []RouteViolation{}
	total := 0.0

	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]
		total += geo.Distance(prev, curr)

		if deviation := s.deviation.Deviation(prev, curr, corridorWidthMeters); deviation > corridorWidthMeters {
			violations = append(violations, RouteViolation{
				Point:         curr,
				Deviation:     deviation,
				ViolationType: ViolationCorridor,
				Timestamp:     s.now(),
			})
		}

		if geo.SpeedKmh(prev, curr) > s.cfg.MaxSpeedKmh {
			violations = append(violations, RouteViolation{
				Point:         curr,
				ViolationType: ViolationSpeed,
				Timestamp:     s.now(),
			})
		}
	}

	result = &RouteValidationResult{
		IsValid:             len(violations) == 0,
		Violations:          violations,
		TotalDistanceMeters: total,
		EstimatedTimeHours:  total / 1000 / s.cfg.MaxSpeedKmh,
	}

	if !result.IsValid {
		telemetry.WithTrace(ctx, s.logger).Warn("route violations detected",
			zap.String("user_id", userID),
			zap.Int("violations", len(violations)),
		)
	}
	return result, nil
}

// DetectGpsSpoofing delegates to the shared detector. Alerts are raised by the access validator.
func (s *service) DetectGpsSpoofing(ctx context.Context, userID string, current geo.Point, previous *geo.Point) (result *geo.SpoofingResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "DetectGpsSpoofing", attribute.String("user_id", userID))
	defer span.End()

	start := s.now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "gps_spoofing", metrics.Outcome(result != nil && result.IsSpoofingDetected, err), s.now().Sub(start))
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
		telemetry.WithTrace(ctx, s.logger).Warn("gps spoofing suspected",
			zap.String("user_id", userID),
			zap.Float64("confidence", r.Confidence),
			zap.Strings("anomalies", r.DetectedAnomalies),
		)
	}
	return &r, nil
}
