package hos

import (
	"context"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const component = "hos"

// service implements the Service interface
type service struct {
	logs    DriverLogSource
	bus     security.EventBus
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewService creates a new hours-of-service validator
func NewService(logs DriverLogSource, bus security.EventBus, logger *zap.Logger, registry *metrics.Registry) Service {
	if logs == nil {
		logs = NewStaticLogSource()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		logs:    logs,
		bus:     bus,
		logger:  logger.Named(component),
		metrics: registry,
	}
}

// ValidateHoursOfService evaluates each rule independently and reports any violation
func (s *service) ValidateHoursOfService(ctx context.Context, driverID, vehicleID string, at time.Time, region Region) (result *HoursOfServiceResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "ValidateHoursOfService",
		attribute.String("driver_id", driverID),
		attribute.String("region", string(region)),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.WithSpanError(span, err)
		violation := result != nil && result.ComplianceStatus == StatusViolation
		s.metrics.RecordCheck(ctx, "hours_of_service", metrics.Outcome(violation, err), time.Since(start))
	}()

	if driverID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "driver id is required")
	}
	region = ParseRegion(string(region))
	rules := RulesFor(region)

	duty, err := s.logs.DutySummary(ctx, driverID, at)
	if err != nil {
		return nil, errors.NewExternalError("driver-logs", "failed to load duty summary").WithCause(err)
	}

	violations := []string{}
	if duty.DrivingHours >= rules.MaxDailyDriving {
		violations = append(violations, ViolationDailyDriving)
	}
	if duty.OnDutyHours >= rules.MaxDailyOnDuty {
		violations = append(violations, ViolationDailyOnDuty)
	}
	if duty.LastBreakHours < rules.RequiredBreak {
		violations = append(violations, ViolationBreak)
	}
	if duty.WeeklyDrivingHours >= rules.MaxWeeklyDriving {
		violations = append(violations, ViolationWeekly)
	}
	if duty.LastWeeklyRestHours < rules.RequiredWeeklyRest {
		violations = append(violations, ViolationWeeklyRest)
	}

	status := StatusCompliant
	if len(violations) > 0 {
		status = StatusViolation
	}

	result = &HoursOfServiceResult{
		DriverID:               driverID,
		VehicleID:              vehicleID,
		Region:                 region,
		ComplianceStatus:       status,
		Violations:             violations,
		RemainingDrivingHours:  rules.MaxDailyDriving - duty.DrivingHours,
		RemainingOnDemandHours: rules.MaxDailyOnDuty - duty.OnDutyHours,
		TimeToNextBreakMinutes: timeToNextBreak(duty.LastBreakHours, rules.RequiredBreak),
		WeeklyHours:            duty.WeeklyDrivingHours,
		Timestamp:              at,
	}

	if status == StatusViolation {
		telemetry.WithTrace(ctx, s.logger).Warn("hours of service violation",
			zap.String("driver_id", driverID),
			zap.String("vehicle_id", vehicleID),
			zap.Strings("violations", violations),
		)

		event := security.HoursOfServiceViolation(driverID, vehicleID, int(result.RemainingDrivingHours), violations, at)
		if err := security.Publish(ctx, s.bus, event); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// timeToNextBreak returns whole hours of break still owed, in minutes
func timeToNextBreak(lastBreak, required float64) int {
	if lastBreak >= required {
		return 0
	}
	return int(required-lastBreak) * 60
}

// CanStartShift checks the daily rest since the last shift ended. Elapsed time is counted in whole hours.
func (s *service) CanStartShift(ctx context.Context, driverID string, at time.Time, region Region) (result *ShiftEligibilityResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "CanStartShift", attribute.String("driver_id", driverID))
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "shift_eligibility", metrics.Outcome(result != nil && !result.CanStart, err), time.Since(start))
	}()

	if driverID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "driver id is required")
	}
	required := RulesFor(ParseRegion(string(region))).RequiredDailyRest

	lastEnd, err := s.logs.LastShiftEnd(ctx, driverID, at)
	if err != nil {
		return nil, errors.NewExternalError("driver-logs", "failed to load last shift").WithCause(err)
	}

	hoursSince := float64(int64(at.Sub(lastEnd) / time.Hour))
	canStart := hoursSince >= required

	result = &ShiftEligibilityResult{
		CanStart:          canStart,
		LastShiftEnd:      lastEnd,
		RequiredRestHours: required,
	}
	if !canStart {
		result.HoursUntilEligible = int(required - hoursSince)
	}

	s.logger.Debug("shift eligibility evaluated",
		zap.String("driver_id", driverID),
		zap.Bool("can_start", canStart),
		zap.Float64("hours_since_last_shift", hoursSince),
	)
	return result, nil
}

// DetectDriverFatigue adds up the night, acceleration and speed factors
func (s *service) DetectDriverFatigue(ctx context.Context, driverID string, speedKmh float64, acceleration []float64, hourOfDay int) (result *FatigueDetectionResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "DetectDriverFatigue", attribute.String("driver_id", driverID))
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "driver_fatigue", metrics.Outcome(result != nil && result.IsFatigued, err), time.Since(start))
	}()

	if hourOfDay < 0 || hourOfDay > 23 {
		return nil, errors.NewValidationError("INVALID_HOUR", "hour of day must be between 0 and 23")
	}
	if speedKmh < 0 {
		return nil, errors.NewValidationError("INVALID_SPEED", "speed must not be negative")
	}

	score := 0.0
	factors := []string{}

	if hourOfDay >= NightStartHour || hourOfDay < NightEndHour {
		score += NightScore
		factors = append(factors, FactorNightDriving)
	}

	// No samples means no evidence of reduced acceleration
	if len(acceleration) > 0 && mean(acceleration) < LowAccelerationLimit {
		score += LowAccelerationScore
		factors = append(factors, FactorLowAcceleration)
	}

	if speedKmh < LowSpeedLimitKmh {
		score += LowSpeedScore
		factors = append(factors, FactorLowSpeed)
	}

	result = &FatigueDetectionResult{
		IsFatigued:          score > FatigueThreshold,
		FatigueScore:        score,
		ContributingFactors: factors,
		RecommendedAction:   ActionContinueMonitoring,
	}
	if result.IsFatigued {
		result.RecommendedAction = ActionStopAndRest
		telemetry.WithTrace(ctx, s.logger).Warn("driver fatigue detected",
			zap.String("driver_id", driverID),
			zap.Float64("fatigue_score", score),
			zap.Strings("factors", factors),
		)
	}
	return result, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
