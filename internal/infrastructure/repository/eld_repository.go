package repository

import (
	"context"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/service/hos"
)

// Duty statuses recorded by electronic logging devices
const (
	DutyDriving      = "DRIVING"
	DutyOnDuty       = "ON_DUTY"
	DutyOffDuty      = "OFF_DUTY"
	DutySleeperBerth = "SLEEPER_BERTH"
)

// DutyLog is one ELD status segment. A nil EndedAt means the segment is still open.
type DutyLog struct {
	DriverID  string
	VehicleID string
	Status    string
	StartedAt time.Time
	EndedAt   *time.Time
}

// ELDRepository aggregates eld_duty_logs into hours-of-service figures.
// Daily totals cover the 24 h before the evaluation time, weekly totals the 7 days before it.
type ELDRepository struct {
	db DBTX
}

// NewELDRepository creates a new ELD repository
func NewELDRepository(db DBTX) *ELDRepository {
	return &ELDRepository{db: db}
}

var _ hos.DriverLogSource = (*ELDRepository)(nil)

// DutySummary sums the segments overlapping the daily and weekly windows.
// Working time of an open segment counts up to at; rest only counts once the segment is closed.
func (r *ELDRepository) DutySummary(ctx context.Context, driverID string, at time.Time) (hos.DutySummary, error) {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "SELECT", "eld_duty_logs")
	defer span.End()

	query := `
		WITH seg AS (
			SELECT status, started_at, LEAST(COALESCE(ended_at, $2), $2) AS ended_at,
			       (ended_at IS NOT NULL AND ended_at <= $2) AS completed
			FROM eld_duty_logs
			WHERE driver_id = $1
			  AND started_at < $2
			  AND COALESCE(ended_at, $2) > $2 - INTERVAL '8 days'
		)
		SELECT
			COALESCE(SUM(EXTRACT(EPOCH FROM ended_at - GREATEST(started_at, $2 - INTERVAL '24 hours')))
				FILTER (WHERE status = 'DRIVING' AND ended_at > $2 - INTERVAL '24 hours'), 0)::float8 / 3600,
			COALESCE(SUM(EXTRACT(EPOCH FROM ended_at - GREATEST(started_at, $2 - INTERVAL '24 hours')))
				FILTER (WHERE status IN ('DRIVING', 'ON_DUTY') AND ended_at > $2 - INTERVAL '24 hours'), 0)::float8 / 3600,
			COALESCE((
				SELECT EXTRACT(EPOCH FROM s.ended_at - s.started_at)
				FROM seg s
				WHERE s.status IN ('OFF_DUTY', 'SLEEPER_BERTH') AND s.completed
				ORDER BY s.started_at DESC
				LIMIT 1
			), 0)::float8 / 3600,
			COALESCE(SUM(EXTRACT(EPOCH FROM ended_at - GREATEST(started_at, $2 - INTERVAL '7 days')))
				FILTER (WHERE status = 'DRIVING' AND ended_at > $2 - INTERVAL '7 days'), 0)::float8 / 3600,
			COALESCE(MAX(EXTRACT(EPOCH FROM ended_at - started_at))
				FILTER (WHERE status IN ('OFF_DUTY', 'SLEEPER_BERTH') AND completed), 0)::float8 / 3600
		FROM seg`

	var d hos.DutySummary
	err := r.db.QueryRow(ctx, query, driverID, at).Scan(
		&d.DrivingHours,
		&d.OnDutyHours,
		&d.LastBreakHours,
		&d.WeeklyDrivingHours,
		&d.LastWeeklyRestHours,
	)
	if err != nil {
		telemetry.WithSpanError(span, err)
		return hos.DutySummary{}, WrapRepositoryError(err, "aggregate duty logs")
	}
	return d, nil
}

// LastShiftEnd returns the end of the latest closed working segment. A driver
// with no history gets the zero time, which always satisfies the rest rule.
func (r *ELDRepository) LastShiftEnd(ctx context.Context, driverID string, at time.Time) (time.Time, error) {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "SELECT", "eld_duty_logs")
	defer span.End()

	query := `
		SELECT MAX(ended_at)
		FROM eld_duty_logs
		WHERE driver_id = $1
		  AND status IN ('DRIVING', 'ON_DUTY')
		  AND ended_at IS NOT NULL
		  AND ended_at <= $2`

	var end *time.Time
	if err := r.db.QueryRow(ctx, query, driverID, at).Scan(&end); err != nil {
		telemetry.WithSpanError(span, err)
		return time.Time{}, WrapRepositoryError(err, "last shift end")
	}
	if end == nil {
		return time.Time{}, nil
	}
	return *end, nil
}

// Append records a duty segment
func (r *ELDRepository) Append(ctx context.Context, log DutyLog) error {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "INSERT", "eld_duty_logs")
	defer span.End()

	query := `
		INSERT INTO eld_duty_logs (driver_id, vehicle_id, status, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(ctx, query, log.DriverID, log.VehicleID, log.Status, log.StartedAt, log.EndedAt); err != nil {
		telemetry.WithSpanError(span, err)
		return WrapRepositoryError(err, "append duty log")
	}
	return nil
}
