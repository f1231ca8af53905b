package geofence

import (
	"context"

	"github.com/nodeorb/scm-risk-engine/internal/domain/geo"
)

// The implementations below stand in until location history is available to
// the engine. They never report a violation.

// NoopSpeedChecker reports no speed violation at speed 0
type NoopSpeedChecker struct{}

func (NoopSpeedChecker) CheckSpeed(context.Context, string, float64, float64) (SpeedCheck, error) {
	return SpeedCheck{}, nil
}

// StraightLineDeviation treats every leg as on-corridor
type StraightLineDeviation struct{}

func (StraightLineDeviation) Deviation(geo.Point, geo.Point, float64) float64 {
	return 0
}

// NoopMovementHistory reports a NORMAL pattern
type NoopMovementHistory struct{}

func (NoopMovementHistory) Analyze(context.Context, string, float64, float64, string) (MovementHistory, error) {
	return MovementHistory{Pattern: "NORMAL"}, nil
}
