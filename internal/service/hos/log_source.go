package hos

import (
	"context"
	"time"
)

// StaticLogSource returns fixed duty figures. It stands in for an ELD feed in
// development and keeps the engine usable without a database.
type StaticLogSource struct {
	Summary       DutySummary
	SinceShiftEnd time.Duration
}

// NewStaticLogSource returns the development figures: 6.5 h driving, 9 h on duty,
// 2.5 h since the last break, 45 h weekly, 40 h weekly rest, last shift ended 12 h ago
func NewStaticLogSource() *StaticLogSource {
	return &StaticLogSource{
		Summary: DutySummary{
			DrivingHours:        6.5,
			OnDutyHours:         9.0,
			LastBreakHours:      2.5,
			WeeklyDrivingHours:  45.0,
			LastWeeklyRestHours: 40.0,
		},
		SinceShiftEnd: 12 * time.Hour,
	}
}

func (s *StaticLogSource) DutySummary(context.Context, string, time.Time) (DutySummary, error) {
	return s.Summary, nil
}

func (s *StaticLogSource) LastShiftEnd(_ context.Context, _ string, at time.Time) (time.Time, error) {
	return at.Add(-s.SinceShiftEnd), nil
}
