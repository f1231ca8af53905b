package hos

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
	"github.com/nodeorb/scm-risk-engine/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func compliantUS() DutySummary {
	return DutySummary{
		DrivingHours:        5,
		OnDutyHours:         8,
		LastBreakHours:      3,
		WeeklyDrivingHours:  40,
		LastWeeklyRestHours: 36,
	}
}

func TestService_ValidateHoursOfService(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		region         Region
		duty           func() DutySummary
		wantStatus     string
		wantViolations []string
		wantBreakMins  int
	}{
		{
			name:           "compliant US driver",
			region:         RegionUS,
			duty:           compliantUS,
			wantStatus:     StatusCompliant,
			wantViolations: []string{},
		},
		{
			name:   "US daily driving at the limit is a violation",
			region: RegionUS,
			duty: func() DutySummary {
				d := compliantUS()
				d.DrivingHours = 11.0
				return d
			},
			wantStatus:     StatusViolation,
			wantViolations: []string{ViolationDailyDriving},
		},
		{
			name:   "US daily driving just below the limit",
			region: RegionUS,
			duty: func() DutySummary {
				d := compliantUS()
				d.DrivingHours = 10.99
				return d
			},
			wantStatus:     StatusCompliant,
			wantViolations: []string{},
		},
		{
			name:   "EU tighter limits",
			region: RegionEU,
			duty: func() DutySummary {
				return DutySummary{
					DrivingHours:        9,
					OnDutyHours:         11,
					LastBreakHours:      4.5,
					WeeklyDrivingHours:  56,
					LastWeeklyRestHours: 44,
				}
			},
			wantStatus: StatusViolation,
			wantViolations: []string{
				ViolationDailyDriving,
				ViolationDailyOnDuty,
				ViolationWeekly,
				ViolationWeeklyRest,
			},
		},
		{
			name:   "missed break reports minutes owed",
			region: RegionEU,
			duty: func() DutySummary {
				return DutySummary{LastBreakHours: 1.0, LastWeeklyRestHours: 45}
			},
			wantStatus:     StatusViolation,
			wantViolations: []string{ViolationBreak},
			wantBreakMins:  180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := new(mockLogSource)
			logs.On("DutySummary", mock.Anything, "d1", now).Return(tt.duty(), nil)

			bus := new(mocks.EventBus)
			if tt.wantStatus == StatusViolation {
				bus.ExpectPublish(security.EventHoursOfServiceViolation).Return(nil).Once()
			}

			svc := NewService(logs, bus, zap.NewNop(), nil)
			result, err := svc.ValidateHoursOfService(ctx, "d1", "v1", now, tt.region)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.ComplianceStatus)
			assert.Equal(t, tt.wantViolations, result.Violations)
			assert.Equal(t, tt.wantBreakMins, result.TimeToNextBreakMinutes)
			assert.Equal(t, now, result.Timestamp)

			bus.AssertExpectations(t)
			if tt.wantStatus == StatusCompliant {
				bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_ValidateHoursOfService_StaticSource(t *testing.T) {
	bus := new(mocks.EventBus)
	bus.ExpectPublish(security.EventHoursOfServiceViolation).Return(nil).Once()
	svc := NewService(nil, bus, zap.NewNop(), nil)

	result, err := svc.ValidateHoursOfService(context.Background(), "d1", "v1", now, "")
	require.NoError(t, err)

	assert.Equal(t, RegionUS, result.Region)
	assert.Equal(t, []string{ViolationBreak}, result.Violations)
	assert.InDelta(t, 4.5, result.RemainingDrivingHours, 1e-9)
	assert.InDelta(t, 5.0, result.RemainingOnDemandHours, 1e-9)
	assert.Equal(t, 0, result.TimeToNextBreakMinutes)
	assert.Equal(t, 45.0, result.WeeklyHours)

	details := bus.Published()[0].Details
	assert.Equal(t, "v1", details["vehicle_id"])
	assert.Equal(t, "4", details["remaining_hours"])
	assert.Equal(t, ViolationBreak, details["violation_reason"])
}

func TestService_ValidateHoursOfService_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("log source unavailable", func(t *testing.T) {
		logs := new(mockLogSource)
		logs.On("DutySummary", mock.Anything, "d1", now).Return(DutySummary{}, stderrors.New("eld offline"))

		_, err := NewService(logs, new(mocks.EventBus), zap.NewNop(), nil).ValidateHoursOfService(ctx, "d1", "v1", now, RegionUS)
		assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	})

	t.Run("missing driver id", func(t *testing.T) {
		_, err := NewService(nil, new(mocks.EventBus), zap.NewNop(), nil).ValidateHoursOfService(ctx, "", "v1", now, RegionUS)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})
}

func TestService_CanStartShift(t *testing.T) {
	tests := []struct {
		name          string
		sinceShiftEnd time.Duration
		region        Region
		wantCanStart  bool
		wantUntil     int
	}{
		{"US after twelve hours", 12 * time.Hour, RegionUS, true, 0},
		{"US after nine and a half hours", 9*time.Hour + 30*time.Minute, RegionUS, false, 1},
		{"EU after nine hours", 9 * time.Hour, RegionEU, true, 0},
		{"EU after six hours", 6 * time.Hour, RegionEU, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := new(mockLogSource)
			logs.On("LastShiftEnd", mock.Anything, "d1", now).Return(now.Add(-tt.sinceShiftEnd), nil)

			result, err := NewService(logs, new(mocks.EventBus), zap.NewNop(), nil).CanStartShift(context.Background(), "d1", now, tt.region)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCanStart, result.CanStart)
			assert.Equal(t, tt.wantUntil, result.HoursUntilEligible)
			assert.Equal(t, now.Add(-tt.sinceShiftEnd), result.LastShiftEnd)
		})
	}
}

func TestService_DetectDriverFatigue(t *testing.T) {
	svc := NewService(nil, new(mocks.EventBus), zap.NewNop(), nil)

	tests := []struct {
		name        string
		speed       float64
		accel       []float64
		hour        int
		wantScore   float64
		wantFactors []string
		wantAction  string
	}{
		{
			name:        "alert daytime driver",
			speed:       90,
			accel:       []float64{0.5, 0.3},
			hour:        14,
			wantScore:   0,
			wantFactors: []string{},
			wantAction:  ActionContinueMonitoring,
		},
		{
			name:        "night and smooth driving",
			speed:       90,
			accel:       []float64{0.05, 0.02},
			hour:        23,
			wantScore:   0.7,
			wantFactors: []string{FactorNightDriving, FactorLowAcceleration},
			wantAction:  ActionStopAndRest,
		},
		{
			name:        "early morning slow driving stays below threshold",
			speed:       30,
			accel:       []float64{0.4},
			hour:        5,
			wantScore:   0.5,
			wantFactors: []string{FactorNightDriving, FactorLowSpeed},
			wantAction:  ActionContinueMonitoring,
		},
		{
			name:        "six o'clock is daytime",
			speed:       30,
			accel:       nil,
			hour:        6,
			wantScore:   0.2,
			wantFactors: []string{FactorLowSpeed},
			wantAction:  ActionContinueMonitoring,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.DetectDriverFatigue(context.Background(), "d1", tt.speed, tt.accel, tt.hour)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantScore, result.FatigueScore, 1e-9)
			assert.Equal(t, tt.wantFactors, result.ContributingFactors)
			assert.Equal(t, tt.wantAction, result.RecommendedAction)
		})
	}

	_, err := svc.DetectDriverFatigue(context.Background(), "d1", 50, nil, 24)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestParseRegion(t *testing.T) {
	assert.Equal(t, RegionEU, ParseRegion("eu"))
	assert.Equal(t, RegionUS, ParseRegion("US"))
	assert.Equal(t, RegionUS, ParseRegion("APAC"))
	assert.Equal(t, RegionUS, ParseRegion(""))
}
