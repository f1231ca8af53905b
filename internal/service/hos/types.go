package hos

import (
	"strings"
	"time"
)

// Region selects a regulatory rule table
type Region string

const (
	RegionUS Region = "US"
	RegionEU Region = "EU"
)

// ParseRegion maps a region code onto a Region, US for anything unknown
func ParseRegion(s string) Region {
	if strings.EqualFold(strings.TrimSpace(s), string(RegionEU)) {
		return RegionEU
	}
	return RegionUS
}

// RegionRules are the duty limits of one region, in hours
type RegionRules struct {
	MaxDailyDriving    float64
	MaxDailyOnDuty     float64
	RequiredBreak      float64
	MaxWeeklyDriving   float64
	RequiredWeeklyRest float64
	RequiredDailyRest  float64
}

// RulesFor returns the rule table of a region
func RulesFor(region Region) RegionRules {
	if region == RegionEU {
		return RegionRules{
			MaxDailyDriving:    9.0,
			MaxDailyOnDuty:     9.0 + 2,
			RequiredBreak:      4.5,
			MaxWeeklyDriving:   56.0,
			RequiredWeeklyRest: 45.0,
			RequiredDailyRest:  9.0,
		}
	}
	return RegionRules{
		MaxDailyDriving:    11.0,
		MaxDailyOnDuty:     14.0,
		RequiredBreak:      3.0,
		MaxWeeklyDriving:   70.0,
		RequiredWeeklyRest: 34.0,
		RequiredDailyRest:  10.0,
	}
}

// Compliance statuses
const (
	StatusCompliant = "COMPLIANT"
	StatusViolation = "VIOLATION"
)

// Violation descriptions
const (
	ViolationDailyDriving = "Daily driving limit exceeded"
	ViolationDailyOnDuty  = "Daily on-demand limit exceeded"
	ViolationBreak        = "Required break not taken"
	ViolationWeekly       = "Weekly driving limit exceeded"
	ViolationWeeklyRest   = "Required weekly rest not taken"
)

// Fatigue heuristics
const (
	NightStartHour       = 22
	NightEndHour         = 6
	NightScore           = 0.3
	LowAccelerationLimit = 0.1
	LowAccelerationScore = 0.4
	LowSpeedLimitKmh     = 40.0
	LowSpeedScore        = 0.2
	FatigueThreshold     = 0.5
)

// Fatigue factors and recommended actions
const (
	FactorNightDriving    = "Night driving"
	FactorLowAcceleration = "Reduced acceleration"
	FactorLowSpeed        = "Low speed"

	ActionStopAndRest        = "STOP_AND_REST"
	ActionContinueMonitoring = "CONTINUE_MONITORING"
)

// DutySummary is the ELD aggregate a validation runs against, in hours
type DutySummary struct {
	DrivingHours        float64 `json:"driving_hours"`
	OnDutyHours         float64 `json:"on_duty_hours"`
	LastBreakHours      float64 `json:"last_break_hours"`
	WeeklyDrivingHours  float64 `json:"weekly_driving_hours"`
	LastWeeklyRestHours float64 `json:"last_weekly_rest_hours"`
}

// HoursOfServiceResult is the outcome of a duty rule evaluation
type HoursOfServiceResult struct {
	DriverID               string    `json:"driver_id"`
	VehicleID              string    `json:"vehicle_id"`
	Region                 Region    `json:"region"`
	ComplianceStatus       string    `json:"compliance_status"`
	Violations             []string  `json:"violations"`
	RemainingDrivingHours  float64   `json:"remaining_driving_hours"`
	RemainingOnDemandHours float64   `json:"remaining_on_demand_hours"`
	TimeToNextBreakMinutes int       `json:"time_to_next_break"`
	WeeklyHours            float64   `json:"weekly_hours"`
	Timestamp              time.Time `json:"timestamp"`
}

// ShiftEligibilityResult is the outcome of a shift start check
type ShiftEligibilityResult struct {
	CanStart           bool      `json:"can_start"`
	HoursUntilEligible int       `json:"time_until_eligible"`
	LastShiftEnd       time.Time `json:"last_shift_end"`
	RequiredRestHours  float64   `json:"required_rest_hours"`
}

// FatigueDetectionResult is the outcome of the fatigue heuristic
type FatigueDetectionResult struct {
	IsFatigued          bool     `json:"is_fatigued"`
	FatigueScore        float64  `json:"fatigue_score"`
	ContributingFactors []string `json:"contributing_factors"`
	RecommendedAction   string   `json:"recommended_action"`
}
