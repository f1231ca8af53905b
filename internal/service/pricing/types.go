package pricing

import (
	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/shopspring/decimal"
)

// Verdict tiers
const (
	MaxDeviationGreen  = 0.15
	MaxDeviationYellow = 0.40
)

// DefaultCurrency applies when an entry carries none
const DefaultCurrency = "USD"

// Verdict comments
const (
	CommentGreen  = "Price within normal range"
	CommentYellow = "Price deviation detected, manual review required"
	CommentRed    = "Significant price deviation, biometric verification required"
)

// ManualInput is a manually entered cost breakdown
type ManualInput struct {
	UserID        string
	OrderID       string
	MaterialsCost decimal.Decimal
	LaborCost     decimal.Decimal
	Currency      string
}

// Total returns materials plus labor
func (m ManualInput) Total() decimal.Decimal {
	return m.MaterialsCost.Add(m.LaborCost)
}

// ValidationVerdict is the traffic light outcome of a price check.
// RiskScore is the signed deviation and is not clamped.
type ValidationVerdict struct {
	Status             compliance.VerdictStatus `json:"status"`
	RiskScore          float64                  `json:"risk_score"`
	RequiresAppeal     bool                     `json:"requires_appeal"`
	RequiresBiometrics bool                     `json:"requires_biometrics"`
	SuggestedMedian    decimal.Decimal          `json:"suggested_median"`
	Comment            string                   `json:"comment"`
}

// RecordedValidation pairs a verdict with its stored audit record
type RecordedValidation struct {
	Verdict *ValidationVerdict                `json:"verdict"`
	Entry   *compliance.ManualEntryValidation `json:"entry"`
}

// NewVerdict tiers a deviation
func NewVerdict(deviation float64, median decimal.Decimal) *ValidationVerdict {
	switch {
	case deviation <= MaxDeviationGreen:
		return &ValidationVerdict{
			Status:          compliance.VerdictGreen,
			RiskScore:       deviation,
			SuggestedMedian: median,
			Comment:         CommentGreen,
		}
	case deviation <= MaxDeviationYellow:
		return &ValidationVerdict{
			Status:          compliance.VerdictYellow,
			RiskScore:       deviation,
			RequiresAppeal:  true,
			SuggestedMedian: median,
			Comment:         CommentYellow,
		}
	default:
		return &ValidationVerdict{
			Status:             compliance.VerdictRed,
			RiskScore:          deviation,
			RequiresAppeal:     true,
			RequiresBiometrics: true,
			SuggestedMedian:    median,
			Comment:            CommentRed,
		}
	}
}

// Deviation is (total - median) / median, or 1 when there is no usable median
func Deviation(total, median decimal.Decimal) float64 {
	if !median.IsPositive() {
		return 1.0
	}
	return total.Sub(median).Div(median).InexactFloat64()
}
