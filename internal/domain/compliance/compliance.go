package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Verification data keys read by the risk engine
const (
	VerificationFullName       = "full_name"
	VerificationCompany        = "company"
	VerificationCompanyHistory = "company_history"
	VerificationCountry        = "country"
)

// CompliancePassport is the per-user or per-company verification record.
// The engine only reads it; the compliance repository owns its lifecycle.
type CompliancePassport struct {
	UserID              string                 `json:"user_id"`
	EntityType          string                 `json:"entity_type"`
	TrustScore          float64                `json:"trust_score"`
	ComplianceStatus    string                 `json:"compliance_status"`
	IsBiometricsEnabled bool                   `json:"is_biometrics_enabled"`
	VerificationData    map[string]interface{} `json:"verification_data"`
	ExpiresAt           *time.Time             `json:"expires_at,omitempty"`
}

// StringField returns a string verification attribute, empty when absent or not a string
func (p *CompliancePassport) StringField(key string) string {
	if p == nil || p.VerificationData == nil {
		return ""
	}
	s, _ := p.VerificationData[key].(string)
	return s
}

// StringList returns a list verification attribute. Both []string and the
// []interface{} produced by JSON decoding are accepted; non-string items are skipped.
func (p *CompliancePassport) StringList(key string) []string {
	if p == nil || p.VerificationData == nil {
		return nil
	}
	switch v := p.VerificationData[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (p *CompliancePassport) FullName() string { return p.StringField(VerificationFullName) }
func (p *CompliancePassport) Company() string  { return p.StringField(VerificationCompany) }
func (p *CompliancePassport) Country() string  { return p.StringField(VerificationCountry) }

// Companies returns the normalised set of companies the subject is or was associated with
func (p *CompliancePassport) Companies() map[string]struct{} {
	set := make(map[string]struct{})
	add := func(name string) {
		n := strings.ToLower(strings.TrimSpace(name))
		if n != "" {
			set[n] = struct{}{}
		}
	}

	add(p.Company())
	for _, c := range p.StringList(VerificationCompanyHistory) {
		add(c)
	}
	return set
}

// RiskLevel is the closed set of risk tiers shared by sanctions and conflict checks
type RiskLevel string

const (
	RiskLevelNone     RiskLevel = "NONE"
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// VerdictStatus is the market oracle traffic light
type VerdictStatus string

const (
	VerdictGreen  VerdictStatus = "GREEN"
	VerdictYellow VerdictStatus = "YELLOW"
	VerdictRed    VerdictStatus = "RED"
)

// AppealStatus tracks the appeal workflow of a manual entry
type AppealStatus string

const (
	AppealStatusNone      AppealStatus = "NONE"
	AppealStatusPending   AppealStatus = "PENDING"
	AppealStatusSubmitted AppealStatus = "SUBMITTED"
	AppealStatusApproved  AppealStatus = "APPROVED"
	AppealStatusRejected  AppealStatus = "REJECTED"
)

// ParseAppealStatus converts a case-insensitive string into an AppealStatus
func ParseAppealStatus(s string) (AppealStatus, error) {
	switch status := AppealStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case AppealStatusNone, AppealStatusPending, AppealStatusSubmitted, AppealStatusApproved, AppealStatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("unknown appeal status %q", s)
	}
}

// ManualEntryValidation is the audit record of a manually entered cost and its verdict
type ManualEntryValidation struct {
	ID                uuid.UUID       `json:"id"`
	UserID            string          `json:"user_id"`
	OrderID           string          `json:"order_id"`
	MaterialsCost     decimal.Decimal `json:"materials_cost"`
	LaborCost         decimal.Decimal `json:"labor_cost"`
	Currency          string          `json:"currency"`
	RiskVerdict       VerdictStatus   `json:"risk_verdict"`
	AIConfidenceScore float64         `json:"ai_confidence_score"`
	RequiresAppeal    bool            `json:"requires_appeal"`
	AppealStatus      AppealStatus    `json:"appeal_status"`
	AuditorComment    *string         `json:"auditor_comment,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
