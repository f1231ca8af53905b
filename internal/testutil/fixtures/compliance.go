package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
)

// PassportBuilder builds test CompliancePassport values
type PassportBuilder struct {
	userID     string
	entityType string
	trustScore float64
	status     string
	biometrics bool
	data       map[string]interface{}
	expiresAt  *time.Time
}

// NewPassportBuilder creates a verified USER passport with no verification data
func NewPassportBuilder(userID string) *PassportBuilder {
	return &PassportBuilder{
		userID:     userID,
		entityType: "USER",
		trustScore: 0.8,
		status:     "VERIFIED",
		data:       make(map[string]interface{}),
	}
}

// WithFullName sets verification_data.full_name
func (b *PassportBuilder) WithFullName(name string) *PassportBuilder {
	b.data[compliance.VerificationFullName] = name
	return b
}

// WithCountry sets verification_data.country
func (b *PassportBuilder) WithCountry(country string) *PassportBuilder {
	b.data[compliance.VerificationCountry] = country
	return b
}

// WithCompany sets the current company
func (b *PassportBuilder) WithCompany(company string) *PassportBuilder {
	b.data[compliance.VerificationCompany] = company
	return b
}

// WithCompanyHistory sets previous companies in the shape JSON decoding produces
func (b *PassportBuilder) WithCompanyHistory(companies ...string) *PassportBuilder {
	items := make([]interface{}, 0, len(companies))
	for _, c := range companies {
		items = append(items, c)
	}
	b.data[compliance.VerificationCompanyHistory] = items
	return b
}

func (b *PassportBuilder) WithEntityType(entityType string) *PassportBuilder {
	b.entityType = entityType
	return b
}

func (b *PassportBuilder) WithBiometrics() *PassportBuilder {
	b.biometrics = true
	return b
}

func (b *PassportBuilder) WithExpiry(at time.Time) *PassportBuilder {
	b.expiresAt = &at
	return b
}

// Build returns the passport
func (b *PassportBuilder) Build() *compliance.CompliancePassport {
	data := make(map[string]interface{}, len(b.data))
	for k, v := range b.data {
		data[k] = v
	}
	return &compliance.CompliancePassport{
		UserID:              b.userID,
		EntityType:          b.entityType,
		TrustScore:          b.trustScore,
		ComplianceStatus:    b.status,
		IsBiometricsEnabled: b.biometrics,
		VerificationData:    data,
		ExpiresAt:           b.expiresAt,
	}
}

// ManualEntryBuilder builds test ManualEntryValidation records
type ManualEntryBuilder struct {
	entry compliance.ManualEntryValidation
}

// NewManualEntryBuilder creates a GREEN USD entry of 1000 + 0
func NewManualEntryBuilder() *ManualEntryBuilder {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &ManualEntryBuilder{entry: compliance.ManualEntryValidation{
		ID:                uuid.New(),
		UserID:            "user-1",
		OrderID:           "ORD-GEN-1",
		MaterialsCost:     decimal.NewFromInt(1000),
		LaborCost:         decimal.Zero,
		Currency:          "USD",
		RiskVerdict:       compliance.VerdictGreen,
		AIConfidenceScore: 1,
		AppealStatus:      compliance.AppealStatusNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}}
}

func (b *ManualEntryBuilder) WithOrder(orderID, currency string) *ManualEntryBuilder {
	b.entry.OrderID = orderID
	b.entry.Currency = currency
	return b
}

// WithCosts sets materials and labor from decimal strings
func (b *ManualEntryBuilder) WithCosts(materials, labor string) *ManualEntryBuilder {
	b.entry.MaterialsCost = decimal.RequireFromString(materials)
	b.entry.LaborCost = decimal.RequireFromString(labor)
	return b
}

// WithVerdict sets the verdict; non-GREEN verdicts start a pending appeal
func (b *ManualEntryBuilder) WithVerdict(v compliance.VerdictStatus, confidence float64) *ManualEntryBuilder {
	b.entry.RiskVerdict = v
	b.entry.AIConfidenceScore = confidence
	b.entry.RequiresAppeal = v != compliance.VerdictGreen
	if b.entry.RequiresAppeal {
		b.entry.AppealStatus = compliance.AppealStatusPending
	} else {
		b.entry.AppealStatus = compliance.AppealStatusNone
	}
	return b
}

func (b *ManualEntryBuilder) Build() *compliance.ManualEntryValidation {
	e := b.entry
	return &e
}
