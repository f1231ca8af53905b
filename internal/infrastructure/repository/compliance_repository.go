package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
)

// ComplianceRepository reads compliance passports from postgres
type ComplianceRepository struct {
	db DBTX
}

// NewComplianceRepository creates a new compliance repository
func NewComplianceRepository(db DBTX) *ComplianceRepository {
	return &ComplianceRepository{db: db}
}

// GetCompliancePassport returns nil, nil when the user has no passport
func (r *ComplianceRepository) GetCompliancePassport(ctx context.Context, userID string) (*compliance.CompliancePassport, error) {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "SELECT", "compliance_passports")
	defer span.End()

	query := `
		SELECT user_id, entity_type, trust_score, compliance_status,
		       is_biometrics_enabled, verification_data, expires_at
		FROM compliance_passports
		WHERE user_id = $1`

	var p compliance.CompliancePassport
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.EntityType,
		&p.TrustScore,
		&p.ComplianceStatus,
		&p.IsBiometricsEnabled,
		&p.VerificationData,
		&p.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		telemetry.WithSpanError(span, err)
		return nil, WrapRepositoryError(err, "get compliance passport")
	}
	return &p, nil
}

// UpsertCompliancePassport creates or replaces a passport. The engine never
// writes passports itself; this feeds fixtures and the admin import path.
func (r *ComplianceRepository) UpsertCompliancePassport(ctx context.Context, p *compliance.CompliancePassport) error {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "UPSERT", "compliance_passports")
	defer span.End()

	data := p.VerificationData
	if data == nil {
		data = map[string]interface{}{}
	}

	query := `
		INSERT INTO compliance_passports (
			user_id, entity_type, trust_score, compliance_status,
			is_biometrics_enabled, verification_data, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			entity_type = EXCLUDED.entity_type,
			trust_score = EXCLUDED.trust_score,
			compliance_status = EXCLUDED.compliance_status,
			is_biometrics_enabled = EXCLUDED.is_biometrics_enabled,
			verification_data = EXCLUDED.verification_data,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query,
		p.UserID, p.EntityType, p.TrustScore, p.ComplianceStatus,
		p.IsBiometricsEnabled, data, p.ExpiresAt,
	)
	if err != nil {
		telemetry.WithSpanError(span, err)
		return WrapRepositoryError(err, "upsert compliance passport")
	}
	return nil
}
