package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
)

// ManualEntryRepository is the audit log of manual cost entries
type ManualEntryRepository struct {
	db DBTX
}

// NewManualEntryRepository creates a new manual entry repository
func NewManualEntryRepository(db DBTX) *ManualEntryRepository {
	return &ManualEntryRepository{db: db}
}

// Save inserts a new audit record
func (r *ManualEntryRepository) Save(ctx context.Context, e *compliance.ManualEntryValidation) error {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "INSERT", "manual_entry_validations")
	defer span.End()

	query := `
		INSERT INTO manual_entry_validations (
			id, user_id, order_id, materials_cost, labor_cost, currency,
			risk_verdict, ai_confidence_score, requires_appeal, appeal_status,
			auditor_comment, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		e.ID, e.UserID, e.OrderID, e.MaterialsCost, e.LaborCost, e.Currency,
		string(e.RiskVerdict), e.AIConfidenceScore, e.RequiresAppeal, string(e.AppealStatus),
		e.AuditorComment, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		telemetry.WithSpanError(span, err)
		return WrapRepositoryError(err, "save manual entry")
	}
	return nil
}

// UpdateAppealStatus sets the appeal state. A nil comment keeps the stored one.
func (r *ManualEntryRepository) UpdateAppealStatus(ctx context.Context, id uuid.UUID, status compliance.AppealStatus, auditorComment *string) error {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "UPDATE", "manual_entry_validations")
	defer span.End()

	query := `
		UPDATE manual_entry_validations
		SET appeal_status = $2,
		    auditor_comment = COALESCE($3, auditor_comment),
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, string(status), auditorComment)
	if err != nil {
		telemetry.WithSpanError(span, err)
		return WrapRepositoryError(err, "update appeal status")
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("manual entry")
	}
	return nil
}

// GetByID loads one audit record
func (r *ManualEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*compliance.ManualEntryValidation, error) {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "SELECT", "manual_entry_validations")
	defer span.End()

	query := `
		SELECT id, user_id, order_id, materials_cost, labor_cost, currency,
		       risk_verdict, ai_confidence_score, requires_appeal, appeal_status,
		       auditor_comment, created_at, updated_at
		FROM manual_entry_validations
		WHERE id = $1`

	var (
		e       compliance.ManualEntryValidation
		verdict string
		appeal  string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.UserID, &e.OrderID, &e.MaterialsCost, &e.LaborCost, &e.Currency,
		&verdict, &e.AIConfidenceScore, &e.RequiresAppeal, &appeal,
		&e.AuditorComment, &e.CreatedAt, &e.UpdatedAt,
	)
	if IsNotFound(err) {
		return nil, errors.NewNotFoundError("manual entry")
	}
	if err != nil {
		telemetry.WithSpanError(span, err)
		return nil, WrapRepositoryError(err, "get manual entry")
	}
	e.RiskVerdict = compliance.VerdictStatus(verdict)
	e.AppealStatus = compliance.AppealStatus(appeal)
	return &e, nil
}
