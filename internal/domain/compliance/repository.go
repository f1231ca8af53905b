package compliance

import (
	"context"

	"github.com/google/uuid"
)

// ComplianceRepository provides read access to compliance passports
type ComplianceRepository interface {
	// GetCompliancePassport returns nil, nil when the user has no passport
	GetCompliancePassport(ctx context.Context, userID string) (*CompliancePassport, error)
}

// ManualEntryRepository persists manual cost entries and their appeal workflow
type ManualEntryRepository interface {
	// Save stores a new manual entry validation record
	Save(ctx context.Context, entry *ManualEntryValidation) error

	// UpdateAppealStatus changes the appeal state of an existing record.
	// Returns a not-found AppError when the record does not exist.
	UpdateAppealStatus(ctx context.Context, id uuid.UUID, status AppealStatus, auditorComment *string) error
}
