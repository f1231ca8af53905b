package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/shopspring/decimal"
)

// Service defines the market oracle interface
type Service interface {
	// ValidateManualInput compares a manual cost entry with the historical median
	ValidateManualInput(ctx context.Context, input ManualInput) (*ValidationVerdict, error)
	// SaveManualEntry persists the audit record of a validated entry
	SaveManualEntry(ctx context.Context, input ManualInput, verdict *ValidationVerdict) (*compliance.ManualEntryValidation, error)
	// UpdateAppealStatus moves an audit record through the appeal workflow
	UpdateAppealStatus(ctx context.Context, id uuid.UUID, status compliance.AppealStatus, auditorComment *string) error
	// ValidateAndRecord validates, persists and reports anomalies in one call
	ValidateAndRecord(ctx context.Context, input ManualInput) (*RecordedValidation, error)
}

// MedianSource supplies the historical median price of comparable orders
type MedianSource interface {
	HistoricalMedian(ctx context.Context, orderID, currency string) (decimal.Decimal, error)
}
