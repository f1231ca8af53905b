package repository

import (
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
)

// Repositories holds all repository instances
type Repositories struct {
	Compliance   *ComplianceRepository
	ManualEntry  *ManualEntryRepository
	ELD          *ELDRepository
	PriceHistory *PriceHistoryRepository
}

// NewRepositories creates a new repository collection over one pool
func NewRepositories(db DBTX, medianFallback pricing.MedianSource) *Repositories {
	return &Repositories{
		Compliance:   NewComplianceRepository(db),
		ManualEntry:  NewManualEntryRepository(db),
		ELD:          NewELDRepository(db),
		PriceHistory: NewPriceHistoryRepository(db, medianFallback),
	}
}
