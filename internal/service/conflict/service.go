package conflict

import (
	"context"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const component = "conflict"

// detector implements the Service interface
type detector struct {
	repo    compliance.ComplianceRepository
	direct  DirectRelationshipSource
	history TransactionHistorySource
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewService creates a new conflict of interest detector. Nil sources fall back to the defaults.
func NewService(
	repo compliance.ComplianceRepository,
	direct DirectRelationshipSource,
	history TransactionHistorySource,
	logger *zap.Logger,
	registry *metrics.Registry,
) Service {
	if direct == nil {
		direct = NoDirectRelationship{}
	}
	if history == nil {
		history = BaselineTransactionHistory{Score: DefaultTransactionHistory}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &detector{
		repo:    repo,
		direct:  direct,
		history: history,
		logger:  logger.Named(component),
		metrics: registry,
	}
}

// CheckConflictOfInterest combines the direct, indirect and history signals
func (d *detector) CheckConflictOfInterest(ctx context.Context, shipperUserID, carrierUserID, orderID string) (result *ConflictCheckResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "CheckConflictOfInterest",
		attribute.String("shipper_user_id", shipperUserID),
		attribute.String("carrier_user_id", carrierUserID),
		attribute.String("order_id", orderID),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.WithSpanError(span, err)
		d.metrics.RecordCheck(ctx, "conflict_of_interest", metrics.Outcome(result != nil && result.HasConflict, err), time.Since(start))
	}()

	if shipperUserID == "" || carrierUserID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "shipper and carrier user ids are required")
	}

	direct, err := d.direct.DirectRelationship(ctx, shipperUserID, carrierUserID)
	if err != nil {
		return nil, errors.NewExternalError("relationship-registry", "direct relationship lookup failed").WithCause(err)
	}

	indirect, err := d.indirectRelationship(ctx, shipperUserID, carrierUserID)
	if err != nil {
		return nil, err
	}

	history, err := d.history.TransactionHistory(ctx, shipperUserID, carrierUserID)
	if err != nil {
		return nil, errors.NewExternalError("transaction-history", "transaction history lookup failed").WithCause(err)
	}

	score := direct*DirectWeight + indirect*IndirectWeight + history*HistoryWeight

	relationships := []string{}
	if direct > 0 {
		relationships = append(relationships, RelationshipDirect)
	}
	if indirect > 0 {
		relationships = append(relationships, RelationshipCompany)
	}
	if history > 0 {
		relationships = append(relationships, RelationshipFrequent)
	}

	result = &ConflictCheckResult{
		HasConflict:           score > ConflictThreshold,
		ConflictScore:         score,
		DetectedRelationships: relationships,
		RiskLevel:             RiskLevelFor(score),
		Recommendation:        RecommendationFor(score),
	}

	if result.HasConflict {
		telemetry.WithTrace(ctx, d.logger).Warn("conflict of interest detected",
			zap.String("shipper_user_id", shipperUserID),
			zap.String("carrier_user_id", carrierUserID),
			zap.String("order_id", orderID),
			zap.Float64("conflict_score", score),
		)
	}
	return result, nil
}

// indirectRelationship scores the companies both parties share. Missing passports score 0.
func (d *detector) indirectRelationship(ctx context.Context, shipperUserID, carrierUserID string) (float64, error) {
	var shipper, carrier *compliance.CompliancePassport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := d.repo.GetCompliancePassport(gctx, shipperUserID)
		shipper = p
		return err
	})
	g.Go(func() error {
		p, err := d.repo.GetCompliancePassport(gctx, carrierUserID)
		carrier = p
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, errors.NewExternalError("compliance-repository", "failed to load compliance passports").WithCause(err)
	}

	if shipper == nil || carrier == nil {
		return 0, nil
	}
	return IndirectScore(CommonCompanies(shipper, carrier)), nil
}

// CommonCompanies counts companies present in both passports' histories
func CommonCompanies(a, b *compliance.CompliancePassport) int {
	other := b.Companies()
	common := 0
	for company := range a.Companies() {
		if _, ok := other[company]; ok {
			common++
		}
	}
	return common
}

// IndirectScore is 0.3 per common company, saturating at 0.8
func IndirectScore(commonCompanies int) float64 {
	if commonCompanies <= 0 {
		return 0
	}
	score := float64(commonCompanies) * CommonCompanyScore
	if score > MaxIndirectScore {
		return MaxIndirectScore
	}
	return score
}

// RiskLevelFor maps a conflict score onto a risk tier
func RiskLevelFor(score float64) compliance.RiskLevel {
	switch {
	case score >= 0.8:
		return compliance.RiskLevelCritical
	case score >= 0.6:
		return compliance.RiskLevelHigh
	case score >= 0.4:
		return compliance.RiskLevelMedium
	case score >= 0.2:
		return compliance.RiskLevelLow
	default:
		return compliance.RiskLevelNone
	}
}

// RecommendationFor maps a conflict score onto an action
func RecommendationFor(score float64) Recommendation {
	switch {
	case score >= 0.8:
		return RecommendBlock
	case score >= 0.6:
		return RecommendManualReview
	case score >= 0.4:
		return RecommendEnhancedMonitor
	default:
		return RecommendProceed
	}
}
