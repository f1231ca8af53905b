package pricing

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const component = "market-oracle"

type service struct {
	medians MedianSource
	entries compliance.ManualEntryRepository
	bus     security.EventBus
	logger  *zap.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// Option configures the market oracle
type Option func(*service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

// NewService creates a new market oracle. A nil median source falls back to
// static base prices.
func NewService(medians MedianSource, entries compliance.ManualEntryRepository, bus security.EventBus,
	logger *zap.Logger, registry *metrics.Registry, opts ...Option) Service {
	if medians == nil {
		medians = StaticMedianSource{Prices: DefaultBasePrices()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		medians: medians,
		entries: entries,
		bus:     bus,
		logger:  logger.Named(component),
		metrics: registry,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateInput(input ManualInput) error {
	if strings.TrimSpace(input.OrderID) == "" {
		return errors.NewValidationError("INVALID_ID", "order id is required")
	}
	if input.MaterialsCost.IsNegative() || input.LaborCost.IsNegative() {
		return errors.NewValidationError("INVALID_COST", "costs must not be negative")
	}
	return nil
}

func normalize(input ManualInput) ManualInput {
	if strings.TrimSpace(input.Currency) == "" {
		input.Currency = DefaultCurrency
	}
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	return input
}

// ValidateManualInput compares the entered total against the historical median
func (s *service) ValidateManualInput(ctx context.Context, input ManualInput) (verdict *ValidationVerdict, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "ValidateManualInput",
		attribute.String("order_id", input.OrderID),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.WithSpanError(span, err)
		violation := verdict != nil && verdict.Status != compliance.VerdictGreen
		s.metrics.RecordCheck(ctx, "manual_price", metrics.Outcome(violation, err), time.Since(start))
	}()

	if err := validateInput(input); err != nil {
		return nil, err
	}
	input = normalize(input)

	median, err := s.medians.HistoricalMedian(ctx, input.OrderID, input.Currency)
	if err != nil {
		return nil, errors.NewExternalError("price-history", "failed to load historical median").WithCause(err)
	}

	deviation := Deviation(input.Total(), median)
	verdict = NewVerdict(deviation, median)

	log := telemetry.WithTrace(ctx, s.logger)
	fields := []zap.Field{
		zap.String("order_id", input.OrderID),
		zap.String("total", input.Total().String()),
		zap.String("median", median.String()),
		zap.Float64("deviation", deviation),
		zap.String("status", string(verdict.Status)),
	}
	if verdict.Status == compliance.VerdictGreen {
		log.Debug("manual price within range", fields...)
	} else {
		log.Warn("manual price deviation", fields...)
	}
	return verdict, nil
}

// SaveManualEntry stores the audit record. Entries needing an appeal start PENDING.
func (s *service) SaveManualEntry(ctx context.Context, input ManualInput, verdict *ValidationVerdict) (*compliance.ManualEntryValidation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "SaveManualEntry",
		attribute.String("order_id", input.OrderID),
	)
	defer span.End()

	if verdict == nil {
		err := errors.NewValidationError("INVALID_VERDICT", "verdict is required")
		telemetry.WithSpanError(span, err)
		return nil, err
	}
	if err := validateInput(input); err != nil {
		telemetry.WithSpanError(span, err)
		return nil, err
	}
	input = normalize(input)

	appeal := compliance.AppealStatusNone
	if verdict.RequiresAppeal {
		appeal = compliance.AppealStatusPending
	}
	now := s.now()
	entry := &compliance.ManualEntryValidation{
		ID:                uuid.New(),
		UserID:            input.UserID,
		OrderID:           input.OrderID,
		MaterialsCost:     input.MaterialsCost,
		LaborCost:         input.LaborCost,
		Currency:          input.Currency,
		RiskVerdict:       verdict.Status,
		AIConfidenceScore: 1 - verdict.RiskScore,
		RequiresAppeal:    verdict.RequiresAppeal,
		AppealStatus:      appeal,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.entries.Save(ctx, entry); err != nil {
		err = errors.NewExternalError("manual-entry-repository", "failed to save manual entry").WithCause(err)
		telemetry.WithSpanError(span, err)
		return nil, err
	}

	s.logger.Info("manual entry recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.String("order_id", entry.OrderID),
		zap.String("verdict", string(entry.RiskVerdict)),
	)
	return entry, nil
}

// UpdateAppealStatus moves an entry through the appeal workflow
func (s *service) UpdateAppealStatus(ctx context.Context, id uuid.UUID, status compliance.AppealStatus, auditorComment *string) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "UpdateAppealStatus",
		attribute.String("entry_id", id.String()),
		attribute.String("status", string(status)),
	)
	defer span.End()
	defer func() { telemetry.WithSpanError(span, err) }()

	if id == uuid.Nil {
		return errors.NewValidationError("INVALID_ID", "entry id is required")
	}
	parsed, perr := compliance.ParseAppealStatus(string(status))
	if perr != nil {
		return errors.NewValidationError("INVALID_APPEAL_STATUS", perr.Error())
	}

	if err := s.entries.UpdateAppealStatus(ctx, id, parsed, auditorComment); err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		return errors.NewExternalError("manual-entry-repository", "failed to update appeal status").WithCause(err)
	}

	telemetry.WithTrace(ctx, s.logger).Info("appeal status updated",
		zap.String("entry_id", id.String()),
		zap.String("status", string(parsed)),
	)
	return nil
}

// ValidateAndRecord validates, persists, and publishes a price anomaly for YELLOW and RED verdicts
func (s *service) ValidateAndRecord(ctx context.Context, input ManualInput) (*RecordedValidation, error) {
	verdict, err := s.ValidateManualInput(ctx, input)
	if err != nil {
		return nil, err
	}

	entry, err := s.SaveManualEntry(ctx, input, verdict)
	if err != nil {
		return nil, err
	}

	if verdict.Status != compliance.VerdictGreen {
		event := security.PriceAnomaly(input.UserID, input.OrderID, verdict.RiskScore,
			verdict.SuggestedMedian.InexactFloat64(), s.now())
		if err := security.Publish(ctx, s.bus, event); err != nil {
			return nil, err
		}
	}
	return &RecordedValidation{Verdict: verdict, Entry: entry}, nil
}
