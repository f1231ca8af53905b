package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
)

// PriceHistoryRepository derives the market median from accepted manual entries
type PriceHistoryRepository struct {
	db       DBTX
	fallback pricing.MedianSource
}

// NewPriceHistoryRepository creates the postgres median source. fallback answers
// when there is no GREEN history for the order category and currency.
func NewPriceHistoryRepository(db DBTX, fallback pricing.MedianSource) *PriceHistoryRepository {
	if fallback == nil {
		fallback = pricing.StaticMedianSource{Prices: pricing.DefaultBasePrices()}
	}
	return &PriceHistoryRepository{db: db, fallback: fallback}
}

var _ pricing.MedianSource = (*PriceHistoryRepository)(nil)

// HistoricalMedian is the median total of GREEN entries sharing the order category and currency
func (r *PriceHistoryRepository) HistoricalMedian(ctx context.Context, orderID, currency string) (decimal.Decimal, error) {
	ctx, span := telemetry.StartDatabaseSpan(ctx, "SELECT", "manual_entry_validations")
	defer span.End()

	query := `
		SELECT percentile_cont(0.5) WITHIN GROUP (ORDER BY materials_cost + labor_cost)::numeric
		FROM manual_entry_validations
		WHERE risk_verdict = 'GREEN'
		  AND currency = $1
		  AND starts_with(order_id, $2)`

	var median decimal.NullDecimal
	if err := r.db.QueryRow(ctx, query, currency, pricing.OrderCategory(orderID)).Scan(&median); err != nil {
		telemetry.WithSpanError(span, err)
		return decimal.Zero, WrapRepositoryError(err, "historical median")
	}
	if !median.Valid {
		return r.fallback.HistoricalMedian(ctx, orderID, currency)
	}
	return median.Decimal, nil
}
