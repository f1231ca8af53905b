package pricing

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// PrefixPrice is the base price of orders whose id starts with Prefix
type PrefixPrice struct {
	Prefix string
	Price  decimal.Decimal
}

// BasePrices resolves the base price of an order from its id
type BasePrices struct {
	Prefixes []PrefixPrice
	Default  decimal.Decimal
}

// DefaultBasePrices: dangerous goods 2000, refrigerated 1500, everything else 1000
func DefaultBasePrices() BasePrices {
	return BasePrices{
		Prefixes: []PrefixPrice{
			{Prefix: "ORD-ADR", Price: decimal.NewFromInt(2000)},
			{Prefix: "ORD-REF", Price: decimal.NewFromInt(1500)},
		},
		Default: decimal.NewFromInt(1000),
	}
}

// For returns the first matching prefix price, or the default
func (b BasePrices) For(orderID string) decimal.Decimal {
	for _, p := range b.Prefixes {
		if strings.HasPrefix(orderID, p.Prefix) {
			return p.Price
		}
	}
	return b.Default
}

// OrderCategory returns the first two dash separated segments of an order id
// ("ORD-ADR-0042" -> "ORD-ADR"), or the whole id when it has fewer.
func OrderCategory(orderID string) string {
	parts := strings.SplitN(orderID, "-", 3)
	if len(parts) < 2 {
		return orderID
	}
	return parts[0] + "-" + parts[1]
}

// StaticMedianSource returns the base price without jitter
type StaticMedianSource struct {
	Prices BasePrices
}

func (s StaticMedianSource) HistoricalMedian(_ context.Context, orderID, _ string) (decimal.Decimal, error) {
	return s.Prices.For(orderID), nil
}

// RandomizedMedianSource simulates market noise: base price scaled by a factor
// in [0.8, 1.2). Development use only.
type RandomizedMedianSource struct {
	prices BasePrices
	mu     sync.Mutex
	rng    *rand.Rand
}

// NewRandomizedMedianSource creates the source. Pass a seeded rng for reproducible runs.
func NewRandomizedMedianSource(prices BasePrices, rng *rand.Rand) *RandomizedMedianSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &RandomizedMedianSource{prices: prices, rng: rng}
}

func (s *RandomizedMedianSource) HistoricalMedian(_ context.Context, orderID, _ string) (decimal.Decimal, error) {
	s.mu.Lock()
	jitter := 0.8 + s.rng.Float64()*0.4
	s.mu.Unlock()

	return s.prices.For(orderID).Mul(decimal.NewFromFloat(jitter)), nil
}
