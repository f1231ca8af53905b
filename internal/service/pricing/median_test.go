package pricing

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasePrices_For(t *testing.T) {
	prices := DefaultBasePrices()

	tests := []struct {
		orderID      string
		want         int64
		wantCategory string
	}{
		{"ORD-ADR-0042", 2000, "ORD-ADR"},
		{"ORD-REF-7", 1500, "ORD-REF"},
		{"ORD-GEN-1", 1000, "ORD-GEN"},
		{"ord-adr-lowercase", 1000, "ord-adr"},
		{"12345", 1000, "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.orderID, func(t *testing.T) {
			assert.True(t, decimal.NewFromInt(tt.want).Equal(prices.For(tt.orderID)))
			assert.Equal(t, tt.wantCategory, OrderCategory(tt.orderID))
		})
	}
}

func TestRandomizedMedianSource_Bounds(t *testing.T) {
	src := NewRandomizedMedianSource(DefaultBasePrices(), rand.New(rand.NewSource(7)))
	low := decimal.NewFromInt(1600)
	high := decimal.NewFromInt(2400)

	for i := 0; i < 200; i++ {
		median, err := src.HistoricalMedian(context.Background(), "ORD-ADR-1", "USD")
		require.NoError(t, err)
		assert.True(t, median.GreaterThanOrEqual(low), median.String())
		assert.True(t, median.LessThan(high), median.String())
	}
}

func TestRandomizedMedianSource_Seeded(t *testing.T) {
	a := NewRandomizedMedianSource(DefaultBasePrices(), rand.New(rand.NewSource(42)))
	b := NewRandomizedMedianSource(DefaultBasePrices(), rand.New(rand.NewSource(42)))

	ma, _ := a.HistoricalMedian(context.Background(), "ORD-1", "USD")
	mb, _ := b.HistoricalMedian(context.Background(), "ORD-1", "USD")
	assert.True(t, ma.Equal(mb))
}
