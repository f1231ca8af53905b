package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockMedianSource struct {
	mock.Mock
}

func (m *mockMedianSource) HistoricalMedian(ctx context.Context, orderID, currency string) (decimal.Decimal, error) {
	args := m.Called(ctx, orderID, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
