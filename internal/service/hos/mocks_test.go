package hos

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockLogSource struct {
	mock.Mock
}

func (m *mockLogSource) DutySummary(ctx context.Context, driverID string, at time.Time) (DutySummary, error) {
	args := m.Called(ctx, driverID, at)
	return args.Get(0).(DutySummary), args.Error(1)
}

func (m *mockLogSource) LastShiftEnd(ctx context.Context, driverID string, at time.Time) (time.Time, error) {
	args := m.Called(ctx, driverID, at)
	return args.Get(0).(time.Time), args.Error(1)
}
