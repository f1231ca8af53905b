//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/service/pricing"
	"github.com/nodeorb/scm-risk-engine/internal/testutil/fixtures"
)

func TestComplianceRepository(t *testing.T) {
	truncate(t, "compliance_passports")
	ctx := context.Background()
	repo := NewComplianceRepository(testPool)

	t.Run("missing passport is nil without error", func(t *testing.T) {
		p, err := repo.GetCompliancePassport(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, repo.UpsertCompliancePassport(ctx, fixtures.NewPassportBuilder("user-1").
			WithFullName("Olena Petrenko").
			WithCompany("Dnipro Logistics").
			WithCompanyHistory("Kyiv Cargo").
			Build()))

		p, err := repo.GetCompliancePassport(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Olena Petrenko", p.FullName())
		assert.Equal(t, map[string]struct{}{"dnipro logistics": {}, "kyiv cargo": {}}, p.Companies())
		assert.Nil(t, p.ExpiresAt)
	})
}

func TestManualEntryRepository(t *testing.T) {
	truncate(t, "manual_entry_validations")
	ctx := context.Background()
	repo := NewManualEntryRepository(testPool)

	entry := fixtures.NewManualEntryBuilder().
		WithOrder("ORD-ADR-1", "USD").
		WithCosts("1800.50", "700").
		WithVerdict(compliance.VerdictYellow, 0.75).
		Build()
	require.NoError(t, repo.Save(ctx, entry))

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.Save(ctx, entry)
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("update appeal keeps decimals", func(t *testing.T) {
		comment := "invoice verified"
		require.NoError(t, repo.UpdateAppealStatus(ctx, entry.ID, compliance.AppealStatusApproved, &comment))

		got, err := repo.GetByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, compliance.AppealStatusApproved, got.AppealStatus)
		require.NotNil(t, got.AuditorComment)
		assert.Equal(t, comment, *got.AuditorComment)
		assert.True(t, entry.MaterialsCost.Equal(got.MaterialsCost))
	})

	t.Run("nil comment keeps previous", func(t *testing.T) {
		require.NoError(t, repo.UpdateAppealStatus(ctx, entry.ID, compliance.AppealStatusRejected, nil))
		got, err := repo.GetByID(ctx, entry.ID)
		require.NoError(t, err)
		require.NotNil(t, got.AuditorComment)
		assert.Equal(t, "invoice verified", *got.AuditorComment)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := repo.UpdateAppealStatus(ctx, uuid.New(), compliance.AppealStatusApproved, nil)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

		_, err = repo.GetByID(ctx, uuid.New())
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})
}

func TestPriceHistoryRepository(t *testing.T) {
	truncate(t, "manual_entry_validations")
	ctx := context.Background()
	entries := NewManualEntryRepository(testPool)
	repo := NewPriceHistoryRepository(testPool, nil)

	save := func(orderID string, total int64, verdict compliance.VerdictStatus) {
		entry := fixtures.NewManualEntryBuilder().
			WithOrder(orderID, "EUR").
			WithCosts(decimal.NewFromInt(total).String(), "0").
			WithVerdict(verdict, 1).
			Build()
		require.NoError(t, entries.Save(ctx, entry))
	}
	save("ORD-REF-1", 1000, compliance.VerdictGreen)
	save("ORD-REF-2", 1200, compliance.VerdictGreen)
	save("ORD-REF-3", 1400, compliance.VerdictGreen)
	save("ORD-REF-4", 9000, compliance.VerdictRed)

	t.Run("median of green history", func(t *testing.T) {
		median, err := repo.HistoricalMedian(ctx, "ORD-REF-99", "EUR")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1200).Equal(median), median.String())
	})

	t.Run("no history falls back to base price", func(t *testing.T) {
		median, err := repo.HistoricalMedian(ctx, "ORD-ADR-1", "EUR")
		require.NoError(t, err)
		assert.True(t, pricing.DefaultBasePrices().For("ORD-ADR-1").Equal(median))
	})

	t.Run("pattern characters in the category match literally", func(t *testing.T) {
		median, err := repo.HistoricalMedian(ctx, "ORD-R_F-7", "EUR")
		require.NoError(t, err)
		assert.True(t, pricing.DefaultBasePrices().For("ORD-R_F-7").Equal(median), median.String())
	})

	t.Run("currency is part of the key", func(t *testing.T) {
		median, err := repo.HistoricalMedian(ctx, "ORD-REF-99", "USD")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1500).Equal(median))
	})
}

func TestELDRepository(t *testing.T) {
	truncate(t, "eld_duty_logs")
	ctx := context.Background()
	repo := NewELDRepository(testPool)
	at := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)

	seg := func(status string, from, to time.Duration) {
		end := at.Add(-to)
		require.NoError(t, repo.Append(ctx, DutyLog{
			DriverID:  "driver-1",
			VehicleID: "truck-1",
			Status:    status,
			StartedAt: at.Add(-from),
			EndedAt:   &end,
		}))
	}
	// weekly rest three days ago, then a working day
	seg(DutyOffDuty, 110*time.Hour, 72*time.Hour)
	seg(DutyOnDuty, 12*time.Hour, 11*time.Hour)
	seg(DutyDriving, 11*time.Hour, 7*time.Hour)
	seg(DutyOffDuty, 7*time.Hour, 6*time.Hour)
	seg(DutyDriving, 6*time.Hour, 2*time.Hour)

	t.Run("duty summary", func(t *testing.T) {
		d, err := repo.DutySummary(ctx, "driver-1", at)
		require.NoError(t, err)
		assert.InDelta(t, 8.0, d.DrivingHours, 1e-6)
		assert.InDelta(t, 9.0, d.OnDutyHours, 1e-6)
		assert.InDelta(t, 1.0, d.LastBreakHours, 1e-6)
		assert.InDelta(t, 8.0, d.WeeklyDrivingHours, 1e-6)
		assert.InDelta(t, 38.0, d.LastWeeklyRestHours, 1e-6)
	})

	t.Run("last shift end", func(t *testing.T) {
		end, err := repo.LastShiftEnd(ctx, "driver-1", at)
		require.NoError(t, err)
		assert.True(t, at.Add(-2*time.Hour).Equal(end))
	})

	t.Run("rest in progress is not a completed break", func(t *testing.T) {
		closedEnd := at.Add(-10 * time.Hour)
		drivingEnd := at.Add(-5 * time.Hour)
		for _, l := range []DutyLog{
			{DriverID: "driver-3", VehicleID: "truck-3", Status: DutyOffDuty, StartedAt: at.Add(-13 * time.Hour), EndedAt: &closedEnd},
			{DriverID: "driver-3", VehicleID: "truck-3", Status: DutyDriving, StartedAt: closedEnd, EndedAt: &drivingEnd},
			{DriverID: "driver-3", VehicleID: "truck-3", Status: DutySleeperBerth, StartedAt: drivingEnd},
		} {
			require.NoError(t, repo.Append(ctx, l))
		}

		d, err := repo.DutySummary(ctx, "driver-3", at)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, d.DrivingHours, 1e-6)
		assert.InDelta(t, 3.0, d.LastBreakHours, 1e-6)
		assert.InDelta(t, 3.0, d.LastWeeklyRestHours, 1e-6)
	})

	t.Run("unknown driver", func(t *testing.T) {
		d, err := repo.DutySummary(ctx, "driver-2", at)
		require.NoError(t, err)
		assert.Zero(t, d.DrivingHours)

		end, err := repo.LastShiftEnd(ctx, "driver-2", at)
		require.NoError(t, err)
		assert.True(t, end.IsZero())
	})
}
