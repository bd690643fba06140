package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/utils"
)

func TestCreateUnitDefaultsAndRecalculates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)

	created, err := f.unitSvc.CreateUnit(ctx, &models.Unit{
		ProjectID:     project.ID,
		UnitNumber:    "1203",
		PurchasePrice: decimal.NewFromInt(480_000),
		ClosingDate:   &closing,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Equal(t, models.UnitStatusAvailable, created.Status)

	// Creating a unit immediately produces a statement and an analysis.
	stmt, err := f.soaSvc.GetSOA(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, stmt.TotalDebits.IsPositive())
	_, err = f.shortfallSvc.GetAnalysis(ctx, created.ID)
	require.NoError(t, err)
}

func TestUpdateUnitPriceChangesTheStatement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)

	created, err := f.unitSvc.CreateUnit(ctx, &models.Unit{
		ProjectID:     project.ID,
		UnitNumber:    "1203",
		PurchasePrice: decimal.NewFromInt(480_000),
		ClosingDate:   &closing,
	})
	require.NoError(t, err)

	before, err := f.soaSvc.GetSOA(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.unitSvc.UpdateUnit(ctx, created.ID, func(u *models.Unit) error {
		u.PurchasePrice = decimal.NewFromInt(520_000)
		return nil
	})
	require.NoError(t, err)

	after, err := f.soaSvc.GetSOA(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, after.TotalDebits.Equal(before.TotalDebits))
	require.True(t, after.PurchasePrice.Equal(decimal.NewFromInt(520_000)))
}

func TestAddDepositRejectsOverlappingPeriods(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)
	unit := f.seedUnit(project.ID, 480_000, &closing)

	base := &models.Deposit{
		UnitID:           unit.ID,
		Amount:           decimal.NewFromInt(20_000),
		DueDate:          dateUTC(2025, time.March, 1),
		Holder:           models.DepositHolderTrust,
		InterestEligible: true,
	}

	// Overlapping windows
	base.Periods = []models.DepositInterestPeriod{
		{StartDate: dateUTC(2025, time.March, 1), EndDate: dateUTC(2025, time.September, 1), AnnualRate: decimal.NewFromInt(2)},
		{StartDate: dateUTC(2025, time.June, 1), EndDate: dateUTC(2026, time.March, 1), AnnualRate: decimal.NewFromInt(3)},
	}
	_, err := f.unitSvc.AddDeposit(ctx, base)
	require.ErrorIs(t, err, utils.ErrPeriodsOverlap)

	// Inverted window
	base.Periods = []models.DepositInterestPeriod{
		{StartDate: dateUTC(2025, time.September, 1), EndDate: dateUTC(2025, time.March, 1), AnnualRate: decimal.NewFromInt(2)},
	}
	_, err = f.unitSvc.AddDeposit(ctx, base)
	require.ErrorIs(t, err, utils.ErrPeriodsOverlap)

	// Contiguous windows are fine; one ends exactly where the next starts.
	base.Periods = []models.DepositInterestPeriod{
		{StartDate: dateUTC(2025, time.March, 1), EndDate: dateUTC(2025, time.September, 1), AnnualRate: decimal.NewFromInt(2)},
		{StartDate: dateUTC(2025, time.September, 1), EndDate: dateUTC(2026, time.March, 1), AnnualRate: decimal.NewFromInt(3)},
	}
	dep, err := f.unitSvc.AddDeposit(ctx, base)
	require.NoError(t, err)
	require.Len(t, dep.Periods, 2)
}

func TestMarkDepositPaidFeedsTheCredits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)
	unit := f.seedUnit(project.ID, 480_000, &closing)

	dep, err := f.unitSvc.AddDeposit(ctx, &models.Deposit{
		UnitID:  unit.ID,
		Amount:  decimal.NewFromInt(20_000),
		DueDate: dateUTC(2025, time.March, 1),
		Holder:  models.DepositHolderTrust,
	})
	require.NoError(t, err)

	stmt, err := f.soaSvc.GetSOA(ctx, unit.ID)
	require.NoError(t, err)
	require.True(t, stmt.DepositsPaid.IsZero())

	paid, err := f.unitSvc.MarkDepositPaid(ctx, dep.ID, dateUTC(2025, time.March, 3))
	require.NoError(t, err)
	require.True(t, paid.IsPaid)

	stmt, err = f.soaSvc.GetSOA(ctx, unit.ID)
	require.NoError(t, err)
	require.True(t, stmt.DepositsPaid.Equal(decimal.NewFromInt(20_000)))
}

func TestSubmitMortgageInfoReducesCashRequired(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)
	unit := f.seedUnit(project.ID, 480_000, &closing)

	_, err := f.recalcSvc.RecalculateUnit(ctx, unit.ID)
	require.NoError(t, err)
	before, err := f.soaSvc.GetSOA(ctx, unit.ID)
	require.NoError(t, err)

	_, err = f.unitSvc.SubmitMortgageInfo(ctx, &models.MortgageInfo{
		UnitID:              unit.ID,
		PurchaserID:         uuid.New(),
		HasMortgageApproval: true,
		ApprovedAmount:      decimal.NewFromInt(380_000),
		LenderName:          "First Ontario Credit Union",
	})
	require.NoError(t, err)

	after, err := f.soaSvc.GetSOA(ctx, unit.ID)
	require.NoError(t, err)
	require.True(t, after.MortgageAmount.Equal(decimal.NewFromInt(380_000)))
	require.True(t, after.CashRequiredToClose.Equal(before.CashRequiredToClose.Sub(decimal.NewFromInt(380_000))))
}

func TestMarkDepositPaidUnknownDeposit(t *testing.T) {
	f := newFixture()
	_, err := f.unitSvc.MarkDepositPaid(context.Background(), uuid.New(), time.Now())
	require.ErrorIs(t, err, utils.ErrDepositNotFound)
}
