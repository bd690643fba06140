package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/clearclose/closing-service/internal/utils"
)

func TestRecalculateUnitRunsStatementThenAnalysis(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)
	unit := f.seedUnit(project.ID, 600_000, &closing)

	res, err := f.recalcSvc.RecalculateUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Statement)
	require.NotNil(t, res.Analysis)

	// The analysis reads the statement the same run just produced.
	require.True(t, res.Analysis.CashRequiredToClose.Equal(res.Statement.CashRequiredToClose))
	require.True(t, res.Analysis.DepositsPaid.Equal(res.Statement.DepositsPaid))
}

func TestRefreshProjectIsolatesFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)

	healthy := f.seedUnit(project.ID, 600_000, &closing)
	locked := f.seedUnit(project.ID, 500_000, &closing)
	broken := f.seedUnit(project.ID, 450_000, &closing)

	// Lock one statement and break another unit's deposit reads.
	soa := f.seedSOA(locked.ID, 500_000, 0)
	soa.IsConfirmedByBuilder = true
	soa.IsConfirmedByLawyer = true
	f.deposits.listErr[broken.ID] = errors.New("connection reset by peer")

	summary, err := f.recalcSvc.RefreshProject(ctx, project.ID)
	require.NoError(t, err, "one bad unit never aborts the batch")

	require.Equal(t, 3, summary.UnitsTotal)
	require.Equal(t, 1, summary.UnitsOK)
	require.Equal(t, 1, summary.UnitsSkipped)
	require.Len(t, summary.Failures, 1)
	require.Contains(t, summary.Failures, broken.ID.String())

	// The healthy unit got fresh figures despite its neighbours.
	_, err = f.soaSvc.GetSOA(ctx, healthy.ID)
	require.NoError(t, err)
}

func TestRefreshProjectUnknownProject(t *testing.T) {
	f := newFixture()
	_, err := f.recalcSvc.RefreshProject(context.Background(), uuid.New())
	require.ErrorIs(t, err, utils.ErrProjectNotFound)
}

func TestRecalculateInBackgroundReportsTerminalError(t *testing.T) {
	f := newFixture()
	project := f.seedProject(false)
	closing := dateUTC(2026, time.December, 1)
	unit := f.seedUnit(project.ID, 600_000, &closing)

	done := f.recalcSvc.RecalculateInBackground(unit.ID, "", "")
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("background recalculation never finished")
	}

	done = f.recalcSvc.RecalculateInBackground(uuid.New(), "", "")
	select {
	case err := <-done:
		require.Error(t, err)
		require.ErrorIs(t, err, utils.ErrUnitNotFound)
	case <-time.After(5 * time.Second):
		t.Fatal("background recalculation never finished")
	}
}
