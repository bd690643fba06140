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

func TestAnalyzeShortfallNoFundsClosingSoon(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(0, 0, 7)
	unit := f.seedUnit(project.ID, 600_000, &closing)
	f.seedSOA(unit.ID, 609_410, 0)

	a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)

	require.True(t, a.ShortfallAmount.Equal(decimal.NewFromInt(609_410)))
	require.False(t, a.MortgageApproved)
	require.True(t, a.TotalFundsAvailable.IsZero())
	require.Equal(t, models.RecommendationHighRiskDefault, a.Recommendation)
	require.Equal(t, models.RiskLevelHigh, a.RiskLevel)
}

func TestAnalyzeShortfallSmallGapSuggestsDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)
	f.seedSOA(unit.ID, 130_000, 60_000)

	require.NoError(t, f.purchasers.UpsertMortgage(ctx, &models.MortgageInfo{
		ID:                  uuid.New(),
		UnitID:              unit.ID,
		HasMortgageApproval: true,
		ApprovedAmount:      decimal.NewFromInt(450_000),
	}))
	require.NoError(t, f.purchasers.UpsertFinancials(ctx, &models.PurchaserFinancials{
		ID:             uuid.New(),
		UnitID:         unit.ID,
		AdditionalCash: decimal.NewFromInt(60_000),
	}))

	a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)

	// Deposits plus the purchaser's own cash; the approved mortgage is
	// already netted out of cash required and must not count twice.
	require.True(t, a.TotalFundsAvailable.Equal(decimal.NewFromInt(120_000)))
	require.True(t, a.ShortfallAmount.Equal(decimal.NewFromInt(10_000)))
	require.True(t, a.ShortfallPercentage.Equal(decimal.RequireFromString("1.72")),
		"got %s", a.ShortfallPercentage)
	require.Equal(t, models.RecommendationCloseWithDiscount, a.Recommendation)
	require.NotNil(t, a.SuggestedDiscount)
	require.True(t, a.SuggestedDiscount.Equal(decimal.NewFromInt(10_000)))
}

func TestAnalyzeShortfallMoreCashNeverWorsensTheOutcome(t *testing.T) {
	// Sweeping the purchaser's cash upward must never increase the
	// shortfall or push the risk into a worse tier.
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)
	f.seedSOA(unit.ID, 130_000, 60_000)

	riskRank := map[models.RiskLevelType]int{
		models.RiskLevelLow:    0,
		models.RiskLevelMedium: 1,
		models.RiskLevelHigh:   2,
	}

	prevShortfall := decimal.NewFromInt(1 << 40)
	prevRank := riskRank[models.RiskLevelHigh]
	for cash := int64(0); cash <= 80_000; cash += 10_000 {
		require.NoError(t, f.purchasers.UpsertFinancials(ctx, &models.PurchaserFinancials{
			ID:             uuid.New(),
			UnitID:         unit.ID,
			AdditionalCash: decimal.NewFromInt(cash),
		}))

		a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
		require.NoError(t, err)

		require.True(t, a.ShortfallAmount.LessThanOrEqual(prevShortfall),
			"cash %d raised the shortfall from %s to %s", cash, prevShortfall, a.ShortfallAmount)
		require.LessOrEqual(t, riskRank[a.RiskLevel], prevRank,
			"cash %d worsened the risk to %s", cash, a.RiskLevel)

		prevShortfall = a.ShortfallAmount
		prevRank = riskRank[a.RiskLevel]
	}

	require.True(t, prevShortfall.IsZero(), "the sweep must end fully funded")
}

func TestAnalyzeShortfallFullyFunded(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)
	f.seedSOA(unit.ID, 130_000, 60_000)

	require.NoError(t, f.purchasers.UpsertFinancials(ctx, &models.PurchaserFinancials{
		ID:             uuid.New(),
		UnitID:         unit.ID,
		AdditionalCash: decimal.NewFromInt(70_000),
	}))

	a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)

	require.True(t, a.ShortfallAmount.IsZero())
	require.Equal(t, models.RecommendationProceedToClose, a.Recommendation)
	require.Equal(t, models.RiskLevelLow, a.RiskLevel)
	require.Nil(t, a.SuggestedDiscount)
	require.Nil(t, a.SuggestedVTBAmount)
}

func TestAnalyzeShortfallSurplusClampsToZero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)
	f.seedSOA(unit.ID, 130_000, 200_000)

	a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)
	require.True(t, a.ShortfallAmount.IsZero(), "a surplus is not a negative shortfall")
	require.True(t, a.ShortfallPercentage.IsZero())
}

func TestAnalyzeShortfallMissingPurchaserDataMeansZeroFunds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)
	f.seedSOA(unit.ID, 130_000, 60_000)

	a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)

	require.False(t, a.MortgageApproved)
	require.True(t, a.MortgageAmount.IsZero())
	require.True(t, a.AdditionalCash.IsZero())
	require.True(t, a.TotalFundsAvailable.Equal(decimal.NewFromInt(60_000)),
		"only paid deposits count until the purchaser submits")
}

func TestAnalyzeShortfallZeroPriceUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 0, &closing)
	f.seedSOA(unit.ID, 10_000, 0)

	a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)
	require.True(t, a.ShortfallPercentage.IsZero(), "no division by a zero purchase price")
}

func TestAnalyzeShortfallMirrorsRecommendationOntoUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)
	f.seedSOA(unit.ID, 130_000, 200_000)

	a, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)

	stored, err := f.units.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Recommendation)
	require.Equal(t, a.Recommendation, *stored.Recommendation)
}

func TestRecordDecisionLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)
	f.seedSOA(unit.ID, 130_000, 60_000)

	_, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)

	note := "Offering a smaller discount plus a closing credit"
	a, err := f.shortfallSvc.RecordDecision(ctx, unit.ID, models.DecisionModify, &note)
	require.NoError(t, err)
	require.NotNil(t, a.DecisionAction)
	require.Equal(t, models.DecisionModify, *a.DecisionAction)
	require.NotNil(t, a.BuilderModifiedSuggestion)

	// A fresh run reflects new facts; the old decision no longer applies.
	_, err = f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.NoError(t, err)
	a, err = f.shortfallSvc.GetAnalysis(ctx, unit.ID)
	require.NoError(t, err)
	require.Nil(t, a.DecisionAction)
	require.Nil(t, a.BuilderModifiedSuggestion)

	versions, err := f.shortfallSvc.ListVersions(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
}

func TestRecordDecisionUnknownUnit(t *testing.T) {
	f := newFixture()
	_, err := f.shortfallSvc.RecordDecision(context.Background(), uuid.New(), models.DecisionAccept, nil)
	require.ErrorIs(t, err, utils.ErrAnalysisNotFound)
}

func TestAnalyzeShortfallRequiresStatement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)
	closing := time.Now().UTC().AddDate(1, 0, 0)
	unit := f.seedUnit(project.ID, 580_000, &closing)

	_, err := f.shortfallSvc.AnalyzeShortfall(ctx, unit.ID)
	require.ErrorIs(t, err, utils.ErrSOANotFound)
}
