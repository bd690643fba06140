package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/clearclose/closing-service/internal/models"
)

func testThresholds() RecommendationThresholds {
	return RecommendationThresholds{
		LowPct:  decimal.NewFromInt(10),
		MidPct:  decimal.NewFromInt(20),
		HighPct: decimal.NewFromInt(35),
	}
}

func TestRecommendNoFinancingClosingSoonOutranksEverything(t *testing.T) {
	// Even a tiny shortfall is a default risk when there is no approval
	// and the closing date is imminent.
	out := Recommend(RecommendationInput{
		ShortfallAmount: decimal.NewFromInt(5_000),
		ShortfallPct:    decimal.NewFromInt(1),
		ClosingSoon:     true,
	}, testThresholds())

	require.Equal(t, models.RecommendationHighRiskDefault, out.Recommendation)
	require.Equal(t, models.RiskLevelHigh, out.RiskLevel)
	require.Nil(t, out.SuggestedDiscount)
	require.Nil(t, out.SuggestedVTBAmount)
}

func TestRecommendZeroShortfallBeatsTheLowBand(t *testing.T) {
	// A fully funded closing must never read as a discount case, and the
	// missing-approval rule must not fire without an actual shortfall.
	out := Recommend(RecommendationInput{
		ShortfallAmount: decimal.Zero,
		ShortfallPct:    decimal.Zero,
		ClosingSoon:     true,
	}, testThresholds())

	require.Equal(t, models.RecommendationProceedToClose, out.Recommendation)
	require.Equal(t, models.RiskLevelLow, out.RiskLevel)
	require.Nil(t, out.SuggestedDiscount)
	require.Nil(t, out.SuggestedVTBAmount)
}

func TestRecommendLowBandSuggestsDiscountEqualToShortfall(t *testing.T) {
	shortfall := decimal.NewFromInt(10_000)
	out := Recommend(RecommendationInput{
		ShortfallAmount:     shortfall,
		ShortfallPct:        decimal.RequireFromString("1.72"),
		HasMortgageApproval: true,
		MortgageAmount:      decimal.NewFromInt(450_000),
	}, testThresholds())

	require.Equal(t, models.RecommendationCloseWithDiscount, out.Recommendation)
	require.Equal(t, models.RiskLevelLow, out.RiskLevel)
	require.NotNil(t, out.SuggestedDiscount)
	require.True(t, out.SuggestedDiscount.Equal(shortfall))
}

func TestRecommendCombinationWhenCashCoversHalf(t *testing.T) {
	out := Recommend(RecommendationInput{
		ShortfallAmount:     decimal.NewFromInt(60_000),
		ShortfallPct:        decimal.NewFromInt(15),
		HasMortgageApproval: true,
		MortgageAmount:      decimal.NewFromInt(300_000),
		NonMortgageCash:     decimal.NewFromInt(40_000),
	}, testThresholds())

	require.Equal(t, models.RecommendationCombinationSuggestion, out.Recommendation)
	require.Equal(t, models.RiskLevelMedium, out.RiskLevel)
	require.NotNil(t, out.SuggestedVTBAmount)
	require.True(t, out.SuggestedVTBAmount.Equal(decimal.NewFromInt(20_000)),
		"VTB covers the gap the cash does not, got %s", out.SuggestedVTBAmount)
}

func TestRecommendMidBandWithoutEnoughCash(t *testing.T) {
	shortfall := decimal.NewFromInt(60_000)
	out := Recommend(RecommendationInput{
		ShortfallAmount:     shortfall,
		ShortfallPct:        decimal.NewFromInt(15),
		HasMortgageApproval: true,
		MortgageAmount:      decimal.NewFromInt(300_000),
		NonMortgageCash:     decimal.NewFromInt(10_000),
	}, testThresholds())

	require.Equal(t, models.RecommendationVTBSecondMortgage, out.Recommendation)
	require.Equal(t, models.RiskLevelMedium, out.RiskLevel)
	require.NotNil(t, out.SuggestedVTBAmount)
	require.True(t, out.SuggestedVTBAmount.Equal(shortfall))
}

func TestRecommendHighBandRequiresApprovedFinancing(t *testing.T) {
	in := RecommendationInput{
		ShortfallAmount:     decimal.NewFromInt(150_000),
		ShortfallPct:        decimal.NewFromInt(30),
		HasMortgageApproval: true,
		MortgageAmount:      decimal.NewFromInt(300_000),
	}

	out := Recommend(in, testThresholds())
	require.Equal(t, models.RecommendationVTBFirstMortgage, out.Recommendation)
	require.Equal(t, models.RiskLevelHigh, out.RiskLevel)

	// Without financing the same band falls through to the default tier.
	in.HasMortgageApproval = false
	in.MortgageAmount = decimal.Zero
	out = Recommend(in, testThresholds())
	require.Equal(t, models.RecommendationPotentialDefault, out.Recommendation)
}

func TestRecommendBeyondAllBands(t *testing.T) {
	in := RecommendationInput{
		ShortfallAmount:     decimal.NewFromInt(250_000),
		ShortfallPct:        decimal.NewFromInt(42),
		HasMortgageApproval: true,
		MortgageAmount:      decimal.NewFromInt(200_000),
	}

	out := Recommend(in, testThresholds())
	require.Equal(t, models.RecommendationPotentialDefault, out.Recommendation)
	require.Equal(t, models.RiskLevelHigh, out.RiskLevel)

	in.ClosingSoon = true
	out = Recommend(in, testThresholds())
	require.Equal(t, models.RecommendationHighRiskDefault, out.Recommendation)
}

func TestRecommendNeverEmitsMutualRelease(t *testing.T) {
	// Builders record a mutual release manually; the table must not be
	// able to produce one no matter the input.
	inputs := []RecommendationInput{
		{ShortfallAmount: decimal.NewFromInt(1), ShortfallPct: decimal.NewFromInt(99), ClosingSoon: true},
		{ShortfallAmount: decimal.NewFromInt(500_000), ShortfallPct: decimal.NewFromInt(80)},
		{ShortfallAmount: decimal.Zero},
	}
	for _, in := range inputs {
		out := Recommend(in, testThresholds())
		require.NotEqual(t, models.RecommendationMutualRelease, out.Recommendation)
	}
}
