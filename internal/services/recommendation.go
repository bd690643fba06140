package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/models"
)

// RecommendationThresholds are the shortfall-percentage bands the decision
// table works against. They come from config, never from code.
type RecommendationThresholds struct {
	LowPct  decimal.Decimal
	MidPct  decimal.Decimal
	HighPct decimal.Decimal
}

// RecommendationInput is everything the decision table is allowed to see.
type RecommendationInput struct {
	ShortfallAmount     decimal.Decimal
	ShortfallPct        decimal.Decimal
	HasMortgageApproval bool
	MortgageAmount      decimal.Decimal
	NonMortgageCash     decimal.Decimal
	ClosingSoon         bool
}

// RecommendationOutcome is one resolved row of the table.
type RecommendationOutcome struct {
	Recommendation     models.RecommendationType
	RiskLevel          models.RiskLevelType
	SuggestedDiscount  *decimal.Decimal
	SuggestedVTBAmount *decimal.Decimal
	Reasoning          string
}

type recommendationRule struct {
	name    string
	applies func(in RecommendationInput, th RecommendationThresholds) bool
	resolve func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome
}

// recommendationTable is evaluated top to bottom; the first matching rule
// wins. Order matters: the zero-shortfall rule must outrank the low band
// so a clean closing never reads as a discount case, and the no-financing
// rule must outrank everything because no mitigant applies without it.
// MUTUAL_RELEASE never appears here; builders record it manually.
var recommendationTable = []recommendationRule{
	{
		name: "no financing, closing imminent",
		applies: func(in RecommendationInput, th RecommendationThresholds) bool {
			return !in.HasMortgageApproval && in.ShortfallAmount.IsPositive() && in.ClosingSoon
		},
		resolve: func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
			return RecommendationOutcome{
				Recommendation: models.RecommendationHighRiskDefault,
				RiskLevel:      models.RiskLevelHigh,
				Reasoning:      "No mortgage approval on file, a funding shortfall exists and closing is imminent.",
			}
		},
	},
	{
		name: "fully funded",
		applies: func(in RecommendationInput, th RecommendationThresholds) bool {
			return in.ShortfallAmount.IsZero()
		},
		resolve: func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
			return RecommendationOutcome{
				Recommendation: models.RecommendationProceedToClose,
				RiskLevel:      models.RiskLevelLow,
				Reasoning:      "Funds available fully cover the cash required to close.",
			}
		},
	},
	{
		name: "partial mortgage plus meaningful cash",
		applies: func(in RecommendationInput, th RecommendationThresholds) bool {
			if !in.HasMortgageApproval || !in.MortgageAmount.IsPositive() {
				return false
			}
			if in.ShortfallPct.LessThanOrEqual(th.LowPct) || in.ShortfallPct.GreaterThan(th.MidPct) {
				return false
			}
			half := in.ShortfallAmount.Div(decimal.NewFromInt(2))
			return in.NonMortgageCash.GreaterThanOrEqual(half)
		},
		resolve: func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
			vtb := in.ShortfallAmount.Sub(in.NonMortgageCash)
			if vtb.IsNegative() {
				vtb = decimal.Zero
			}
			return RecommendationOutcome{
				Recommendation:     models.RecommendationCombinationSuggestion,
				RiskLevel:          models.RiskLevelMedium,
				SuggestedVTBAmount: &vtb,
				Reasoning: fmt.Sprintf(
					"Purchaser has partial financing and cash covering at least half of the %s%% gap; a combined cash plus VTB arrangement closes the rest.",
					in.ShortfallPct.StringFixed(1)),
			}
		},
	},
	{
		name: "low band",
		applies: func(in RecommendationInput, th RecommendationThresholds) bool {
			return in.ShortfallPct.LessThanOrEqual(th.LowPct)
		},
		resolve: func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
			discount := in.ShortfallAmount
			return RecommendationOutcome{
				Recommendation:    models.RecommendationCloseWithDiscount,
				RiskLevel:         models.RiskLevelLow,
				SuggestedDiscount: &discount,
				Reasoning: fmt.Sprintf(
					"Shortfall of %s%% is within the discountable band; a price concession equal to the shortfall closes the unit.",
					in.ShortfallPct.StringFixed(1)),
			}
		},
	},
	{
		name: "mid band",
		applies: func(in RecommendationInput, th RecommendationThresholds) bool {
			return in.ShortfallPct.LessThanOrEqual(th.MidPct)
		},
		resolve: func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
			vtb := in.ShortfallAmount
			return RecommendationOutcome{
				Recommendation:     models.RecommendationVTBSecondMortgage,
				RiskLevel:          models.RiskLevelMedium,
				SuggestedVTBAmount: &vtb,
				Reasoning: fmt.Sprintf(
					"Shortfall of %s%% exceeds the discount band; a vendor take-back in second position covers the gap.",
					in.ShortfallPct.StringFixed(1)),
			}
		},
	},
	{
		name: "high band with some financing",
		applies: func(in RecommendationInput, th RecommendationThresholds) bool {
			return in.ShortfallPct.LessThanOrEqual(th.HighPct) &&
				in.HasMortgageApproval && in.MortgageAmount.IsPositive()
		},
		resolve: func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
			vtb := in.ShortfallAmount
			return RecommendationOutcome{
				Recommendation:     models.RecommendationVTBFirstMortgage,
				RiskLevel:          models.RiskLevelHigh,
				SuggestedVTBAmount: &vtb,
				Reasoning: fmt.Sprintf(
					"Shortfall of %s%% is high but the purchaser holds approved financing; a vendor take-back in first position is viable.",
					in.ShortfallPct.StringFixed(1)),
			}
		},
	},
	{
		name: "beyond all bands",
		applies: func(in RecommendationInput, th RecommendationThresholds) bool {
			return true
		},
		resolve: func(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
			if in.ClosingSoon {
				return RecommendationOutcome{
					Recommendation: models.RecommendationHighRiskDefault,
					RiskLevel:      models.RiskLevelHigh,
					Reasoning:      "Shortfall exceeds every workout band and closing is imminent; default is the likely outcome.",
				}
			}
			return RecommendationOutcome{
				Recommendation: models.RecommendationPotentialDefault,
				RiskLevel:      models.RiskLevelHigh,
				Reasoning:      "Shortfall exceeds every workout band; without new funds this unit is headed for default.",
			}
		},
	},
}

// Recommend runs the decision table. The final rule always matches, so a
// result is guaranteed.
func Recommend(in RecommendationInput, th RecommendationThresholds) RecommendationOutcome {
	for _, rule := range recommendationTable {
		if rule.applies(in, th) {
			return rule.resolve(in, th)
		}
	}
	// unreachable
	return RecommendationOutcome{
		Recommendation: models.RecommendationPotentialDefault,
		RiskLevel:      models.RiskLevelHigh,
		Reasoning:      "No decision rule matched.",
	}
}
