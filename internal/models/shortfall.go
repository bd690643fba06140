package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecommendationType enumerates the closing remedies the analyzer can emit.
// MutualRelease is only ever recorded manually by a builder.
type RecommendationType string

const (
	RecommendationProceedToClose        RecommendationType = "PROCEED_TO_CLOSE"
	RecommendationCloseWithDiscount     RecommendationType = "CLOSE_WITH_DISCOUNT"
	RecommendationVTBSecondMortgage     RecommendationType = "VTB_SECOND_MORTGAGE"
	RecommendationVTBFirstMortgage      RecommendationType = "VTB_FIRST_MORTGAGE"
	RecommendationCombinationSuggestion RecommendationType = "COMBINATION_SUGGESTION"
	RecommendationPotentialDefault      RecommendationType = "POTENTIAL_DEFAULT"
	RecommendationHighRiskDefault       RecommendationType = "HIGH_RISK_DEFAULT"
	RecommendationMutualRelease         RecommendationType = "MUTUAL_RELEASE"
)

// RiskLevelType buckets a unit's closing risk.
type RiskLevelType string

const (
	RiskLevelLow    RiskLevelType = "LOW"
	RiskLevelMedium RiskLevelType = "MEDIUM"
	RiskLevelHigh   RiskLevelType = "HIGH"
)

// DecisionActionType is the builder's response to a recommendation.
type DecisionActionType string

const (
	DecisionAccept DecisionActionType = "ACCEPT"
	DecisionReject DecisionActionType = "REJECT"
	DecisionModify DecisionActionType = "MODIFY"
)

// ShortfallAnalysis is the live closing-risk analysis for one unit,
// replaced on every recalculation. The builder's decision fields are an
// annotation on top of the suggestion and are discarded on the next run.
type ShortfallAnalysis struct {
	Versioned
	ID     uuid.UUID `json:"id"`
	UnitID uuid.UUID `json:"unit_id"`

	// Inputs snapshot
	CashRequiredToClose decimal.Decimal `json:"cash_required_to_close"`
	MortgageApproved    bool            `json:"mortgage_approved"`
	MortgageAmount      decimal.Decimal `json:"mortgage_amount"`
	DepositsPaid        decimal.Decimal `json:"deposits_paid"`
	AdditionalCash      decimal.Decimal `json:"additional_cash"`
	TotalFundsAvailable decimal.Decimal `json:"total_funds_available"`

	// Outputs
	ShortfallAmount     decimal.Decimal    `json:"shortfall_amount"`
	ShortfallPercentage decimal.Decimal    `json:"shortfall_percentage"`
	RiskLevel           RiskLevelType      `json:"risk_level"`
	Recommendation      RecommendationType `json:"recommendation"`
	SuggestedDiscount   *decimal.Decimal   `json:"suggested_discount,omitempty"`
	SuggestedVTBAmount  *decimal.Decimal   `json:"suggested_vtb_amount,omitempty"`
	Reasoning           string             `json:"reasoning"`

	// Builder override, preserved until the next recalculation.
	DecisionAction            *DecisionActionType `json:"decision_action,omitempty"`
	BuilderModifiedSuggestion *string             `json:"builder_modified_suggestion,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *ShortfallAnalysis) GetID() string { return a.ID.String() }

// ShortfallAnalysisVersion mirrors the SOAVersion pattern: an append-only
// history of every analysis run, with the live row always equal to the
// latest version.
type ShortfallAnalysisVersion struct {
	ID            uuid.UUID         `json:"id"`
	UnitID        uuid.UUID         `json:"unit_id"`
	VersionNumber int               `json:"version_number"`
	Analysis      ShortfallAnalysis `json:"analysis"`
	CreatedAt     time.Time         `json:"created_at"`
}
