package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/config"
	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/utils"
)

// ShortfallService recomputes the closing-risk analysis from the live SOA
// plus the purchaser's financing picture, and records builder decisions
// against the resulting recommendation.
type ShortfallService struct {
	cfg           *config.Config
	unitRepo      repositories.UnitRepository
	soaRepo       repositories.SOARepository
	purchaserRepo repositories.PurchaserRepository
	shortfallRepo repositories.ShortfallRepository
}

func NewShortfallService(
	cfg *config.Config,
	unitRepo repositories.UnitRepository,
	soaRepo repositories.SOARepository,
	purchaserRepo repositories.PurchaserRepository,
	shortfallRepo repositories.ShortfallRepository,
) *ShortfallService {
	return &ShortfallService{
		cfg:           cfg,
		unitRepo:      unitRepo,
		soaRepo:       soaRepo,
		purchaserRepo: purchaserRepo,
		shortfallRepo: shortfallRepo,
	}
}

func (s *ShortfallService) thresholds() RecommendationThresholds {
	return RecommendationThresholds{
		LowPct:  decimal.NewFromFloat(s.cfg.ShortfallLowPct),
		MidPct:  decimal.NewFromFloat(s.cfg.ShortfallMidPct),
		HighPct: decimal.NewFromFloat(s.cfg.ShortfallHighPct),
	}
}

// AnalyzeShortfall recomputes and persists the analysis for a unit. Absent
// purchaser data is treated as zero funds, never as an error: closing risk
// must stay visible even when the purchaser has not finished submitting.
func (s *ShortfallService) AnalyzeShortfall(ctx context.Context, unitID uuid.UUID) (*models.ShortfallAnalysis, error) {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, utils.ErrUnitNotFound
	}

	soa, err := s.soaRepo.GetByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if soa == nil {
		return nil, utils.ErrSOANotFound
	}

	mortgage, err := s.purchaserRepo.GetMortgageByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	financials, err := s.purchaserRepo.GetFinancialsByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	mortgageApproved := mortgage != nil && mortgage.HasMortgageApproval
	mortgageAmount := decimal.Zero
	if mortgageApproved {
		mortgageAmount = mortgage.ApprovedAmount
	}
	nonMortgageCash := decimal.Zero
	if financials != nil {
		nonMortgageCash = financials.NonMortgageFunds()
	}

	// The mortgage already reduced CashRequiredToClose on the SOA side, so
	// funds available counts only deposits and the purchaser's own cash.
	totalFunds := soa.DepositsPaid.Add(nonMortgageCash)

	shortfall := soa.CashRequiredToClose.Sub(totalFunds)
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}

	pct := decimal.Zero
	if unit.PurchasePrice.IsPositive() {
		pct = shortfall.Div(unit.PurchasePrice).Mul(decimal.NewFromInt(100))
	}

	closingSoon := false
	if unit.ClosingDate != nil {
		days := utils.BusinessDaysUntil(time.Now().UTC(), *unit.ClosingDate)
		closingSoon = days <= s.cfg.ClosingSoonBusinessDays
	}

	outcome := Recommend(RecommendationInput{
		ShortfallAmount:     shortfall,
		ShortfallPct:        pct,
		HasMortgageApproval: mortgageApproved,
		MortgageAmount:      mortgageAmount,
		NonMortgageCash:     nonMortgageCash,
		ClosingSoon:         closingSoon,
	}, s.thresholds())

	analysis := &models.ShortfallAnalysis{
		ID:     uuid.New(),
		UnitID: unitID,

		CashRequiredToClose: soa.CashRequiredToClose,
		MortgageApproved:    mortgageApproved,
		MortgageAmount:      mortgageAmount,
		DepositsPaid:        soa.DepositsPaid,
		AdditionalCash:      nonMortgageCash,
		TotalFundsAvailable: totalFunds,

		ShortfallAmount:     utils.Round2(shortfall),
		ShortfallPercentage: pct.Round(2),
		RiskLevel:           outcome.RiskLevel,
		Recommendation:      outcome.Recommendation,
		SuggestedDiscount:   roundPtr(outcome.SuggestedDiscount),
		SuggestedVTBAmount:  roundPtr(outcome.SuggestedVTBAmount),
		Reasoning:           outcome.Reasoning,

		AnalyzedAt: time.Now().UTC(),
	}

	if err := s.shortfallRepo.SaveAnalysis(ctx, analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// GetAnalysis returns the live analysis for a unit.
func (s *ShortfallService) GetAnalysis(ctx context.Context, unitID uuid.UUID) (*models.ShortfallAnalysis, error) {
	a, err := s.shortfallRepo.GetByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, utils.ErrAnalysisNotFound
	}
	return a, nil
}

func (s *ShortfallService) ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.ShortfallAnalysisVersion, error) {
	return s.shortfallRepo.ListVersions(ctx, unitID)
}

// RecordDecision annotates the live analysis with the builder's response.
// A MUTUAL_RELEASE is recorded here as a modified suggestion; the system
// never recommends it on its own.
func (s *ShortfallService) RecordDecision(
	ctx context.Context,
	unitID uuid.UUID,
	action models.DecisionActionType,
	modifiedSuggestion *string,
) (*models.ShortfallAnalysis, error) {
	err := s.shortfallRepo.RecordDecision(ctx, unitID, action, modifiedSuggestion)
	if err == pgx.ErrNoRows {
		return nil, utils.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetAnalysis(ctx, unitID)
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := utils.Round2(*d)
	return &r
}
