package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/utils"
)

// SOAService owns the statement-of-adjustments lifecycle: deterministic
// recalculation, version history, party confirmations and the lock that
// both confirmations create.
type SOAService struct {
	unitRepo      repositories.UnitRepository
	projectRepo   repositories.ProjectRepository
	depositRepo   repositories.DepositRepository
	purchaserRepo repositories.PurchaserRepository
	soaRepo       repositories.SOARepository
	feeSvc        *FeeService
}

func NewSOAService(
	unitRepo repositories.UnitRepository,
	projectRepo repositories.ProjectRepository,
	depositRepo repositories.DepositRepository,
	purchaserRepo repositories.PurchaserRepository,
	soaRepo repositories.SOARepository,
	feeSvc *FeeService,
) *SOAService {
	return &SOAService{
		unitRepo:      unitRepo,
		projectRepo:   projectRepo,
		depositRepo:   depositRepo,
		purchaserRepo: purchaserRepo,
		soaRepo:       soaRepo,
		feeSvc:        feeSvc,
	}
}

// CalculateSOA recomputes the statement for a unit from current inputs,
// overwrites the live row and appends a SYSTEM_CALCULATION snapshot.
// Running it twice with unchanged inputs yields identical figures.
func (s *SOAService) CalculateSOA(ctx context.Context, unitID uuid.UUID) (*models.StatementOfAdjustments, error) {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, utils.ErrUnitNotFound
	}

	existing, err := s.soaRepo.GetByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsLocked() {
		return nil, utils.ErrSOALocked
	}

	project, err := s.projectRepo.GetByID(ctx, unit.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, utils.ErrProjectNotFound
	}

	deposits, err := s.depositRepo.ListByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	projectFees, err := s.feeSvc.ProjectFees(ctx, unit.ProjectID, unit.PurchasePrice)
	if err != nil {
		return nil, err
	}

	stmt := &models.StatementOfAdjustments{
		ID:     uuid.New(),
		UnitID: unitID,
	}
	if existing != nil {
		stmt.ID = existing.ID
		stmt.LawyerUploadedBalanceDue = existing.LawyerUploadedBalanceDue
	}

	// Debits
	stmt.PurchasePrice = utils.Round2(unit.PurchasePrice)
	stmt.ParkingPrice = utils.Round2(unit.ParkingPrice)
	stmt.LockerPrice = utils.Round2(unit.LockerPrice)
	stmt.Upgrades = utils.Round2(unit.UpgradesAmount)

	// Land transfer taxes are charged on the full consideration for the
	// conveyance, which includes the add-ons but not upgrades billed
	// separately after signing.
	consideration := unit.PurchasePrice.Add(unit.ParkingPrice).Add(unit.LockerPrice)
	stmt.OntarioLandTransfer = utils.Round2(s.feeSvc.OntarioLandTransferTax(consideration))
	if project.InToronto {
		stmt.TorontoLandTransfer = utils.Round2(s.feeSvc.TorontoLandTransferTax(consideration))
	} else {
		stmt.TorontoLandTransfer = decimal.Zero
	}
	stmt.TarionFee = utils.Round2(s.feeSvc.TarionFee(unit.PurchasePrice))

	stmt.DevelopmentCharges = utils.Round2(projectFees[models.FeeCodeDevelopmentCharges])
	stmt.LegalFees = utils.Round2(projectFees[models.FeeCodeLegalFees])
	stmt.OtherDebits = utils.Round2(projectFees[models.FeeCodeOtherDebits])

	// Actual figures supplied at closing override the project estimates.
	landTax := projectFees[models.FeeCodeEstimatedLandTax]
	if unit.ActualLandTax != nil {
		landTax = *unit.ActualLandTax
	}
	stmt.LandTaxAdjustment = utils.Round2(landTax)

	maintenance := projectFees[models.FeeCodeEstimatedMaint]
	if unit.ActualMaintenance != nil {
		maintenance = *unit.ActualMaintenance
	}
	stmt.MaintenanceAdj = utils.Round2(maintenance)

	// Credits
	depositsPaid := decimal.Zero
	depositInterest := decimal.Zero
	for _, d := range deposits {
		if !d.IsPaid {
			continue
		}
		depositsPaid = depositsPaid.Add(d.Amount)
		depositInterest = depositInterest.Add(accrueDepositInterest(d, unit.ClosingDate))
	}
	stmt.DepositsPaid = utils.Round2(depositsPaid)
	stmt.DepositInterest = utils.Round2(depositInterest)
	stmt.BuilderCredits = decimal.Zero
	stmt.OtherCredits = decimal.Zero

	// Totals
	stmt.TotalDebits = stmt.PurchasePrice.
		Add(stmt.ParkingPrice).
		Add(stmt.LockerPrice).
		Add(stmt.OntarioLandTransfer).
		Add(stmt.TorontoLandTransfer).
		Add(stmt.TarionFee).
		Add(stmt.DevelopmentCharges).
		Add(stmt.Upgrades).
		Add(stmt.LegalFees).
		Add(stmt.LandTaxAdjustment).
		Add(stmt.MaintenanceAdj).
		Add(stmt.OtherDebits)
	stmt.TotalCredits = stmt.DepositsPaid.
		Add(stmt.DepositInterest).
		Add(stmt.BuilderCredits).
		Add(stmt.OtherCredits)
	stmt.BalanceDueOnClosing = stmt.TotalDebits.Sub(stmt.TotalCredits)

	mortgage, err := s.purchaserRepo.GetMortgageByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if mortgage != nil && mortgage.HasMortgageApproval {
		stmt.MortgageAmount = mortgage.ApprovedAmount
	} else {
		stmt.MortgageAmount = decimal.Zero
	}
	// May go negative when the mortgage exceeds the balance due; that is
	// a fully funded closing, not an error.
	stmt.CashRequiredToClose = stmt.BalanceDueOnClosing.Sub(stmt.MortgageAmount)

	stmt.CalculatedAt = time.Now().UTC()

	if err := s.soaRepo.ReplaceWithVersion(ctx, stmt, models.SOASourceSystemCalculation); err != nil {
		return nil, err
	}
	return stmt, nil
}

// GetSOA returns the live statement for a unit.
func (s *SOAService) GetSOA(ctx context.Context, unitID uuid.UUID) (*models.StatementOfAdjustments, error) {
	stmt, err := s.soaRepo.GetByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		return nil, utils.ErrSOANotFound
	}
	return stmt, nil
}

func (s *SOAService) ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.SOAVersion, error) {
	return s.soaRepo.ListVersions(ctx, unitID)
}

// Confirm records one party's sign-off. When both parties have confirmed
// the statement becomes locked against recalculation.
func (s *SOAService) Confirm(ctx context.Context, unitID uuid.UUID, byLawyer bool) (*models.StatementOfAdjustments, error) {
	stmt, err := s.GetSOA(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if stmt.IsLocked() {
		return nil, utils.ErrSOALocked
	}
	if byLawyer {
		err = s.soaRepo.SetLawyerConfirmation(ctx, unitID, true)
	} else {
		err = s.soaRepo.SetBuilderConfirmation(ctx, unitID, true)
	}
	if err != nil {
		return nil, err
	}
	return s.GetSOA(ctx, unitID)
}

// Unlock clears both confirmations so the statement can be recalculated
// again. The MANUAL_UNLOCK snapshot keeps the audit trail honest.
func (s *SOAService) Unlock(ctx context.Context, unitID uuid.UUID) (*models.StatementOfAdjustments, error) {
	if _, err := s.GetSOA(ctx, unitID); err != nil {
		return nil, err
	}
	if err := s.soaRepo.Unlock(ctx, unitID); err != nil {
		return nil, err
	}
	return s.GetSOA(ctx, unitID)
}

// RecordLawyerBalance stores the lawyer's independently prepared balance
// due beside the calculated one. It never feeds back into the totals.
func (s *SOAService) RecordLawyerBalance(ctx context.Context, unitID uuid.UUID, balance decimal.Decimal) (*models.StatementOfAdjustments, error) {
	stmt, err := s.GetSOA(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if stmt.IsLocked() {
		return nil, utils.ErrSOALocked
	}
	if err := s.soaRepo.SetLawyerBalance(ctx, unitID, balance); err != nil {
		return nil, err
	}
	return s.GetSOA(ctx, unitID)
}

// accrueDepositInterest sums simple interest across the deposit's rate
// periods, clamping each window to [paid date, closing date]. Precision
// is kept until the caller rounds the grand total once.
func accrueDepositInterest(d *models.Deposit, closingDate *time.Time) decimal.Decimal {
	if !d.InterestEligible || d.PaidDate == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, p := range d.Periods {
		start := p.StartDate
		if d.PaidDate.After(start) {
			start = *d.PaidDate
		}
		end := p.EndDate
		if closingDate != nil && closingDate.Before(end) {
			end = *closingDate
		}
		days := utils.DaysBetween(start, end)
		total = total.Add(utils.SimpleInterest(d.Amount, p.AnnualRate, days))
	}
	return total
}
