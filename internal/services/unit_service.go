package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/utils"
)

// UnitService fronts the builder/purchaser mutations that feed the
// calculators. Every successful write triggers a synchronous
// recalculation so dashboards never show stale figures.
type UnitService struct {
	unitRepo      repositories.UnitRepository
	depositRepo   repositories.DepositRepository
	purchaserRepo repositories.PurchaserRepository
	recalcSvc     *RecalcService
}

func NewUnitService(
	unitRepo repositories.UnitRepository,
	depositRepo repositories.DepositRepository,
	purchaserRepo repositories.PurchaserRepository,
	recalcSvc *RecalcService,
) *UnitService {
	return &UnitService{
		unitRepo:      unitRepo,
		depositRepo:   depositRepo,
		purchaserRepo: purchaserRepo,
		recalcSvc:     recalcSvc,
	}
}

/* ---------- units ---------- */

func (s *UnitService) CreateUnit(ctx context.Context, u *models.Unit) (*models.Unit, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = models.UnitStatusAvailable
	}
	if err := s.unitRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	if _, err := s.recalcSvc.RecalculateUnit(ctx, u.ID); err != nil {
		return nil, err
	}
	return s.GetUnit(ctx, u.ID)
}

func (s *UnitService) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	u, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, utils.ErrUnitNotFound
	}
	return u, nil
}

func (s *UnitService) ListUnits(ctx context.Context, projectID uuid.UUID) ([]*models.Unit, error) {
	return s.unitRepo.ListByProjectID(ctx, projectID)
}

// UpdateUnit applies the mutation under the optimistic-lock retry loop,
// then recalculates. Price or date edits are exactly the writes that
// invalidate the statement.
func (s *UnitService) UpdateUnit(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) (*models.Unit, error) {
	if _, err := s.GetUnit(ctx, id); err != nil {
		return nil, err
	}
	if err := s.unitRepo.UpdateWithRetry(ctx, id, mutate); err != nil {
		return nil, err
	}
	if _, err := s.recalcSvc.RecalculateUnit(ctx, id); err != nil {
		return nil, err
	}
	return s.GetUnit(ctx, id)
}

/* ---------- deposits ---------- */

// AddDeposit validates the interest schedule and stores the deposit, then
// recalculates the unit.
func (s *UnitService) AddDeposit(ctx context.Context, d *models.Deposit) (*models.Deposit, error) {
	if _, err := s.GetUnit(ctx, d.UnitID); err != nil {
		return nil, err
	}
	if err := validateInterestPeriods(d.Periods); err != nil {
		return nil, err
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	for i := range d.Periods {
		if d.Periods[i].ID == uuid.Nil {
			d.Periods[i].ID = uuid.New()
		}
		d.Periods[i].DepositID = d.ID
	}
	if err := s.depositRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	if _, err := s.recalcSvc.RecalculateUnit(ctx, d.UnitID); err != nil {
		return nil, err
	}
	return s.depositRepo.GetByID(ctx, d.ID)
}

func (s *UnitService) ListDeposits(ctx context.Context, unitID uuid.UUID) ([]*models.Deposit, error) {
	return s.depositRepo.ListByUnitID(ctx, unitID)
}

// MarkDepositPaid flips the paid flag and recalculates; a paid deposit
// starts counting toward credits and accrues interest from its paid date.
func (s *UnitService) MarkDepositPaid(ctx context.Context, depositID uuid.UUID, paidDate time.Time) (*models.Deposit, error) {
	d, err := s.depositRepo.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, utils.ErrDepositNotFound
	}
	if err := s.depositRepo.MarkPaid(ctx, depositID, paidDate); err != nil {
		return nil, err
	}
	if _, err := s.recalcSvc.RecalculateUnit(ctx, d.UnitID); err != nil {
		return nil, err
	}
	return s.depositRepo.GetByID(ctx, depositID)
}

/* ---------- purchaser submissions ---------- */

func (s *UnitService) SubmitMortgageInfo(ctx context.Context, m *models.MortgageInfo) (*models.MortgageInfo, error) {
	if _, err := s.GetUnit(ctx, m.UnitID); err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if err := s.purchaserRepo.UpsertMortgage(ctx, m); err != nil {
		return nil, err
	}
	if _, err := s.recalcSvc.RecalculateUnit(ctx, m.UnitID); err != nil {
		return nil, err
	}
	return s.purchaserRepo.GetMortgageByUnitID(ctx, m.UnitID)
}

func (s *UnitService) SubmitFinancials(ctx context.Context, f *models.PurchaserFinancials) (*models.PurchaserFinancials, error) {
	if _, err := s.GetUnit(ctx, f.UnitID); err != nil {
		return nil, err
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if err := s.purchaserRepo.UpsertFinancials(ctx, f); err != nil {
		return nil, err
	}
	if _, err := s.recalcSvc.RecalculateUnit(ctx, f.UnitID); err != nil {
		return nil, err
	}
	return s.purchaserRepo.GetFinancialsByUnitID(ctx, f.UnitID)
}

/* ---------- internals ---------- */

// validateInterestPeriods rejects inverted or overlapping rate windows.
// A clean schedule is what lets interest accrue additively per period.
func validateInterestPeriods(periods []models.DepositInterestPeriod) error {
	sorted := make([]models.DepositInterestPeriod, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})
	for i := range sorted {
		if !sorted[i].EndDate.After(sorted[i].StartDate) {
			return utils.ErrPeriodsOverlap
		}
		if i > 0 && sorted[i].StartDate.Before(sorted[i-1].EndDate) {
			return utils.ErrPeriodsOverlap
		}
	}
	return nil
}
