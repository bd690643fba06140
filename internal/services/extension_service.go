package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/utils"
)

// ExtensionService handles closing-date extension requests. Approval moves
// the unit's closing date and defers recalculation to a background task,
// because the approving admin should not wait on the calculators.
type ExtensionService struct {
	extensionRepo repositories.ExtensionRepository
	unitRepo      repositories.UnitRepository
	recalcSvc     *RecalcService
}

func NewExtensionService(
	extensionRepo repositories.ExtensionRepository,
	unitRepo repositories.UnitRepository,
	recalcSvc *RecalcService,
) *ExtensionService {
	return &ExtensionService{
		extensionRepo: extensionRepo,
		unitRepo:      unitRepo,
		recalcSvc:     recalcSvc,
	}
}

// RequestExtension files a PENDING request snapshotting the current
// closing date so the approval diff is auditable.
func (s *ExtensionService) RequestExtension(ctx context.Context, e *models.ExtensionRequest) (*models.ExtensionRequest, error) {
	unit, err := s.unitRepo.GetByID(ctx, e.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, utils.ErrUnitNotFound
	}
	if unit.ClosingDate != nil {
		e.CurrentClosingDate = *unit.ClosingDate
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Status = models.ExtensionStatusPending
	if err := s.extensionRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.extensionRepo.GetByID(ctx, e.ID)
}

func (s *ExtensionService) GetExtension(ctx context.Context, id uuid.UUID) (*models.ExtensionRequest, error) {
	e, err := s.extensionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, utils.ErrExtensionNotFound
	}
	return e, nil
}

func (s *ExtensionService) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.ExtensionRequest, error) {
	return s.extensionRepo.ListByUnitID(ctx, unitID)
}

func (s *ExtensionService) ListPending(ctx context.Context) ([]*models.ExtensionRequest, error) {
	return s.extensionRepo.ListPending(ctx)
}

// Decide approves or rejects a pending request. On approval the unit's
// closing date is rewritten atomically with the status flip, and the
// recalculation runs in the background with a best-effort notification.
func (s *ExtensionService) Decide(
	ctx context.Context,
	id uuid.UUID,
	approve bool,
	decidedBy uuid.UUID,
	notifyName, notifyEmail string,
) (*models.ExtensionRequest, error) {
	current, err := s.GetExtension(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ExtensionStatusPending {
		return nil, utils.ErrExtensionDecided
	}

	status := models.ExtensionStatusRejected
	if approve {
		status = models.ExtensionStatusApproved
	}

	// DecideAtomic surfaces ErrExtensionDecided / ErrRowVersionConflict as
	// sentinels, so callers can errors.Is them straight through.
	decided, err := s.extensionRepo.DecideAtomic(ctx, id, current.RowVersion, status, decidedBy)
	if err != nil {
		return nil, err
	}

	if approve {
		s.recalcSvc.RecalculateInBackground(decided.UnitID, notifyName, notifyEmail)
	}
	return decided, nil
}
