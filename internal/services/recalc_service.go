package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clearclose/closing-service/internal/constants"
	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/utils"
)

// RecalcService orchestrates the two calculators. The SOA always runs
// first; the shortfall analyzer consumes its output in the same logical
// unit of work.
type RecalcService struct {
	unitRepo     repositories.UnitRepository
	projectRepo  repositories.ProjectRepository
	soaSvc       *SOAService
	shortfallSvc *ShortfallService
	notifier     *NotificationService
}

func NewRecalcService(
	unitRepo repositories.UnitRepository,
	projectRepo repositories.ProjectRepository,
	soaSvc *SOAService,
	shortfallSvc *ShortfallService,
	notifier *NotificationService,
) *RecalcService {
	return &RecalcService{
		unitRepo:     unitRepo,
		projectRepo:  projectRepo,
		soaSvc:       soaSvc,
		shortfallSvc: shortfallSvc,
		notifier:     notifier,
	}
}

// RecalcResult pairs the two freshly persisted outputs for one unit.
type RecalcResult struct {
	Statement *models.StatementOfAdjustments `json:"statement"`
	Analysis  *models.ShortfallAnalysis      `json:"analysis"`
}

// RecalculateUnit runs statement then analysis for one unit. A locked
// statement fails the whole operation; callers must unlock first.
func (s *RecalcService) RecalculateUnit(ctx context.Context, unitID uuid.UUID) (*RecalcResult, error) {
	stmt, err := s.soaSvc.CalculateSOA(ctx, unitID)
	if err != nil {
		return nil, err
	}
	analysis, err := s.shortfallSvc.AnalyzeShortfall(ctx, unitID)
	if err != nil {
		return nil, err
	}

	if analysis.Recommendation == models.RecommendationHighRiskDefault {
		unit, uErr := s.unitRepo.GetByID(ctx, unitID)
		if uErr == nil && unit != nil {
			s.notifier.NotifyHighRisk(unit.UnitNumber, "", analysis.Reasoning)
		}
	}

	return &RecalcResult{Statement: stmt, Analysis: analysis}, nil
}

// ProjectRefreshSummary reports a batch run. Failed units carry their
// error text so the caller can chase them individually.
type ProjectRefreshSummary struct {
	ProjectID    uuid.UUID         `json:"project_id"`
	UnitsTotal   int               `json:"units_total"`
	UnitsOK      int               `json:"units_ok"`
	UnitsSkipped int               `json:"units_skipped"`
	Failures     map[string]string `json:"failures,omitempty"`
}

// RefreshProject recalculates every unit in a project. One bad unit never
// aborts the batch; locked statements are skipped, other failures are
// collected.
func (s *RecalcService) RefreshProject(ctx context.Context, projectID uuid.UUID) (*ProjectRefreshSummary, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, utils.ErrProjectNotFound
	}

	units, err := s.unitRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	summary := &ProjectRefreshSummary{
		ProjectID:  projectID,
		UnitsTotal: len(units),
		Failures:   map[string]string{},
	}
	for _, u := range units {
		_, err := s.RecalculateUnit(ctx, u.ID)
		switch {
		case err == nil:
			summary.UnitsOK++
		case err == utils.ErrSOALocked:
			summary.UnitsSkipped++
		default:
			utils.Logger.WithError(err).Warnf("Refresh failed for unit %s", u.ID)
			summary.Failures[u.ID.String()] = err.Error()
		}
	}
	utils.Logger.Infof("Project %s refresh: %d ok, %d skipped, %d failed of %d",
		projectID, summary.UnitsOK, summary.UnitsSkipped, len(summary.Failures), summary.UnitsTotal)
	return summary, nil
}

// RefreshAllProjects is the nightly cron entrypoint.
func (s *RecalcService) RefreshAllProjects() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.RefreshJobTimeout)
	defer cancel()

	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("Nightly refresh: failed to list projects")
		return
	}
	for _, p := range projects {
		if _, err := s.RefreshProject(ctx, p.ID); err != nil {
			utils.Logger.WithError(err).Errorf("Nightly refresh failed for project %s", p.ID)
		}
	}
}

// RecalculateInBackground runs the recalculation on its own goroutine with
// a fresh context and reports the outcome through the notification sink.
// The returned channel carries the single terminal error (nil on success)
// so callers that care can still wait.
func (s *RecalcService) RecalculateInBackground(unitID uuid.UUID, notifyName, notifyEmail string) <-chan error {
	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.RefreshJobTimeout)
		defer cancel()

		unitNumber := unitID.String()
		if unit, err := s.unitRepo.GetByID(ctx, unitID); err == nil && unit != nil {
			unitNumber = unit.UnitNumber
		}

		_, err := s.RecalculateUnit(ctx, unitID)
		if err != nil {
			utils.Logger.WithError(err).Errorf("Background recalculation failed for unit %s", unitID)
			s.notifier.NotifyRecalcFailed(unitNumber, err)
			done <- fmt.Errorf("background recalculation: %w", err)
			return
		}
		if notifyEmail != "" {
			s.notifier.NotifyRecalcComplete(notifyName, notifyEmail, unitNumber)
		}
		done <- nil
	}()
	return done
}
