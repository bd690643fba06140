package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/services"
	"github.com/clearclose/closing-service/internal/utils"
)

const seedProjectName = "Harbourview Residences (TEST)"

// SeedTestData loads a small Toronto project with two units so local and
// preview environments have something to calculate against. Safe to call
// repeatedly; the sentinel project name makes it a no-op on reruns.
func SeedTestData(
	ctx context.Context,
	projectRepo repositories.ProjectRepository,
	unitSvc *services.UnitService,
) error {
	existing, err := projectRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.Name == seedProjectName {
			utils.Logger.Info("Seed data already present, skipping")
			return nil
		}
	}

	project := &models.Project{
		ID:        uuid.New(),
		Name:      seedProjectName,
		City:      "Toronto",
		InToronto: true,
		TimeZone:  "America/Toronto",
	}
	if err := projectRepo.Create(ctx, project); err != nil {
		return err
	}

	if err := projectRepo.UpsertFee(ctx, &models.ProjectFee{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Code:      models.FeeCodeDevelopmentCharges,
		Amount:    decimal.NewFromInt(12_000),
	}); err != nil {
		return err
	}
	if err := projectRepo.UpsertFee(ctx, &models.ProjectFee{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Code:      models.FeeCodeLegalFees,
		Amount:    decimal.NewFromInt(1_800),
	}); err != nil {
		return err
	}

	closing := time.Now().UTC().AddDate(0, 3, 0)
	unitA := &models.Unit{
		ProjectID:     project.ID,
		UnitNumber:    "PH-01",
		PurchasePrice: decimal.NewFromInt(600_000),
		ParkingPrice:  decimal.NewFromInt(45_000),
		LockerPrice:   decimal.NewFromInt(5_000),
		Status:        models.UnitStatusSold,
		ClosingDate:   &closing,
	}
	createdA, err := unitSvc.CreateUnit(ctx, unitA)
	if err != nil {
		return err
	}

	paid := time.Now().UTC().AddDate(-1, 0, 0)
	_, err = unitSvc.AddDeposit(ctx, &models.Deposit{
		UnitID:           createdA.ID,
		Amount:           decimal.NewFromInt(50_000),
		DueDate:          paid,
		IsPaid:           true,
		PaidDate:         &paid,
		Holder:           models.DepositHolderTrust,
		InterestEligible: true,
		Periods: []models.DepositInterestPeriod{
			{
				StartDate:  paid,
				EndDate:    closing,
				AnnualRate: decimal.NewFromFloat(2.0),
			},
		},
	})
	if err != nil {
		return err
	}

	unitB := &models.Unit{
		ProjectID:     project.ID,
		UnitNumber:    "1203",
		PurchasePrice: decimal.NewFromInt(480_000),
		Status:        models.UnitStatusAvailable,
	}
	if _, err := unitSvc.CreateUnit(ctx, unitB); err != nil {
		return err
	}

	return nil
}
