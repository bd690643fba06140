package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/dtos"
	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/services"
	"github.com/clearclose/closing-service/internal/utils"
)

type UnitsController struct {
	unitService   *services.UnitService
	recalcService *services.RecalcService
	validate      *validator.Validate
}

func NewUnitsController(unitService *services.UnitService, recalcService *services.RecalcService) *UnitsController {
	return &UnitsController{
		unitService:   unitService,
		recalcService: recalcService,
		validate:      validator.New(),
	}
}

// POST /api/v1/units
func (c *UnitsController) CreateUnitHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	unit := &models.Unit{
		ProjectID:      req.ProjectID,
		UnitNumber:     req.UnitNumber,
		PurchasePrice:  decimal.NewFromFloat(req.PurchasePrice),
		ParkingPrice:   decimal.NewFromFloat(req.ParkingPrice),
		LockerPrice:    decimal.NewFromFloat(req.LockerPrice),
		UpgradesAmount: decimal.NewFromFloat(req.UpgradesAmount),
		OccupancyDate:  req.OccupancyDate,
		ClosingDate:    req.ClosingDate,
	}
	created, err := c.unitService.CreateUnit(r.Context(), unit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

// GET /api/v1/units/{id}
func (c *UnitsController) GetUnitHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	unit, err := c.unitService.GetUnit(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, unit)
}

// PATCH /api/v1/units/{id}
func (c *UnitsController) UpdateUnitHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	updated, err := c.unitService.UpdateUnit(r.Context(), id, func(u *models.Unit) error {
		if req.UnitNumber != nil {
			u.UnitNumber = *req.UnitNumber
		}
		if req.PurchasePrice != nil {
			u.PurchasePrice = decimal.NewFromFloat(*req.PurchasePrice)
		}
		if req.ParkingPrice != nil {
			u.ParkingPrice = decimal.NewFromFloat(*req.ParkingPrice)
		}
		if req.LockerPrice != nil {
			u.LockerPrice = decimal.NewFromFloat(*req.LockerPrice)
		}
		if req.UpgradesAmount != nil {
			u.UpgradesAmount = decimal.NewFromFloat(*req.UpgradesAmount)
		}
		if req.ActualLandTax != nil {
			u.ActualLandTax = utils.Ptr(decimal.NewFromFloat(*req.ActualLandTax))
		}
		if req.ActualMaintenance != nil {
			u.ActualMaintenance = utils.Ptr(decimal.NewFromFloat(*req.ActualMaintenance))
		}
		if req.OccupancyDate != nil {
			u.OccupancyDate = req.OccupancyDate
		}
		if req.ClosingDate != nil {
			u.ClosingDate = req.ClosingDate
		}
		if req.Status != nil {
			u.Status = models.UnitStatusType(*req.Status)
		}
		return nil
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// POST /api/v1/units/{id}/recalculate
func (c *UnitsController) RecalculateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	result, err := c.recalcService.RecalculateUnit(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

// POST /api/v1/units/{id}/deposits
func (c *UnitsController) AddDepositHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	deposit := &models.Deposit{
		UnitID:           id,
		Amount:           decimal.NewFromFloat(req.Amount),
		DueDate:          req.DueDate,
		IsPaid:           req.IsPaid,
		PaidDate:         req.PaidDate,
		Holder:           models.DepositHolderType(req.Holder),
		InterestEligible: req.InterestEligible,
	}
	for _, p := range req.Periods {
		deposit.Periods = append(deposit.Periods, models.DepositInterestPeriod{
			StartDate:  p.StartDate,
			EndDate:    p.EndDate,
			AnnualRate: decimal.NewFromFloat(p.AnnualRate),
		})
	}

	created, err := c.unitService.AddDeposit(r.Context(), deposit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

// GET /api/v1/units/{id}/deposits
func (c *UnitsController) ListDepositsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	deposits, err := c.unitService.ListDeposits(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, deposits)
}

// POST /api/v1/deposits/{id}/mark-paid
func (c *UnitsController) MarkDepositPaidHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.MarkDepositPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	deposit, err := c.unitService.MarkDepositPaid(r.Context(), id, req.PaidDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, deposit)
}

// PUT /api/v1/units/{id}/mortgage
func (c *UnitsController) SubmitMortgageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SubmitMortgageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	info := &models.MortgageInfo{
		UnitID:              id,
		PurchaserID:         req.PurchaserID,
		HasMortgageApproval: req.HasMortgageApproval,
		ApprovedAmount:      decimal.NewFromFloat(req.ApprovedAmount),
		LenderName:          req.LenderName,
		ApprovalExpiryDate:  req.ApprovalExpiryDate,
	}
	if req.ApprovalType != nil {
		info.ApprovalType = utils.Ptr(models.MortgageApprovalType(*req.ApprovalType))
	}

	saved, err := c.unitService.SubmitMortgageInfo(r.Context(), info)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, saved)
}

// PUT /api/v1/units/{id}/financials
func (c *UnitsController) SubmitFinancialsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SubmitFinancialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	fin := &models.PurchaserFinancials{
		UnitID:           id,
		PurchaserID:      req.PurchaserID,
		AdditionalCash:   decimal.NewFromFloat(req.AdditionalCash),
		RRSPAvailable:    decimal.NewFromFloat(req.RRSPAvailable),
		GiftFromFamily:   decimal.NewFromFloat(req.GiftFromFamily),
		ProceedsFromSale: decimal.NewFromFloat(req.ProceedsFromSale),
		OtherFunds:       decimal.NewFromFloat(req.OtherFunds),
	}

	saved, err := c.unitService.SubmitFinancials(r.Context(), fin)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, saved)
}
