package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/dtos"
	"github.com/clearclose/closing-service/internal/services"
	"github.com/clearclose/closing-service/internal/utils"
)

type SOAController struct {
	soaService *services.SOAService
	validate   *validator.Validate
}

func NewSOAController(soaService *services.SOAService) *SOAController {
	return &SOAController{
		soaService: soaService,
		validate:   validator.New(),
	}
}

// GET /api/v1/units/{id}/soa
func (c *SOAController) GetSOAHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	stmt, err := c.soaService.GetSOA(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stmt)
}

// GET /api/v1/units/{id}/soa/versions
func (c *SOAController) ListVersionsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	versions, err := c.soaService.ListVersions(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, versions)
}

// POST /api/v1/units/{id}/soa/confirm
func (c *SOAController) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.ConfirmSOARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	stmt, err := c.soaService.Confirm(r.Context(), id, req.Party == "LAWYER")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stmt)
}

// POST /api/v1/units/{id}/soa/unlock
func (c *SOAController) UnlockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	stmt, err := c.soaService.Unlock(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stmt)
}

// PUT /api/v1/units/{id}/soa/lawyer-balance
func (c *SOAController) LawyerBalanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.LawyerBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	stmt, err := c.soaService.RecordLawyerBalance(r.Context(), id, decimal.NewFromFloat(req.BalanceDue))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stmt)
}
