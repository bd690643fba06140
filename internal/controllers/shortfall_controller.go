package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/clearclose/closing-service/internal/dtos"
	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/services"
	"github.com/clearclose/closing-service/internal/utils"
)

type ShortfallController struct {
	shortfallService *services.ShortfallService
	validate         *validator.Validate
}

func NewShortfallController(shortfallService *services.ShortfallService) *ShortfallController {
	return &ShortfallController{
		shortfallService: shortfallService,
		validate:         validator.New(),
	}
}

// GET /api/v1/units/{id}/shortfall
func (c *ShortfallController) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	analysis, err := c.shortfallService.GetAnalysis(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, analysis)
}

// GET /api/v1/units/{id}/shortfall/versions
func (c *ShortfallController) ListVersionsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	versions, err := c.shortfallService.ListVersions(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, versions)
}

// POST /api/v1/units/{id}/shortfall/decision
func (c *ShortfallController) RecordDecisionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.RecordDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	analysis, err := c.shortfallService.RecordDecision(
		r.Context(), id, models.DecisionActionType(req.Action), req.ModifiedSuggestion)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, analysis)
}
