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

type ExtensionsController struct {
	extensionService *services.ExtensionService
	validate         *validator.Validate
}

func NewExtensionsController(extensionService *services.ExtensionService) *ExtensionsController {
	return &ExtensionsController{
		extensionService: extensionService,
		validate:         validator.New(),
	}
}

// POST /api/v1/units/{id}/extensions
func (c *ExtensionsController) RequestExtensionHandler(w http.ResponseWriter, r *http.Request) {
	unitID, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	requesterID, err := callerID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.RequestExtensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	ext := &models.ExtensionRequest{
		UnitID:               unitID,
		RequestedBy:          requesterID,
		RequestedClosingDate: req.RequestedClosingDate,
		Reason:               req.Reason,
	}
	created, err := c.extensionService.RequestExtension(r.Context(), ext)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

// GET /api/v1/units/{id}/extensions
func (c *ExtensionsController) ListUnitExtensionsHandler(w http.ResponseWriter, r *http.Request) {
	unitID, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	list, err := c.extensionService.ListByUnit(r.Context(), unitID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/extensions
func (c *ExtensionsController) ListPendingHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.extensionService.ListPending(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/extensions/{id}/decision
func (c *ExtensionsController) DecideHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	deciderID, err := callerID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.DecideExtensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	decided, err := c.extensionService.Decide(
		r.Context(), id, req.Approve, deciderID, req.NotifyName, req.NotifyEmail)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, decided)
}
