package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/constants"
	"github.com/clearclose/closing-service/internal/dtos"
	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
	"github.com/clearclose/closing-service/internal/services"
	"github.com/clearclose/closing-service/internal/utils"
)

type ProjectsController struct {
	projectRepo   repositories.ProjectRepository
	unitService   *services.UnitService
	recalcService *services.RecalcService
	validate      *validator.Validate
}

func NewProjectsController(
	projectRepo repositories.ProjectRepository,
	unitService *services.UnitService,
	recalcService *services.RecalcService,
) *ProjectsController {
	return &ProjectsController{
		projectRepo:   projectRepo,
		unitService:   unitService,
		recalcService: recalcService,
		validate:      validator.New(),
	}
}

// POST /api/v1/projects
func (c *ProjectsController) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	tz := req.TimeZone
	if tz == "" {
		tz = constants.BusinessTimezone
	}
	project := &models.Project{
		ID:        uuid.New(),
		Name:      req.Name,
		City:      req.City,
		InToronto: req.InToronto,
		TimeZone:  tz,
	}
	if err := c.projectRepo.Create(r.Context(), project); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, project)
}

// GET /api/v1/projects
func (c *ProjectsController) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := c.projectRepo.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, projects)
}

// GET /api/v1/projects/{id}
func (c *ProjectsController) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	project, err := c.projectRepo.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if project == nil {
		respondServiceError(w, utils.ErrProjectNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, project)
}

// GET /api/v1/projects/{id}/units
func (c *ProjectsController) ListProjectUnitsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	units, err := c.unitService.ListUnits(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, units)
}

// GET /api/v1/projects/{id}/fees
func (c *ProjectsController) ListFeesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	fees, err := c.projectRepo.ListFees(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, fees)
}

// PUT /api/v1/projects/{id}/fees
func (c *ProjectsController) UpsertFeeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpsertProjectFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			formatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	fee := &models.ProjectFee{
		ID:           uuid.New(),
		ProjectID:    id,
		Code:         models.ProjectFeeCode(req.Code),
		Amount:       decimal.NewFromFloat(req.Amount),
		IsPerUnitPct: req.IsPerUnitPct,
	}
	if err := c.projectRepo.UpsertFee(r.Context(), fee); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, fee)
}

// POST /api/v1/projects/{id}/refresh
func (c *ProjectsController) RefreshProjectHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	summary, err := c.recalcService.RefreshProject(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}
