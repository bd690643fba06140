package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/clearclose/closing-service/internal/dtos"
	"github.com/clearclose/closing-service/internal/middleware"
	"github.com/clearclose/closing-service/internal/utils"
)

// pathID pulls the {id} route variable as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    "Invalid id in path",
			Err:        err,
		}
	}
	return id, nil
}

// callerID pulls the authenticated user out of the request context.
func callerID(r *http.Request) (uuid.UUID, error) {
	ctxUserID := r.Context().Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		return uuid.Nil, &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       utils.ErrCodeUnauthorized,
			Message:    "Missing userID in context",
		}
	}
	id, err := uuid.Parse(ctxUserID.(string))
	if err != nil {
		return uuid.Nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    "Invalid userID format",
			Err:        err,
		}
	}
	return id, nil
}

// formatValidationErrors converts validator errors into a per-field list.
func formatValidationErrors(errs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	var details []dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "gt":
			message = fmt.Sprintf("Field '%s' must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

// respondServiceError maps domain sentinels onto HTTP statuses so every
// controller speaks the same error language.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrUnitNotFound),
		errors.Is(err, utils.ErrProjectNotFound),
		errors.Is(err, utils.ErrSOANotFound),
		errors.Is(err, utils.ErrAnalysisNotFound),
		errors.Is(err, utils.ErrDepositNotFound),
		errors.Is(err, utils.ErrExtensionNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, utils.ErrSOALocked):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeSOALocked,
			"Statement is confirmed by both parties and locked; unlock it first", nil)
	case errors.Is(err, utils.ErrExtensionDecided):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict,
			"Extension request has already been decided", nil)
	case errors.Is(err, utils.ErrPeriodsOverlap):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Deposit interest periods must not overlap", nil)
	case errors.Is(err, utils.ErrRowVersionConflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
			"Record was modified concurrently; retry", nil)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"An unexpected error occurred", nil, err)
	}
}
