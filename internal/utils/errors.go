package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrUnitNotFound      = errors.New("unit_not_found")
	ErrProjectNotFound   = errors.New("project_not_found")
	ErrSOANotFound       = errors.New("soa_not_found")
	ErrAnalysisNotFound  = errors.New("analysis_not_found")
	ErrDepositNotFound   = errors.New("deposit_not_found")
	ErrExtensionNotFound = errors.New("extension_not_found")
	ErrSOALocked         = errors.New("soa_locked")
	ErrExtensionDecided  = errors.New("extension_already_decided")
	ErrPeriodsOverlap    = errors.New("interest_periods_overlap")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (e.g., Twilio, SendGrid)
	ErrExternalServiceFailure = errors.New("external_service_failure")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// AppError carries structured failures from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
