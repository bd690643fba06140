package dtos

// ValidationErrorDetail gives the client a per-field reason.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
