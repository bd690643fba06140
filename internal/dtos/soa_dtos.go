package dtos

// ConfirmSOARequest only exists so builders on shared accounts can state
// which side they confirm for; the role claim still has to match.
type ConfirmSOARequest struct {
	Party string `json:"party" validate:"required,oneof=BUILDER LAWYER"`
}

type LawyerBalanceRequest struct {
	BalanceDue float64 `json:"balance_due" validate:"gte=0"`
}

type RecordDecisionRequest struct {
	Action             string  `json:"action" validate:"required,oneof=ACCEPT REJECT MODIFY"`
	ModifiedSuggestion *string `json:"modified_suggestion,omitempty" validate:"required_if=Action MODIFY"`
}
