package dtos

import (
	"time"

	"github.com/google/uuid"
)

type SubmitMortgageRequest struct {
	PurchaserID         uuid.UUID  `json:"purchaser_id" validate:"required"`
	HasMortgageApproval bool       `json:"has_mortgage_approval"`
	ApprovedAmount      float64    `json:"approved_amount" validate:"gte=0"`
	ApprovalType        *string    `json:"approval_type,omitempty" validate:"omitempty,oneof=PRE_QUALIFIED PRE_APPROVED COMMITTED"`
	LenderName          string     `json:"lender_name,omitempty"`
	ApprovalExpiryDate  *time.Time `json:"approval_expiry_date,omitempty"`
}

type SubmitFinancialsRequest struct {
	PurchaserID      uuid.UUID `json:"purchaser_id" validate:"required"`
	AdditionalCash   float64   `json:"additional_cash_available" validate:"gte=0"`
	RRSPAvailable    float64   `json:"rrsp_available" validate:"gte=0"`
	GiftFromFamily   float64   `json:"gift_from_family" validate:"gte=0"`
	ProceedsFromSale float64   `json:"proceeds_from_sale" validate:"gte=0"`
	OtherFunds       float64   `json:"other_funds_amount" validate:"gte=0"`
}
