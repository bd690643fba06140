package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MortgageApprovalType distinguishes how firm a purchaser's financing is.
type MortgageApprovalType string

const (
	ApprovalPreQualified MortgageApprovalType = "PRE_QUALIFIED"
	ApprovalPreApproved  MortgageApprovalType = "PRE_APPROVED"
	ApprovalCommitted    MortgageApprovalType = "COMMITTED"
)

// MortgageInfo is the purchaser-submitted financing snapshot for a unit.
// The calculators read it as fact; only the purchaser edits it.
type MortgageInfo struct {
	Versioned
	ID                  uuid.UUID             `json:"id"`
	UnitID              uuid.UUID             `json:"unit_id"`
	PurchaserID         uuid.UUID             `json:"purchaser_id"`
	HasMortgageApproval bool                  `json:"has_mortgage_approval"`
	ApprovedAmount      decimal.Decimal       `json:"approved_amount"`
	ApprovalType        *MortgageApprovalType `json:"approval_type,omitempty"`
	LenderName          string                `json:"lender_name"`
	ApprovalExpiryDate  *time.Time            `json:"approval_expiry_date,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

func (m *MortgageInfo) GetID() string { return m.ID.String() }

// PurchaserFinancials is the purchaser's self-reported capacity to close
// beyond the mortgage. Absent rows are treated as zero funds available.
type PurchaserFinancials struct {
	Versioned
	ID                  uuid.UUID       `json:"id"`
	UnitID              uuid.UUID       `json:"unit_id"`
	PurchaserID         uuid.UUID       `json:"purchaser_id"`
	AdditionalCash      decimal.Decimal `json:"additional_cash_available"`
	RRSPAvailable       decimal.Decimal `json:"rrsp_available"`
	GiftFromFamily      decimal.Decimal `json:"gift_from_family"`
	ProceedsFromSale    decimal.Decimal `json:"proceeds_from_sale"`
	OtherFunds          decimal.Decimal `json:"other_funds_amount"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (f *PurchaserFinancials) GetID() string { return f.ID.String() }

// NonMortgageFunds sums every source of cash that is not the mortgage.
func (f *PurchaserFinancials) NonMortgageFunds() decimal.Decimal {
	return f.AdditionalCash.
		Add(f.RRSPAvailable).
		Add(f.GiftFromFamily).
		Add(f.ProceedsFromSale).
		Add(f.OtherFunds)
}
