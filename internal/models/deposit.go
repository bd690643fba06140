package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositHolderType identifies who holds a deposit until closing.
type DepositHolderType string

const (
	DepositHolderBuilder DepositHolderType = "BUILDER"
	DepositHolderTrust   DepositHolderType = "TRUST"
	DepositHolderLawyer  DepositHolderType = "LAWYER"
)

// Deposit is a scheduled or paid payment tied to a unit.
type Deposit struct {
	Versioned
	ID               uuid.UUID         `json:"id"`
	UnitID           uuid.UUID         `json:"unit_id"`
	Amount           decimal.Decimal   `json:"amount"`
	DueDate          time.Time         `json:"due_date"`
	IsPaid           bool              `json:"is_paid"`
	PaidDate         *time.Time        `json:"paid_date,omitempty"`
	Holder           DepositHolderType `json:"holder"`
	InterestEligible bool              `json:"interest_eligible"`
	// Periods describe a variable-rate interest schedule; they must not overlap.
	Periods   []DepositInterestPeriod `json:"periods,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func (d *Deposit) GetID() string { return d.ID.String() }

// DepositInterestPeriod is one calendar window of a deposit's rate schedule.
// AnnualRate is a percentage, e.g. 2.50 for 2.5% per annum simple interest.
type DepositInterestPeriod struct {
	ID         uuid.UUID       `json:"id"`
	DepositID  uuid.UUID       `json:"deposit_id"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
}
