package dtos

import "time"

type InterestPeriodRequest struct {
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`
	AnnualRate float64   `json:"annual_rate" validate:"gte=0"`
}

type CreateDepositRequest struct {
	Amount           float64                 `json:"amount" validate:"required,gt=0"`
	DueDate          time.Time               `json:"due_date" validate:"required"`
	Holder           string                  `json:"holder" validate:"required,oneof=BUILDER TRUST LAWYER"`
	InterestEligible bool                    `json:"interest_eligible"`
	IsPaid           bool                    `json:"is_paid"`
	PaidDate         *time.Time              `json:"paid_date,omitempty"`
	Periods          []InterestPeriodRequest `json:"periods,omitempty" validate:"dive"`
}

type MarkDepositPaidRequest struct {
	PaidDate time.Time `json:"paid_date" validate:"required"`
}
