package dtos

type CreateProjectRequest struct {
	Name      string `json:"name" validate:"required"`
	City      string `json:"city" validate:"required"`
	InToronto bool   `json:"in_toronto"`
	TimeZone  string `json:"time_zone,omitempty"`
}

type UpsertProjectFeeRequest struct {
	Code         string  `json:"code" validate:"required,oneof=DEVELOPMENT_CHARGES LEGAL_FEES ESTIMATED_LAND_TAX ESTIMATED_MAINTENANCE OTHER_DEBITS"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	IsPerUnitPct bool    `json:"is_per_unit_pct"`
}
