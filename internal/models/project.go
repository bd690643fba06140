package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectFeeCode names the per-project fee overrides a builder can set.
type ProjectFeeCode string

const (
	FeeCodeDevelopmentCharges ProjectFeeCode = "DEVELOPMENT_CHARGES"
	FeeCodeLegalFees          ProjectFeeCode = "LEGAL_FEES"
	FeeCodeEstimatedLandTax   ProjectFeeCode = "ESTIMATED_LAND_TAX"
	FeeCodeEstimatedMaint     ProjectFeeCode = "ESTIMATED_MAINTENANCE"
	FeeCodeOtherDebits        ProjectFeeCode = "OTHER_DEBITS"
)

// Project is a pre-construction development whose units share a fee
// schedule and a closing calendar.
type Project struct {
	Versioned
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	City string    `json:"city"`
	// Toronto projects attract the municipal land transfer tax on top of
	// the provincial one.
	InToronto bool      `json:"in_toronto"`
	TimeZone  string    `json:"time_zone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Project) GetID() string { return p.ID.String() }

// ProjectFee is one project-level fee row. Amounts are flat dollar figures
// unless IsPerUnitPct is set, in which case Amount is a percentage of the
// unit's purchase price.
type ProjectFee struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	Code         ProjectFeeCode  `json:"code"`
	Amount       decimal.Decimal `json:"amount"`
	IsPerUnitPct bool            `json:"is_per_unit_pct"`
	CreatedAt    time.Time       `json:"created_at"`
}
