package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitStatusType defines the lifecycle states of a sellable unit.
type UnitStatusType string

const (
	UnitStatusAvailable UnitStatusType = "AVAILABLE"
	UnitStatusSold      UnitStatusType = "SOLD"
	UnitStatusClosing   UnitStatusType = "CLOSING"
	UnitStatusClosed    UnitStatusType = "CLOSED"
	UnitStatusReleased  UnitStatusType = "RELEASED"
)

// Unit represents a single sellable property inside a project.
// Recommendation mirrors the latest shortfall analysis for dashboard reads.
type Unit struct {
	Versioned
	ID             uuid.UUID           `json:"id"`
	ProjectID      uuid.UUID           `json:"project_id"`
	UnitNumber     string              `json:"unit_number"`
	PurchasePrice  decimal.Decimal     `json:"purchase_price"`
	ParkingPrice   decimal.Decimal     `json:"parking_price"`
	LockerPrice    decimal.Decimal     `json:"locker_price"`
	UpgradesAmount decimal.Decimal     `json:"upgrades_amount"`
	// Actuals override the project-level estimates on the SOA when set.
	ActualLandTax     *decimal.Decimal `json:"actual_land_tax,omitempty"`
	ActualMaintenance *decimal.Decimal `json:"actual_maintenance,omitempty"`
	OccupancyDate     *time.Time       `json:"occupancy_date,omitempty"`
	ClosingDate       *time.Time       `json:"closing_date,omitempty"`
	Status            UnitStatusType   `json:"status"`
	Recommendation    *RecommendationType `json:"recommendation,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (u *Unit) GetID() string { return u.ID.String() }
