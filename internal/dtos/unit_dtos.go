package dtos

import (
	"time"

	"github.com/google/uuid"
)

// CreateUnitRequest carries the builder's unit setup. Money comes in as
// plain numbers and is converted to decimals at the service boundary.
type CreateUnitRequest struct {
	ProjectID      uuid.UUID  `json:"project_id" validate:"required"`
	UnitNumber     string     `json:"unit_number" validate:"required"`
	PurchasePrice  float64    `json:"purchase_price" validate:"required,gt=0"`
	ParkingPrice   float64    `json:"parking_price" validate:"gte=0"`
	LockerPrice    float64    `json:"locker_price" validate:"gte=0"`
	UpgradesAmount float64    `json:"upgrades_amount" validate:"gte=0"`
	OccupancyDate  *time.Time `json:"occupancy_date,omitempty"`
	ClosingDate    *time.Time `json:"closing_date,omitempty"`
}

// UpdateUnitRequest is a sparse patch; only supplied fields change.
type UpdateUnitRequest struct {
	UnitNumber        *string    `json:"unit_number,omitempty"`
	PurchasePrice     *float64   `json:"purchase_price,omitempty" validate:"omitempty,gt=0"`
	ParkingPrice      *float64   `json:"parking_price,omitempty" validate:"omitempty,gte=0"`
	LockerPrice       *float64   `json:"locker_price,omitempty" validate:"omitempty,gte=0"`
	UpgradesAmount    *float64   `json:"upgrades_amount,omitempty" validate:"omitempty,gte=0"`
	ActualLandTax     *float64   `json:"actual_land_tax,omitempty" validate:"omitempty,gte=0"`
	ActualMaintenance *float64   `json:"actual_maintenance,omitempty" validate:"omitempty,gte=0"`
	OccupancyDate     *time.Time `json:"occupancy_date,omitempty"`
	ClosingDate       *time.Time `json:"closing_date,omitempty"`
	Status            *string    `json:"status,omitempty" validate:"omitempty,oneof=AVAILABLE SOLD CLOSING CLOSED RELEASED"`
}
