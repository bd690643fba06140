package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtensionStatusType is the lifecycle of a closing-date extension request.
type ExtensionStatusType string

const (
	ExtensionStatusPending  ExtensionStatusType = "PENDING"
	ExtensionStatusApproved ExtensionStatusType = "APPROVED"
	ExtensionStatusRejected ExtensionStatusType = "REJECTED"
)

// ExtensionRequest asks to move a unit's closing date. Approval rewrites
// the unit's closing date and defers recalculation to a background task.
type ExtensionRequest struct {
	Versioned
	ID                   uuid.UUID           `json:"id"`
	UnitID               uuid.UUID           `json:"unit_id"`
	RequestedBy          uuid.UUID           `json:"requested_by"`
	CurrentClosingDate   time.Time           `json:"current_closing_date"`
	RequestedClosingDate time.Time           `json:"requested_closing_date"`
	Reason               string              `json:"reason"`
	Status               ExtensionStatusType `json:"status"`
	DecidedBy            *uuid.UUID          `json:"decided_by,omitempty"`
	DecidedAt            *time.Time          `json:"decided_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func (e *ExtensionRequest) GetID() string { return e.ID.String() }
