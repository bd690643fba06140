package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SOAVersionSourceType records what produced a statement snapshot.
type SOAVersionSourceType string

const (
	SOASourceSystemCalculation SOAVersionSourceType = "SYSTEM_CALCULATION"
	SOASourceLawyerUpload      SOAVersionSourceType = "LAWYER_UPLOAD"
	SOASourceManualUnlock      SOAVersionSourceType = "MANUAL_UNLOCK"
)

// StatementOfAdjustments is the live closing reconciliation for one unit.
// It is replaced wholesale on every recalculation; users never edit its
// calculated fields directly.
type StatementOfAdjustments struct {
	Versioned
	ID     uuid.UUID `json:"id"`
	UnitID uuid.UUID `json:"unit_id"`

	// Debits
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	ParkingPrice        decimal.Decimal `json:"parking_price"`
	LockerPrice         decimal.Decimal `json:"locker_price"`
	OntarioLandTransfer decimal.Decimal `json:"ontario_land_transfer_tax"`
	TorontoLandTransfer decimal.Decimal `json:"toronto_land_transfer_tax"`
	TarionFee           decimal.Decimal `json:"tarion_fee"`
	DevelopmentCharges  decimal.Decimal `json:"development_charges"`
	Upgrades            decimal.Decimal `json:"upgrades"`
	LegalFees           decimal.Decimal `json:"legal_fees"`
	LandTaxAdjustment   decimal.Decimal `json:"land_tax_adjustment"`
	MaintenanceAdj      decimal.Decimal `json:"maintenance_adjustment"`
	OtherDebits         decimal.Decimal `json:"other_debits"`

	// Credits
	DepositsPaid    decimal.Decimal `json:"deposits_paid"`
	DepositInterest decimal.Decimal `json:"deposit_interest"`
	BuilderCredits  decimal.Decimal `json:"builder_credits"`
	OtherCredits    decimal.Decimal `json:"other_credits"`

	// Derived
	TotalDebits         decimal.Decimal `json:"total_debits"`
	TotalCredits        decimal.Decimal `json:"total_credits"`
	BalanceDueOnClosing decimal.Decimal `json:"balance_due_on_closing"`
	MortgageAmount      decimal.Decimal `json:"mortgage_amount"`
	// Negative means the mortgage more than covers the balance (fully funded).
	CashRequiredToClose decimal.Decimal `json:"cash_required_to_close"`

	// Out-of-band figure a lawyer may upload; never touches the calculated totals.
	LawyerUploadedBalanceDue *decimal.Decimal `json:"lawyer_uploaded_balance_due,omitempty"`

	IsConfirmedByBuilder bool `json:"is_confirmed_by_builder"`
	IsConfirmedByLawyer  bool `json:"is_confirmed_by_lawyer"`

	CalculatedAt time.Time `json:"calculated_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *StatementOfAdjustments) GetID() string { return s.ID.String() }

// IsLocked reports whether both parties have confirmed the statement.
// A locked statement is immutable until explicitly unlocked.
func (s *StatementOfAdjustments) IsLocked() bool {
	return s.IsConfirmedByBuilder && s.IsConfirmedByLawyer
}

// SOAVersion is an immutable snapshot of a statement, appended on every
// write to the live row. The latest version always equals the live row.
type SOAVersion struct {
	ID            uuid.UUID              `json:"id"`
	UnitID        uuid.UUID              `json:"unit_id"`
	VersionNumber int                    `json:"version_number"`
	Source        SOAVersionSourceType   `json:"source"`
	Statement     StatementOfAdjustments `json:"statement"`
	CreatedAt     time.Time              `json:"created_at"`
}
