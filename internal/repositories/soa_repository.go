package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/models"
)

/* ───────────── public interface ───────────── */

type SOARepository interface {
	GetByUnitID(ctx context.Context, unitID uuid.UUID) (*models.StatementOfAdjustments, error)

	// ReplaceWithVersion overwrites the live statement for the unit and
	// appends an immutable snapshot, atomically.
	ReplaceWithVersion(ctx context.Context, s *models.StatementOfAdjustments, source models.SOAVersionSourceType) error

	ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.SOAVersion, error)
	GetVersion(ctx context.Context, unitID uuid.UUID, versionNumber int) (*models.SOAVersion, error)

	SetBuilderConfirmation(ctx context.Context, unitID uuid.UUID, confirmed bool) error
	SetLawyerConfirmation(ctx context.Context, unitID uuid.UUID, confirmed bool) error

	// Unlock clears both confirmations and appends a MANUAL_UNLOCK snapshot.
	Unlock(ctx context.Context, unitID uuid.UUID) error

	// SetLawyerBalance stores the lawyer's uploaded figure without touching
	// the calculated totals, and appends a LAWYER_UPLOAD snapshot.
	SetLawyerBalance(ctx context.Context, unitID uuid.UUID, balance decimal.Decimal) error
}

/* ───────────── implementation ───────────── */

type soaRepo struct {
	db DB
}

func NewSOARepository(db DB) SOARepository {
	return &soaRepo{db: db}
}

/* ---------- reads ---------- */

func (r *soaRepo) GetByUnitID(ctx context.Context, unitID uuid.UUID) (*models.StatementOfAdjustments, error) {
	row := r.db.QueryRow(ctx, baseSelectSOA()+" WHERE unit_id=$1", unitID)
	return scanSOA(row)
}

func (r *soaRepo) ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.SOAVersion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, unit_id, version_number, source, statement, created_at
		FROM soa_versions
		WHERE unit_id=$1
		ORDER BY version_number
	`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SOAVersion
	for rows.Next() {
		v, err := scanSOAVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *soaRepo) GetVersion(ctx context.Context, unitID uuid.UUID, versionNumber int) (*models.SOAVersion, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, unit_id, version_number, source, statement, created_at
		FROM soa_versions
		WHERE unit_id=$1 AND version_number=$2
	`, unitID, versionNumber)
	return scanSOAVersion(row)
}

/* ---------- replace + snapshot ---------- */

func (r *soaRepo) ReplaceWithVersion(ctx context.Context, s *models.StatementOfAdjustments, source models.SOAVersionSourceType) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO soa_statements (
			id, unit_id,
			purchase_price, parking_price, locker_price,
			ontario_land_transfer_tax, toronto_land_transfer_tax, tarion_fee,
			development_charges, upgrades, legal_fees,
			land_tax_adjustment, maintenance_adjustment, other_debits,
			deposits_paid, deposit_interest, builder_credits, other_credits,
			total_debits, total_credits, balance_due_on_closing,
			mortgage_amount, cash_required_to_close,
			lawyer_uploaded_balance_due,
			is_confirmed_by_builder, is_confirmed_by_lawyer,
			calculated_at, created_at, updated_at, row_version
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,
			$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,
			FALSE, FALSE, $25, NOW(), NOW(), 1
		)
		ON CONFLICT (unit_id) DO UPDATE SET
			purchase_price=EXCLUDED.purchase_price,
			parking_price=EXCLUDED.parking_price,
			locker_price=EXCLUDED.locker_price,
			ontario_land_transfer_tax=EXCLUDED.ontario_land_transfer_tax,
			toronto_land_transfer_tax=EXCLUDED.toronto_land_transfer_tax,
			tarion_fee=EXCLUDED.tarion_fee,
			development_charges=EXCLUDED.development_charges,
			upgrades=EXCLUDED.upgrades,
			legal_fees=EXCLUDED.legal_fees,
			land_tax_adjustment=EXCLUDED.land_tax_adjustment,
			maintenance_adjustment=EXCLUDED.maintenance_adjustment,
			other_debits=EXCLUDED.other_debits,
			deposits_paid=EXCLUDED.deposits_paid,
			deposit_interest=EXCLUDED.deposit_interest,
			builder_credits=EXCLUDED.builder_credits,
			other_credits=EXCLUDED.other_credits,
			total_debits=EXCLUDED.total_debits,
			total_credits=EXCLUDED.total_credits,
			balance_due_on_closing=EXCLUDED.balance_due_on_closing,
			mortgage_amount=EXCLUDED.mortgage_amount,
			cash_required_to_close=EXCLUDED.cash_required_to_close,
			lawyer_uploaded_balance_due=EXCLUDED.lawyer_uploaded_balance_due,
			calculated_at=EXCLUDED.calculated_at,
			row_version=soa_statements.row_version+1,
			updated_at=NOW()
	`, s.ID, s.UnitID,
		s.PurchasePrice, s.ParkingPrice, s.LockerPrice,
		s.OntarioLandTransfer, s.TorontoLandTransfer, s.TarionFee,
		s.DevelopmentCharges, s.Upgrades, s.LegalFees,
		s.LandTaxAdjustment, s.MaintenanceAdj, s.OtherDebits,
		s.DepositsPaid, s.DepositInterest, s.BuilderCredits, s.OtherCredits,
		s.TotalDebits, s.TotalCredits, s.BalanceDueOnClosing,
		s.MortgageAmount, s.CashRequiredToClose,
		s.LawyerUploadedBalanceDue,
		s.CalculatedAt)
	if err != nil {
		return err
	}

	live, err := reloadSOA(ctx, tx, s.UnitID)
	if err != nil {
		return err
	}
	if live == nil {
		return pgx.ErrNoRows
	}
	*s = *live

	return appendSOASnapshot(ctx, tx, live, source)
}

/* ---------- confirmations / unlock ---------- */

func (r *soaRepo) SetBuilderConfirmation(ctx context.Context, unitID uuid.UUID, confirmed bool) error {
	return r.setConfirmation(ctx, unitID, "is_confirmed_by_builder", confirmed)
}

func (r *soaRepo) SetLawyerConfirmation(ctx context.Context, unitID uuid.UUID, confirmed bool) error {
	return r.setConfirmation(ctx, unitID, "is_confirmed_by_lawyer", confirmed)
}

func (r *soaRepo) setConfirmation(ctx context.Context, unitID uuid.UUID, column string, confirmed bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE soa_statements
		SET `+column+`=$1, row_version=row_version+1, updated_at=NOW()
		WHERE unit_id=$2
	`, confirmed, unitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *soaRepo) Unlock(ctx context.Context, unitID uuid.UUID) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE soa_statements
		SET is_confirmed_by_builder=FALSE, is_confirmed_by_lawyer=FALSE,
			row_version=row_version+1, updated_at=NOW()
		WHERE unit_id=$1
	`, unitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	live, err := reloadSOA(ctx, tx, unitID)
	if err != nil {
		return err
	}
	return appendSOASnapshot(ctx, tx, live, models.SOASourceManualUnlock)
}

func (r *soaRepo) SetLawyerBalance(ctx context.Context, unitID uuid.UUID, balance decimal.Decimal) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE soa_statements
		SET lawyer_uploaded_balance_due=$1, row_version=row_version+1, updated_at=NOW()
		WHERE unit_id=$2
	`, balance, unitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	live, err := reloadSOA(ctx, tx, unitID)
	if err != nil {
		return err
	}
	return appendSOASnapshot(ctx, tx, live, models.SOASourceLawyerUpload)
}

/* ---------- internals ---------- */

func baseSelectSOA() string {
	return `
		SELECT id, unit_id,
			purchase_price, parking_price, locker_price,
			ontario_land_transfer_tax, toronto_land_transfer_tax, tarion_fee,
			development_charges, upgrades, legal_fees,
			land_tax_adjustment, maintenance_adjustment, other_debits,
			deposits_paid, deposit_interest, builder_credits, other_credits,
			total_debits, total_credits, balance_due_on_closing,
			mortgage_amount, cash_required_to_close,
			lawyer_uploaded_balance_due,
			is_confirmed_by_builder, is_confirmed_by_lawyer,
			calculated_at, created_at, updated_at, row_version
		FROM soa_statements`
}

func scanSOA(row pgx.Row) (*models.StatementOfAdjustments, error) {
	var s models.StatementOfAdjustments
	if err := row.Scan(
		&s.ID, &s.UnitID,
		&s.PurchasePrice, &s.ParkingPrice, &s.LockerPrice,
		&s.OntarioLandTransfer, &s.TorontoLandTransfer, &s.TarionFee,
		&s.DevelopmentCharges, &s.Upgrades, &s.LegalFees,
		&s.LandTaxAdjustment, &s.MaintenanceAdj, &s.OtherDebits,
		&s.DepositsPaid, &s.DepositInterest, &s.BuilderCredits, &s.OtherCredits,
		&s.TotalDebits, &s.TotalCredits, &s.BalanceDueOnClosing,
		&s.MortgageAmount, &s.CashRequiredToClose,
		&s.LawyerUploadedBalanceDue,
		&s.IsConfirmedByBuilder, &s.IsConfirmedByLawyer,
		&s.CalculatedAt, &s.CreatedAt, &s.UpdatedAt, &s.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func scanSOAVersion(row pgx.Row) (*models.SOAVersion, error) {
	var v models.SOAVersion
	var payload []byte
	if err := row.Scan(&v.ID, &v.UnitID, &v.VersionNumber, &v.Source, &payload, &v.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(payload, &v.Statement); err != nil {
		return nil, err
	}
	return &v, nil
}

func reloadSOA(ctx context.Context, tx pgx.Tx, unitID uuid.UUID) (*models.StatementOfAdjustments, error) {
	row := tx.QueryRow(ctx, baseSelectSOA()+" WHERE unit_id=$1", unitID)
	return scanSOA(row)
}

// appendSOASnapshot inserts the next version row inside the caller's
// transaction so the live row and its history can never diverge.
func appendSOASnapshot(ctx context.Context, tx pgx.Tx, s *models.StatementOfAdjustments, source models.SOAVersionSourceType) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO soa_versions (id, unit_id, version_number, source, statement, created_at)
		VALUES (
			$1, $2,
			COALESCE((SELECT MAX(version_number) FROM soa_versions WHERE unit_id=$2), 0) + 1,
			$3, $4, $5
		)
	`, uuid.New(), s.UnitID, source, payload, time.Now().UTC())
	return err
}
