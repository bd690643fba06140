package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/clearclose/closing-service/internal/models"
)

/* ───────────── public interface ───────────── */

// PurchaserRepository owns the purchaser-submitted inputs to the analyzer:
// the mortgage snapshot and the self-reported financial capacity. Both are
// one row per unit, replaced on resubmission.
type PurchaserRepository interface {
	GetMortgageByUnitID(ctx context.Context, unitID uuid.UUID) (*models.MortgageInfo, error)
	UpsertMortgage(ctx context.Context, m *models.MortgageInfo) error

	GetFinancialsByUnitID(ctx context.Context, unitID uuid.UUID) (*models.PurchaserFinancials, error)
	UpsertFinancials(ctx context.Context, f *models.PurchaserFinancials) error
}

/* ───────────── implementation ───────────── */

type purchaserRepo struct {
	db DB
}

func NewPurchaserRepository(db DB) PurchaserRepository {
	return &purchaserRepo{db: db}
}

/* ---------- mortgage info ---------- */

func (r *purchaserRepo) GetMortgageByUnitID(ctx context.Context, unitID uuid.UUID) (*models.MortgageInfo, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, unit_id, purchaser_id, has_mortgage_approval, approved_amount,
			approval_type, lender_name, approval_expiry_date,
			created_at, updated_at, row_version
		FROM mortgage_info
		WHERE unit_id=$1
	`, unitID)

	var m models.MortgageInfo
	if err := row.Scan(
		&m.ID, &m.UnitID, &m.PurchaserID, &m.HasMortgageApproval, &m.ApprovedAmount,
		&m.ApprovalType, &m.LenderName, &m.ApprovalExpiryDate,
		&m.CreatedAt, &m.UpdatedAt, &m.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *purchaserRepo) UpsertMortgage(ctx context.Context, m *models.MortgageInfo) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO mortgage_info (
			id, unit_id, purchaser_id, has_mortgage_approval, approved_amount,
			approval_type, lender_name, approval_expiry_date,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
		ON CONFLICT (unit_id) DO UPDATE SET
			purchaser_id=EXCLUDED.purchaser_id,
			has_mortgage_approval=EXCLUDED.has_mortgage_approval,
			approved_amount=EXCLUDED.approved_amount,
			approval_type=EXCLUDED.approval_type,
			lender_name=EXCLUDED.lender_name,
			approval_expiry_date=EXCLUDED.approval_expiry_date,
			row_version=mortgage_info.row_version+1,
			updated_at=NOW()
	`, m.ID, m.UnitID, m.PurchaserID, m.HasMortgageApproval, m.ApprovedAmount,
		m.ApprovalType, m.LenderName, m.ApprovalExpiryDate)
	return err
}

/* ---------- financials ---------- */

func (r *purchaserRepo) GetFinancialsByUnitID(ctx context.Context, unitID uuid.UUID) (*models.PurchaserFinancials, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, unit_id, purchaser_id,
			additional_cash_available, rrsp_available, gift_from_family,
			proceeds_from_sale, other_funds_amount,
			created_at, updated_at, row_version
		FROM purchaser_financials
		WHERE unit_id=$1
	`, unitID)

	var f models.PurchaserFinancials
	if err := row.Scan(
		&f.ID, &f.UnitID, &f.PurchaserID,
		&f.AdditionalCash, &f.RRSPAvailable, &f.GiftFromFamily,
		&f.ProceedsFromSale, &f.OtherFunds,
		&f.CreatedAt, &f.UpdatedAt, &f.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *purchaserRepo) UpsertFinancials(ctx context.Context, f *models.PurchaserFinancials) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO purchaser_financials (
			id, unit_id, purchaser_id,
			additional_cash_available, rrsp_available, gift_from_family,
			proceeds_from_sale, other_funds_amount,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
		ON CONFLICT (unit_id) DO UPDATE SET
			purchaser_id=EXCLUDED.purchaser_id,
			additional_cash_available=EXCLUDED.additional_cash_available,
			rrsp_available=EXCLUDED.rrsp_available,
			gift_from_family=EXCLUDED.gift_from_family,
			proceeds_from_sale=EXCLUDED.proceeds_from_sale,
			other_funds_amount=EXCLUDED.other_funds_amount,
			row_version=purchaser_financials.row_version+1,
			updated_at=NOW()
	`, f.ID, f.UnitID, f.PurchaserID,
		f.AdditionalCash, f.RRSPAvailable, f.GiftFromFamily,
		f.ProceedsFromSale, f.OtherFunds)
	return err
}
