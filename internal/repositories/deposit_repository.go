package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/clearclose/closing-service/internal/models"
)

/* ───────────── public interface ───────────── */

type DepositRepository interface {
	// Create stores the deposit and its interest schedule in one transaction.
	Create(ctx context.Context, d *models.Deposit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Deposit, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Deposit, error)

	UpdateIfVersion(ctx context.Context, d *models.Deposit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Deposit) error) error
	MarkPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type depositRepo struct {
	*BaseVersionedRepo[*models.Deposit]
	db DB
}

func NewDepositRepository(db DB) DepositRepository {
	r := &depositRepo{db: db}
	selectStmt := baseSelectDeposit() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanDeposit)
	return r
}

/* ---------- create ---------- */

func (r *depositRepo) Create(ctx context.Context, d *models.Deposit) (err error) {
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
		INSERT INTO deposits (
			id, unit_id, amount, due_date, is_paid, paid_date,
			holder, interest_eligible,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
	`, d.ID, d.UnitID, d.Amount, d.DueDate, d.IsPaid, d.PaidDate,
		d.Holder, d.InterestEligible)
	if err != nil {
		return err
	}

	for i := range d.Periods {
		p := &d.Periods[i]
		_, err = tx.Exec(ctx, `
			INSERT INTO deposit_interest_periods (
				id, deposit_id, start_date, end_date, annual_rate
			) VALUES ($1,$2,$3,$4,$5)
		`, p.ID, d.ID, p.StartDate, p.EndDate, p.AnnualRate)
		if err != nil {
			return err
		}
	}
	return nil
}

/* ---------- reads ---------- */

func (r *depositRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	d, err := r.BaseVersionedRepo.GetByID(ctx, id.String())
	if err != nil || d == nil {
		return d, err
	}
	if err := r.loadPeriods(ctx, []*models.Deposit{d}); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *depositRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Deposit, error) {
	rows, err := r.db.Query(ctx, baseSelectDeposit()+" WHERE unit_id=$1 ORDER BY due_date", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := r.scanDeposits(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadPeriods(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

/* ---------- updates ---------- */

func (r *depositRepo) UpdateIfVersion(ctx context.Context, d *models.Deposit, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE deposits
		SET amount=$1, due_date=$2, is_paid=$3, paid_date=$4,
			holder=$5, interest_eligible=$6,
			row_version=row_version+1, updated_at=NOW()
		WHERE id=$7 AND row_version=$8
	`, d.Amount, d.DueDate, d.IsPaid, d.PaidDate,
		d.Holder, d.InterestEligible, d.ID, expected)
}

func (r *depositRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Deposit) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *depositRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) error {
	return r.UpdateWithRetry(ctx, id, func(d *models.Deposit) error {
		d.IsPaid = true
		d.PaidDate = &paidDate
		return nil
	})
}

func (r *depositRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM deposits WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectDeposit() string {
	return `
		SELECT id, unit_id, amount, due_date, is_paid, paid_date,
			holder, interest_eligible,
			created_at, updated_at, row_version
		FROM deposits`
}

func (r *depositRepo) scanDeposit(row pgx.Row) (*models.Deposit, error) {
	var d models.Deposit
	if err := row.Scan(
		&d.ID, &d.UnitID, &d.Amount, &d.DueDate, &d.IsPaid, &d.PaidDate,
		&d.Holder, &d.InterestEligible,
		&d.CreatedAt, &d.UpdatedAt, &d.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *depositRepo) scanDeposits(rows pgx.Rows) ([]*models.Deposit, error) {
	var out []*models.Deposit
	for rows.Next() {
		d, err := r.scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *depositRepo) loadPeriods(ctx context.Context, deposits []*models.Deposit) error {
	byID := make(map[uuid.UUID]*models.Deposit, len(deposits))
	ids := make([]uuid.UUID, 0, len(deposits))
	for _, d := range deposits {
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, deposit_id, start_date, end_date, annual_rate
		FROM deposit_interest_periods
		WHERE deposit_id = ANY($1)
		ORDER BY start_date
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.DepositInterestPeriod
		if err := rows.Scan(&p.ID, &p.DepositID, &p.StartDate, &p.EndDate, &p.AnnualRate); err != nil {
			return err
		}
		if d, ok := byID[p.DepositID]; ok {
			d.Periods = append(d.Periods, p)
		}
	}
	return rows.Err()
}
