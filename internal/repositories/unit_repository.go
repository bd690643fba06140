package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/clearclose/closing-service/internal/models"
)

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*models.Unit, error)
	ListByStatus(ctx context.Context, status models.UnitStatusType) ([]*models.Unit, error)

	Update(ctx context.Context, u *models.Unit) error
	UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	*BaseVersionedRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	r := &unitRepo{db: db}
	selectStmt := baseSelectUnit() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanUnit)
	return r
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, project_id, unit_number,
			purchase_price, parking_price, locker_price, upgrades_amount,
			actual_land_tax, actual_maintenance,
			occupancy_date, closing_date, status, recommendation,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NULL, NOW(), NOW(), 1)
	`, u.ID, u.ProjectID, u.UnitNumber,
		u.PurchasePrice, u.ParkingPrice, u.LockerPrice, u.UpgradesAmount,
		u.ActualLandTax, u.ActualMaintenance,
		u.OccupancyDate, u.ClosingDate, u.Status)
	return err
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *unitRepo) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, baseSelectUnit()+" WHERE project_id=$1 ORDER BY unit_number", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUnits(rows)
}

func (r *unitRepo) ListByStatus(ctx context.Context, status models.UnitStatusType) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, baseSelectUnit()+" WHERE status=$1 ORDER BY unit_number", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUnits(rows)
}

/* ---------- update / delete ---------- */

func (r *unitRepo) Update(ctx context.Context, u *models.Unit) error {
	_, err := r.update(ctx, u, false, 0)
	return err
}

func (r *unitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, u, true, expected)
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *unitRepo) update(ctx context.Context, u *models.Unit, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE units
		SET unit_number=$1,
			purchase_price=$2, parking_price=$3, locker_price=$4, upgrades_amount=$5,
			actual_land_tax=$6, actual_maintenance=$7,
			occupancy_date=$8, closing_date=$9, status=$10,
			updated_at=NOW()
	`
	args := []any{
		u.UnitNumber,
		u.PurchasePrice, u.ParkingPrice, u.LockerPrice, u.UpgradesAmount,
		u.ActualLandTax, u.ActualMaintenance,
		u.OccupancyDate, u.ClosingDate, u.Status,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$11 AND row_version=$12`
		args = append(args, u.ID, expected)
	} else {
		sql += ` WHERE id=$11`
		args = append(args, u.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, project_id, unit_number,
			purchase_price, parking_price, locker_price, upgrades_amount,
			actual_land_tax, actual_maintenance,
			occupancy_date, closing_date, status, recommendation,
			created_at, updated_at, row_version
		FROM units`
}

func (r *unitRepo) scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(
		&u.ID, &u.ProjectID, &u.UnitNumber,
		&u.PurchasePrice, &u.ParkingPrice, &u.LockerPrice, &u.UpgradesAmount,
		&u.ActualLandTax, &u.ActualMaintenance,
		&u.OccupancyDate, &u.ClosingDate, &u.Status, &u.Recommendation,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *unitRepo) scanUnits(rows pgx.Rows) ([]*models.Unit, error) {
	var out []*models.Unit
	for rows.Next() {
		u, err := r.scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
