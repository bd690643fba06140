package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/utils"
)

/* ───────────── public interface ───────────── */

type ExtensionRepository interface {
	Create(ctx context.Context, e *models.ExtensionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExtensionRequest, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.ExtensionRequest, error)
	ListPending(ctx context.Context) ([]*models.ExtensionRequest, error)

	// DecideAtomic flips a PENDING request to its final status under a row
	// lock and, on approval, rewrites the unit's closing date in the same
	// transaction.
	DecideAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, status models.ExtensionStatusType, decidedBy uuid.UUID) (*models.ExtensionRequest, error)
}

/* ───────────── implementation ───────────── */

type extensionRepo struct {
	db DB
}

func NewExtensionRepository(db DB) ExtensionRepository {
	return &extensionRepo{db: db}
}

func (r *extensionRepo) Create(ctx context.Context, e *models.ExtensionRequest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO extension_requests (
			id, unit_id, requested_by, current_closing_date, requested_closing_date,
			reason, status, decided_by, decided_at,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,NULL, NOW(), NOW(), 1)
	`, e.ID, e.UnitID, e.RequestedBy, e.CurrentClosingDate, e.RequestedClosingDate,
		e.Reason, e.Status)
	return err
}

func (r *extensionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ExtensionRequest, error) {
	row := r.db.QueryRow(ctx, baseSelectExtension()+" WHERE id=$1", id)
	return scanExtension(row)
}

func (r *extensionRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.ExtensionRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectExtension()+" WHERE unit_id=$1 ORDER BY created_at DESC", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExtensions(rows)
}

func (r *extensionRepo) ListPending(ctx context.Context) ([]*models.ExtensionRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectExtension()+" WHERE status=$1 ORDER BY created_at", models.ExtensionStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExtensions(rows)
}

func (r *extensionRepo) DecideAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	status models.ExtensionStatusType,
	decidedBy uuid.UUID,
) (*models.ExtensionRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	row := tx.QueryRow(ctx, baseSelectExtension()+" WHERE id=$1 FOR UPDATE", id)
	e, err := scanExtension(row)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, pgx.ErrNoRows
	}
	if e.RowVersion != expectedVersion {
		return e, utils.ErrRowVersionConflict
	}
	if e.Status != models.ExtensionStatusPending {
		return e, utils.ErrExtensionDecided
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE extension_requests
		SET status=$1, decided_by=$2, decided_at=$3,
			row_version=row_version+1, updated_at=NOW()
		WHERE id=$4
	`, status, decidedBy, now, id)
	if err != nil {
		return nil, err
	}

	if status == models.ExtensionStatusApproved {
		_, err = tx.Exec(ctx, `
			UPDATE units
			SET closing_date=$1, row_version=row_version+1, updated_at=NOW()
			WHERE id=$2
		`, e.RequestedClosingDate, e.UnitID)
		if err != nil {
			return nil, err
		}
	}

	newRow := tx.QueryRow(ctx, baseSelectExtension()+" WHERE id=$1", id)
	return scanExtension(newRow)
}

/* ---------- internals ---------- */

func baseSelectExtension() string {
	return `
		SELECT id, unit_id, requested_by, current_closing_date, requested_closing_date,
			reason, status, decided_by, decided_at,
			created_at, updated_at, row_version
		FROM extension_requests`
}

func scanExtension(row pgx.Row) (*models.ExtensionRequest, error) {
	var e models.ExtensionRequest
	if err := row.Scan(
		&e.ID, &e.UnitID, &e.RequestedBy, &e.CurrentClosingDate, &e.RequestedClosingDate,
		&e.Reason, &e.Status, &e.DecidedBy, &e.DecidedAt,
		&e.CreatedAt, &e.UpdatedAt, &e.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func scanExtensions(rows pgx.Rows) ([]*models.ExtensionRequest, error) {
	var out []*models.ExtensionRequest
	for rows.Next() {
		e, err := scanExtension(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
