package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/clearclose/closing-service/internal/models"
)

/* ───────────── public interface ───────────── */

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)

	ListFees(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectFee, error)
	UpsertFee(ctx context.Context, fee *models.ProjectFee) error
}

/* ───────────── implementation ───────────── */

type projectRepo struct {
	db DB
}

func NewProjectRepository(db DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *models.Project) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO projects (
			id, name, city, in_toronto, time_zone,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5, NOW(), NOW(), 1)
	`, p.ID, p.Name, p.City, p.InToronto, p.TimeZone)
	return err
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	row := r.db.QueryRow(ctx, baseSelectProject()+" WHERE id=$1", id)
	return scanProject(row)
}

func (r *projectRepo) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.Query(ctx, baseSelectProject()+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

/* ---------- fee schedule ---------- */

func (r *projectRepo) ListFees(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectFee, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, code, amount, is_per_unit_pct, created_at
		FROM project_fees
		WHERE project_id=$1
		ORDER BY code
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ProjectFee
	for rows.Next() {
		var f models.ProjectFee
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Code, &f.Amount, &f.IsPerUnitPct, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (r *projectRepo) UpsertFee(ctx context.Context, fee *models.ProjectFee) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO project_fees (id, project_id, code, amount, is_per_unit_pct, created_at)
		VALUES ($1,$2,$3,$4,$5, NOW())
		ON CONFLICT (project_id, code) DO UPDATE SET
			amount=EXCLUDED.amount,
			is_per_unit_pct=EXCLUDED.is_per_unit_pct
	`, fee.ID, fee.ProjectID, fee.Code, fee.Amount, fee.IsPerUnitPct)
	return err
}

/* ---------- internals ---------- */

func baseSelectProject() string {
	return `
		SELECT id, name, city, in_toronto, time_zone,
			created_at, updated_at, row_version
		FROM projects`
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(
		&p.ID, &p.Name, &p.City, &p.InToronto, &p.TimeZone,
		&p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
