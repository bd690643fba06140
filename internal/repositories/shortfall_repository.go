package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/clearclose/closing-service/internal/models"
)

/* ───────────── public interface ───────────── */

type ShortfallRepository interface {
	GetByUnitID(ctx context.Context, unitID uuid.UUID) (*models.ShortfallAnalysis, error)

	// SaveAnalysis replaces the live analysis, appends a history snapshot
	// and mirrors the recommendation onto the unit row, atomically.
	SaveAnalysis(ctx context.Context, a *models.ShortfallAnalysis) error

	ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.ShortfallAnalysisVersion, error)

	// RecordDecision annotates the live analysis with the builder's response.
	RecordDecision(ctx context.Context, unitID uuid.UUID, action models.DecisionActionType, modified *string) error
}

/* ───────────── implementation ───────────── */

type shortfallRepo struct {
	db DB
}

func NewShortfallRepository(db DB) ShortfallRepository {
	return &shortfallRepo{db: db}
}

/* ---------- reads ---------- */

func (r *shortfallRepo) GetByUnitID(ctx context.Context, unitID uuid.UUID) (*models.ShortfallAnalysis, error) {
	row := r.db.QueryRow(ctx, baseSelectAnalysis()+" WHERE unit_id=$1", unitID)
	return scanAnalysis(row)
}

func (r *shortfallRepo) ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.ShortfallAnalysisVersion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, unit_id, version_number, analysis, created_at
		FROM shortfall_analysis_versions
		WHERE unit_id=$1
		ORDER BY version_number
	`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ShortfallAnalysisVersion
	for rows.Next() {
		var v models.ShortfallAnalysisVersion
		var payload []byte
		if err := rows.Scan(&v.ID, &v.UnitID, &v.VersionNumber, &payload, &v.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &v.Analysis); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

/* ---------- writes ---------- */

func (r *shortfallRepo) SaveAnalysis(ctx context.Context, a *models.ShortfallAnalysis) (err error) {
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

	// A fresh run discards the previous builder decision.
	_, err = tx.Exec(ctx, `
		INSERT INTO shortfall_analyses (
			id, unit_id,
			cash_required_to_close, mortgage_approved, mortgage_amount,
			deposits_paid, additional_cash, total_funds_available,
			shortfall_amount, shortfall_percentage, risk_level, recommendation,
			suggested_discount, suggested_vtb_amount, reasoning,
			decision_action, builder_modified_suggestion,
			analyzed_at, created_at, updated_at, row_version
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,
			NULL, NULL, $16, NOW(), NOW(), 1
		)
		ON CONFLICT (unit_id) DO UPDATE SET
			cash_required_to_close=EXCLUDED.cash_required_to_close,
			mortgage_approved=EXCLUDED.mortgage_approved,
			mortgage_amount=EXCLUDED.mortgage_amount,
			deposits_paid=EXCLUDED.deposits_paid,
			additional_cash=EXCLUDED.additional_cash,
			total_funds_available=EXCLUDED.total_funds_available,
			shortfall_amount=EXCLUDED.shortfall_amount,
			shortfall_percentage=EXCLUDED.shortfall_percentage,
			risk_level=EXCLUDED.risk_level,
			recommendation=EXCLUDED.recommendation,
			suggested_discount=EXCLUDED.suggested_discount,
			suggested_vtb_amount=EXCLUDED.suggested_vtb_amount,
			reasoning=EXCLUDED.reasoning,
			decision_action=NULL,
			builder_modified_suggestion=NULL,
			analyzed_at=EXCLUDED.analyzed_at,
			row_version=shortfall_analyses.row_version+1,
			updated_at=NOW()
	`, a.ID, a.UnitID,
		a.CashRequiredToClose, a.MortgageApproved, a.MortgageAmount,
		a.DepositsPaid, a.AdditionalCash, a.TotalFundsAvailable,
		a.ShortfallAmount, a.ShortfallPercentage, a.RiskLevel, a.Recommendation,
		a.SuggestedDiscount, a.SuggestedVTBAmount, a.Reasoning,
		a.AnalyzedAt)
	if err != nil {
		return err
	}

	row := tx.QueryRow(ctx, baseSelectAnalysis()+" WHERE unit_id=$1", a.UnitID)
	live, err := scanAnalysis(row)
	if err != nil {
		return err
	}
	if live == nil {
		return pgx.ErrNoRows
	}
	*a = *live

	payload, err := json.Marshal(live)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO shortfall_analysis_versions (id, unit_id, version_number, analysis, created_at)
		VALUES (
			$1, $2,
			COALESCE((SELECT MAX(version_number) FROM shortfall_analysis_versions WHERE unit_id=$2), 0) + 1,
			$3, $4
		)
	`, uuid.New(), a.UnitID, payload, time.Now().UTC())
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE units SET recommendation=$1, updated_at=NOW() WHERE id=$2
	`, a.Recommendation, a.UnitID)
	return err
}

func (r *shortfallRepo) RecordDecision(ctx context.Context, unitID uuid.UUID, action models.DecisionActionType, modified *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shortfall_analyses
		SET decision_action=$1, builder_modified_suggestion=$2,
			row_version=row_version+1, updated_at=NOW()
		WHERE unit_id=$3
	`, action, modified, unitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectAnalysis() string {
	return `
		SELECT id, unit_id,
			cash_required_to_close, mortgage_approved, mortgage_amount,
			deposits_paid, additional_cash, total_funds_available,
			shortfall_amount, shortfall_percentage, risk_level, recommendation,
			suggested_discount, suggested_vtb_amount, reasoning,
			decision_action, builder_modified_suggestion,
			analyzed_at, created_at, updated_at, row_version
		FROM shortfall_analyses`
}

func scanAnalysis(row pgx.Row) (*models.ShortfallAnalysis, error) {
	var a models.ShortfallAnalysis
	if err := row.Scan(
		&a.ID, &a.UnitID,
		&a.CashRequiredToClose, &a.MortgageApproved, &a.MortgageAmount,
		&a.DepositsPaid, &a.AdditionalCash, &a.TotalFundsAvailable,
		&a.ShortfallAmount, &a.ShortfallPercentage, &a.RiskLevel, &a.Recommendation,
		&a.SuggestedDiscount, &a.SuggestedVTBAmount, &a.Reasoning,
		&a.DecisionAction, &a.BuilderModifiedSuggestion,
		&a.AnalyzedAt, &a.CreatedAt, &a.UpdatedAt, &a.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
