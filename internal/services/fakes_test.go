package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/config"
	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/utils"
)

// In-memory repository fakes. They mirror the persistence semantics the
// real Postgres implementations provide (nil on missing rows, replace
// plus append-only version history, decision fields cleared on save) so
// the services can be exercised without a database.

func okTag() pgconn.CommandTag { return pgconn.CommandTag("UPDATE 1") }

/* ---------- units ---------- */

type fakeUnitRepo struct {
	units map[uuid.UUID]*models.Unit
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{units: map[uuid.UUID]*models.Unit{}}
}

func (r *fakeUnitRepo) Create(ctx context.Context, u *models.Unit) error {
	cp := *u
	r.units[u.ID] = &cp
	return nil
}

func (r *fakeUnitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUnitRepo) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*models.Unit, error) {
	var out []*models.Unit
	for _, u := range r.units {
		if u.ProjectID == projectID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) ListByStatus(ctx context.Context, status models.UnitStatusType) ([]*models.Unit, error) {
	var out []*models.Unit
	for _, u := range r.units {
		if u.Status == status {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) Update(ctx context.Context, u *models.Unit) error {
	if _, ok := r.units[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *u
	r.units[u.ID] = &cp
	return nil
}

func (r *fakeUnitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	live, ok := r.units[u.ID]
	if !ok || live.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *u
	cp.RowVersion = expected + 1
	r.units[u.ID] = &cp
	return okTag(), nil
}

func (r *fakeUnitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	u, ok := r.units[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := mutate(u); err != nil {
		return err
	}
	u.RowVersion++
	return nil
}

func (r *fakeUnitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.units, id)
	return nil
}

/* ---------- projects ---------- */

type fakeProjectRepo struct {
	projects map[uuid.UUID]*models.Project
	fees     map[uuid.UUID][]*models.ProjectFee
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: map[uuid.UUID]*models.Project{},
		fees:     map[uuid.UUID][]*models.ProjectFee{},
	}
}

func (r *fakeProjectRepo) Create(ctx context.Context, p *models.Project) error {
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range r.projects {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProjectRepo) ListFees(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectFee, error) {
	return r.fees[projectID], nil
}

func (r *fakeProjectRepo) UpsertFee(ctx context.Context, fee *models.ProjectFee) error {
	existing := r.fees[fee.ProjectID]
	for i, f := range existing {
		if f.Code == fee.Code {
			cp := *fee
			existing[i] = &cp
			return nil
		}
	}
	cp := *fee
	r.fees[fee.ProjectID] = append(existing, &cp)
	return nil
}

/* ---------- deposits ---------- */

type fakeDepositRepo struct {
	deposits map[uuid.UUID]*models.Deposit
	// listErr fails ListByUnitID for specific units, for batch-isolation tests.
	listErr map[uuid.UUID]error
}

func newFakeDepositRepo() *fakeDepositRepo {
	return &fakeDepositRepo{
		deposits: map[uuid.UUID]*models.Deposit{},
		listErr:  map[uuid.UUID]error{},
	}
}

func (r *fakeDepositRepo) Create(ctx context.Context, d *models.Deposit) error {
	cp := *d
	cp.Periods = append([]models.DepositInterestPeriod(nil), d.Periods...)
	r.deposits[d.ID] = &cp
	return nil
}

func (r *fakeDepositRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	d, ok := r.deposits[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDepositRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Deposit, error) {
	if err := r.listErr[unitID]; err != nil {
		return nil, err
	}
	var out []*models.Deposit
	for _, d := range r.deposits {
		if d.UnitID == unitID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDepositRepo) UpdateIfVersion(ctx context.Context, d *models.Deposit, expected int64) (pgconn.CommandTag, error) {
	live, ok := r.deposits[d.ID]
	if !ok || live.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *d
	cp.RowVersion = expected + 1
	r.deposits[d.ID] = &cp
	return okTag(), nil
}

func (r *fakeDepositRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Deposit) error) error {
	d, ok := r.deposits[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := mutate(d); err != nil {
		return err
	}
	d.RowVersion++
	return nil
}

func (r *fakeDepositRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) error {
	return r.UpdateWithRetry(ctx, id, func(d *models.Deposit) error {
		d.IsPaid = true
		d.PaidDate = &paidDate
		return nil
	})
}

func (r *fakeDepositRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.deposits, id)
	return nil
}

/* ---------- purchaser submissions ---------- */

type fakePurchaserRepo struct {
	mortgages  map[uuid.UUID]*models.MortgageInfo
	financials map[uuid.UUID]*models.PurchaserFinancials
}

func newFakePurchaserRepo() *fakePurchaserRepo {
	return &fakePurchaserRepo{
		mortgages:  map[uuid.UUID]*models.MortgageInfo{},
		financials: map[uuid.UUID]*models.PurchaserFinancials{},
	}
}

func (r *fakePurchaserRepo) GetMortgageByUnitID(ctx context.Context, unitID uuid.UUID) (*models.MortgageInfo, error) {
	m, ok := r.mortgages[unitID]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakePurchaserRepo) UpsertMortgage(ctx context.Context, m *models.MortgageInfo) error {
	cp := *m
	r.mortgages[m.UnitID] = &cp
	return nil
}

func (r *fakePurchaserRepo) GetFinancialsByUnitID(ctx context.Context, unitID uuid.UUID) (*models.PurchaserFinancials, error) {
	f, ok := r.financials[unitID]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakePurchaserRepo) UpsertFinancials(ctx context.Context, f *models.PurchaserFinancials) error {
	cp := *f
	r.financials[f.UnitID] = &cp
	return nil
}

/* ---------- statements of adjustments ---------- */

type fakeSOARepo struct {
	live     map[uuid.UUID]*models.StatementOfAdjustments
	versions map[uuid.UUID][]*models.SOAVersion
}

func newFakeSOARepo() *fakeSOARepo {
	return &fakeSOARepo{
		live:     map[uuid.UUID]*models.StatementOfAdjustments{},
		versions: map[uuid.UUID][]*models.SOAVersion{},
	}
}

func (r *fakeSOARepo) GetByUnitID(ctx context.Context, unitID uuid.UUID) (*models.StatementOfAdjustments, error) {
	s, ok := r.live[unitID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSOARepo) ReplaceWithVersion(ctx context.Context, s *models.StatementOfAdjustments, source models.SOAVersionSourceType) error {
	cp := *s
	if prev, ok := r.live[s.UnitID]; ok {
		cp.IsConfirmedByBuilder = prev.IsConfirmedByBuilder
		cp.IsConfirmedByLawyer = prev.IsConfirmedByLawyer
		cp.RowVersion = prev.RowVersion + 1
	}
	r.live[s.UnitID] = &cp
	*s = cp
	r.appendVersion(s.UnitID, source)
	return nil
}

func (r *fakeSOARepo) appendVersion(unitID uuid.UUID, source models.SOAVersionSourceType) {
	r.versions[unitID] = append(r.versions[unitID], &models.SOAVersion{
		ID:            uuid.New(),
		UnitID:        unitID,
		VersionNumber: len(r.versions[unitID]) + 1,
		Source:        source,
		Statement:     *r.live[unitID],
		CreatedAt:     time.Now().UTC(),
	})
}

func (r *fakeSOARepo) ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.SOAVersion, error) {
	return r.versions[unitID], nil
}

func (r *fakeSOARepo) GetVersion(ctx context.Context, unitID uuid.UUID, versionNumber int) (*models.SOAVersion, error) {
	for _, v := range r.versions[unitID] {
		if v.VersionNumber == versionNumber {
			return v, nil
		}
	}
	return nil, nil
}

func (r *fakeSOARepo) SetBuilderConfirmation(ctx context.Context, unitID uuid.UUID, confirmed bool) error {
	s, ok := r.live[unitID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.IsConfirmedByBuilder = confirmed
	return nil
}

func (r *fakeSOARepo) SetLawyerConfirmation(ctx context.Context, unitID uuid.UUID, confirmed bool) error {
	s, ok := r.live[unitID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.IsConfirmedByLawyer = confirmed
	return nil
}

func (r *fakeSOARepo) Unlock(ctx context.Context, unitID uuid.UUID) error {
	s, ok := r.live[unitID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.IsConfirmedByBuilder = false
	s.IsConfirmedByLawyer = false
	r.appendVersion(unitID, models.SOASourceManualUnlock)
	return nil
}

func (r *fakeSOARepo) SetLawyerBalance(ctx context.Context, unitID uuid.UUID, balance decimal.Decimal) error {
	s, ok := r.live[unitID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.LawyerUploadedBalanceDue = &balance
	r.appendVersion(unitID, models.SOASourceLawyerUpload)
	return nil
}

/* ---------- shortfall analyses ---------- */

type fakeShortfallRepo struct {
	live     map[uuid.UUID]*models.ShortfallAnalysis
	versions map[uuid.UUID][]*models.ShortfallAnalysisVersion
	units    *fakeUnitRepo
}

func newFakeShortfallRepo(units *fakeUnitRepo) *fakeShortfallRepo {
	return &fakeShortfallRepo{
		live:     map[uuid.UUID]*models.ShortfallAnalysis{},
		versions: map[uuid.UUID][]*models.ShortfallAnalysisVersion{},
		units:    units,
	}
}

func (r *fakeShortfallRepo) GetByUnitID(ctx context.Context, unitID uuid.UUID) (*models.ShortfallAnalysis, error) {
	a, ok := r.live[unitID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeShortfallRepo) SaveAnalysis(ctx context.Context, a *models.ShortfallAnalysis) error {
	cp := *a
	cp.DecisionAction = nil
	cp.BuilderModifiedSuggestion = nil
	if prev, ok := r.live[a.UnitID]; ok {
		cp.RowVersion = prev.RowVersion + 1
	}
	r.live[a.UnitID] = &cp
	*a = cp
	r.versions[a.UnitID] = append(r.versions[a.UnitID], &models.ShortfallAnalysisVersion{
		ID:            uuid.New(),
		UnitID:        a.UnitID,
		VersionNumber: len(r.versions[a.UnitID]) + 1,
		Analysis:      cp,
		CreatedAt:     time.Now().UTC(),
	})
	if u, ok := r.units.units[a.UnitID]; ok {
		rec := a.Recommendation
		u.Recommendation = &rec
	}
	return nil
}

func (r *fakeShortfallRepo) ListVersions(ctx context.Context, unitID uuid.UUID) ([]*models.ShortfallAnalysisVersion, error) {
	return r.versions[unitID], nil
}

func (r *fakeShortfallRepo) RecordDecision(ctx context.Context, unitID uuid.UUID, action models.DecisionActionType, modified *string) error {
	a, ok := r.live[unitID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.DecisionAction = &action
	a.BuilderModifiedSuggestion = modified
	return nil
}

/* ---------- extensions ---------- */

type fakeExtensionRepo struct {
	requests map[uuid.UUID]*models.ExtensionRequest
	units    *fakeUnitRepo
}

func newFakeExtensionRepo(units *fakeUnitRepo) *fakeExtensionRepo {
	return &fakeExtensionRepo{requests: map[uuid.UUID]*models.ExtensionRequest{}, units: units}
}

func (r *fakeExtensionRepo) Create(ctx context.Context, e *models.ExtensionRequest) error {
	cp := *e
	r.requests[e.ID] = &cp
	return nil
}

func (r *fakeExtensionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ExtensionRequest, error) {
	e, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExtensionRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.ExtensionRequest, error) {
	var out []*models.ExtensionRequest
	for _, e := range r.requests {
		if e.UnitID == unitID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeExtensionRepo) ListPending(ctx context.Context) ([]*models.ExtensionRequest, error) {
	var out []*models.ExtensionRequest
	for _, e := range r.requests {
		if e.Status == models.ExtensionStatusPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeExtensionRepo) DecideAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, status models.ExtensionStatusType, decidedBy uuid.UUID) (*models.ExtensionRequest, error) {
	e, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if e.RowVersion != expectedVersion {
		return nil, utils.ErrRowVersionConflict
	}
	if e.Status != models.ExtensionStatusPending {
		return nil, utils.ErrExtensionDecided
	}
	now := time.Now().UTC()
	e.Status = status
	e.DecidedBy = &decidedBy
	e.DecidedAt = &now
	e.RowVersion++
	if status == models.ExtensionStatusApproved {
		if u, ok := r.units.units[e.UnitID]; ok {
			d := e.RequestedClosingDate
			u.ClosingDate = &d
			u.RowVersion++
		}
	}
	cp := *e
	return &cp, nil
}

/* ---------- fixture wiring ---------- */

// fixture wires every service against the in-memory fakes the way
// cmd/main.go wires them against Postgres.
type fixture struct {
	units      *fakeUnitRepo
	projects   *fakeProjectRepo
	deposits   *fakeDepositRepo
	purchasers *fakePurchaserRepo
	soas       *fakeSOARepo
	shortfalls *fakeShortfallRepo
	extensions *fakeExtensionRepo

	cfg          *config.Config
	feeSvc       *FeeService
	soaSvc       *SOAService
	shortfallSvc *ShortfallService
	recalcSvc    *RecalcService
	unitSvc      *UnitService
	extensionSvc *ExtensionService
}

func newFixture() *fixture {
	f := &fixture{
		units:      newFakeUnitRepo(),
		projects:   newFakeProjectRepo(),
		deposits:   newFakeDepositRepo(),
		purchasers: newFakePurchaserRepo(),
		soas:       newFakeSOARepo(),
	}
	f.shortfalls = newFakeShortfallRepo(f.units)
	f.extensions = newFakeExtensionRepo(f.units)

	f.cfg = &config.Config{
		AppName:                 "closing-service-test",
		ShortfallLowPct:         10,
		ShortfallMidPct:         20,
		ShortfallHighPct:        35,
		ClosingSoonBusinessDays: 20,
	}

	notifier := NewNotificationService(f.cfg, nil, nil)
	f.feeSvc = NewFeeService(f.projects)
	f.soaSvc = NewSOAService(f.units, f.projects, f.deposits, f.purchasers, f.soas, f.feeSvc)
	f.shortfallSvc = NewShortfallService(f.cfg, f.units, f.soas, f.purchasers, f.shortfalls)
	f.recalcSvc = NewRecalcService(f.units, f.projects, f.soaSvc, f.shortfallSvc, notifier)
	f.unitSvc = NewUnitService(f.units, f.deposits, f.purchasers, f.recalcSvc)
	f.extensionSvc = NewExtensionService(f.extensions, f.units, f.recalcSvc)
	return f
}

func (f *fixture) seedProject(inToronto bool) *models.Project {
	p := &models.Project{
		ID:        uuid.New(),
		Name:      "Test Project",
		City:      "Toronto",
		InToronto: inToronto,
		TimeZone:  "America/Toronto",
	}
	f.projects.projects[p.ID] = p
	return p
}

func (f *fixture) seedUnit(projectID uuid.UUID, price float64, closing *time.Time) *models.Unit {
	u := &models.Unit{
		ID:            uuid.New(),
		ProjectID:     projectID,
		UnitNumber:    "PH-01",
		PurchasePrice: decimal.NewFromFloat(price),
		ClosingDate:   closing,
		Status:        models.UnitStatusSold,
	}
	f.units.units[u.ID] = u
	return u
}

func (f *fixture) seedSOA(unitID uuid.UUID, cashRequired, depositsPaid float64) *models.StatementOfAdjustments {
	s := &models.StatementOfAdjustments{
		ID:                  uuid.New(),
		UnitID:              unitID,
		DepositsPaid:        decimal.NewFromFloat(depositsPaid),
		CashRequiredToClose: decimal.NewFromFloat(cashRequired),
		CalculatedAt:        time.Now().UTC(),
	}
	f.soas.live[unitID] = s
	return s
}

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
