package services

import (
	"context"
	"fmt"
	"time"

	"assetsync/src/clients/nibo"
	"assetsync/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory fakes backing the service tests. They enforce the same uniqueness
// rules as the schema so the conflict-handling paths are exercised for real.

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (fakeTxManager) WithSavepoint(ctx context.Context, tx pgx.Tx, fn func(tx pgx.Tx) error) error {
	return fn(tx)
}

type fakeAssetRepo struct {
	assets map[int]*models.Asset
	nextID int
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[int]*models.Asset), nextID: 1}
}

func (r *fakeAssetRepo) add(asset models.Asset) *models.Asset {
	asset.ID = r.nextID
	r.nextID++
	stored := asset
	r.assets[stored.ID] = &stored
	return &stored
}

func (r *fakeAssetRepo) GetByCompanyAndUser(ctx context.Context, companyID, userID int, tx pgx.Tx) ([]models.Asset, error) {
	var result []models.Asset
	for id := 1; id < r.nextID; id++ {
		a, ok := r.assets[id]
		if ok && a.CompanyID == companyID && a.UserID == userID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *fakeAssetRepo) GetByExternalKey(ctx context.Context, companyID, userID int, externalKey string, tx pgx.Tx) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.CompanyID == companyID && a.UserID == userID &&
			a.ExternalCostCenterID != nil && *a.ExternalCostCenterID == externalKey {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAssetRepo) GetUnassigned(ctx context.Context, companyID, userID int, tx pgx.Tx) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.CompanyID == companyID && a.UserID == userID && a.ExternalCostCenterID == nil {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAssetRepo) GetIDsByCompany(ctx context.Context, companyID int) ([]int, error) {
	var ids []int
	for id := 1; id < r.nextID; id++ {
		if a, ok := r.assets[id]; ok && a.CompanyID == companyID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Asset, error) {
	a, ok := r.assets[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAssetRepo) Create(ctx context.Context, asset *models.Asset, tx pgx.Tx) error {
	for _, a := range r.assets {
		if a.CompanyID != asset.CompanyID || a.UserID != asset.UserID {
			continue
		}
		if asset.ExternalCostCenterID == nil && a.ExternalCostCenterID == nil {
			return uniqueViolation("uq_assets_unassigned")
		}
		if asset.ExternalCostCenterID != nil && a.ExternalCostCenterID != nil &&
			*asset.ExternalCostCenterID == *a.ExternalCostCenterID {
			return uniqueViolation("uq_assets_cost_center")
		}
	}

	asset.ID = r.nextID
	asset.CreatedAt = time.Now()
	r.nextID++
	stored := *asset
	r.assets[stored.ID] = &stored
	return nil
}

func (r *fakeAssetRepo) ApplyAmount(ctx context.Context, assetID int, amount float64, tx pgx.Tx) error {
	a, ok := r.assets[assetID]
	if !ok {
		return fmt.Errorf("asset %d not found", assetID)
	}
	if amount >= 0 {
		a.Revenue += amount
	} else {
		a.Expense += amount
	}
	a.Total = a.Revenue + a.Expense
	return nil
}

type fakeLedgerEntryRepo struct {
	entries []models.LedgerEntry
	nextID  int

	failDescription string
}

func newFakeLedgerEntryRepo() *fakeLedgerEntryRepo {
	return &fakeLedgerEntryRepo{nextID: 1}
}

func (r *fakeLedgerEntryRepo) GetByExternalID(ctx context.Context, userID int, externalID string, tx pgx.Tx) (*models.LedgerEntry, error) {
	for i := range r.entries {
		e := &r.entries[i]
		if e.UserID == userID && e.ExternalTransactionID != nil && *e.ExternalTransactionID == externalID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerEntryRepo) GetEarliestDateForAsset(ctx context.Context, assetID int, tx pgx.Tx) (*time.Time, error) {
	var earliest *time.Time
	for i := range r.entries {
		e := &r.entries[i]
		if e.AssetID != assetID {
			continue
		}
		if earliest == nil || e.Date.Before(*earliest) {
			d := e.Date
			earliest = &d
		}
	}
	return earliest, nil
}

func (r *fakeLedgerEntryRepo) Create(ctx context.Context, entry *models.LedgerEntry, tx pgx.Tx) error {
	if r.failDescription != "" && entry.Description == r.failDescription {
		return fmt.Errorf("insert rejected for %q", entry.Description)
	}
	if entry.ExternalTransactionID != nil {
		for i := range r.entries {
			e := &r.entries[i]
			if e.UserID == entry.UserID && e.ExternalTransactionID != nil &&
				*e.ExternalTransactionID == *entry.ExternalTransactionID {
				return uniqueViolation("uq_ledger_entries_external_id")
			}
		}
	}
	entry.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, *entry)
	return nil
}

type fakeLinkRepo struct {
	links  []models.AssetLedgerLink
	nextID int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{nextID: 1}
}

func (r *fakeLinkRepo) Exists(ctx context.Context, entryID, assetID int, tx pgx.Tx) (bool, error) {
	for i := range r.links {
		if r.links[i].LedgerEntryID == entryID && r.links[i].AssetID == assetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *models.AssetLedgerLink, tx pgx.Tx) error {
	for i := range r.links {
		if r.links[i].LedgerEntryID == link.LedgerEntryID && r.links[i].AssetID == link.AssetID {
			return uniqueViolation("asset_ledger_links_ledger_entry_id_asset_id_key")
		}
	}
	link.ID = r.nextID
	link.CreatedAt = time.Now()
	r.nextID++
	r.links = append(r.links, *link)
	return nil
}

type fakeCompanyRepo struct {
	companies map[int]*models.Company
	access    map[[2]int]bool
	nextID    int
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{
		companies: make(map[int]*models.Company),
		access:    make(map[[2]int]bool),
		nextID:    1,
	}
}

func (r *fakeCompanyRepo) GetByID(ctx context.Context, id int) (*models.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCompanyRepo) GetByTaxID(ctx context.Context, userID int, taxID string) (*models.Company, error) {
	for _, c := range r.companies {
		if c.UserID == userID && c.TaxID != nil && *c.TaxID == taxID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) GetAllWithToken(ctx context.Context) ([]models.Company, error) {
	var result []models.Company
	for id := 1; id < r.nextID; id++ {
		if c, ok := r.companies[id]; ok && c.APIToken != nil {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company *models.Company, tx pgx.Tx) error {
	company.ID = r.nextID
	company.CreatedAt = time.Now()
	r.nextID++
	stored := *company
	r.companies[stored.ID] = &stored
	return nil
}

func (r *fakeCompanyRepo) UpdateToken(ctx context.Context, id int, token string, tx pgx.Tx) error {
	c, ok := r.companies[id]
	if !ok {
		return fmt.Errorf("company %d not found", id)
	}
	c.APIToken = &token
	return nil
}

func (r *fakeCompanyRepo) HasUserAccess(ctx context.Context, userID, companyID int) (bool, error) {
	return r.access[[2]int{userID, companyID}], nil
}

func (r *fakeCompanyRepo) EnsureUserAccess(ctx context.Context, userID, companyID int, tx pgx.Tx) error {
	r.access[[2]int{userID, companyID}] = true
	return nil
}

type fakeBenchmarkRepo struct {
	rates map[string]models.BenchmarkRate
}

func newFakeBenchmarkRepo() *fakeBenchmarkRepo {
	return &fakeBenchmarkRepo{rates: make(map[string]models.BenchmarkRate)}
}

func (r *fakeBenchmarkRepo) setRate(month time.Time, factor float64) {
	r.rates[month.Format("2006-01")] = models.BenchmarkRate{
		Month:               month,
		BenchmarkPercentage: 100,
		MonthlyRate:         factor,
		MonthlyPercentage:   factor,
	}
}

func (r *fakeBenchmarkRepo) GetByMonth(ctx context.Context, month time.Time) (*models.BenchmarkRate, error) {
	rate, ok := r.rates[month.Format("2006-01")]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (r *fakeBenchmarkRepo) GetRange(ctx context.Context, from, to time.Time) ([]models.BenchmarkRate, error) {
	var result []models.BenchmarkRate
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 1, 0) {
		if rate, ok := r.rates[cur.Format("2006-01")]; ok {
			result = append(result, rate)
		}
	}
	return result, nil
}

type fakeProjectionRepo struct {
	assetRepo *fakeAssetRepo
	rows      map[int]map[string]models.Projection
	nextID    int
}

func newFakeProjectionRepo(assetRepo *fakeAssetRepo) *fakeProjectionRepo {
	return &fakeProjectionRepo{
		assetRepo: assetRepo,
		rows:      make(map[int]map[string]models.Projection),
		nextID:    1,
	}
}

func (r *fakeProjectionRepo) GetByAsset(ctx context.Context, assetID int) ([]models.Projection, error) {
	byMonth := r.rows[assetID]
	var months []string
	for m := range byMonth {
		months = append(months, m)
	}
	// Sort lexicographically; the YYYY-MM key makes that calendar order.
	for i := 0; i < len(months); i++ {
		for j := i + 1; j < len(months); j++ {
			if months[j] < months[i] {
				months[i], months[j] = months[j], months[i]
			}
		}
	}
	var result []models.Projection
	for _, m := range months {
		result = append(result, byMonth[m])
	}
	return result, nil
}

func (r *fakeProjectionRepo) Upsert(ctx context.Context, p *models.Projection, tx pgx.Tx) error {
	byMonth, ok := r.rows[p.AssetID]
	if !ok {
		byMonth = make(map[string]models.Projection)
		r.rows[p.AssetID] = byMonth
	}
	key := p.Month.Format("2006-01")
	if existing, ok := byMonth[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		p.ID = r.nextID
		p.CreatedAt = time.Now()
		r.nextID++
	}
	p.UpdatedAt = time.Now()
	byMonth[key] = *p
	return nil
}

func (r *fakeProjectionRepo) DeleteByCompany(ctx context.Context, companyID int, tx pgx.Tx) error {
	ids, _ := r.assetRepo.GetIDsByCompany(ctx, companyID)
	for _, id := range ids {
		delete(r.rows, id)
	}
	return nil
}

// fakeNiboClient serves canned remote collections, paging receipts and
// payments the way the real API does.
type fakeNiboClient struct {
	profile    *nibo.CompanyProfile
	profileErr error

	costCenters    []nibo.RawRecord
	costCentersErr error

	receipts    []nibo.RawRecord
	receiptsErr error

	payments    []nibo.RawRecord
	paymentsErr error

	pageSize int
}

func (c *fakeNiboClient) GetCompanyProfile(ctx context.Context, token string) (*nibo.CompanyProfile, error) {
	if c.profileErr != nil {
		return nil, c.profileErr
	}
	return c.profile, nil
}

func (c *fakeNiboClient) ListCostCenters(ctx context.Context, token string) (*nibo.Page, error) {
	if c.costCentersErr != nil {
		return nil, c.costCentersErr
	}
	return &nibo.Page{Items: c.costCenters}, nil
}

func (c *fakeNiboClient) ListReceipts(ctx context.Context, token string, skip, top int) (*nibo.Page, error) {
	if c.receiptsErr != nil {
		return nil, c.receiptsErr
	}
	return pageOf(c.receipts, skip, top), nil
}

func (c *fakeNiboClient) ListPayments(ctx context.Context, token string, skip, top int) (*nibo.Page, error) {
	if c.paymentsErr != nil {
		return nil, c.paymentsErr
	}
	return pageOf(c.payments, skip, top), nil
}

func (c *fakeNiboClient) PageSize() int {
	if c.pageSize > 0 {
		return c.pageSize
	}
	return 500
}

func pageOf(records []nibo.RawRecord, skip, top int) *nibo.Page {
	if skip >= len(records) {
		return &nibo.Page{}
	}
	end := skip + top
	if end > len(records) {
		end = len(records)
	}
	return &nibo.Page{Items: records[skip:end]}
}

// stubProjections satisfies ProjectionServiceI without doing anything, to
// isolate sync tests from projection behavior.
type stubProjections struct {
	err   error
	calls int
}

func (s *stubProjections) ProjectAsset(ctx context.Context, assetID int, tx pgx.Tx) error {
	return s.err
}

func (s *stubProjections) RecomputeCompany(ctx context.Context, companyID int) error {
	s.calls++
	return s.err
}
