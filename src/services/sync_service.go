package services

import (
	"context"
	"fmt"

	"assetsync/src/clients/nibo"
	"assetsync/src/models"
	"assetsync/src/repositories"
	"assetsync/src/schemas"
	"assetsync/src/utils"

	"github.com/jackc/pgx/v5"
)

type SyncServiceI interface {
	ImportFromAPI(ctx context.Context, userID int, token string) (*schemas.ImportResult, error)
	RefreshCompany(ctx context.Context, userID, companyID int) (*schemas.RefreshResult, error)
}

// SyncService reconciles remote ledger data against local assets and entries.
// Both entry points are idempotent: re-running them against unchanged remote
// data creates nothing and reports zero counts.
type SyncService struct {
	companyRepo repositories.CompanyRepository
	entryRepo   repositories.LedgerEntryRepository
	linkRepo    repositories.AssetLedgerLinkRepository
	assetRepo   repositories.AssetRepository
	txManager   repositories.TxManager

	client      nibo.ClientI
	resolver    AssetResolverI
	projections ProjectionServiceI
}

func NewSyncService(
	companyRepo repositories.CompanyRepository,
	entryRepo repositories.LedgerEntryRepository,
	linkRepo repositories.AssetLedgerLinkRepository,
	assetRepo repositories.AssetRepository,
	txManager repositories.TxManager,
	client nibo.ClientI,
	resolver AssetResolverI,
	projections ProjectionServiceI,
) *SyncService {
	return &SyncService{
		companyRepo: companyRepo,
		entryRepo:   entryRepo,
		linkRepo:    linkRepo,
		assetRepo:   assetRepo,
		txManager:   txManager,
		client:      client,
		resolver:    resolver,
		projections: projections,
	}
}

// ImportFromAPI resolves the company behind a token, upserts it, and runs a
// full sync. The company profile fetch is the only remote call that aborts
// the operation: without it there is nothing to attach records to.
func (s *SyncService) ImportFromAPI(ctx context.Context, userID int, token string) (*schemas.ImportResult, error) {
	profile, err := s.client.GetCompanyProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolving company profile: %w", err)
	}

	company, err := s.upsertCompany(ctx, userID, token, profile)
	if err != nil {
		return nil, err
	}

	newAssets, newEntries, err := s.syncCompany(ctx, company.ID, userID, token)
	if err != nil {
		return nil, err
	}

	return &schemas.ImportResult{
		CompanyID:            company.ID,
		CompanyName:          company.Name,
		AssetsImported:       newAssets,
		TransactionsImported: newEntries,
	}, nil
}

// RefreshCompany re-syncs a company through its stored token.
func (s *SyncService) RefreshCompany(ctx context.Context, userID, companyID int) (*schemas.RefreshResult, error) {
	hasAccess, err := s.companyRepo.HasUserAccess(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, utils.Forbidden("user has no access to this company")
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, utils.NotFound("company not found")
	}
	if company.APIToken == nil || *company.APIToken == "" {
		return nil, utils.BadRequest("company has no stored API token")
	}

	newAssets, newEntries, err := s.syncCompany(ctx, company.ID, userID, *company.APIToken)
	if err != nil {
		return nil, err
	}

	return &schemas.RefreshResult{
		CompanyID:       company.ID,
		NewAssets:       newAssets,
		NewTransactions: newEntries,
	}, nil
}

func (s *SyncService) upsertCompany(ctx context.Context, userID int, token string, profile *nibo.CompanyProfile) (*models.Company, error) {
	var company *models.Company
	var err error

	if profile.TaxID != "" {
		company, err = s.companyRepo.GetByTaxID(ctx, userID, profile.TaxID)
		if err != nil {
			return nil, err
		}
	}

	if company == nil {
		company = &models.Company{
			UserID:            userID,
			Name:              profile.Name,
			TaxID:             optional(profile.TaxID),
			ExternalCompanyID: optional(profile.ExternalCompanyID),
			APIToken:          &token,
		}
		if err := s.companyRepo.Create(ctx, company, nil); err != nil {
			return nil, fmt.Errorf("creating company: %w", err)
		}
	} else if err := s.companyRepo.UpdateToken(ctx, company.ID, token, nil); err != nil {
		return nil, fmt.Errorf("updating company token: %w", err)
	}

	if err := s.companyRepo.EnsureUserAccess(ctx, userID, company.ID, nil); err != nil {
		return nil, fmt.Errorf("linking user to company: %w", err)
	}
	return company, nil
}

// syncCompany runs the reconcile pipeline: resolve assets from cost centers,
// reconcile receipts, reconcile payments, commit, then recompute projections.
// Each remote fetch degrades to an empty collection on failure; the ledger
// transaction commits whatever reconciled cleanly. A projection failure is
// logged and swallowed so it can never roll back the ledger commit.
func (s *SyncService) syncCompany(ctx context.Context, companyID, userID int, token string) (int, int, error) {
	logger := utils.LoggerFromContext(ctx)

	var newAssets, newEntries int
	err := s.txManager.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		costCenters := nibo.FetchAll(ctx, token, s.client.ListCostCenters)

		index, created, err := s.resolver.BuildIndex(ctx, tx, companyID, userID, costCenters)
		if err != nil {
			return err
		}
		newAssets += created

		receipts := s.fetchPagesSafe(ctx, token, s.client.ListReceipts, "receipts")
		entries, assets := s.reconcileBatch(ctx, tx, userID, index, receipts, DirectionInflow)
		newEntries += entries
		newAssets += assets

		payments := s.fetchPagesSafe(ctx, token, s.client.ListPayments, "payments")
		entries, assets = s.reconcileBatch(ctx, tx, userID, index, payments, DirectionOutflow)
		newEntries += entries
		newAssets += assets

		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("sync failed for company %d: %w", companyID, err)
	}

	if err := s.projections.RecomputeCompany(ctx, companyID); err != nil {
		logger.WithError(err).Errorf("projection recompute failed for company %d; ledger remains authoritative", companyID)
	}

	return newAssets, newEntries, nil
}

func (s *SyncService) fetchPagesSafe(ctx context.Context, token string, fetch nibo.PageFetchFunc, collection string) []nibo.RawRecord {
	records, err := nibo.FetchAllPages(ctx, token, s.client.PageSize(), fetch)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warnf("fetching %s failed, continuing with empty collection", collection)
		return nil
	}
	return records
}

// reconcileBatch processes one remote collection. Every record runs inside
// its own savepoint: a malformed or conflicting record is rolled back and
// logged without touching the rest of the batch.
func (s *SyncService) reconcileBatch(ctx context.Context, tx pgx.Tx, userID int, index *AssetIndex, records []nibo.RawRecord, direction Direction) (int, int) {
	logger := utils.LoggerFromContext(ctx)

	var newEntries, newAssets int
	for _, record := range records {
		raw := ParseRawTransaction(record, direction)
		if !raw.Processable() {
			continue
		}

		entryCreated, assetCreated, err := s.reconcileWithSavepoint(ctx, tx, userID, index, raw)
		if err != nil && repositories.IsUniqueViolation(err) {
			// A concurrent sync inserted the same row; the second pass
			// re-queries and links instead.
			entryCreated, assetCreated, err = s.reconcileWithSavepoint(ctx, tx, userID, index, raw)
		}
		if err != nil {
			if assetCreated {
				index.Forget(raw.CostCenterKey)
			}
			logger.WithError(err).Warnf("skipping transaction %q", raw.ExternalID)
			continue
		}

		if entryCreated {
			newEntries++
		}
		if assetCreated {
			newAssets++
		}
	}
	return newEntries, newAssets
}

func (s *SyncService) reconcileWithSavepoint(ctx context.Context, tx pgx.Tx, userID int, index *AssetIndex, raw RawTransaction) (bool, bool, error) {
	var entryCreated, assetCreated bool
	err := s.txManager.WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
		var err error
		entryCreated, assetCreated, err = s.reconcileOne(ctx, sp, userID, index, raw)
		return err
	})
	return entryCreated, assetCreated, err
}

// reconcileOne attaches one raw transaction to the ledger. An entry that was
// imported before (same external id for this user) is never duplicated; it
// only gains a link to the newly derived asset if that link is missing. New
// entries get their link row and fold their amount into the asset's running
// totals.
func (s *SyncService) reconcileOne(ctx context.Context, tx pgx.Tx, userID int, index *AssetIndex, raw RawTransaction) (bool, bool, error) {
	assetID, assetCreated, err := s.resolver.Resolve(ctx, tx, index, raw.CostCenterKey)
	if err != nil {
		return false, false, err
	}

	if raw.ExternalID != "" {
		existing, err := s.entryRepo.GetByExternalID(ctx, userID, raw.ExternalID, tx)
		if err != nil {
			return false, assetCreated, err
		}
		if existing != nil {
			linked, err := s.linkRepo.Exists(ctx, existing.ID, assetID, tx)
			if err != nil {
				return false, assetCreated, err
			}
			if !linked {
				link := &models.AssetLedgerLink{
					LedgerEntryID: existing.ID,
					AssetID:       assetID,
					Amount:        raw.Amount,
					Kind:          raw.LinkKind(),
				}
				if err := s.linkRepo.Create(ctx, link, tx); err != nil {
					return false, assetCreated, err
				}
			}
			return false, assetCreated, nil
		}
	}

	entry := &models.LedgerEntry{
		UserID:                userID,
		AssetID:               assetID,
		ExternalTransactionID: optional(raw.ExternalID),
		Date:                  raw.Date,
		Description:           raw.Description,
		Amount:                raw.Amount,
	}
	if err := s.entryRepo.Create(ctx, entry, tx); err != nil {
		return false, assetCreated, err
	}

	link := &models.AssetLedgerLink{
		LedgerEntryID: entry.ID,
		AssetID:       assetID,
		Amount:        raw.Amount,
		Kind:          raw.LinkKind(),
	}
	if err := s.linkRepo.Create(ctx, link, tx); err != nil {
		return false, assetCreated, err
	}

	if err := s.assetRepo.ApplyAmount(ctx, assetID, raw.Amount, tx); err != nil {
		return false, assetCreated, err
	}

	return true, assetCreated, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
