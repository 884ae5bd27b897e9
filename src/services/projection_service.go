package services

import (
	"context"
	"fmt"
	"time"

	"assetsync/src/models"
	"assetsync/src/repositories"
	"assetsync/src/utils"

	"github.com/jackc/pgx/v5"
)

type ProjectionServiceI interface {
	ProjectAsset(ctx context.Context, assetID int, tx pgx.Tx) error
	RecomputeCompany(ctx context.Context, companyID int) error
}

// ProjectionService derives the monthly benchmark-indexed return series for
// each asset from the ledger and the benchmark rate table.
type ProjectionService struct {
	assetRepo      repositories.AssetRepository
	entryRepo      repositories.LedgerEntryRepository
	benchmarkRepo  repositories.BenchmarkRateRepository
	projectionRepo repositories.ProjectionRepository
	txManager      repositories.TxManager

	now func() time.Time
}

func NewProjectionService(
	assetRepo repositories.AssetRepository,
	entryRepo repositories.LedgerEntryRepository,
	benchmarkRepo repositories.BenchmarkRateRepository,
	projectionRepo repositories.ProjectionRepository,
	txManager repositories.TxManager,
) *ProjectionService {
	return &ProjectionService{
		assetRepo:      assetRepo,
		entryRepo:      entryRepo,
		benchmarkRepo:  benchmarkRepo,
		projectionRepo: projectionRepo,
		txManager:      txManager,
		now:            time.Now,
	}
}

// ProjectAsset regenerates the projection series for one asset: one row per
// calendar month from the asset's first ledger month through the current
// month. Months without a benchmark rate get a zero factor rather than a gap.
// The walk is strictly sequential because each row carries the running
// accumulated return.
func (s *ProjectionService) ProjectAsset(ctx context.Context, assetID int, tx pgx.Tx) error {
	asset, err := s.assetRepo.GetByID(ctx, assetID, tx)
	if err != nil {
		return fmt.Errorf("loading asset %d: %w", assetID, err)
	}
	if asset == nil {
		return nil
	}

	first, err := s.entryRepo.GetEarliestDateForAsset(ctx, assetID, tx)
	if err != nil {
		return fmt.Errorf("finding first ledger month for asset %d: %w", assetID, err)
	}
	if first == nil {
		// No transactions, no projection.
		return nil
	}

	months, err := utils.GenerateMonths(*first, s.now())
	if err != nil {
		// First entry is in a future month; nothing to project yet.
		return nil
	}

	accumulated := 0.0
	for _, month := range months {
		rate, err := s.benchmarkRepo.GetByMonth(ctx, month)
		if err != nil {
			return fmt.Errorf("looking up benchmark rate for %s: %w", month.Format("2006-01"), err)
		}

		factor := 0.0
		if rate != nil {
			factor = rate.MonthlyRate
		}

		monthlyReturn := asset.PurchaseValue * factor
		accumulated += monthlyReturn

		projection := &models.Projection{
			AssetID:           assetID,
			Month:             month,
			Year:              month.Year(),
			MonthNo:           int(month.Month()),
			PurchaseValue:     asset.PurchaseValue,
			MonthlyRate:       factor,
			MonthlyReturn:     monthlyReturn,
			AccumulatedReturn: accumulated,
			Difference:        0 - monthlyReturn,
		}
		if err := s.projectionRepo.Upsert(ctx, projection, tx); err != nil {
			return fmt.Errorf("writing projection for asset %d month %s: %w", assetID, month.Format("2006-01"), err)
		}
	}

	return nil
}

// RecomputeCompany deletes the whole projection series of every asset in the
// company and regenerates it from scratch in one transaction. Full
// replacement keeps the series derivable purely from current ledger state,
// with no drift from partial updates.
func (s *ProjectionService) RecomputeCompany(ctx context.Context, companyID int) error {
	assetIDs, err := s.assetRepo.GetIDsByCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("listing assets for company %d: %w", companyID, err)
	}
	if len(assetIDs) == 0 {
		return nil
	}

	return s.txManager.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.projectionRepo.DeleteByCompany(ctx, companyID, tx); err != nil {
			return fmt.Errorf("clearing projections for company %d: %w", companyID, err)
		}
		for _, assetID := range assetIDs {
			if err := s.ProjectAsset(ctx, assetID, tx); err != nil {
				return err
			}
		}
		return nil
	})
}
