package repositories

import (
	"context"
	"errors"
	"time"

	"assetsync/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerEntryRepository interface {
	GetByExternalID(ctx context.Context, userID int, externalID string, tx pgx.Tx) (*models.LedgerEntry, error)
	GetEarliestDateForAsset(ctx context.Context, assetID int, tx pgx.Tx) (*time.Time, error)
	Create(ctx context.Context, entry *models.LedgerEntry, tx pgx.Tx) error
}

type ledgerEntryRepo struct {
	db *pgxpool.Pool
}

func NewLedgerEntryRepository(db *pgxpool.Pool) LedgerEntryRepository {
	return &ledgerEntryRepo{db: db}
}

const ledgerEntryColumns = `id, user_id, asset_id, external_transaction_id, date, description,
	amount, investment, benchmark_return, benchmark_balance, difference`

func (r *ledgerEntryRepo) GetByExternalID(ctx context.Context, userID int, externalID string, tx pgx.Tx) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := pick(r.db, tx).QueryRow(ctx,
		`SELECT `+ledgerEntryColumns+` FROM ledger_entries
		 WHERE user_id = $1 AND external_transaction_id = $2`,
		userID, externalID,
	).Scan(&e.ID, &e.UserID, &e.AssetID, &e.ExternalTransactionID, &e.Date, &e.Description,
		&e.Amount, &e.Investment, &e.BenchmarkReturn, &e.BenchmarkBalance, &e.Difference)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEarliestDateForAsset returns the date of the asset's oldest ledger entry,
// or nil when the asset has none.
func (r *ledgerEntryRepo) GetEarliestDateForAsset(ctx context.Context, assetID int, tx pgx.Tx) (*time.Time, error) {
	var date *time.Time
	err := pick(r.db, tx).QueryRow(ctx,
		`SELECT MIN(date) FROM ledger_entries WHERE asset_id = $1`, assetID,
	).Scan(&date)
	if err != nil {
		return nil, err
	}
	return date, nil
}

func (r *ledgerEntryRepo) Create(ctx context.Context, entry *models.LedgerEntry, tx pgx.Tx) error {
	return pick(r.db, tx).QueryRow(ctx,
		`INSERT INTO ledger_entries (user_id, asset_id, external_transaction_id, date, description,
			amount, investment, benchmark_return, benchmark_balance, difference)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		entry.UserID, entry.AssetID, entry.ExternalTransactionID, entry.Date, entry.Description,
		entry.Amount, entry.Investment, entry.BenchmarkReturn, entry.BenchmarkBalance,
		entry.Difference,
	).Scan(&entry.ID)
}
