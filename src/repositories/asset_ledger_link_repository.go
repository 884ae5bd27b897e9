package repositories

import (
	"context"

	"assetsync/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssetLedgerLinkRepository interface {
	Exists(ctx context.Context, entryID, assetID int, tx pgx.Tx) (bool, error)
	Create(ctx context.Context, link *models.AssetLedgerLink, tx pgx.Tx) error
}

type assetLedgerLinkRepo struct {
	db *pgxpool.Pool
}

func NewAssetLedgerLinkRepository(db *pgxpool.Pool) AssetLedgerLinkRepository {
	return &assetLedgerLinkRepo{db: db}
}

func (r *assetLedgerLinkRepo) Exists(ctx context.Context, entryID, assetID int, tx pgx.Tx) (bool, error) {
	var exists bool
	err := pick(r.db, tx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM asset_ledger_links WHERE ledger_entry_id = $1 AND asset_id = $2)`,
		entryID, assetID).Scan(&exists)
	return exists, err
}

func (r *assetLedgerLinkRepo) Create(ctx context.Context, link *models.AssetLedgerLink, tx pgx.Tx) error {
	return pick(r.db, tx).QueryRow(ctx,
		`INSERT INTO asset_ledger_links (ledger_entry_id, asset_id, amount, kind)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		link.LedgerEntryID, link.AssetID, link.Amount, link.Kind,
	).Scan(&link.ID, &link.CreatedAt)
}
