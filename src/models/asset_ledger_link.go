package models

import "time"

// Link classification tags.
const (
	LinkKindInflow    = "inflow"
	LinkKindOutflow   = "outflow"
	LinkKindScheduled = "scheduled"
)

// AssetLedgerLink attributes one ledger entry to one asset, allowing a single
// entry to be split across several assets. Unique per (entry, asset).
type AssetLedgerLink struct {
	ID            int       `db:"id"`
	LedgerEntryID int       `db:"ledger_entry_id"`
	AssetID       int       `db:"asset_id"`
	Amount        float64   `db:"amount"`
	Kind          string    `db:"kind"`
	CreatedAt     time.Time `db:"created_at"`
}

// LinkKindForAmount classifies a signed amount.
func LinkKindForAmount(amount float64) string {
	if amount >= 0 {
		return LinkKindInflow
	}
	return LinkKindOutflow
}
