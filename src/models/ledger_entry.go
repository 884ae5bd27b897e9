package models

import "time"

// LedgerEntry is one imported financial transaction. Amount is signed:
// positive for inflows, negative for outflows.
type LedgerEntry struct {
	ID     int `db:"id"`
	UserID int `db:"user_id"`

	// AssetID keeps the first-seen association for backward compatibility;
	// the full attribution lives in asset_ledger_links.
	AssetID int `db:"asset_id"`

	// ExternalTransactionID is the upstream transaction id; unique per user
	// when present. Nil for manual entries.
	ExternalTransactionID *string `db:"external_transaction_id"`

	Date        time.Time `db:"date"`
	Description string    `db:"description"`
	Amount      float64   `db:"amount"`

	// Manual-entry fields, zeroed by the importer and untouched afterwards.
	Investment       float64 `db:"investment"`
	BenchmarkReturn  float64 `db:"benchmark_return"`
	BenchmarkBalance float64 `db:"benchmark_balance"`
	Difference       float64 `db:"difference"`
}
