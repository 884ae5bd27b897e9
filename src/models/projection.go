package models

import "time"

// Projection is one row of the benchmark-indexed return series for an asset:
// exactly one row per calendar month from the asset's first ledger month to
// the current month.
type Projection struct {
	ID      int       `db:"id"`
	AssetID int       `db:"asset_id"`
	Month   time.Time `db:"month"`
	Year    int       `db:"year"`
	MonthNo int       `db:"month_no"`

	PurchaseValue     float64 `db:"purchase_value"`
	MonthlyRate       float64 `db:"monthly_rate"`
	MonthlyReturn     float64 `db:"monthly_return"`
	AccumulatedReturn float64 `db:"accumulated_return"`

	// Difference is a placeholder comparison basis (0 - MonthlyReturn); the
	// reporting layer computes the real comparison against actual cash flow.
	Difference float64 `db:"difference"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
