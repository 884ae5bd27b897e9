package models

import "time"

// Default classification for assets created automatically during a sync.
// Users refine these later from the UI; the importer never changes them.
const (
	AssetStatusVacant        = "vacant"
	AssetTypeResidential     = "residential"
	AssetPurposeLeaseSale    = "lease_sale"
	AssetDivestmentModerate  = "moderate"
	AssetPotentialMedium     = "medium"
	DefaultParticipationRate = 100.0
)

// UnassignedAssetName is the display name of the reserved catch-all asset that
// receives every transaction without a resolvable cost center.
const UnassignedAssetName = "UNASSIGNED"

type Asset struct {
	ID        int `db:"id"`
	CompanyID int `db:"company_id"`
	UserID    int `db:"user_id"`

	// ExternalCostCenterID is the upstream cost center key. Nil marks the
	// reserved unassigned asset.
	ExternalCostCenterID *string `db:"external_cost_center_id"`

	Name string `db:"name"`

	Status          string `db:"status"`
	AssetType       string `db:"asset_type"`
	Purpose         string `db:"purpose"`
	DivestmentGrade string `db:"divestment_grade"`
	Potential       string `db:"potential"`

	ParticipationRate float64 `db:"participation_rate"`

	PurchaseValue float64 `db:"purchase_value"`
	Expense       float64 `db:"expense"`
	Revenue       float64 `db:"revenue"`

	// Total is a generated column: COALESCE(revenue, 0) + COALESCE(expense, 0).
	Total float64 `db:"total"`

	OutstandingDebt   *float64 `db:"outstanding_debt"`
	SalePrice         *float64 `db:"sale_price"`
	SaleParticipation *float64 `db:"sale_participation"`

	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}
