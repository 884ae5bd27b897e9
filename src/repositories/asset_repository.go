package repositories

import (
	"context"
	"errors"

	"assetsync/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssetRepository interface {
	GetByCompanyAndUser(ctx context.Context, companyID, userID int, tx pgx.Tx) ([]models.Asset, error)
	GetByExternalKey(ctx context.Context, companyID, userID int, externalKey string, tx pgx.Tx) (*models.Asset, error)
	GetUnassigned(ctx context.Context, companyID, userID int, tx pgx.Tx) (*models.Asset, error)
	GetIDsByCompany(ctx context.Context, companyID int) ([]int, error)
	GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Asset, error)
	Create(ctx context.Context, asset *models.Asset, tx pgx.Tx) error
	ApplyAmount(ctx context.Context, assetID int, amount float64, tx pgx.Tx) error
}

type assetRepo struct {
	db *pgxpool.Pool
}

func NewAssetRepository(db *pgxpool.Pool) AssetRepository {
	return &assetRepo{db: db}
}

const assetColumns = `id, company_id, user_id, external_cost_center_id, name, status, asset_type,
	purpose, divestment_grade, potential, participation_rate, purchase_value, expense, revenue,
	total, outstanding_debt, sale_price, sale_participation, active, created_at`

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(&a.ID, &a.CompanyID, &a.UserID, &a.ExternalCostCenterID, &a.Name, &a.Status,
		&a.AssetType, &a.Purpose, &a.DivestmentGrade, &a.Potential, &a.ParticipationRate,
		&a.PurchaseValue, &a.Expense, &a.Revenue, &a.Total, &a.OutstandingDebt, &a.SalePrice,
		&a.SaleParticipation, &a.Active, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) GetByCompanyAndUser(ctx context.Context, companyID, userID int, tx pgx.Tx) ([]models.Asset, error) {
	rows, err := pick(r.db, tx).Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE company_id = $1 AND user_id = $2`,
		companyID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.UserID, &a.ExternalCostCenterID, &a.Name,
			&a.Status, &a.AssetType, &a.Purpose, &a.DivestmentGrade, &a.Potential,
			&a.ParticipationRate, &a.PurchaseValue, &a.Expense, &a.Revenue, &a.Total,
			&a.OutstandingDebt, &a.SalePrice, &a.SaleParticipation, &a.Active, &a.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *assetRepo) GetByExternalKey(ctx context.Context, companyID, userID int, externalKey string, tx pgx.Tx) (*models.Asset, error) {
	return scanAsset(pick(r.db, tx).QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets
		 WHERE company_id = $1 AND user_id = $2 AND external_cost_center_id = $3`,
		companyID, userID, externalKey))
}

func (r *assetRepo) GetUnassigned(ctx context.Context, companyID, userID int, tx pgx.Tx) (*models.Asset, error) {
	return scanAsset(pick(r.db, tx).QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets
		 WHERE company_id = $1 AND user_id = $2 AND external_cost_center_id IS NULL`,
		companyID, userID))
}

func (r *assetRepo) GetIDsByCompany(ctx context.Context, companyID int) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM assets WHERE company_id = $1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *assetRepo) GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Asset, error) {
	return scanAsset(pick(r.db, tx).QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
}

func (r *assetRepo) Create(ctx context.Context, asset *models.Asset, tx pgx.Tx) error {
	return pick(r.db, tx).QueryRow(ctx,
		`INSERT INTO assets (company_id, user_id, external_cost_center_id, name, status, asset_type,
			purpose, divestment_grade, potential, participation_rate, purchase_value, expense,
			revenue, outstanding_debt, sale_price, sale_participation, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING id, created_at`,
		asset.CompanyID, asset.UserID, asset.ExternalCostCenterID, asset.Name, asset.Status,
		asset.AssetType, asset.Purpose, asset.DivestmentGrade, asset.Potential,
		asset.ParticipationRate, asset.PurchaseValue, asset.Expense, asset.Revenue,
		asset.OutstandingDebt, asset.SalePrice, asset.SaleParticipation, asset.Active,
	).Scan(&asset.ID, &asset.CreatedAt)
}

// ApplyAmount folds a signed amount into the asset's running totals: revenue
// for non-negative amounts, expense otherwise. The generated total column
// follows on its own.
func (r *assetRepo) ApplyAmount(ctx context.Context, assetID int, amount float64, tx pgx.Tx) error {
	column := "revenue"
	if amount < 0 {
		column = "expense"
	}
	_, err := pick(r.db, tx).Exec(ctx,
		`UPDATE assets SET `+column+` = COALESCE(`+column+`, 0) + $2 WHERE id = $1`,
		assetID, amount)
	return err
}
