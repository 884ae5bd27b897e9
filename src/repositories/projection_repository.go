package repositories

import (
	"context"

	"assetsync/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectionRepository interface {
	GetByAsset(ctx context.Context, assetID int) ([]models.Projection, error)
	Upsert(ctx context.Context, p *models.Projection, tx pgx.Tx) error
	DeleteByCompany(ctx context.Context, companyID int, tx pgx.Tx) error
}

type projectionRepo struct {
	db *pgxpool.Pool
}

func NewProjectionRepository(db *pgxpool.Pool) ProjectionRepository {
	return &projectionRepo{db: db}
}

func (r *projectionRepo) GetByAsset(ctx context.Context, assetID int) ([]models.Projection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, asset_id, month, year, month_no, purchase_value, monthly_rate, monthly_return,
			accumulated_return, difference, created_at, updated_at
		 FROM projections WHERE asset_id = $1 ORDER BY month`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projections []models.Projection
	for rows.Next() {
		var p models.Projection
		if err := rows.Scan(&p.ID, &p.AssetID, &p.Month, &p.Year, &p.MonthNo, &p.PurchaseValue,
			&p.MonthlyRate, &p.MonthlyReturn, &p.AccumulatedReturn, &p.Difference,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projections = append(projections, p)
	}
	return projections, rows.Err()
}

// Upsert writes the projection row for (asset, month), replacing the snapshot
// values when the month was already generated.
func (r *projectionRepo) Upsert(ctx context.Context, p *models.Projection, tx pgx.Tx) error {
	return pick(r.db, tx).QueryRow(ctx,
		`INSERT INTO projections (asset_id, month, year, month_no, purchase_value, monthly_rate,
			monthly_return, accumulated_return, difference)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (asset_id, month) DO UPDATE SET
			year = EXCLUDED.year,
			month_no = EXCLUDED.month_no,
			purchase_value = EXCLUDED.purchase_value,
			monthly_rate = EXCLUDED.monthly_rate,
			monthly_return = EXCLUDED.monthly_return,
			accumulated_return = EXCLUDED.accumulated_return,
			difference = EXCLUDED.difference,
			updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		p.AssetID, p.Month, p.Year, p.MonthNo, p.PurchaseValue, p.MonthlyRate,
		p.MonthlyReturn, p.AccumulatedReturn, p.Difference,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// DeleteByCompany removes the whole projection series for every asset of a
// company, ahead of a full regeneration.
func (r *projectionRepo) DeleteByCompany(ctx context.Context, companyID int, tx pgx.Tx) error {
	_, err := pick(r.db, tx).Exec(ctx,
		`DELETE FROM projections
		 WHERE asset_id IN (SELECT id FROM assets WHERE company_id = $1)`, companyID)
	return err
}
