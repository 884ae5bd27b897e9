package repositories

import (
	"context"
	"errors"

	"assetsync/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id int) (*models.Company, error)
	GetByTaxID(ctx context.Context, userID int, taxID string) (*models.Company, error)
	GetAllWithToken(ctx context.Context) ([]models.Company, error)
	Create(ctx context.Context, company *models.Company, tx pgx.Tx) error
	UpdateToken(ctx context.Context, id int, token string, tx pgx.Tx) error
	HasUserAccess(ctx context.Context, userID, companyID int) (bool, error)
	EnsureUserAccess(ctx context.Context, userID, companyID int, tx pgx.Tx) error
}

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, user_id, name, tax_id, external_company_id, api_token, created_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.TaxID, &c.ExternalCompanyID, &c.APIToken, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepo) GetByID(ctx context.Context, id int) (*models.Company, error) {
	return scanCompany(r.db.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

func (r *companyRepo) GetByTaxID(ctx context.Context, userID int, taxID string) (*models.Company, error) {
	return scanCompany(r.db.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = $1 AND tax_id = $2`, userID, taxID))
}

func (r *companyRepo) GetAllWithToken(ctx context.Context) ([]models.Company, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE api_token IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.TaxID, &c.ExternalCompanyID, &c.APIToken, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *companyRepo) Create(ctx context.Context, company *models.Company, tx pgx.Tx) error {
	return pick(r.db, tx).QueryRow(ctx,
		`INSERT INTO companies (user_id, name, tax_id, external_company_id, api_token)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		company.UserID, company.Name, company.TaxID, company.ExternalCompanyID, company.APIToken,
	).Scan(&company.ID, &company.CreatedAt)
}

func (r *companyRepo) UpdateToken(ctx context.Context, id int, token string, tx pgx.Tx) error {
	_, err := pick(r.db, tx).Exec(ctx,
		`UPDATE companies SET api_token = $2 WHERE id = $1`, id, token)
	return err
}

func (r *companyRepo) HasUserAccess(ctx context.Context, userID, companyID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_companies WHERE user_id = $1 AND company_id = $2)`,
		userID, companyID).Scan(&exists)
	return exists, err
}

func (r *companyRepo) EnsureUserAccess(ctx context.Context, userID, companyID int, tx pgx.Tx) error {
	_, err := pick(r.db, tx).Exec(ctx,
		`INSERT INTO user_companies (user_id, company_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, company_id) DO NOTHING`,
		userID, companyID)
	return err
}
