package models

import "time"

type Company struct {
	ID                int       `db:"id"`
	UserID            int       `db:"user_id"`
	Name              string    `db:"name"`
	TaxID             *string   `db:"tax_id"`
	ExternalCompanyID *string   `db:"external_company_id"`
	APIToken          *string   `db:"api_token"`
	CreatedAt         time.Time `db:"created_at"`
}
