package models

import "time"

type User struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	Active    bool      `db:"active"`
}

// UserCompany links a user to a company it can sync.
type UserCompany struct {
	ID        int `db:"id"`
	UserID    int `db:"user_id"`
	CompanyID int `db:"company_id"`
}
