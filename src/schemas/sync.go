package schemas

// ImportRequest starts a first-time import from an API token.
type ImportRequest struct {
	UserID int    `json:"userId"`
	Token  string `json:"token"`
}

// ImportResult summarizes an import run. Counts cover rows actually created,
// so a repeated import of unchanged remote data reports zero.
type ImportResult struct {
	CompanyID            int    `json:"companyId"`
	CompanyName          string `json:"companyName"`
	AssetsImported       int    `json:"assetsImported"`
	TransactionsImported int    `json:"transactionsImported"`
}

// RefreshRequest re-syncs a company through its stored token.
type RefreshRequest struct {
	UserID int `json:"userId"`
}

// RefreshResult summarizes a refresh run.
type RefreshResult struct {
	CompanyID       int `json:"companyId"`
	NewAssets       int `json:"newAssets"`
	NewTransactions int `json:"newTransactions"`
}
