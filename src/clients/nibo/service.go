package nibo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"assetsync/src/config"
	"assetsync/src/utils"
	requests "assetsync/src/utils/requests"
)

// DefaultPageSize is the page size requested from the paginated endpoints.
const DefaultPageSize = 500

type ClientI interface {
	GetCompanyProfile(ctx context.Context, token string) (*CompanyProfile, error)
	ListCostCenters(ctx context.Context, token string) (*Page, error)
	ListReceipts(ctx context.Context, token string, skip, top int) (*Page, error)
	ListPayments(ctx context.Context, token string, skip, top int) (*Page, error)
	PageSize() int
}

// Client talks to the remote accounting API. All endpoints authenticate with
// an "apitoken" header.
type Client struct {
	API      *requests.ExternalAPIService
	BaseURL  string
	pageSize int

	costCenterCache *utils.Cache[cachedCostCenters]
}

type cachedCostCenters struct {
	token string
	page  *Page
}

// costCenterCacheTTL bounds how long a cost center listing is reused across
// back-to-back syncs of the same company.
const costCenterCacheTTL = time.Minute

func NewClient(cfg *config.Config) *Client {
	pageSize := cfg.ExternalClients.Nibo.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		API:             requests.NewExternalAPIService(nil),
		BaseURL:         cfg.ExternalClients.Nibo.BaseURL,
		pageSize:        pageSize,
		costCenterCache: utils.NewCache[cachedCostCenters](),
	}
}

func (c *Client) PageSize() int {
	return c.pageSize
}

func (c *Client) headers(token string) map[string]string {
	return map[string]string{"apitoken": token}
}

func (c *Client) getJSON(ctx context.Context, token, endpoint string, params url.Values, out interface{}) error {
	resp, err := c.API.GetWithHeaders(ctx, c.BaseURL+endpoint, params, c.headers(token))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// GetCompanyProfile resolves the company identified by a token from the
// organizations endpoint.
func (c *Client) GetCompanyProfile(ctx context.Context, token string) (*CompanyProfile, error) {
	var page Page
	if err := c.getJSON(ctx, token, "/organizations", nil, &page); err != nil {
		return nil, err
	}

	records := page.Records()
	if len(records) == 0 {
		return nil, fmt.Errorf("invalid API token or inaccessible company")
	}

	org := records[0]
	return &CompanyProfile{
		Name:              stringField(org, "name"),
		TaxID:             stringField(org, "cnpj"),
		ExternalCompanyID: stringField(org, "organizationId"),
	}, nil
}

// ListCostCenters retrieves the full cost center collection. The result is
// cached briefly per token.
func (c *Client) ListCostCenters(ctx context.Context, token string) (*Page, error) {
	if cached, ok := c.costCenterCache.Get(time.Time{}); ok && cached.token == token {
		return cached.page, nil
	}

	var page Page
	if err := c.getJSON(ctx, token, "/costcenters", nil, &page); err != nil {
		return nil, err
	}

	c.costCenterCache.Set(cachedCostCenters{token: token, page: &page}, costCenterCacheTTL)
	return &page, nil
}

// ListReceipts retrieves one page of receipts, pre-sorted by date so that
// repeated syncs page through the collection in a stable order.
func (c *Client) ListReceipts(ctx context.Context, token string, skip, top int) (*Page, error) {
	return c.listPaginated(ctx, token, "/receipts", skip, top)
}

// ListPayments retrieves one page of payments, pre-sorted by date.
func (c *Client) ListPayments(ctx context.Context, token string, skip, top int) (*Page, error) {
	return c.listPaginated(ctx, token, "/payments", skip, top)
}

func (c *Client) listPaginated(ctx context.Context, token, endpoint string, skip, top int) (*Page, error) {
	params := url.Values{}
	params.Set("$orderby", "date")
	params.Set("$skip", strconv.Itoa(skip))
	params.Set("$top", strconv.Itoa(top))

	var page Page
	if err := c.getJSON(ctx, token, endpoint, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func stringField(record RawRecord, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}
