package nibo

// RawRecord is one upstream item as-is. The upstream schema is loosely typed
// (field names and shapes vary between accounts), so records stay generic
// until the parser in services normalizes them.
type RawRecord map[string]interface{}

// Page is the envelope returned by the paginated listing endpoints. Depending
// on the endpoint the items collection arrives under "items" or "value"; no
// total-count field is guaranteed.
type Page struct {
	Items []RawRecord `json:"items"`
	Value []RawRecord `json:"value"`
}

// Records returns whichever items collection the page carries.
func (p *Page) Records() []RawRecord {
	if p == nil {
		return nil
	}
	if len(p.Items) > 0 {
		return p.Items
	}
	if len(p.Value) > 0 {
		return p.Value
	}
	return nil
}

// CompanyProfile identifies the company behind an API token.
type CompanyProfile struct {
	Name              string
	TaxID             string
	ExternalCompanyID string
}
