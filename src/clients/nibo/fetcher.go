package nibo

import "context"

// PageFetchFunc fetches one page of a remote collection starting at skip.
type PageFetchFunc func(ctx context.Context, token string, skip, top int) (*Page, error)

// ListFetchFunc fetches an unpaginated remote collection.
type ListFetchFunc func(ctx context.Context, token string) (*Page, error)

// FetchAllPages walks a paginated collection from offset 0 until a page comes
// back with fewer items than requested, which marks the last page. The remote
// API exposes no reliable total-count field, so the short page is the only
// termination signal.
func FetchAllPages(ctx context.Context, token string, top int, fetch PageFetchFunc) ([]RawRecord, error) {
	var results []RawRecord
	skip := 0

	for {
		page, err := fetch(ctx, token, skip, top)
		if err != nil {
			return nil, err
		}

		records := page.Records()
		results = append(results, records...)

		if len(records) < top {
			break
		}
		skip += top
	}

	return results, nil
}

// FetchAll retrieves an unpaginated collection, degrading to an empty result
// on any remote failure so one unreachable endpoint does not abort a sync.
func FetchAll(ctx context.Context, token string, fetch ListFetchFunc) []RawRecord {
	page, err := fetch(ctx, token)
	if err != nil {
		return nil
	}
	return page.Records()
}
