package nibo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordsOf(n int, prefix string) []RawRecord {
	records := make([]RawRecord, n)
	for i := range records {
		records[i] = RawRecord{"id": fmt.Sprintf("%s-%d", prefix, i)}
	}
	return records
}

func TestFetchAllPagesStopsOnShortPage(t *testing.T) {
	all := recordsOf(5, "r")
	var offsets []int

	fetch := func(ctx context.Context, token string, skip, top int) (*Page, error) {
		offsets = append(offsets, skip)
		end := skip + top
		if end > len(all) {
			end = len(all)
		}
		if skip >= len(all) {
			return &Page{}, nil
		}
		return &Page{Items: all[skip:end]}, nil
	}

	records, err := FetchAllPages(context.Background(), "tok", 2, fetch)
	require.NoError(t, err)
	assert.Len(t, records, 5)
	// The final short page (1 of 2) terminates the walk.
	assert.Equal(t, []int{0, 2, 4}, offsets)
}

func TestFetchAllPagesExactMultiple(t *testing.T) {
	all := recordsOf(4, "r")

	fetch := func(ctx context.Context, token string, skip, top int) (*Page, error) {
		if skip >= len(all) {
			return &Page{}, nil
		}
		return &Page{Items: all[skip : skip+top]}, nil
	}

	// A full last page forces one extra fetch that comes back empty.
	records, err := FetchAllPages(context.Background(), "tok", 2, fetch)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestFetchAllPagesPropagatesErrors(t *testing.T) {
	fetch := func(ctx context.Context, token string, skip, top int) (*Page, error) {
		if skip == 0 {
			return &Page{Items: recordsOf(2, "r")}, nil
		}
		return nil, fmt.Errorf("upstream 500")
	}

	records, err := FetchAllPages(context.Background(), "tok", 2, fetch)
	require.Error(t, err)
	assert.Nil(t, records)
}

func TestFetchAllPagesValueEnvelope(t *testing.T) {
	fetch := func(ctx context.Context, token string, skip, top int) (*Page, error) {
		if skip > 0 {
			return &Page{}, nil
		}
		return &Page{Value: recordsOf(3, "v")}, nil
	}

	records, err := FetchAllPages(context.Background(), "tok", 10, fetch)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestFetchAllDegradesOnError(t *testing.T) {
	fetch := func(ctx context.Context, token string) (*Page, error) {
		return nil, fmt.Errorf("unreachable")
	}
	assert.Nil(t, FetchAll(context.Background(), "tok", fetch))

	ok := func(ctx context.Context, token string) (*Page, error) {
		return &Page{Items: recordsOf(2, "c")}, nil
	}
	assert.Len(t, FetchAll(context.Background(), "tok", ok), 2)
}

func TestPageRecords(t *testing.T) {
	assert.Nil(t, (*Page)(nil).Records())
	assert.Nil(t, (&Page{}).Records())
	assert.Len(t, (&Page{Items: recordsOf(2, "i")}).Records(), 2)
	assert.Len(t, (&Page{Value: recordsOf(3, "v")}).Records(), 3)

	// "items" wins when both are populated.
	both := &Page{Items: recordsOf(1, "i"), Value: recordsOf(2, "v")}
	assert.Len(t, both.Records(), 1)
}
