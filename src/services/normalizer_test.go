package services

import (
	"testing"
	"time"

	"assetsync/src/clients/nibo"
	"assetsync/src/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExternalKey(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil collapses into sentinel", nil, SentinelKey},
		{"string is trimmed", "  cc-42  ", "cc-42"},
		{"integral float has no decimals", float64(42), "42"},
		{"fractional float keeps decimals", 42.5, "42.5"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"nested map uses costCenterId first", map[string]interface{}{"costCenterId": "abc", "id": "other"}, "abc"},
		{"nested map falls back to id", map[string]interface{}{"id": float64(9)}, "9"},
		{"map without known fields", map[string]interface{}{"label": "x"}, SentinelKey},
		{"unconvertible shape", []interface{}{"a"}, SentinelKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeExternalKey(tt.value))
		})
	}
}

func TestExtractCostCenterKey(t *testing.T) {
	tests := []struct {
		name   string
		record nibo.RawRecord
		want   string
	}{
		{
			"list of objects uses the first",
			nibo.RawRecord{"costCenters": []interface{}{
				map[string]interface{}{"costCenterId": "cc-1"},
				map[string]interface{}{"costCenterId": "cc-2"},
			}},
			"cc-1",
		},
		{
			"single object",
			nibo.RawRecord{"costCenter": map[string]interface{}{"id": "cc-3"}},
			"cc-3",
		},
		{
			"snake case field",
			nibo.RawRecord{"cost_centers": []interface{}{map[string]interface{}{"centerId": "cc-4"}}},
			"cc-4",
		},
		{
			"scalar reference",
			nibo.RawRecord{"costCenter": "cc-5"},
			"cc-5",
		},
		{"absent reference", nibo.RawRecord{"value": 10.0}, SentinelKey},
		{"empty list", nibo.RawRecord{"costCenters": []interface{}{}}, SentinelKey},
		{
			"object without id fields",
			nibo.RawRecord{"costCenter": map[string]interface{}{"description": "x"}},
			SentinelKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCostCenterKey(tt.record))
		})
	}
}

func TestParseRawTransaction(t *testing.T) {
	notTransfer := false

	record := nibo.RawRecord{
		"entryId":    "tx-100",
		"date":       "2024-03-15T10:30:00Z",
		"value":      "1.234,56",
		"identifier": "Rent march",
		"isTransfer": false,
		"costCenters": []interface{}{
			map[string]interface{}{"costCenterId": "cc-1"},
		},
	}

	tx := ParseRawTransaction(record, DirectionInflow)
	assert.Equal(t, "tx-100", tx.ExternalID)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "Rent march", tx.Description)
	assert.Equal(t, "cc-1", tx.CostCenterKey)
	assert.Equal(t, &notTransfer, tx.IsTransfer)
	assert.True(t, tx.Processable())
	assert.Equal(t, models.LinkKindInflow, tx.LinkKind())
	// Comma decimal separator is normalized, but the thousands dot makes the
	// string unparsable, so the amount falls back to zero.
	assert.Equal(t, 0.0, tx.Amount)
}

func TestParseRawTransactionAmounts(t *testing.T) {
	tests := []struct {
		name      string
		record    nibo.RawRecord
		direction Direction
		want      float64
	}{
		{"numeric value", nibo.RawRecord{"value": 150.75}, DirectionInflow, 150.75},
		{"string with comma separator", nibo.RawRecord{"value": "99,90"}, DirectionInflow, 99.9},
		{"amount field fallback", nibo.RawRecord{"amount": float64(80)}, DirectionInflow, 80},
		{"missing amount", nibo.RawRecord{}, DirectionInflow, 0},
		{"garbage amount", nibo.RawRecord{"value": "n/a"}, DirectionInflow, 0},
		{"outflow is negated", nibo.RawRecord{"value": 200.0}, DirectionOutflow, -200},
		{"negated zero stays zero", nibo.RawRecord{}, DirectionOutflow, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ParseRawTransaction(tt.record, tt.direction)
			assert.Equal(t, tt.want, tx.Amount)
		})
	}
}

func TestParseRawTransactionDates(t *testing.T) {
	tests := []struct {
		name   string
		record nibo.RawRecord
		want   time.Time
	}{
		{"date only", nibo.RawRecord{"date": "2023-07-01"}, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"timestamp", nibo.RawRecord{"date": "2023-07-01T18:00:00"}, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"fractional seconds with zone", nibo.RawRecord{"date": "2023-07-01T18:00:00.123456Z"}, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"dueDate fallback", nibo.RawRecord{"dueDate": "2023-08-02"}, time.Date(2023, 8, 2, 0, 0, 0, 0, time.UTC)},
		{"accrualDate fallback", nibo.RawRecord{"accrualDate": "2023-09-03"}, time.Date(2023, 9, 3, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ParseRawTransaction(tt.record, DirectionInflow)
			assert.Equal(t, tt.want, tx.Date)
		})
	}

	t.Run("malformed date falls back to today", func(t *testing.T) {
		tx := ParseRawTransaction(nibo.RawRecord{"date": "not-a-date"}, DirectionInflow)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		assert.Equal(t, today, tx.Date)
	})
}

func TestParseRawTransactionTransferFlag(t *testing.T) {
	transfer := ParseRawTransaction(nibo.RawRecord{"isTransfer": true, "value": 10.0}, DirectionInflow)
	assert.False(t, transfer.Processable())

	missing := ParseRawTransaction(nibo.RawRecord{"value": 10.0}, DirectionInflow)
	assert.Nil(t, missing.IsTransfer)
	assert.False(t, missing.Processable())

	explicit := ParseRawTransaction(nibo.RawRecord{"isTransfer": false, "value": 10.0}, DirectionInflow)
	assert.True(t, explicit.Processable())
}

func TestParseRawTransactionIdentity(t *testing.T) {
	preferred := ParseRawTransaction(nibo.RawRecord{"entryId": "e-1", "id": "i-1", "isTransfer": false}, DirectionInflow)
	assert.Equal(t, "e-1", preferred.ExternalID)

	fallback := ParseRawTransaction(nibo.RawRecord{"id": float64(77), "isTransfer": false}, DirectionInflow)
	assert.Equal(t, "77", fallback.ExternalID)

	// An id shape that normalizes into the sentinel means no usable identity.
	none := ParseRawTransaction(nibo.RawRecord{"id": map[string]interface{}{"weird": 1}, "isTransfer": false}, DirectionInflow)
	assert.Equal(t, "", none.ExternalID)
}

func TestParseRawTransactionDescriptions(t *testing.T) {
	assert.Equal(t, "ACME", ParseRawTransaction(nibo.RawRecord{"identifier": "ACME"}, DirectionInflow).Description)
	assert.Equal(t, "Water bill", ParseRawTransaction(nibo.RawRecord{"description": "Water bill"}, DirectionOutflow).Description)
	assert.Equal(t, "Receipt", ParseRawTransaction(nibo.RawRecord{}, DirectionInflow).Description)
	assert.Equal(t, "Payment", ParseRawTransaction(nibo.RawRecord{}, DirectionOutflow).Description)
	outflow := ParseRawTransaction(nibo.RawRecord{}, DirectionOutflow)
	assert.Equal(t, models.LinkKindOutflow, outflow.LinkKind())
}
