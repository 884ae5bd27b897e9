package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"assetsync/src/clients/nibo"
	"assetsync/src/models"

	"github.com/shopspring/decimal"
)

// SentinelKey is the reserved bucket for records whose cost center reference
// is absent or unparsable. It always resolves to the unassigned asset.
const SentinelKey = "None"

// Candidate field names tried, in order, when the upstream embeds identifiers
// and references under varying keys.
var (
	nestedIDFields     = []string{"costCenterId", "id"}
	costCenterIDFields = []string{"costCenterId", "id", "centerId"}
	costCenterRefs     = []string{"costCenters", "costCenter", "cost_centers"}
	amountFields       = []string{"value", "amount"}
	dateFields         = []string{"date", "dueDate", "accrualDate"}
)

// NormalizeExternalKey canonicalizes a heterogeneous upstream identifier into
// a comparable key. It is total: any shape it cannot convert collapses into
// the sentinel.
func NormalizeExternalKey(value interface{}) string {
	if value == nil {
		return SentinelKey
	}

	switch v := value.(type) {
	case map[string]interface{}:
		for _, field := range nestedIDFields {
			if nested, ok := v[field]; ok && nested != nil {
				return NormalizeExternalKey(nested)
			}
		}
		return SentinelKey
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return SentinelKey
	}
}

// ExtractCostCenterKey pulls the cost center reference out of a raw
// transaction and normalizes it. The upstream embeds the reference as a list
// of objects, a single object, a scalar, or not at all.
func ExtractCostCenterKey(record nibo.RawRecord) string {
	var ccField interface{}
	for _, field := range costCenterRefs {
		if v, ok := record[field]; ok && v != nil {
			ccField = v
			break
		}
	}
	if ccField == nil {
		return SentinelKey
	}

	if list, ok := ccField.([]interface{}); ok {
		if len(list) == 0 {
			return SentinelKey
		}
		ccField = list[0]
	}

	if obj, ok := ccField.(map[string]interface{}); ok {
		for _, field := range costCenterIDFields {
			if v, ok := obj[field]; ok && v != nil {
				return NormalizeExternalKey(v)
			}
		}
		return SentinelKey
	}

	return NormalizeExternalKey(ccField)
}

// Direction classifies the remote collection a record came from.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// RawTransaction is the strongly-typed view of one upstream record. All of
// the try-field-A-then-B lookup logic lives in ParseRawTransaction; nothing
// downstream touches the raw maps.
type RawTransaction struct {
	ExternalID    string
	Date          time.Time
	Amount        float64
	Description   string
	CostCenterKey string
	Direction     Direction

	// IsTransfer is nil when the upstream record carries no transfer flag.
	// Only records explicitly flagged as not a transfer are reconciled.
	IsTransfer *bool
}

// Processable reports whether the record represents asset-attributable cash
// flow. Transfers, and records without an explicit transfer flag, are not.
func (t *RawTransaction) Processable() bool {
	return t.IsTransfer != nil && !*t.IsTransfer
}

// LinkKind returns the link classification tag for this record's direction.
func (t *RawTransaction) LinkKind() string {
	if t.Direction == DirectionOutflow {
		return models.LinkKindOutflow
	}
	return models.LinkKindInflow
}

// ParseRawTransaction maps a generic untyped record to a RawTransaction,
// applying the documented fallbacks: unparsable dates become today, amounts
// become zero, identifiers collapse into the sentinel. Outflow amounts are
// negated so every amount downstream is signed.
func ParseRawTransaction(record nibo.RawRecord, direction Direction) RawTransaction {
	tx := RawTransaction{
		CostCenterKey: ExtractCostCenterKey(record),
		Date:          parseDate(firstField(record, dateFields)),
		Amount:        parseAmount(firstField(record, amountFields)),
		Description:   parseDescription(record, direction),
		Direction:     direction,
	}

	if flag, ok := record["isTransfer"].(bool); ok {
		tx.IsTransfer = &flag
	}

	if id := firstField(record, []string{"entryId", "id"}); id != nil {
		tx.ExternalID = NormalizeExternalKey(id)
		if tx.ExternalID == SentinelKey {
			tx.ExternalID = ""
		}
	}

	if direction == DirectionOutflow {
		tx.Amount = -tx.Amount
	}

	return tx
}

func firstField(record nibo.RawRecord, fields []string) interface{} {
	for _, field := range fields {
		if v, ok := record[field]; ok && v != nil {
			return v
		}
	}
	return nil
}

func parseDescription(record nibo.RawRecord, direction Direction) string {
	for _, field := range []string{"identifier", "description"} {
		if v, ok := record[field].(string); ok && v != "" {
			return v
		}
	}
	if direction == DirectionOutflow {
		return "Payment"
	}
	return "Receipt"
}

// parseAmount converts an untrusted amount value to a float. Upstream sends
// numbers or strings, occasionally with a comma decimal separator.
func parseAmount(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", "."))
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	default:
		d, err := decimal.NewFromString(fmt.Sprint(v))
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	}
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate parses an upstream date, falling back to today so a malformed
// date never aborts the batch.
func parseDate(value interface{}) time.Time {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	s, ok := value.(string)
	if !ok || s == "" {
		return today
	}

	cleaned := strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return today
}
