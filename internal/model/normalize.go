package model

// Coercion helpers shared by the row normalizers. These are the only place
// where "dirty" store data becomes "clean" domain data; no other component
// may bypass them.

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ToItemCategory coerces an arbitrary stored value into the closed item
// category set. Unknown values collapse to CategoryDry — deliberately an
// invariant, not an error — with a debug log so data drift stays observable.
func ToItemCategory(value *string) ItemCategory {
	raw := safeString(value)
	if raw == "" {
		return CategoryDry
	}
	if c := ItemCategory(raw); c.Valid() {
		return c
	}
	log.Debug().Str("value", raw).Msg("normalize: unknown item category coerced to dry")
	return CategoryDry
}

// ToSupplierCategory coerces into the supplier category set; unknown or
// absent values become nil.
func ToSupplierCategory(value *string) *SupplierCategory {
	raw := safeString(value)
	if raw == "" {
		return nil
	}
	if c := SupplierCategory(raw); c.Valid() {
		return &c
	}
	log.Debug().Str("value", raw).Msg("normalize: unknown supplier category dropped")
	return nil
}

// ToNumber accepts whatever the driver produced for a numeric column — a
// native number, a numeric string, raw bytes — and returns a decimal, or nil
// for anything unusable (including NaN and infinities).
func ToNumber(value any) *decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return &v
	case *decimal.Decimal:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		d := decimal.NewFromFloat(v)
		return &d
	case float32:
		return ToNumber(float64(v))
	case int:
		d := decimal.NewFromInt(int64(v))
		return &d
	case int32:
		d := decimal.NewFromInt(int64(v))
		return &d
	case int64:
		d := decimal.NewFromInt(v)
		return &d
	case json.Number:
		return parseDecimal(v.String())
	case []byte:
		return parseDecimal(string(v))
	case string:
		return parseDecimal(v)
	default:
		return nil
	}
}

func parseDecimal(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func safeString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func stringOrDefault(value *string, fallback string) string {
	if s := safeString(value); s != "" {
		return s
	}
	return fallback
}

func stringOrNil(value *string) *string {
	if s := safeString(value); s != "" {
		return &s
	}
	return nil
}
