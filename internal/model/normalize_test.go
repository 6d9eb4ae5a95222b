package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// ── Item normalization ────────────────────────────────────────────────────────

func TestNormalizeItemRow_EmptyRowGetsDefaults(t *testing.T) {
	item := NormalizeItemRow(ItemRow{ID: "i1", OrgID: "org1"})

	assert.Equal(t, "i1", item.ID)
	assert.Equal(t, "Untitled item", item.Name)
	assert.Equal(t, "📦", item.Emoji)
	assert.Equal(t, CategoryDry, item.Category)
	assert.Nil(t, item.SupplierCategory)
	assert.Equal(t, "unit", item.BaseUnit)
	assert.Nil(t, item.PackUnit)
	assert.Nil(t, item.PackSize)
	assert.Nil(t, item.SupplierID)
	assert.True(t, item.Active, "missing active defaults to true")
	assert.Nil(t, item.Notes)
}

func TestNormalizeItemRow_BlankStringsTreatedAsAbsent(t *testing.T) {
	item := NormalizeItemRow(ItemRow{
		ID:       "i1",
		Name:     strPtr("   "),
		BaseUnit: strPtr(""),
		PackUnit: strPtr("  "),
		Notes:    strPtr(" \t"),
	})

	assert.Equal(t, "Untitled item", item.Name)
	assert.Equal(t, "unit", item.BaseUnit)
	assert.Nil(t, item.PackUnit)
	assert.Nil(t, item.Notes)
}

func TestNormalizeItemRow_ItemCategoryWinsOverLegacy(t *testing.T) {
	item := NormalizeItemRow(ItemRow{
		ID:             "i1",
		ItemCategory:   strPtr("frozen"),
		LegacyCategory: strPtr("fish"),
	})
	assert.Equal(t, CategoryFrozen, item.Category)
}

func TestNormalizeItemRow_FallsBackToLegacyCategory(t *testing.T) {
	item := NormalizeItemRow(ItemRow{
		ID:             "i1",
		ItemCategory:   strPtr("  "),
		LegacyCategory: strPtr("produce"),
	})
	assert.Equal(t, CategoryProduce, item.Category)
}

func TestNormalizeItemRow_ExplicitInactive(t *testing.T) {
	item := NormalizeItemRow(ItemRow{ID: "i1", Active: boolPtr(false)})
	assert.False(t, item.Active)
}

func TestNormalizeItemRow_PreservesTimestamps(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	item := NormalizeItemRow(ItemRow{ID: "i1", CreatedAt: &created})
	require.NotNil(t, item.CreatedAt)
	assert.Equal(t, created, *item.CreatedAt)
}

func TestNormalizeItemRows_PreservesOrder(t *testing.T) {
	items := NormalizeItemRows([]ItemRow{
		{ID: "b"}, {ID: "a"}, {ID: "c"},
	})
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}

// ── Supplier normalization ────────────────────────────────────────────────────

func TestNormalizeSupplierRow_Defaults(t *testing.T) {
	supplier := NormalizeSupplierRow(SupplierRow{ID: "s1", OrgID: "org1"})

	assert.Equal(t, "Unnamed supplier", supplier.Name)
	assert.Nil(t, supplier.Category)
	assert.Nil(t, supplier.Phone)
	assert.Nil(t, supplier.Email)
	assert.True(t, supplier.Active)
}

func TestNormalizeSupplierRow_UnknownCategoryDropped(t *testing.T) {
	supplier := NormalizeSupplierRow(SupplierRow{
		ID:       "s1",
		Name:     strPtr("Nordic Catch"),
		Category: strPtr("wholesale_megacorp"),
	})
	assert.Equal(t, "Nordic Catch", supplier.Name)
	assert.Nil(t, supplier.Category, "unknown supplier category becomes nil, not an error")
}

// ── Enum coercion ─────────────────────────────────────────────────────────────

func TestToItemCategory(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want ItemCategory
	}{
		{"valid member", strPtr("fish"), CategoryFish},
		{"unknown collapses to dry", strPtr("cryptids"), CategoryDry},
		{"empty collapses to dry", strPtr(""), CategoryDry},
		{"whitespace collapses to dry", strPtr("   "), CategoryDry},
		{"nil collapses to dry", nil, CategoryDry},
		{"case sensitive", strPtr("Fish"), CategoryDry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToItemCategory(tc.in))
		})
	}
}

func TestToSupplierCategory(t *testing.T) {
	got := ToSupplierCategory(strPtr("asian_market"))
	require.NotNil(t, got)
	assert.Equal(t, SupplierAsianMarket, *got)

	assert.Nil(t, ToSupplierCategory(strPtr("unknown_vendor")))
	assert.Nil(t, ToSupplierCategory(strPtr("")))
	assert.Nil(t, ToSupplierCategory(nil))
}

// ── Numeric coercion ──────────────────────────────────────────────────────────

func TestToNumber(t *testing.T) {
	half := decimal.RequireFromString("0.5")

	cases := []struct {
		name string
		in   any
		want *decimal.Decimal
	}{
		{"nil", nil, nil},
		{"float64", float64(0.5), &half},
		{"numeric string", "0.5", &half},
		{"padded numeric string", "  0.5 ", &half},
		{"raw bytes", []byte("0.5"), &half},
		{"json number", json.Number("0.5"), &half},
		{"nan", math.NaN(), nil},
		{"positive infinity", math.Inf(1), nil},
		{"negative infinity", math.Inf(-1), nil},
		{"garbage string", "five", nil},
		{"empty string", "", nil},
		{"unsupported type", true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToNumber(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tc.want.Equal(*got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestToNumber_IntegerKinds(t *testing.T) {
	for _, in := range []any{int(12), int32(12), int64(12), decimal.NewFromInt(12)} {
		got := ToNumber(in)
		require.NotNil(t, got, "%T", in)
		assert.True(t, got.Equal(decimal.NewFromInt(12)), "%T", in)
	}
}

// ── Temp ids ──────────────────────────────────────────────────────────────────

func TestTempIDs(t *testing.T) {
	id := NewTempID()
	assert.True(t, IsTempID(id))
	assert.NotEqual(t, id, NewTempID(), "temp ids must be unique")
	assert.False(t, IsTempID("a3bb189e-8bf9-3888-9912-ace4e6543002"))
}
