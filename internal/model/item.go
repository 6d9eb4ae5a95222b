package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant-scoped cache key kinds. They double as the redis refetch-job kinds,
// so each (kind, org) pair names exactly one snapshot.
const (
	KindInventoryItems = "inventory-items"
	KindSuppliers      = "suppliers"
)

// TempIDPrefix marks entities created optimistically before the store has
// assigned a real id. A temp id must be replaced wholesale on reconcile —
// never merged into.
const TempIDPrefix = "temp-"

// NewTempID returns a correlation token for an optimistic create.
func NewTempID() string { return TempIDPrefix + uuid.NewString() }

// IsTempID reports whether id was locally generated and not yet confirmed.
func IsTempID(id string) bool { return strings.HasPrefix(id, TempIDPrefix) }

// InventoryItem is the strictly-typed domain entity. Every instance in the
// cache has passed through NormalizeItemRow (or an optimistic builder that
// applies the same coercions); category fields are always in their closed
// sets and defaults are filled in.
type InventoryItem struct {
	ID               string
	OrgID            string
	Name             string
	Emoji            string
	Category         ItemCategory
	SupplierCategory *SupplierCategory
	BaseUnit         string
	PackUnit         *string
	PackSize         *decimal.Decimal
	SupplierID       *string
	Active           bool
	Notes            *string
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}

// ItemRow is the loosely-typed row as the remote store returns it: nullable
// everything, free-text categories, pack_size of whatever the driver felt
// like. It never leaves the repository/normalizer boundary.
type ItemRow struct {
	ID               string     `gorm:"type:uuid;primaryKey"`
	OrgID            string     `gorm:"column:org_id;type:uuid;index;not null"`
	Name             *string    `gorm:"column:name"`
	Emoji            *string    `gorm:"column:emoji"`
	ItemCategory     *string    `gorm:"column:item_category"`
	LegacyCategory   *string    `gorm:"column:category"`
	SupplierCategory *string    `gorm:"column:supplier_category"`
	BaseUnit         *string    `gorm:"column:base_unit"`
	PackUnit         *string    `gorm:"column:pack_unit"`
	PackSize         any        `gorm:"column:pack_size;type:numeric"`
	SupplierID       *string    `gorm:"column:supplier_id;type:uuid;index"`
	Active           *bool      `gorm:"column:active"`
	Notes            *string    `gorm:"column:notes"`
	CreatedAt        *time.Time `gorm:"column:created_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at"`
}

func (ItemRow) TableName() string { return "inventory_items" }

// NormalizeItemRow converts a raw store row into a fully-populated entity.
// Total by contract: malformed data degrades to documented defaults instead
// of failing. item_category wins over the legacy category column.
func NormalizeItemRow(row ItemRow) InventoryItem {
	rawCategory := row.ItemCategory
	if safeString(rawCategory) == "" {
		rawCategory = row.LegacyCategory
	}

	return InventoryItem{
		ID:               row.ID,
		OrgID:            row.OrgID,
		Name:             stringOrDefault(row.Name, "Untitled item"),
		Emoji:            stringOrDefault(row.Emoji, "📦"),
		Category:         ToItemCategory(rawCategory),
		SupplierCategory: ToSupplierCategory(row.SupplierCategory),
		BaseUnit:         stringOrDefault(row.BaseUnit, "unit"),
		PackUnit:         stringOrNil(row.PackUnit),
		PackSize:         ToNumber(row.PackSize),
		SupplierID:       stringOrNil(row.SupplierID),
		Active:           row.Active == nil || *row.Active,
		Notes:            stringOrNil(row.Notes),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

// NormalizeItemRows maps a listing result into entities, preserving order.
func NormalizeItemRows(rows []ItemRow) []InventoryItem {
	items := make([]InventoryItem, len(rows))
	for i, row := range rows {
		items[i] = NormalizeItemRow(row)
	}
	return items
}
