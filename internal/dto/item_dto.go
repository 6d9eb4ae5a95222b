// Package dto holds the typed request shapes exchanged between the form
// boundary, the mutation executor and the remote store. Patches use pointer
// fields (nil = leave untouched) plus explicit Clear flags for nullable
// columns, so "absent" and "set to null" stay distinguishable.
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pantryos/internal/model"
)

// ItemFields is the full payload for creating an inventory item. The form
// controller guarantees every field has already been validated.
type ItemFields struct {
	Name             string
	Emoji            string
	Category         model.ItemCategory
	SupplierCategory *model.SupplierCategory
	BaseUnit         string
	PackUnit         *string
	PackSize         *decimal.Decimal
	SupplierID       *string
	Active           bool
	Notes            *string
}

// Optimistic builds the locally-visible entity for a create before the store
// has confirmed anything, applying the same trims and defaults the
// normalizer would.
func (f ItemFields) Optimistic(orgID, tempID string) model.InventoryItem {
	now := time.Now().UTC()
	category := f.Category
	if !category.Valid() {
		category = model.CategoryDry
	}

	return model.InventoryItem{
		ID:               tempID,
		OrgID:            orgID,
		Name:             trimOr(f.Name, "Untitled item"),
		Emoji:            trimOr(f.Emoji, "📦"),
		Category:         category,
		SupplierCategory: validSupplierCategory(f.SupplierCategory),
		BaseUnit:         trimOr(f.BaseUnit, "unit"),
		PackUnit:         trimPtr(f.PackUnit),
		PackSize:         f.PackSize,
		SupplierID:       trimPtr(f.SupplierID),
		Active:           f.Active,
		Notes:            trimPtr(f.Notes),
		CreatedAt:        &now,
		UpdatedAt:        &now,
	}
}

// ItemPatch is a partial update for one or many items.
type ItemPatch struct {
	Name     *string
	Emoji    *string
	Category *model.ItemCategory

	SupplierCategory      *model.SupplierCategory
	ClearSupplierCategory bool

	BaseUnit *string

	PackUnit      *string
	ClearPackUnit bool

	PackSize      *decimal.Decimal
	ClearPackSize bool

	SupplierID      *string
	ClearSupplierID bool

	Notes      *string
	ClearNotes bool

	Active *bool
}

// ApplyTo merges the patch into a cached entity for the optimistic phase.
// Set-but-blank strings keep the prior value for required fields and clear
// optional ones, mirroring the normalizer's defaults.
func (p ItemPatch) ApplyTo(item model.InventoryItem) model.InventoryItem {
	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			item.Name = name
		}
	}
	if p.Emoji != nil {
		if emoji := strings.TrimSpace(*p.Emoji); emoji != "" {
			item.Emoji = emoji
		}
	}
	if p.Category != nil && p.Category.Valid() {
		item.Category = *p.Category
	}
	switch {
	case p.ClearSupplierCategory:
		item.SupplierCategory = nil
	case p.SupplierCategory != nil:
		item.SupplierCategory = validSupplierCategory(p.SupplierCategory)
	}
	if p.BaseUnit != nil {
		if unit := strings.TrimSpace(*p.BaseUnit); unit != "" {
			item.BaseUnit = unit
		}
	}
	switch {
	case p.ClearPackUnit:
		item.PackUnit = nil
	case p.PackUnit != nil:
		item.PackUnit = trimPtr(p.PackUnit)
	}
	switch {
	case p.ClearPackSize:
		item.PackSize = nil
	case p.PackSize != nil:
		item.PackSize = p.PackSize
	}
	switch {
	case p.ClearSupplierID:
		item.SupplierID = nil
	case p.SupplierID != nil:
		item.SupplierID = trimPtr(p.SupplierID)
	}
	switch {
	case p.ClearNotes:
		item.Notes = nil
	case p.Notes != nil:
		item.Notes = trimPtr(p.Notes)
	}
	if p.Active != nil {
		item.Active = *p.Active
	}

	now := time.Now().UTC()
	item.UpdatedAt = &now
	return item
}

// ItemFilter is the compound table filter state. Every predicate is ANDed.
type ItemFilter struct {
	// Search is a case-insensitive substring match on the item name.
	Search string
	// Categories is a multi-select; empty means no category filter.
	Categories []model.ItemCategory
	// SupplierCategory is a single select; "all" (or empty) disables it.
	SupplierCategory string
	// Status is "active" or "inactive"; exactly one is always in effect,
	// defaulting to active.
	Status string
}

const SupplierCategoryAll = "all"

func trimOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	if v := strings.TrimSpace(*value); v != "" {
		return &v
	}
	return nil
}

func validSupplierCategory(c *model.SupplierCategory) *model.SupplierCategory {
	if c == nil || !c.Valid() {
		return nil
	}
	return c
}
