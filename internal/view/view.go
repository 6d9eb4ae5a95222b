// Package view computes read-only table projections from cache snapshots
// plus UI filter state. Nothing in here mutates or persists anything; every
// call recomputes from scratch so derived values (supplier names, item
// counts) can never go stale relative to the cache.
package view

import (
	"sort"
	"strings"

	"pantryos/internal/dto"
	"pantryos/internal/model"
)

// ItemRow is an inventory item decorated for display.
type ItemRow struct {
	model.InventoryItem
	// SupplierName is a display-only join against the supplier snapshot;
	// nil when unassigned or when the reference dangles.
	SupplierName *string
}

// SupplierRow is a supplier decorated for display.
type SupplierRow struct {
	model.Supplier
	// ItemsCount is the live number of items pointing at this supplier,
	// recomputed on every call — never stored denormalized.
	ItemsCount int
}

// ItemRows joins, filters and orders the item snapshot. All filter
// predicates are ANDed; see dto.ItemFilter for the semantics of each.
// Ordering is deterministic (case-insensitive name, then id).
func ItemRows(items []model.InventoryItem, suppliers []model.Supplier, filter dto.ItemFilter) []ItemRow {
	suppliersByID := make(map[string]model.Supplier, len(suppliers))
	for _, supplier := range suppliers {
		suppliersByID[supplier.ID] = supplier
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	categories := make(map[model.ItemCategory]struct{}, len(filter.Categories))
	for _, c := range filter.Categories {
		categories[c] = struct{}{}
	}
	wantInactive := filter.Status == "inactive"

	rows := make([]ItemRow, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[item.Category]; !ok {
				continue
			}
		}
		if filter.SupplierCategory != "" && filter.SupplierCategory != dto.SupplierCategoryAll {
			if item.SupplierCategory == nil || string(*item.SupplierCategory) != filter.SupplierCategory {
				continue
			}
		}
		if item.Active == wantInactive {
			continue
		}

		row := ItemRow{InventoryItem: item}
		if item.SupplierID != nil {
			if supplier, ok := suppliersByID[*item.SupplierID]; ok {
				name := supplier.Name
				row.SupplierName = &name
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		left, right := strings.ToLower(rows[i].Name), strings.ToLower(rows[j].Name)
		if left != right {
			return left < right
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

// SupplierRows decorates the supplier snapshot with live item counts,
// ordered by name.
func SupplierRows(suppliers []model.Supplier, items []model.InventoryItem) []SupplierRow {
	countBySupplier := make(map[string]int)
	for _, item := range items {
		if item.SupplierID != nil {
			countBySupplier[*item.SupplierID]++
		}
	}

	rows := make([]SupplierRow, 0, len(suppliers))
	for _, supplier := range suppliers {
		rows = append(rows, SupplierRow{
			Supplier:   supplier,
			ItemsCount: countBySupplier[supplier.ID],
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		left, right := strings.ToLower(rows[i].Name), strings.ToLower(rows[j].Name)
		if left != right {
			return left < right
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}
