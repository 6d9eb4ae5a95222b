package dto

import (
	"strings"
	"time"

	"pantryos/internal/model"
)

// SupplierFields is the full payload for creating a supplier.
type SupplierFields struct {
	Name     string
	Category *model.SupplierCategory
	Phone    *string
	Email    *string
	Notes    *string
	Active   bool
}

// Optimistic builds the locally-visible supplier for a create.
func (f SupplierFields) Optimistic(orgID, tempID string) model.Supplier {
	now := time.Now().UTC()
	return model.Supplier{
		ID:        tempID,
		OrgID:     orgID,
		Name:      trimOr(f.Name, "Unnamed supplier"),
		Category:  validSupplierCategory(f.Category),
		Phone:     trimPtr(f.Phone),
		Email:     trimPtr(f.Email),
		Notes:     trimPtr(f.Notes),
		Active:    f.Active,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
}

// SupplierPatch is a partial update for a supplier.
type SupplierPatch struct {
	Name *string

	Category      *model.SupplierCategory
	ClearCategory bool

	Phone      *string
	ClearPhone bool

	Email      *string
	ClearEmail bool

	Notes      *string
	ClearNotes bool

	Active *bool
}

// ApplyTo merges the patch into a cached supplier for the optimistic phase.
func (p SupplierPatch) ApplyTo(supplier model.Supplier) model.Supplier {
	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			supplier.Name = name
		}
	}
	switch {
	case p.ClearCategory:
		supplier.Category = nil
	case p.Category != nil:
		supplier.Category = validSupplierCategory(p.Category)
	}
	switch {
	case p.ClearPhone:
		supplier.Phone = nil
	case p.Phone != nil:
		supplier.Phone = trimPtr(p.Phone)
	}
	switch {
	case p.ClearEmail:
		supplier.Email = nil
	case p.Email != nil:
		supplier.Email = trimPtr(p.Email)
	}
	switch {
	case p.ClearNotes:
		supplier.Notes = nil
	case p.Notes != nil:
		supplier.Notes = trimPtr(p.Notes)
	}
	if p.Active != nil {
		supplier.Active = *p.Active
	}

	now := time.Now().UTC()
	supplier.UpdatedAt = &now
	return supplier
}
