package model

import "time"

// Supplier is referenced by InventoryItem.SupplierID as a weak key: there is
// no back-pointer collection, the linkage is rebuilt on demand by the view
// layer.
type Supplier struct {
	ID        string
	OrgID     string
	Name      string
	Category  *SupplierCategory
	Phone     *string
	Email     *string
	Notes     *string
	Active    bool
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// SupplierRow is the raw store row for a supplier.
type SupplierRow struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	OrgID     string     `gorm:"column:org_id;type:uuid;index;not null"`
	Name      *string    `gorm:"column:name"`
	Category  *string    `gorm:"column:category"`
	Phone     *string    `gorm:"column:phone"`
	Email     *string    `gorm:"column:email"`
	Notes     *string    `gorm:"column:notes"`
	Active    *bool      `gorm:"column:active"`
	CreatedAt *time.Time `gorm:"column:created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at"`
}

func (SupplierRow) TableName() string { return "suppliers" }

// NormalizeSupplierRow converts a raw supplier row into a domain entity.
// Total; see NormalizeItemRow.
func NormalizeSupplierRow(row SupplierRow) Supplier {
	return Supplier{
		ID:        row.ID,
		OrgID:     row.OrgID,
		Name:      stringOrDefault(row.Name, "Unnamed supplier"),
		Category:  ToSupplierCategory(row.Category),
		Phone:     stringOrNil(row.Phone),
		Email:     stringOrNil(row.Email),
		Notes:     stringOrNil(row.Notes),
		Active:    row.Active == nil || *row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// NormalizeSupplierRows maps a listing result into entities, preserving order.
func NormalizeSupplierRows(rows []SupplierRow) []Supplier {
	suppliers := make([]Supplier, len(rows))
	for i, row := range rows {
		suppliers[i] = NormalizeSupplierRow(row)
	}
	return suppliers
}
