package form

import (
	"strings"

	"github.com/shopspring/decimal"

	"pantryos/internal/dto"
	"pantryos/internal/model"
)

// ItemForm carries the raw sheet input for creating or editing an inventory
// item. All fields arrive as strings, exactly as the form submits them.
type ItemForm struct {
	Name             string `validate:"required"`
	Emoji            string `validate:"max=16"`
	Category         string `validate:"required,itemcategory"`
	SupplierCategory string `validate:"omitempty,suppliercategory"`
	BaseUnit         string `validate:"required"`
	PackUnit         string
	PackSize         string `validate:"omitempty,packsize"`
	SupplierID       string `validate:"omitempty,recordid"`
	Notes            string `validate:"max=1200"`
	Active           bool
}

var itemMessages = map[string]fieldMessage{
	"Name":             {"name", "Name is required"},
	"Emoji":            {"emoji", "Keep emoji short"},
	"Category":         {"category", "Select a valid category"},
	"SupplierCategory": {"supplierCategory", "Select a valid supplier category"},
	"BaseUnit":         {"baseUnit", "Base unit is required"},
	"PackSize":         {"packSize", "Pack size must be greater than 0"},
	"SupplierID":       {"supplierId", "Invalid supplier selection"},
	"Notes":            {"notes", "Notes can be at most 1200 characters"},
}

func (f ItemForm) trimmed() ItemForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Emoji = strings.TrimSpace(f.Emoji)
	f.Category = strings.TrimSpace(f.Category)
	f.SupplierCategory = strings.TrimSpace(f.SupplierCategory)
	f.BaseUnit = strings.TrimSpace(f.BaseUnit)
	f.PackUnit = strings.TrimSpace(f.PackUnit)
	f.PackSize = strings.TrimSpace(f.PackSize)
	f.SupplierID = strings.TrimSpace(f.SupplierID)
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}

// Fields validates and shapes the form into a create request.
func (f ItemForm) Fields() (dto.ItemFields, error) {
	f = f.trimmed()
	if err := fieldErrors(validate.Struct(f), itemMessages); err != nil {
		return dto.ItemFields{}, err
	}

	fields := dto.ItemFields{
		Name:     f.Name,
		Emoji:    f.Emoji,
		Category: model.ItemCategory(f.Category),
		BaseUnit: f.BaseUnit,
		Active:   f.Active,
	}
	if f.SupplierCategory != "" {
		c := model.SupplierCategory(f.SupplierCategory)
		fields.SupplierCategory = &c
	}
	if f.PackUnit != "" {
		fields.PackUnit = &f.PackUnit
	}
	if f.PackSize != "" {
		size, _ := decimal.NewFromString(f.PackSize) // validated above
		fields.PackSize = &size
	}
	if f.SupplierID != "" {
		fields.SupplierID = &f.SupplierID
	}
	if f.Notes != "" {
		fields.Notes = &f.Notes
	}
	return fields, nil
}

// Patch validates and shapes the form into a full-replace update: the sheet
// always submits every field, so blank optional inputs clear their columns.
func (f ItemForm) Patch() (dto.ItemPatch, error) {
	fields, err := f.Fields()
	if err != nil {
		return dto.ItemPatch{}, err
	}

	return dto.ItemPatch{
		Name:     &fields.Name,
		Emoji:    &fields.Emoji,
		Category: &fields.Category,

		SupplierCategory:      fields.SupplierCategory,
		ClearSupplierCategory: fields.SupplierCategory == nil,

		BaseUnit: &fields.BaseUnit,

		PackUnit:      fields.PackUnit,
		ClearPackUnit: fields.PackUnit == nil,

		PackSize:      fields.PackSize,
		ClearPackSize: fields.PackSize == nil,

		SupplierID:      fields.SupplierID,
		ClearSupplierID: fields.SupplierID == nil,

		Notes:      fields.Notes,
		ClearNotes: fields.Notes == nil,

		Active: &fields.Active,
	}, nil
}
