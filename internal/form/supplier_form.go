package form

import (
	"strings"

	"pantryos/internal/dto"
	"pantryos/internal/model"
)

// SupplierForm carries the raw sheet input for creating or editing a
// supplier.
type SupplierForm struct {
	Name     string `validate:"required"`
	Category string `validate:"required,suppliercategory"`
	Phone    string `validate:"omitempty,loosephone"`
	Email    string `validate:"omitempty,looseemail"`
	Notes    string `validate:"max=1200"`
	Active   bool
}

var supplierMessages = map[string]fieldMessage{
	"Name":     {"name", "Name is required"},
	"Category": {"category", "Select a valid supplier category"},
	"Phone":    {"phone", "Phone number looks invalid"},
	"Email":    {"email", "Email address looks invalid"},
	"Notes":    {"notes", "Notes can be at most 1200 characters"},
}

func (f SupplierForm) trimmed() SupplierForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}

// Fields validates and shapes the form into a create request.
func (f SupplierForm) Fields() (dto.SupplierFields, error) {
	f = f.trimmed()
	if err := fieldErrors(validate.Struct(f), supplierMessages); err != nil {
		return dto.SupplierFields{}, err
	}

	category := model.SupplierCategory(f.Category)
	fields := dto.SupplierFields{
		Name:     f.Name,
		Category: &category,
		Active:   f.Active,
	}
	if f.Phone != "" {
		fields.Phone = &f.Phone
	}
	if f.Email != "" {
		fields.Email = &f.Email
	}
	if f.Notes != "" {
		fields.Notes = &f.Notes
	}
	return fields, nil
}

// Patch validates and shapes the form into a full-replace update.
func (f SupplierForm) Patch() (dto.SupplierPatch, error) {
	fields, err := f.Fields()
	if err != nil {
		return dto.SupplierPatch{}, err
	}

	return dto.SupplierPatch{
		Name:     &fields.Name,
		Category: fields.Category,

		Phone:      fields.Phone,
		ClearPhone: fields.Phone == nil,

		Email:      fields.Email,
		ClearEmail: fields.Email == nil,

		Notes:      fields.Notes,
		ClearNotes: fields.Notes == nil,

		Active: &fields.Active,
	}, nil
}
