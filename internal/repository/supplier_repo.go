package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pantryos/internal/apperr"
	"pantryos/internal/dto"
	"pantryos/internal/model"
)

// SupplierRepository is the remote-data-store contract for suppliers.
// Delete re-validates the item linkage server-side and fails with
// apperr.LinkedItemsError while inventory items still reference the
// supplier — the executor's client-side pre-check is advisory only.
type SupplierRepository interface {
	Create(ctx context.Context, orgID string, fields dto.SupplierFields) (*model.SupplierRow, error)
	Update(ctx context.Context, orgID, id string, patch dto.SupplierPatch) (*model.SupplierRow, error)
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string) ([]model.SupplierRow, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, orgID string, fields dto.SupplierFields) (*model.SupplierRow, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	values := map[string]any{
		"id":         id,
		"org_id":     orgID,
		"name":       fields.Name,
		"phone":      fields.Phone,
		"email":      fields.Email,
		"notes":      fields.Notes,
		"active":     fields.Active,
		"created_at": now,
		"updated_at": now,
	}
	if fields.Category != nil {
		values["category"] = string(*fields.Category)
	}

	if err := r.db.WithContext(ctx).Model(&model.SupplierRow{}).Create(values).Error; err != nil {
		return nil, err
	}
	return r.find(ctx, orgID, id)
}

func (r *supplierRepo) Update(ctx context.Context, orgID, id string, patch dto.SupplierPatch) (*model.SupplierRow, error) {
	updates := supplierPatchUpdates(patch)
	result := r.db.WithContext(ctx).Model(&model.SupplierRow{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.find(ctx, orgID, id)
}

func (r *supplierRepo) Delete(ctx context.Context, orgID, id string) error {
	var linked int64
	err := r.db.WithContext(ctx).Model(&model.ItemRow{}).
		Where("org_id = ? AND supplier_id = ?", orgID, id).
		Count(&linked).Error
	if err != nil {
		return err
	}
	if linked > 0 {
		return &apperr.LinkedItemsError{Count: int(linked)}
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		Delete(&model.SupplierRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *supplierRepo) List(ctx context.Context, orgID string) ([]model.SupplierRow, error) {
	var rows []model.SupplierRow
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *supplierRepo) find(ctx context.Context, orgID, id string) (*model.SupplierRow, error) {
	var row model.SupplierRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func supplierPatchUpdates(patch dto.SupplierPatch) map[string]any {
	updates := map[string]any{"updated_at": time.Now().UTC()}

	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	switch {
	case patch.ClearCategory:
		updates["category"] = nil
	case patch.Category != nil:
		updates["category"] = string(*patch.Category)
	}
	switch {
	case patch.ClearPhone:
		updates["phone"] = nil
	case patch.Phone != nil:
		updates["phone"] = *patch.Phone
	}
	switch {
	case patch.ClearEmail:
		updates["email"] = nil
	case patch.Email != nil:
		updates["email"] = *patch.Email
	}
	switch {
	case patch.ClearNotes:
		updates["notes"] = nil
	case patch.Notes != nil:
		updates["notes"] = *patch.Notes
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	return updates
}
