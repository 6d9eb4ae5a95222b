package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pantryos/internal/dto"
	"pantryos/internal/model"
)

// ItemRepository is the remote-data-store contract for inventory items.
// Every operation is scoped by org id; update and delete are additionally
// keyed by record id with the org scope re-applied as defense-in-depth
// against cross-tenant writes. The executor depends on this interface, not
// on the GORM implementation, so tests swap in stubs.
type ItemRepository interface {
	Create(ctx context.Context, orgID string, fields dto.ItemFields) (*model.ItemRow, error)
	Update(ctx context.Context, orgID, id string, patch dto.ItemPatch) (*model.ItemRow, error)
	Delete(ctx context.Context, orgID, id string) error
	BulkUpdate(ctx context.Context, orgID string, ids []string, patch dto.ItemPatch) ([]model.ItemRow, error)
	List(ctx context.Context, orgID string) ([]model.ItemRow, error)
	ListOrgs(ctx context.Context) ([]string, error)
	CountBySupplier(ctx context.Context, orgID, supplierID string) (int64, error)
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, orgID string, fields dto.ItemFields) (*model.ItemRow, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	values := map[string]any{
		"id":            id,
		"org_id":        orgID,
		"name":          fields.Name,
		"emoji":         fields.Emoji,
		"item_category": string(fields.Category),
		"base_unit":     fields.BaseUnit,
		"pack_unit":     fields.PackUnit,
		"supplier_id":   fields.SupplierID,
		"active":        fields.Active,
		"notes":         fields.Notes,
		"created_at":    now,
		"updated_at":    now,
	}
	if fields.SupplierCategory != nil {
		values["supplier_category"] = string(*fields.SupplierCategory)
	}
	if fields.PackSize != nil {
		values["pack_size"] = *fields.PackSize
	}

	if err := r.db.WithContext(ctx).Model(&model.ItemRow{}).Create(values).Error; err != nil {
		return nil, err
	}
	return r.find(ctx, orgID, id)
}

func (r *itemRepo) Update(ctx context.Context, orgID, id string, patch dto.ItemPatch) (*model.ItemRow, error) {
	updates := itemPatchUpdates(patch)
	result := r.db.WithContext(ctx).Model(&model.ItemRow{}).
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

func (r *itemRepo) Delete(ctx context.Context, orgID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		Delete(&model.ItemRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) BulkUpdate(ctx context.Context, orgID string, ids []string, patch dto.ItemPatch) ([]model.ItemRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	updates := itemPatchUpdates(patch)
	err := r.db.WithContext(ctx).Model(&model.ItemRow{}).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}

	var rows []model.ItemRow
	err = r.db.WithContext(ctx).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&rows).Error
	return rows, err
}

func (r *itemRepo) List(ctx context.Context, orgID string) ([]model.ItemRow, error) {
	var rows []model.ItemRow
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *itemRepo) ListOrgs(ctx context.Context) ([]string, error) {
	var orgs []string
	err := r.db.WithContext(ctx).Model(&model.ItemRow{}).
		Distinct("org_id").
		Pluck("org_id", &orgs).Error
	return orgs, err
}

func (r *itemRepo) CountBySupplier(ctx context.Context, orgID, supplierID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ItemRow{}).
		Where("org_id = ? AND supplier_id = ?", orgID, supplierID).
		Count(&count).Error
	return count, err
}

func (r *itemRepo) find(ctx context.Context, orgID, id string) (*model.ItemRow, error) {
	var row model.ItemRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// itemPatchUpdates maps a patch onto column assignments. Column names live
// here, next to the only code that writes them.
func itemPatchUpdates(patch dto.ItemPatch) map[string]any {
	updates := map[string]any{"updated_at": time.Now().UTC()}

	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Emoji != nil {
		updates["emoji"] = *patch.Emoji
	}
	if patch.Category != nil {
		updates["item_category"] = string(*patch.Category)
	}
	switch {
	case patch.ClearSupplierCategory:
		updates["supplier_category"] = nil
	case patch.SupplierCategory != nil:
		updates["supplier_category"] = string(*patch.SupplierCategory)
	}
	if patch.BaseUnit != nil {
		updates["base_unit"] = *patch.BaseUnit
	}
	switch {
	case patch.ClearPackUnit:
		updates["pack_unit"] = nil
	case patch.PackUnit != nil:
		updates["pack_unit"] = *patch.PackUnit
	}
	switch {
	case patch.ClearPackSize:
		updates["pack_size"] = nil
	case patch.PackSize != nil:
		updates["pack_size"] = *patch.PackSize
	}
	switch {
	case patch.ClearSupplierID:
		updates["supplier_id"] = nil
	case patch.SupplierID != nil:
		updates["supplier_id"] = *patch.SupplierID
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
