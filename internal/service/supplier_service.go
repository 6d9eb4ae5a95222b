package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"pantryos/internal/apperr"
	"pantryos/internal/cache"
	"pantryos/internal/dto"
	"pantryos/internal/model"
	"pantryos/internal/notify"
	"pantryos/internal/repository"
)

// SupplierService is the mutation executor for suppliers. Same four-phase
// protocol as items, plus the referential-integrity rule: a supplier cannot
// be deleted while inventory items reference it. The rule is checked twice —
// against the local item cache before anything happens, and by the remote
// store, whose LinkedItemsError is surfaced as a distinct warning.
type SupplierService interface {
	Create(ctx context.Context, orgID string, fields dto.SupplierFields) (*model.Supplier, error)
	Update(ctx context.Context, orgID, id string, patch dto.SupplierPatch) (*model.Supplier, error)
	Delete(ctx context.Context, orgID, id string) error
	AssignItems(ctx context.Context, orgID string, supplierID *string, itemIDs []string) error
	Refresh(ctx context.Context, orgID string) error
}

type supplierService struct {
	repo      repository.SupplierRepository
	items     repository.ItemRepository
	cache     *cache.Store[model.Supplier]
	itemCache *cache.Store[model.InventoryItem]
	notify    notify.Notifier
	refetch   RefetchScheduler
	timeout   time.Duration
}

func NewSupplierService(
	repo repository.SupplierRepository,
	items repository.ItemRepository,
	store *cache.Store[model.Supplier],
	itemStore *cache.Store[model.InventoryItem],
	notifier notify.Notifier,
	refetch RefetchScheduler,
	timeout time.Duration,
) SupplierService {
	return &supplierService{
		repo:      repo,
		items:     items,
		cache:     store,
		itemCache: itemStore,
		notify:    notifier,
		refetch:   refetch,
		timeout:   timeout,
	}
}

func (s *supplierService) Create(ctx context.Context, orgID string, fields dto.SupplierFields) (*model.Supplier, error) {
	key := supplierKey(orgID)
	tempID := model.NewTempID()
	optimistic := fields.Optimistic(orgID, tempID)

	m := begin(s.cache, key, tempID)
	defer s.settle(ctx, orgID)

	m.apply(func(suppliers []model.Supplier) []model.Supplier {
		next := make([]model.Supplier, 0, len(suppliers)+1)
		next = append(next, optimistic)
		return append(next, suppliers...)
	})

	row, err := s.callCreate(ctx, orgID, fields)
	if err != nil {
		m.rollback()
		s.notify.Error("Could not create supplier.")
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	created := model.NormalizeSupplierRow(*row)
	m.reconcile(replaceSupplierByID(tempID, created))
	s.notify.Success("Supplier created.")
	return &created, nil
}

func (s *supplierService) Update(ctx context.Context, orgID, id string, patch dto.SupplierPatch) (*model.Supplier, error) {
	key := supplierKey(orgID)

	m := begin(s.cache, key, id)
	defer s.settle(ctx, orgID)

	m.apply(func(suppliers []model.Supplier) []model.Supplier {
		next := make([]model.Supplier, len(suppliers))
		for i, supplier := range suppliers {
			if supplier.ID == id {
				next[i] = patch.ApplyTo(supplier)
			} else {
				next[i] = supplier
			}
		}
		return next
	})

	row, err := s.callUpdate(ctx, orgID, id, patch)
	if err != nil {
		m.rollback()
		s.notify.Error("Could not update supplier.")
		return nil, fmt.Errorf("update supplier %s: %w", id, err)
	}

	updated := model.NormalizeSupplierRow(*row)
	m.reconcile(replaceSupplierByID(id, updated))
	s.notify.Success("Supplier updated.")
	return &updated, nil
}

func (s *supplierService) Delete(ctx context.Context, orgID, id string) error {
	// Advisory client-side check against the item cache: refuse before any
	// optimistic state changes. The store re-validates authoritatively.
	if linked := s.linkedItemCount(orgID, id); linked > 0 {
		err := &apperr.LinkedItemsError{Count: linked}
		s.notify.Warning(linkedItemsMessage(linked))
		return err
	}

	key := supplierKey(orgID)
	m := begin(s.cache, key, id)
	defer func() {
		s.settle(ctx, orgID)
		// Item rows may have been the reason a server-side check failed;
		// refresh them too so the count the user sees is honest.
		s.refetch.ScheduleRefetch(ctx, model.KindInventoryItems, orgID)
	}()

	m.apply(func(suppliers []model.Supplier) []model.Supplier {
		next := make([]model.Supplier, 0, len(suppliers))
		for _, supplier := range suppliers {
			if supplier.ID != id {
				next = append(next, supplier)
			}
		}
		return next
	})

	if err := s.callDelete(ctx, orgID, id); err != nil {
		m.rollback()
		if linked, ok := apperr.AsLinkedItems(err); ok {
			s.notify.Warning(linkedItemsMessage(linked.Count))
		} else {
			s.notify.Error("Could not delete supplier.")
		}
		return fmt.Errorf("delete supplier %s: %w", id, err)
	}

	m.phase = phaseReconciled
	s.notify.Success("Supplier deleted.")
	return nil
}

// AssignItems points a set of inventory items at a supplier (or clears the
// assignment when supplierID is nil). It mutates the item cache: the
// supplier linkage lives on the item side only.
func (s *supplierService) AssignItems(ctx context.Context, orgID string, supplierID *string, itemIDs []string) error {
	key := itemKey(orgID)
	idSet := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		idSet[id] = struct{}{}
	}

	patch := dto.ItemPatch{SupplierID: supplierID, ClearSupplierID: supplierID == nil}

	m := begin(s.itemCache, key, itemIDs...)
	defer func() {
		s.refetch.ScheduleRefetch(ctx, model.KindInventoryItems, orgID)
		s.settle(ctx, orgID)
	}()

	m.apply(func(items []model.InventoryItem) []model.InventoryItem {
		next := make([]model.InventoryItem, len(items))
		for i, item := range items {
			if _, ok := idSet[item.ID]; ok {
				next[i] = patch.ApplyTo(item)
			} else {
				next[i] = item
			}
		}
		return next
	})

	rows, err := s.callAssign(ctx, orgID, itemIDs, patch)
	if err != nil {
		m.rollback()
		s.notify.Error("Could not assign items to supplier.")
		return fmt.Errorf("assign items to supplier: %w", err)
	}

	updated := model.NormalizeItemRows(rows)
	updatesByID := make(map[string]model.InventoryItem, len(updated))
	for _, item := range updated {
		updatesByID[item.ID] = item
	}
	m.reconcile(func(items []model.InventoryItem) []model.InventoryItem {
		next := make([]model.InventoryItem, len(items))
		for i, item := range items {
			if confirmed, ok := updatesByID[item.ID]; ok {
				next[i] = confirmed
			} else {
				next[i] = item
			}
		}
		return next
	})

	if supplierID != nil {
		s.notify.Success(fmt.Sprintf("Assigned %d item%s to supplier.", len(itemIDs), plural(len(itemIDs))))
	} else {
		s.notify.Success(fmt.Sprintf("Cleared supplier for %d item%s.", len(itemIDs), plural(len(itemIDs))))
	}
	return nil
}

func (s *supplierService) Refresh(ctx context.Context, orgID string) error {
	key := supplierKey(orgID)
	gen := s.cache.Generation(key)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.List(ctx, orgID)
	if err != nil {
		return fmt.Errorf("list suppliers: %w", err)
	}

	if !s.cache.SetIfCurrent(key, gen, model.NormalizeSupplierRows(rows)) {
		log.Debug().Str("org_id", orgID).Msg("supplier refetch superseded by a newer mutation, discarded")
	}
	return nil
}

func (s *supplierService) linkedItemCount(orgID, supplierID string) int {
	count := 0
	for _, item := range s.itemCache.Get(itemKey(orgID)) {
		if item.SupplierID != nil && *item.SupplierID == supplierID {
			count++
		}
	}
	return count
}

func (s *supplierService) callCreate(ctx context.Context, orgID string, fields dto.SupplierFields) (*model.SupplierRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Create(ctx, orgID, fields)
}

func (s *supplierService) callUpdate(ctx context.Context, orgID, id string, patch dto.SupplierPatch) (*model.SupplierRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Update(ctx, orgID, id, patch)
}

func (s *supplierService) callDelete(ctx context.Context, orgID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Delete(ctx, orgID, id)
}

func (s *supplierService) callAssign(ctx context.Context, orgID string, itemIDs []string, patch dto.ItemPatch) ([]model.ItemRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.items.BulkUpdate(ctx, orgID, itemIDs, patch)
}

func (s *supplierService) settle(ctx context.Context, orgID string) {
	s.refetch.ScheduleRefetch(ctx, model.KindSuppliers, orgID)
}

func linkedItemsMessage(count int) string {
	return fmt.Sprintf("Cannot delete supplier while %d inventory item%s are linked.", count, plural(count))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func replaceSupplierByID(id string, replacement model.Supplier) func([]model.Supplier) []model.Supplier {
	return func(suppliers []model.Supplier) []model.Supplier {
		next := make([]model.Supplier, len(suppliers))
		for i, supplier := range suppliers {
			if supplier.ID == id {
				next[i] = replacement
			} else {
				next[i] = supplier
			}
		}
		return next
	}
}
