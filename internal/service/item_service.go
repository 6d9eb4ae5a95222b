package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"pantryos/internal/cache"
	"pantryos/internal/dto"
	"pantryos/internal/model"
	"pantryos/internal/notify"
	"pantryos/internal/repository"
)

// ItemService is the mutation executor for inventory items. Each operation
// runs the four-phase optimistic protocol: begin (cancel stale refetches),
// optimistic apply, remote call, reconcile-or-rollback — and always settles
// with a background refetch of the affected key.
type ItemService interface {
	Create(ctx context.Context, orgID string, fields dto.ItemFields) (*model.InventoryItem, error)
	Update(ctx context.Context, orgID, id string, patch dto.ItemPatch) (*model.InventoryItem, error)
	Delete(ctx context.Context, orgID, id string) error
	BulkUpdate(ctx context.Context, orgID string, ids []string, patch dto.ItemPatch, successMsg string) ([]model.InventoryItem, error)
	Refresh(ctx context.Context, orgID string) error
}

type itemService struct {
	repo    repository.ItemRepository
	cache   *cache.Store[model.InventoryItem]
	notify  notify.Notifier
	refetch RefetchScheduler
	timeout time.Duration
}

func NewItemService(
	repo repository.ItemRepository,
	store *cache.Store[model.InventoryItem],
	notifier notify.Notifier,
	refetch RefetchScheduler,
	timeout time.Duration,
) ItemService {
	return &itemService{repo: repo, cache: store, notify: notifier, refetch: refetch, timeout: timeout}
}

func (s *itemService) Create(ctx context.Context, orgID string, fields dto.ItemFields) (*model.InventoryItem, error) {
	key := itemKey(orgID)
	tempID := model.NewTempID()
	optimistic := fields.Optimistic(orgID, tempID)

	m := begin(s.cache, key, tempID)
	defer s.settle(ctx, orgID)

	m.apply(func(items []model.InventoryItem) []model.InventoryItem {
		next := make([]model.InventoryItem, 0, len(items)+1)
		next = append(next, optimistic)
		return append(next, items...)
	})

	row, err := s.callCreate(ctx, orgID, fields)
	if err != nil {
		m.rollback()
		s.notify.Error("Could not create inventory item.")
		return nil, fmt.Errorf("create inventory item: %w", err)
	}

	created := model.NormalizeItemRow(*row)
	// Replace by the temp-id correlation token, not by position: concurrent
	// creates must not clobber each other.
	m.reconcile(replaceByID(tempID, created))
	return &created, nil
}

func (s *itemService) Update(ctx context.Context, orgID, id string, patch dto.ItemPatch) (*model.InventoryItem, error) {
	key := itemKey(orgID)

	m := begin(s.cache, key, id)
	defer s.settle(ctx, orgID)

	m.apply(func(items []model.InventoryItem) []model.InventoryItem {
		next := make([]model.InventoryItem, len(items))
		for i, item := range items {
			if item.ID == id {
				next[i] = patch.ApplyTo(item)
			} else {
				next[i] = item
			}
		}
		return next
	})

	row, err := s.callUpdate(ctx, orgID, id, patch)
	if err != nil {
		m.rollback()
		s.notify.Error("Could not update item.")
		return nil, fmt.Errorf("update inventory item %s: %w", id, err)
	}

	updated := model.NormalizeItemRow(*row)
	m.reconcile(replaceByID(id, updated))
	return &updated, nil
}

func (s *itemService) Delete(ctx context.Context, orgID, id string) error {
	key := itemKey(orgID)

	m := begin(s.cache, key, id)
	defer s.settle(ctx, orgID)

	m.apply(func(items []model.InventoryItem) []model.InventoryItem {
		next := make([]model.InventoryItem, 0, len(items))
		for _, item := range items {
			if item.ID != id {
				next = append(next, item)
			}
		}
		return next
	})

	if err := s.callDelete(ctx, orgID, id); err != nil {
		m.rollback()
		s.notify.Error("Could not delete item.")
		return fmt.Errorf("delete inventory item %s: %w", id, err)
	}

	m.phase = phaseReconciled
	s.notify.Success("Item deleted.")
	return nil
}

func (s *itemService) BulkUpdate(ctx context.Context, orgID string, ids []string, patch dto.ItemPatch, successMsg string) ([]model.InventoryItem, error) {
	key := itemKey(orgID)
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	m := begin(s.cache, key, ids...)
	defer s.settle(ctx, orgID)

	// Keep the per-id prior state around: a row the server does not echo
	// back is treated as individually failed and rolled back on its own.
	priorByID := make(map[string]model.InventoryItem, len(ids))
	m.apply(func(items []model.InventoryItem) []model.InventoryItem {
		next := make([]model.InventoryItem, len(items))
		for i, item := range items {
			if _, ok := idSet[item.ID]; ok {
				priorByID[item.ID] = item
				next[i] = patch.ApplyTo(item)
			} else {
				next[i] = item
			}
		}
		return next
	})

	rows, err := s.callBulkUpdate(ctx, orgID, ids, patch)
	if err != nil {
		m.rollback()
		s.notify.Error("Bulk update failed.")
		return nil, fmt.Errorf("bulk update inventory items: %w", err)
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
				// Server truth field-for-field; the optimistic guess may
				// have missed computed columns.
				next[i] = confirmed
				continue
			}
			if prior, ok := priorByID[item.ID]; ok {
				// Requested but not echoed back — partial failure for this
				// id; restore its pre-optimistic state.
				next[i] = prior
				continue
			}
			next[i] = item
		}
		return next
	})

	if missing := len(ids) - len(updated); missing > 0 {
		log.Warn().
			Str("org_id", orgID).
			Int("requested", len(ids)).
			Int("confirmed", len(updated)).
			Msg("bulk update: response cardinality mismatch, missing ids rolled back")
	}
	if successMsg != "" {
		s.notify.Success(successMsg)
	}
	return updated, nil
}

// Refresh forces a fresh read from the remote store. The generation captured
// before the list guards against a mutation that began mid-flight: if one
// did, the stale result is discarded and the mutation's own settle refetch
// takes over.
func (s *itemService) Refresh(ctx context.Context, orgID string) error {
	key := itemKey(orgID)
	gen := s.cache.Generation(key)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.List(ctx, orgID)
	if err != nil {
		return fmt.Errorf("list inventory items: %w", err)
	}

	if !s.cache.SetIfCurrent(key, gen, model.NormalizeItemRows(rows)) {
		log.Debug().Str("org_id", orgID).Msg("inventory refetch superseded by a newer mutation, discarded")
	}
	return nil
}

func (s *itemService) callCreate(ctx context.Context, orgID string, fields dto.ItemFields) (*model.ItemRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Create(ctx, orgID, fields)
}

func (s *itemService) callUpdate(ctx context.Context, orgID, id string, patch dto.ItemPatch) (*model.ItemRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Update(ctx, orgID, id, patch)
}

func (s *itemService) callDelete(ctx context.Context, orgID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Delete(ctx, orgID, id)
}

func (s *itemService) callBulkUpdate(ctx context.Context, orgID string, ids []string, patch dto.ItemPatch) ([]model.ItemRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.BulkUpdate(ctx, orgID, ids, patch)
}

func (s *itemService) settle(ctx context.Context, orgID string) {
	s.refetch.ScheduleRefetch(ctx, model.KindInventoryItems, orgID)
}

func replaceByID(id string, replacement model.InventoryItem) func([]model.InventoryItem) []model.InventoryItem {
	return func(items []model.InventoryItem) []model.InventoryItem {
		next := make([]model.InventoryItem, len(items))
		for i, item := range items {
			if item.ID == id {
				next[i] = replacement
			} else {
				next[i] = item
			}
		}
		return next
	}
}
