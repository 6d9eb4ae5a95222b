package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantryos/internal/cache"
	"pantryos/internal/dto"
	"pantryos/internal/model"
	"pantryos/internal/notify"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubScheduler struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubScheduler) ScheduleRefetch(_ context.Context, kind, orgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, kind+"/"+orgID)
}

func (s *stubScheduler) scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type stubItemRepo struct {
	createFn func(ctx context.Context, orgID string, fields dto.ItemFields) (*model.ItemRow, error)
	updateFn func(ctx context.Context, orgID, id string, patch dto.ItemPatch) (*model.ItemRow, error)
	deleteFn func(ctx context.Context, orgID, id string) error
	bulkFn   func(ctx context.Context, orgID string, ids []string, patch dto.ItemPatch) ([]model.ItemRow, error)
	listFn   func(ctx context.Context, orgID string) ([]model.ItemRow, error)
}

func (r *stubItemRepo) Create(ctx context.Context, orgID string, fields dto.ItemFields) (*model.ItemRow, error) {
	if r.createFn == nil {
		return nil, errors.New("unexpected Create call")
	}
	return r.createFn(ctx, orgID, fields)
}

func (r *stubItemRepo) Update(ctx context.Context, orgID, id string, patch dto.ItemPatch) (*model.ItemRow, error) {
	if r.updateFn == nil {
		return nil, errors.New("unexpected Update call")
	}
	return r.updateFn(ctx, orgID, id, patch)
}

func (r *stubItemRepo) Delete(ctx context.Context, orgID, id string) error {
	if r.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return r.deleteFn(ctx, orgID, id)
}

func (r *stubItemRepo) BulkUpdate(ctx context.Context, orgID string, ids []string, patch dto.ItemPatch) ([]model.ItemRow, error) {
	if r.bulkFn == nil {
		return nil, errors.New("unexpected BulkUpdate call")
	}
	return r.bulkFn(ctx, orgID, ids, patch)
}

func (r *stubItemRepo) List(ctx context.Context, orgID string) ([]model.ItemRow, error) {
	if r.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return r.listFn(ctx, orgID)
}

func (r *stubItemRepo) ListOrgs(context.Context) ([]string, error) { return nil, nil }

func (r *stubItemRepo) CountBySupplier(context.Context, string, string) (int64, error) {
	return 0, nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

const testOrg = "org1"

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func cachedItem(id, name string) model.InventoryItem {
	return model.InventoryItem{
		ID:       id,
		OrgID:    testOrg,
		Name:     name,
		Emoji:    "📦",
		Category: model.CategoryDry,
		BaseUnit: "unit",
		Active:   true,
	}
}

func itemRowFixture(id, name string) *model.ItemRow {
	return &model.ItemRow{
		ID:           id,
		OrgID:        testOrg,
		Name:         strPtr(name),
		Emoji:        strPtr("📦"),
		ItemCategory: strPtr("dry"),
		BaseUnit:     strPtr("unit"),
		Active:       boolPtr(true),
	}
}

type itemHarness struct {
	repo  *stubItemRepo
	store *cache.Store[model.InventoryItem]
	rec   *notify.Recorder
	sched *stubScheduler
	svc   ItemService
}

func newItemHarness(seed ...model.InventoryItem) *itemHarness {
	h := &itemHarness{
		repo:  &stubItemRepo{},
		store: cache.NewStore[model.InventoryItem](),
		rec:   &notify.Recorder{},
		sched: &stubScheduler{},
	}
	h.svc = NewItemService(h.repo, h.store, h.rec, h.sched, time.Second)
	if len(seed) > 0 {
		h.store.Set(itemKey(testOrg), seed)
	}
	return h
}

func (h *itemHarness) snapshot() []model.InventoryItem {
	return h.store.Get(itemKey(testOrg))
}

// captureWrites records every cache write that follows, in order.
func (h *itemHarness) captureWrites() *[][]model.InventoryItem {
	var writes [][]model.InventoryItem
	h.store.Subscribe(itemKey(testOrg), func(rows []model.InventoryItem) {
		writes = append(writes, rows)
	})
	return &writes
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestItemCreate_PendingRowVisibleDuringRemoteCall(t *testing.T) {
	h := newItemHarness(cachedItem("e1", "Existing"))

	entered := make(chan struct{})
	release := make(chan struct{})
	h.repo.createFn = func(context.Context, string, dto.ItemFields) (*model.ItemRow, error) {
		close(entered)
		<-release
		return itemRowFixture("r1", "Salmon fillet"), nil
	}

	type result struct {
		item *model.InventoryItem
		err  error
	}
	done := make(chan result, 1)
	go func() {
		item, err := h.svc.Create(context.Background(), testOrg, dto.ItemFields{Name: "Salmon fillet", Active: true})
		done <- result{item, err}
	}()

	<-entered
	// While the remote call is in flight the optimistic row is already
	// prepended, carrying a temp id.
	pending := h.snapshot()
	require.Len(t, pending, 2)
	assert.True(t, model.IsTempID(pending[0].ID))
	assert.Equal(t, "Salmon fillet", pending[0].Name)
	assert.Equal(t, "e1", pending[1].ID)

	close(release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "r1", res.item.ID)

	final := h.snapshot()
	require.Len(t, final, 2)
	assert.Equal(t, "r1", final[0].ID, "temp id replaced by the server-assigned id")
	for _, item := range final {
		assert.False(t, model.IsTempID(item.ID))
	}
	assert.Contains(t, h.sched.scheduled(), model.KindInventoryItems+"/"+testOrg)
}

func TestItemCreate_OptimisticRowAppliesDefaults(t *testing.T) {
	h := newItemHarness()
	writes := h.captureWrites()
	h.repo.createFn = func(context.Context, string, dto.ItemFields) (*model.ItemRow, error) {
		return itemRowFixture("r1", "Untitled item"), nil
	}

	_, err := h.svc.Create(context.Background(), testOrg, dto.ItemFields{Name: "   ", Category: "nonsense"})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(*writes), 1)
	optimistic := (*writes)[0][0]
	assert.Equal(t, "Untitled item", optimistic.Name)
	assert.Equal(t, "📦", optimistic.Emoji)
	assert.Equal(t, model.CategoryDry, optimistic.Category)
	assert.Equal(t, "unit", optimistic.BaseUnit)
}

func TestItemCreate_FailureRollsBackWholeSnapshot(t *testing.T) {
	seed := []model.InventoryItem{cachedItem("e1", "Existing A"), cachedItem("e2", "Existing B")}
	h := newItemHarness(seed...)
	h.repo.createFn = func(context.Context, string, dto.ItemFields) (*model.ItemRow, error) {
		return nil, errors.New("store unreachable")
	}

	_, err := h.svc.Create(context.Background(), testOrg, dto.ItemFields{Name: "Doomed"})
	require.Error(t, err)

	assert.Equal(t, seed, h.snapshot(), "rollback restores the exact pre-mutation snapshot")
	msgs := h.rec.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "error", msgs[0].Level)
	assert.Equal(t, "Could not create inventory item.", msgs[0].Text)
	assert.Contains(t, h.sched.scheduled(), model.KindInventoryItems+"/"+testOrg, "settle refetch runs even on failure")
}

func TestItemCreate_ConcurrentCreatesResolveByTempID(t *testing.T) {
	h := newItemHarness()

	gates := map[string]chan struct{}{
		"First":  make(chan struct{}),
		"Second": make(chan struct{}),
	}
	rows := map[string]*model.ItemRow{
		"First":  itemRowFixture("r-first", "First"),
		"Second": itemRowFixture("r-second", "Second"),
	}
	h.repo.createFn = func(_ context.Context, _ string, fields dto.ItemFields) (*model.ItemRow, error) {
		<-gates[fields.Name]
		return rows[fields.Name], nil
	}

	var wg sync.WaitGroup
	for _, name := range []string{"First", "Second"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := h.svc.Create(context.Background(), testOrg, dto.ItemFields{Name: name, Active: true})
			assert.NoError(t, err)
		}(name)
	}

	// Both optimistic rows must land before either is confirmed.
	require.Eventually(t, func() bool { return len(h.snapshot()) == 2 }, time.Second, time.Millisecond)

	// Confirm out of submission order: each reconcile targets its own temp
	// id so the other pending row is untouched.
	close(gates["Second"])
	require.Eventually(t, func() bool {
		for _, item := range h.snapshot() {
			if item.ID == "r-second" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	close(gates["First"])
	wg.Wait()

	ids := make(map[string]bool, 2)
	for _, item := range h.snapshot() {
		assert.False(t, model.IsTempID(item.ID))
		ids[item.ID] = true
	}
	assert.True(t, ids["r-first"])
	assert.True(t, ids["r-second"])
}

// ── Update ────────────────────────────────────────────────────────────────────

func TestItemUpdate_OptimisticPatchThenServerTruth(t *testing.T) {
	h := newItemHarness(cachedItem("i1", "Cod"), cachedItem("i2", "Rice"))
	writes := h.captureWrites()

	// The server echo differs from the optimistic guess: reconcile must
	// install the echo field-for-field.
	h.repo.updateFn = func(_ context.Context, _ string, id string, _ dto.ItemPatch) (*model.ItemRow, error) {
		row := itemRowFixture(id, "Cod loin")
		row.SupplierCategory = strPtr("fish_supplier")
		return row, nil
	}

	updated, err := h.svc.Update(context.Background(), testOrg, "i1", dto.ItemPatch{Name: strPtr("Cod loin")})
	require.NoError(t, err)
	require.NotNil(t, updated.SupplierCategory)
	assert.Equal(t, model.SupplierFish, *updated.SupplierCategory)

	require.Len(t, *writes, 2)
	optimistic := (*writes)[0]
	assert.Equal(t, "Cod loin", optimistic[0].Name)
	assert.Nil(t, optimistic[0].SupplierCategory, "optimistic guess cannot know server-side fields")

	final := h.snapshot()
	require.Len(t, final, 2)
	assert.Equal(t, "Cod loin", final[0].Name)
	require.NotNil(t, final[0].SupplierCategory)
	assert.Equal(t, "Rice", final[1].Name, "untouched rows stay put")
}

func TestItemUpdate_FailureRollsBack(t *testing.T) {
	seed := []model.InventoryItem{cachedItem("i1", "Cod")}
	h := newItemHarness(seed...)
	h.repo.updateFn = func(context.Context, string, string, dto.ItemPatch) (*model.ItemRow, error) {
		return nil, errors.New("boom")
	}

	_, err := h.svc.Update(context.Background(), testOrg, "i1", dto.ItemPatch{Name: strPtr("Cod loin")})
	require.Error(t, err)

	assert.Equal(t, seed, h.snapshot())
	msgs := h.rec.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Could not update item.", msgs[0].Text)
}

// ── Delete ────────────────────────────────────────────────────────────────────

func TestItemDelete_RemovesImmediately(t *testing.T) {
	h := newItemHarness(cachedItem("i1", "Cod"), cachedItem("i2", "Rice"))
	h.repo.deleteFn = func(context.Context, string, string) error { return nil }

	require.NoError(t, h.svc.Delete(context.Background(), testOrg, "i1"))

	final := h.snapshot()
	require.Len(t, final, 1)
	assert.Equal(t, "i2", final[0].ID)

	msgs := h.rec.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "success", msgs[0].Level)
	assert.Equal(t, "Item deleted.", msgs[0].Text)
}

func TestItemDelete_FailureRestoresRowInPlace(t *testing.T) {
	seed := []model.InventoryItem{cachedItem("i1", "Cod"), cachedItem("i2", "Rice"), cachedItem("i3", "Soy")}
	h := newItemHarness(seed...)
	h.repo.deleteFn = func(context.Context, string, string) error { return errors.New("conflict") }

	err := h.svc.Delete(context.Background(), testOrg, "i2")
	require.Error(t, err)

	assert.Equal(t, seed, h.snapshot(), "the deleted row reappears in its original position")
	msgs := h.rec.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Could not delete item.", msgs[0].Text)
}

// ── Bulk update ───────────────────────────────────────────────────────────────

func TestItemBulkUpdate_PartialEchoRollsBackMissingIDs(t *testing.T) {
	h := newItemHarness(
		cachedItem("i1", "Cod"),
		cachedItem("i2", "Rice"),
		cachedItem("i3", "Soy"),
		cachedItem("i4", "Boxes"),
	)

	// Server confirms i1 and i2, silently drops i3.
	h.repo.bulkFn = func(context.Context, string, []string, dto.ItemPatch) ([]model.ItemRow, error) {
		return []model.ItemRow{
			*itemRowFixture("i1", "Cod (archived)"),
			*itemRowFixture("i2", "Rice (archived)"),
		}, nil
	}

	inactive := false
	updated, err := h.svc.BulkUpdate(context.Background(), testOrg, []string{"i1", "i2", "i3"},
		dto.ItemPatch{Active: &inactive}, "Items archived.")
	require.NoError(t, err)
	assert.Len(t, updated, 2)

	final := h.snapshot()
	require.Len(t, final, 4)
	assert.Equal(t, "Cod (archived)", final[0].Name)
	assert.Equal(t, "Rice (archived)", final[1].Name)
	assert.Equal(t, "Soy", final[2].Name, "unconfirmed id restored to its prior state")
	assert.True(t, final[2].Active, "the optimistic deactivation of i3 was undone")
	assert.Equal(t, "Boxes", final[3].Name, "rows outside the selection untouched")

	msgs := h.rec.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Items archived.", msgs[0].Text)
}

func TestItemBulkUpdate_ErrorRollsBackEverything(t *testing.T) {
	seed := []model.InventoryItem{cachedItem("i1", "Cod"), cachedItem("i2", "Rice")}
	h := newItemHarness(seed...)
	h.repo.bulkFn = func(context.Context, string, []string, dto.ItemPatch) ([]model.ItemRow, error) {
		return nil, errors.New("boom")
	}

	inactive := false
	_, err := h.svc.BulkUpdate(context.Background(), testOrg, []string{"i1", "i2"},
		dto.ItemPatch{Active: &inactive}, "Items archived.")
	require.Error(t, err)

	assert.Equal(t, seed, h.snapshot())
	msgs := h.rec.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Bulk update failed.", msgs[0].Text)
}

// ── Refresh ───────────────────────────────────────────────────────────────────

func TestItemRefresh_ReplacesSnapshot(t *testing.T) {
	h := newItemHarness(cachedItem("stale", "Stale"))
	h.repo.listFn = func(context.Context, string) ([]model.ItemRow, error) {
		return []model.ItemRow{*itemRowFixture("fresh", "Fresh")}, nil
	}

	require.NoError(t, h.svc.Refresh(context.Background(), testOrg))

	final := h.snapshot()
	require.Len(t, final, 1)
	assert.Equal(t, "fresh", final[0].ID)
}

func TestItemRefresh_DiscardedWhenMutationBeganMidFlight(t *testing.T) {
	h := newItemHarness(cachedItem("optimistic", "Optimistic"))
	h.repo.listFn = func(context.Context, string) ([]model.ItemRow, error) {
		// A mutation begins while the list is in flight.
		h.store.Bump(itemKey(testOrg))
		return []model.ItemRow{*itemRowFixture("stale", "Stale")}, nil
	}

	require.NoError(t, h.svc.Refresh(context.Background(), testOrg))

	final := h.snapshot()
	require.Len(t, final, 1)
	assert.Equal(t, "optimistic", final[0].ID, "superseded refetch result is discarded")
}
