package service

import (
	"context"

	"pantryos/internal/cache"
	"pantryos/internal/model"
)

// RefetchScheduler settles every mutation with a background refetch of the
// affected cache key, so server-side state the optimistic patch could not
// know about (concurrent edits from another session, computed columns)
// eventually surfaces. The production implementation fans out over redis;
// tests use inline stubs.
type RefetchScheduler interface {
	ScheduleRefetch(ctx context.Context, kind, orgID string)
}

// mutation is the explicit state machine behind one optimistic operation.
// The rollback contract lives here instead of in closure nesting: prior is
// captured atomically by apply and restored wholesale by rollback.
type mutation[T any] struct {
	store    *cache.Store[T]
	key      cache.Key
	phase    mutationPhase
	prior    []T
	affected []string
}

type mutationPhase int

const (
	phaseBegun mutationPhase = iota
	phaseApplied
	phaseReconciled
	phaseRolledBack
)

// begin bumps the key's generation so a stale in-flight refetch cannot
// clobber the optimistic write that is about to happen.
func begin[T any](store *cache.Store[T], key cache.Key, affected ...string) *mutation[T] {
	store.Bump(key)
	return &mutation[T]{store: store, key: key, phase: phaseBegun, affected: affected}
}

// apply installs the optimistic snapshot and captures the prior one.
func (m *mutation[T]) apply(fn func([]T) []T) {
	m.prior = m.store.Update(m.key, fn)
	m.phase = phaseApplied
}

// reconcile merges server-confirmed truth into the cache.
func (m *mutation[T]) reconcile(fn func([]T) []T) {
	m.store.Update(m.key, fn)
	m.phase = phaseReconciled
}

// rollback restores the exact pre-mutation snapshot. Full rollback, never
// partial.
func (m *mutation[T]) rollback() {
	m.store.Set(m.key, m.prior)
	m.phase = phaseRolledBack
}

func itemKey(orgID string) cache.Key {
	return cache.Key{Kind: model.KindInventoryItems, OrgID: orgID}
}

func supplierKey(orgID string) cache.Key {
	return cache.Key{Kind: model.KindSuppliers, OrgID: orgID}
}
