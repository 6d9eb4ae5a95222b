// Package cache implements the keyed snapshot store shared by the mutation
// executors and the view layer. Each (kind, org) key holds one immutable
// slice snapshot; a write replaces the whole slice atomically — there is no
// partial-write state. Callers must treat returned snapshots as read-only
// and produce fresh slices when mutating.
package cache

import "sync"

// Key addresses one snapshot: a resource kind partitioned by organization.
type Key struct {
	Kind  string
	OrgID string
}

type entry[T any] struct {
	rows    []T
	gen     uint64
	subs    map[int]func([]T)
	nextSub int
}

// Store is a thread-safe snapshot holder. The zero value is not usable; use
// NewStore.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[Key]*entry[T]
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{entries: make(map[Key]*entry[T])}
}

func (s *Store[T]) entryLocked(key Key) *entry[T] {
	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{subs: make(map[int]func([]T))}
		s.entries[key] = e
	}
	return e
}

// Get returns the current snapshot for key (nil if never set).
func (s *Store[T]) Get(key Key) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[key]; ok {
		return e.rows
	}
	return nil
}

// Set atomically replaces the snapshot and notifies subscribers.
func (s *Store[T]) Set(key Key, rows []T) {
	s.mu.Lock()
	e := s.entryLocked(key)
	e.rows = rows
	subs := subscribersLocked(e)
	s.mu.Unlock()

	notify(subs, rows)
}

// Update applies fn to the current snapshot and installs the result in one
// critical section, returning the prior snapshot for rollback. This is the
// snapshot-then-patch step of the optimistic protocol: nothing can interleave
// between the read and the write.
func (s *Store[T]) Update(key Key, fn func([]T) []T) (prior []T) {
	s.mu.Lock()
	e := s.entryLocked(key)
	prior = e.rows
	e.rows = fn(prior)
	rows := e.rows
	subs := subscribersLocked(e)
	s.mu.Unlock()

	notify(subs, rows)
	return prior
}

// Subscribe registers fn for every subsequent write to key and returns an
// unsubscribe func. Callbacks run synchronously after the write, outside the
// store lock.
func (s *Store[T]) Subscribe(key Key, fn func([]T)) (unsubscribe func()) {
	s.mu.Lock()
	e := s.entryLocked(key)
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[key]; ok {
			delete(e.subs, id)
		}
	}
}

// Bump advances the key's generation, invalidating any refetch that started
// against an older generation. Mutation executors call it before an
// optimistic apply so a stale background refetch cannot clobber the write.
func (s *Store[T]) Bump(key Key) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(key)
	e.gen++
	return e.gen
}

// Generation returns the current generation for key. A refetcher captures it
// before listing and hands it back to SetIfCurrent.
func (s *Store[T]) Generation(key Key) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[key]; ok {
		return e.gen
	}
	return 0
}

// SetIfCurrent installs rows only if no Bump happened since gen was captured.
// It reports whether the write took effect.
func (s *Store[T]) SetIfCurrent(key Key, gen uint64, rows []T) bool {
	s.mu.Lock()
	e := s.entryLocked(key)
	if e.gen != gen {
		s.mu.Unlock()
		return false
	}
	e.rows = rows
	subs := subscribersLocked(e)
	s.mu.Unlock()

	notify(subs, rows)
	return true
}

// Keys lists every key that currently holds a snapshot. The periodic drift
// sweep uses it to refresh warm caches only.
func (s *Store[T]) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.entries))
	for key, e := range s.entries {
		if e.rows != nil {
			keys = append(keys, key)
		}
	}
	return keys
}

func subscribersLocked[T any](e *entry[T]) []func([]T) {
	if len(e.subs) == 0 {
		return nil
	}
	subs := make([]func([]T), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify[T any](subs []func([]T), rows []T) {
	for _, fn := range subs {
		fn(rows)
	}
}
