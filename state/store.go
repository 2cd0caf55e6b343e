// Package state provides a minimal synchronous observable value box.
//
// A Store holds one value. Writers replace the value (or derive it from
// the previous one) and every registered listener is notified before the
// write call returns, in subscription order. There is no deduplication
// and no batching: three consecutive writes produce three notification
// passes. Components use one Store per instance; the package is general
// purpose.
package state

import (
	"sync"
	"sync/atomic"
)

// Listener receives the store's value at notification time.
type Listener[T any] func(T)

type entry[T any] struct {
	fn      Listener[T]
	removed atomic.Bool
}

// Store is a mutable value with synchronous subscribers. The zero value
// is not usable; construct with NewStore.
type Store[T any] struct {
	mu        sync.RWMutex
	value     T
	listeners []*entry[T]
}

// NewStore creates a store holding initial.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and synchronously notifies every subscriber,
// in subscription order, with the new value. Notification runs outside
// the store's lock, so listeners may read or write the store; a nested
// write performs its own full notification pass.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	snapshot := make([]*entry[T], len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	s.notify(snapshot, v)
}

// Update replaces the value with fn(previous) and notifies. The
// read-modify-write is atomic with respect to other writers; fn must not
// call back into the store (it receives the previous value directly).
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	v := fn(s.value)
	s.value = v
	snapshot := make([]*entry[T], len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	s.notify(snapshot, v)
}

// Subscribe registers fn and returns an unsubscribe function. The
// unsubscribe function is idempotent: calling it more than once is a
// no-op and never disturbs other subscribers.
//
// Listeners subscribed during a notification pass do not receive that
// pass; listeners unsubscribed during a pass are skipped if they have
// not fired yet.
func (s *Store[T]) Subscribe(fn Listener[T]) func() {
	e := &entry[T]{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, e)
	s.mu.Unlock()

	return func() {
		if !e.removed.CompareAndSwap(false, true) {
			return
		}
		s.mu.Lock()
		for i, cur := range s.listeners {
			if cur == e {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
}

func (s *Store[T]) notify(snapshot []*entry[T], v T) {
	for _, e := range snapshot {
		if e.removed.Load() {
			continue
		}
		e.fn(v)
	}
}
