// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AppState is one immutable snapshot of the whole curation session.
//
// Container fields are pointers so that subscription selectors can detect
// change by identity: a mutation replaces only the containers it touched,
// leaving sibling references intact.
type AppState struct {
	// Contigs is the append-only contig arena.
	Contigs *ContigSet

	// Order is the curated visual order.
	Order *ContigOrder

	// TextureSize is the pixel dimension of the loaded contact map.
	TextureSize int

	// SourceFile identifies the loaded map for provenance.
	SourceFile string
}

// Batch tags a group of operations that belong together, e.g. every cut
// issued by one autocut run. Operations recorded while a batch is active
// carry its id and metadata, and undo treats the group as one unit.
type Batch struct {
	// ID is a generated unique id for the batch.
	ID string

	// Algorithm names the batch driver, e.g. "autocut".
	Algorithm string

	// Metadata carries driver-specific context, e.g. {"threshold": "0.30"}.
	Metadata map[string]string

	// StartedAt is when the batch context was opened.
	StartedAt time.Time
}

// subscription is one registered selector/callback pair.
type subscription struct {
	selector func(AppState) any
	callback func(newValue, oldValue any)
}

// Store holds the current AppState snapshot and the subscription registry.
//
// # Description
//
// Get returns the current snapshot; Apply installs the snapshot produced
// by a mutator function and notifies subscribers whose selector output
// changed. The curation engine is single-threaded, but subscribers may
// read from other goroutines; the snapshot pointer swap is guarded so a
// reader always observes a fully formed snapshot.
//
// # Thread Safety
//
// Safe for concurrent readers. Mutations (Apply, Reset, batch control)
// must come from one goroutine, per the engine's concurrency model.
type Store struct {
	mu      sync.RWMutex
	current AppState
	batch   *Batch
	subs    map[int]*subscription
	nextSub int
}

// NewStore creates a store seeded with the given initial state.
func NewStore(initial AppState) *Store {
	return &Store{
		current: initial,
		subs:    make(map[int]*subscription),
	}
}

// Get returns the current immutable snapshot.
func (s *Store) Get() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply installs the snapshot produced by mutate and notifies subscribers.
//
// mutate receives the current snapshot and must return a new one built
// with the copy-on-write helpers; it must not modify containers in place.
// Notification runs synchronously after the swap, outside the lock;
// callback order across subscribers is not specified.
func (s *Store) Apply(mutate func(AppState) AppState) {
	s.mu.Lock()
	old := s.current
	next := mutate(old)
	s.current = next

	// Snapshot the subscriber list so callbacks can unsubscribe safely.
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		oldVal := sub.selector(old)
		newVal := sub.selector(next)
		if oldVal != newVal {
			sub.callback(newVal, oldVal)
		}
	}
}

// Reset replaces the whole session state and clears any active batch.
// Subscribers are notified as for Apply.
func (s *Store) Reset(initial AppState) {
	s.mu.Lock()
	s.batch = nil
	s.mu.Unlock()
	s.Apply(func(AppState) AppState { return initial })
}

// subscribe registers a type-erased selector/callback pair and returns an
// unsubscribe function. Unsubscribing is immediate and idempotent.
func (s *Store) subscribe(selector func(AppState) any, callback func(newValue, oldValue any)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = &subscription{selector: selector, callback: callback}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Select subscribes to one derived value of the state.
//
// # Description
//
// callback fires only when selector(newState) differs from
// selector(oldState) under ==, and receives (newValue, oldValue).
// Selecting a pointer-typed container (st.Order, st.Contigs) gives the
// reference-equality discipline the copy-on-write model is built for.
//
// # Outputs
//
//   - func(): Unsubscribe. Takes effect immediately; calling it more than
//     once is safe.
func Select[T comparable](s *Store, selector func(AppState) T, callback func(newValue, oldValue T)) func() {
	if selector == nil || callback == nil {
		return func() {}
	}
	return s.subscribe(
		func(st AppState) any { return selector(st) },
		func(newValue, oldValue any) {
			callback(newValue.(T), oldValue.(T))
		},
	)
}

// BeginBatch opens a batch context. Every operation recorded while the
// context is active carries the returned batch's id and metadata. An
// already-open batch is replaced.
func (s *Store) BeginBatch(algorithm string, metadata map[string]string) Batch {
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	b := Batch{
		ID:        uuid.NewString(),
		Algorithm: algorithm,
		Metadata:  meta,
		StartedAt: time.Now(),
	}
	s.mu.Lock()
	s.batch = &b
	s.mu.Unlock()
	return b
}

// EndBatch closes the active batch context, if any.
func (s *Store) EndBatch() {
	s.mu.Lock()
	s.batch = nil
	s.mu.Unlock()
}

// ActiveBatch returns the active batch context, or nil.
func (s *Store) ActiveBatch() *Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}
