// Package store provides request-scoped client state atoms.
package store

import (
	"sort"
	"sync"
)

// Atom declares a piece of state with a key and a default value.
// Atoms are declared once at package level and read through a Store.
type Atom[T any] struct {
	key string
	def T
}

// NewAtom declares an atom.
func NewAtom[T any](key string, def T) Atom[T] {
	return Atom[T]{key: key, def: def}
}

// Key returns the atom key.
func (a Atom[T]) Key() string {
	return a.key
}

// Default returns the value an unset atom reads as.
func (a Atom[T]) Default() T {
	return a.def
}

// Store holds atom values for one render scope.
type Store struct {
	mu       sync.RWMutex
	values   map[string]any
	defaults map[string]any
}

// New creates an empty store.
func New() *Store {
	return &Store{
		values:   make(map[string]any),
		defaults: make(map[string]any),
	}
}

// Register records the atom's default so it appears in snapshots before it is set.
func Register[T any](s *Store, a Atom[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[a.key] = a.def
}

// Get returns the atom's value, or its default when unset.
func Get[T any](s *Store, a Atom[T]) T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[a.key]; ok {
		if tv, ok := v.(T); ok {
			return tv
		}
	}
	return a.def
}

// Set stores the atom's value.
func Set[T any](s *Store, a Atom[T], v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[a.key] = v
}

// Reset clears the atom back to its default.
func Reset[T any](s *Store, a Atom[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, a.key)
}

// Keys returns the known atom keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.defaults)+len(s.values))
	seen := make(map[string]bool, cap(keys))
	for k := range s.defaults {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range s.values {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of all known atom values, defaults included.
// encoding/json sorts map keys, so the snapshot serializes deterministically.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.defaults)+len(s.values))
	for k, v := range s.defaults {
		out[k] = v
	}
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
