// Package store holds the unified entry collection shared by the merge passes.
package store

import (
	"strings"

	"github.com/ppiankov/jyutdb/internal/model"
)

// Store is an in-memory keyed entry collection that remembers insertion order.
// Concurrent readers are safe as long as nobody calls Set.
type Store struct {
	entries map[string]*model.Entry
	order   []string
}

// New creates an empty store
func New() *Store {
	return &Store{
		entries: make(map[string]*model.Entry),
	}
}

// Get returns the entry stored under id
func (s *Store) Get(id string) (*model.Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// GetMany looks up every id, keeping input order and length; absent IDs yield nil
func (s *Store) GetMany(ids []string) []*model.Entry {
	out := make([]*model.Entry, len(ids))
	for i, id := range ids {
		out[i] = s.entries[id]
	}
	return out
}

// Has reports whether id exists. With exact false, id only has to be a
// substring of some stored identifier.
func (s *Store) Has(id string, exact bool) bool {
	if exact {
		_, ok := s.entries[id]
		return ok
	}
	for _, key := range s.order {
		if strings.Contains(key, id) {
			return true
		}
	}
	return false
}

// Match returns every identifier containing substr, in insertion order
func (s *Store) Match(substr string) []string {
	var out []string
	for _, key := range s.order {
		if strings.Contains(key, substr) {
			out = append(out, key)
		}
	}
	return out
}

// Set inserts or replaces the entry under id. A replaced entry keeps its position.
func (s *Store) Set(id string, e *model.Entry) {
	if _, ok := s.entries[id]; !ok {
		s.order = append(s.order, id)
	}
	s.entries[id] = e
}

// ForEach calls fn for every entry in insertion order
func (s *Store) ForEach(fn func(id string, e *model.Entry)) {
	for _, id := range s.order {
		fn(id, s.entries[id])
	}
}

// IDs returns a copy of the identifiers in insertion order
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.order)
}

// Display returns the character shown for id: the entry's first candidate
// character, or id itself when the entry is missing or has no characters.
// found reports whether the entry exists.
func (s *Store) Display(id string) (char string, found bool) {
	e, ok := s.entries[id]
	if !ok {
		return id, false
	}
	if c, ok := e.DisplayForm(); ok {
		return c, true
	}
	return id, true
}

// Records returns the entries in insertion order as database records
func (s *Store) Records() model.Records {
	out := make(model.Records, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, model.Record{ID: id, Entry: s.entries[id]})
	}
	return out
}
