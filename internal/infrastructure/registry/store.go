// Package registry provides the in-memory variant mapping store. Mappings are
// rebuilt from the remote article list on startup, so process-local storage is
// sufficient.
package registry

import (
	"sync"

	"github.com/warawul/backend/internal/domain/syncmap"
)

// InMemoryStore implements syncmap.Store with a mutex-guarded map keyed by
// local variant id.
type InMemoryStore struct {
	mu       sync.RWMutex
	mappings map[string]syncmap.VariantMapping
}

var _ syncmap.Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty mapping store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		mappings: make(map[string]syncmap.VariantMapping),
	}
}

// Get returns a copy of the mapping for the given variant id.
func (s *InMemoryStore) Get(variantID string) (*syncmap.VariantMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping, ok := s.mappings[variantID]
	if !ok {
		return nil, false
	}
	return &mapping, true
}

// Put inserts or replaces the mapping for its local variant id.
func (s *InMemoryStore) Put(mapping *syncmap.VariantMapping) error {
	if mapping.LocalVariantID == "" {
		return syncmap.ErrLocalVariantIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings[mapping.LocalVariantID] = *mapping
	return nil
}

// Delete removes the mapping for a variant id. Unknown ids are ignored.
func (s *InMemoryStore) Delete(variantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.mappings, variantID)
}

// FindByProduct returns all mappings whose local product id matches.
func (s *InMemoryStore) FindByProduct(productID string) []syncmap.VariantMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []syncmap.VariantMapping
	for _, mapping := range s.mappings {
		if mapping.LocalProductID == productID {
			result = append(result, mapping)
		}
	}
	return result
}

// All returns a snapshot of every stored mapping.
func (s *InMemoryStore) All() []syncmap.VariantMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]syncmap.VariantMapping, 0, len(s.mappings))
	for _, mapping := range s.mappings {
		result = append(result, mapping)
	}
	return result
}

// Len returns the number of stored mappings.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.mappings)
}

// Clear removes all mappings.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings = make(map[string]syncmap.VariantMapping)
}
