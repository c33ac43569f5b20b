package store

import (
	"context"
	"sync"

	"snpscope/src/contracts"
)

// MemoryStore is an in-memory implementation of Store.
// Used when no database is configured, and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	searches []contracts.SearchEvent
	ids      map[string]struct{}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids: make(map[string]struct{}),
	}
}

// SaveSearch records a completed search.
func (s *MemoryStore) SaveSearch(ctx context.Context, ev contracts.SearchEvent) error {
	if err := validate(ev); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[ev.ID]; exists {
		return nil
	}
	s.ids[ev.ID] = struct{}{}

	ev.NotFound = append([]string(nil), ev.NotFound...)
	s.searches = append(s.searches, ev)
	return nil
}

// RecentSearches returns up to limit searches, newest first.
func (s *MemoryStore) RecentSearches(ctx context.Context, limit int) ([]contracts.SearchEvent, error) {
	limit = normalizeLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy
	result := make([]contracts.SearchEvent, 0, min(limit, len(s.searches)))
	for i := len(s.searches) - 1; i >= 0 && len(result) < limit; i-- {
		ev := s.searches[i]
		ev.NotFound = append([]string(nil), ev.NotFound...)
		result = append(result, ev)
	}
	return result, nil
}

// Len returns the number of stored searches.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.searches)
}

// Close closes the store (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}
