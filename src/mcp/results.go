package mcp

import (
	"strings"
	"sync"

	"snpscope/src/present"
)

// maxStoredBatches bounds how many batch results are kept for drill-down.
const maxStoredBatches = 64

// ResultStore is the interface for storing and retrieving batch results.
type ResultStore interface {
	// Store saves the found variants of a batch.
	Store(requestID string, variants []present.Display)
	// Get retrieves one variant of a stored batch by RSID.
	Get(requestID, id string) (present.Display, bool)
	// GetAll retrieves every variant of a stored batch, in service order.
	GetAll(requestID string) ([]present.Display, bool)
}

// InMemoryStore is a thread-safe in-memory implementation of ResultStore.
// The oldest batch is evicted once maxStoredBatches are held.
type InMemoryStore struct {
	mu       sync.RWMutex
	order    []string                              // request ids, oldest first
	requests map[string][]present.Display          // request_id -> variants
	variants map[string]map[string]present.Display // request_id -> lowercase rsid -> variant
}

// NewInMemoryStore creates a new in-memory result store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[string][]present.Display),
		variants: make(map[string]map[string]present.Display),
	}
}

// Store saves variants, indexed by RSID for drill-down.
func (s *InMemoryStore) Store(requestID string, variants []present.Display) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[requestID]; !exists {
		s.order = append(s.order, requestID)
	}
	for len(s.order) > maxStoredBatches {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.requests, oldest)
		delete(s.variants, oldest)
	}

	s.requests[requestID] = append([]present.Display(nil), variants...)

	index := make(map[string]present.Display, len(variants))
	for _, v := range variants {
		key := strings.ToLower(v.RSID)
		if _, dup := index[key]; !dup {
			index[key] = v
		}
	}
	s.variants[requestID] = index
}

// Get retrieves a variant by RSID, case-insensitively.
func (s *InMemoryStore) Get(requestID, id string) (present.Display, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index, ok := s.variants[requestID]; ok {
		v, found := index[strings.ToLower(id)]
		return v, found
	}
	return present.Display{}, false
}

// GetAll retrieves all variants of a batch.
func (s *InMemoryStore) GetAll(requestID string) ([]present.Display, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.requests[requestID]
	return v, ok
}
