package pool

import (
	"sync"

	"github.com/abelbrown/artscroll/internal/catalog"
)

// SeenSet records IDs already accepted into the feed. It only grows.
type SeenSet struct {
	mu  sync.RWMutex
	ids map[catalog.ItemID]struct{}
}

// NewSeenSet creates a set seeded with ids (e.g. history from a previous run).
func NewSeenSet(ids ...catalog.ItemID) *SeenSet {
	s := &SeenSet{ids: make(map[catalog.ItemID]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add marks id as seen. Returns false if it was already present.
func (s *SeenSet) Add(id catalog.ItemID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id has been seen.
func (s *SeenSet) Has(id catalog.ItemID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of seen IDs.
func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
