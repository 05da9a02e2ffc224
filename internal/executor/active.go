package executor

import (
	"sync"

	"github.com/predictlabs/predictbot/internal/domain"
)

// ActiveSet tracks (market, outcome) pairs with an execution in flight so the
// arbitrage loop never runs two executions against the same pair at once. The
// holder keeps the key until both legs have been attempted, then releases it.
// It is safe for concurrent use.
type ActiveSet struct {
	mu   sync.Mutex
	keys map[domain.PositionKey]struct{}
}

// NewActiveSet creates an empty set.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{keys: make(map[domain.PositionKey]struct{})}
}

// TryAcquire claims the key if it is free. It returns false when another
// execution already holds it.
func (s *ActiveSet) TryAcquire(key domain.PositionKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.keys[key]; held {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Release frees the key. Releasing a key that is not held is a no-op.
func (s *ActiveSet) Release(key domain.PositionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// Len returns the number of keys currently held.
func (s *ActiveSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
