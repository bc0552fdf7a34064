package memory

import (
	"context"
	"sync"

	"github.com/aretw0/rulebook/pkg/domain"
)

// FactStore implements ports.FactStore in memory.
// Safe for concurrent use.
type FactStore struct {
	facts domain.FactSet
	mu    sync.RWMutex
}

// NewFactStore creates a store seeded with ids.
func NewFactStore(ids ...string) *FactStore {
	return &FactStore{facts: domain.NewFactSet(ids...)}
}

// LoadFacts returns the current fact set. FactSet is immutable, so the value can
// be shared with the caller as is.
func (s *FactStore) LoadFacts(ctx context.Context) (domain.FactSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facts, nil
}

// Replace swaps the fact set.
func (s *FactStore) Replace(ctx context.Context, facts domain.FactSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = facts
	return nil
}
