package results

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the last max matches. Used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	matches []Match
	max     int
}

func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = 100
	}
	return &MemoryStore{max: max}
}

func (m *MemoryStore) Record(_ context.Context, match Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	match.Ranking = slices.Clone(match.Ranking)
	m.matches = append(m.matches, match)
	if len(m.matches) > m.max {
		m.matches = slices.Delete(m.matches, 0, len(m.matches)-m.max)
	}
	return nil
}

// Recent returns up to limit matches, newest first.
func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit = max(limit, 0)
	out := make([]Match, 0, min(limit, len(m.matches)))
	for i := len(m.matches) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.matches[i])
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
