package bouquetstore

import (
	"context"
	"sort"
	"sync"

	"github.com/florelle/fleuriste/internal/domain/bouquet"
)

// MemoryStore is an in-memory occasion counter for tests/dev.
type MemoryStore struct {
	mu       sync.RWMutex
	counters map[string]int64
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]int64)}
}

// IncrementOccasion implements bouquet.TrendingStore.
func (s *MemoryStore) IncrementOccasion(_ context.Context, occasion string) error {
	if occasion == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[occasion]++
	return nil
}

// TopOccasions returns the most frequent occasions, highest count first.
// Ties are broken alphabetically so the order stays deterministic.
func (s *MemoryStore) TopOccasions(_ context.Context, limit int) ([]bouquet.OccasionCount, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	out := make([]bouquet.OccasionCount, 0, len(s.counters))
	for occasion, count := range s.counters {
		out = append(out, bouquet.OccasionCount{Occasion: occasion, Count: count})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Occasion < out[j].Occasion
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
