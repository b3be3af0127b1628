package bouquetrepo

import (
	"context"
	"sync"

	"github.com/florelle/fleuriste/internal/domain/bouquet"
)

// MemoryRepository keeps saved bouquets in process memory for tests/dev.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]bouquet.Record
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, records: make(map[int64]bouquet.Record)}
}

// SaveRecommendation assigns the next id and stores the record.
func (r *MemoryRepository) SaveRecommendation(_ context.Context, record bouquet.Record) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextID
	r.nextID++
	r.records[record.ID] = record
	return record.ID, nil
}

// Get returns a stored record, for test assertions.
func (r *MemoryRepository) Get(id int64) (bouquet.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	return record, ok
}
