package bouquet

import "context"

// OccasionCount is one trending occasion counter.
type OccasionCount struct {
	Occasion string `json:"occasion"`
	Count    int64  `json:"count"`
}

// TrendingStore counts the occasions extracted from successful
// recommendations. Increments are best-effort from the caller's point of
// view; a store failure never fails a recommendation.
type TrendingStore interface {
	IncrementOccasion(ctx context.Context, occasion string) error
	TopOccasions(ctx context.Context, limit int) ([]OccasionCount, error)
}
