package bouquet

import "context"

// Repository persists accepted recommendations as bouquet rows plus their
// flower/quantity join rows. Called by the transport layer after a
// successful recommendation, never by the pipeline itself.
type Repository interface {
	SaveRecommendation(ctx context.Context, record Record) (int64, error)
}
