package catalog

import "context"

// Repository reads the active flower catalog. The recommendation pipeline
// takes one full snapshot per request and never writes back.
type Repository interface {
	ListFlowers(ctx context.Context) ([]Flower, error)
}
