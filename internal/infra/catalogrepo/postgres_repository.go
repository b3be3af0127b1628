package catalogrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/florelle/fleuriste/internal/domain/catalog"
)

// PostgresRepository implements catalog.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListFlowers reads the full active catalog. The keywords and emotions
// columns are loose text; they are parsed into normalized slices here so
// the pipeline never re-parses them.
func (r *PostgresRepository) ListFlowers(ctx context.Context) ([]catalog.Flower, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, symbolism, emotions, keywords, color, price_per_stem, stock
		FROM flowers
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flowers []catalog.Flower
	for rows.Next() {
		var (
			flower   catalog.Flower
			emotions string
			keywords string
		)
		if err := rows.Scan(&flower.ID, &flower.Name, &flower.Symbolism, &emotions, &keywords, &flower.Color, &flower.PricePerStem, &flower.Stock); err != nil {
			return nil, err
		}
		flower.Emotions = catalog.ParseTags(emotions)
		flower.Keywords = catalog.ParseTags(keywords)
		flowers = append(flowers, flower)
	}
	return flowers, rows.Err()
}
