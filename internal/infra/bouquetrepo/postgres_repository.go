package bouquetrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/florelle/fleuriste/internal/domain/bouquet"
)

// PostgresRepository implements bouquet.Repository using pgx. The bouquet
// row and its flower join rows are written in one transaction.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveRecommendation persists the bouquet and returns its id.
func (r *PostgresRepository) SaveRecommendation(ctx context.Context, record bouquet.Record) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var bouquetID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO bouquets (message, budget, style, occasion, total_price, explanation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, record.Message, string(record.Budget), record.Style, record.Occasion, record.TotalPrice, record.Explanation, record.CreatedAt).Scan(&bouquetID)
	if err != nil {
		return 0, err
	}

	for _, flower := range record.Flowers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bouquet_flowers (bouquet_id, flower_id, quantity, reason)
			VALUES ($1, $2, $3, $4)
		`, bouquetID, flower.FlowerID, flower.Quantity, flower.Reason); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return bouquetID, nil
}
