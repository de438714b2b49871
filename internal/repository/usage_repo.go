package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"school-admin/internal/model"
)

// UsageRepository aggregates file_size metadata. Trashed files still count:
// their bytes stay in object storage until purged.
type UsageRepository struct {
	pool *pgxpool.Pool
}

func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

func (r *UsageRepository) SumByDimension(ctx context.Context) (map[int64]model.UsageSum, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT dimension_id, COUNT(*), COALESCE(SUM(file_size), 0)
		 FROM files GROUP BY dimension_id`)
	if err != nil {
		return nil, fmt.Errorf("sum usage by dimension: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]model.UsageSum)
	for rows.Next() {
		var dimID int64
		var sum model.UsageSum
		if err := rows.Scan(&dimID, &sum.Files, &sum.Bytes); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out[dimID] = sum
	}
	return out, rows.Err()
}

func (r *UsageRepository) SumAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(file_size), 0) FROM files WHERE file_size IS NOT NULL`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum usage: %w", err)
	}
	return total, nil
}
