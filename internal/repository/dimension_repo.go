package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-admin/internal/model"
)

type DimensionRepository struct {
	pool *pgxpool.Pool
}

func NewDimensionRepository(pool *pgxpool.Pool) *DimensionRepository {
	return &DimensionRepository{pool: pool}
}

func (r *DimensionRepository) List(ctx context.Context) ([]model.Dimension, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM dimensions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	defer rows.Close()

	dims := make([]model.Dimension, 0)
	for rows.Next() {
		var d model.Dimension
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan dimension: %w", err)
		}
		dims = append(dims, d)
	}
	return dims, rows.Err()
}

func (r *DimensionRepository) FindByID(ctx context.Context, id int64) (model.Dimension, error) {
	var d model.Dimension
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM dimensions WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Slug, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Dimension{}, model.ErrDimensionNotFound
	}
	if err != nil {
		return model.Dimension{}, fmt.Errorf("find dimension: %w", err)
	}
	return d, nil
}

func (r *DimensionRepository) Create(ctx context.Context, name string, slug string) (model.Dimension, error) {
	now := time.Now().UTC()
	d := model.Dimension{Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO dimensions (name, slug, created_at, updated_at)
		 VALUES ($1, $2, $3, $3) RETURNING id`, name, slug, now).Scan(&d.ID)
	if isUniqueViolation(err) {
		return model.Dimension{}, fmt.Errorf("%w: slug %q already used", model.ErrConflict, slug)
	}
	if err != nil {
		return model.Dimension{}, fmt.Errorf("create dimension: %w", err)
	}
	return d, nil
}

func (r *DimensionRepository) Update(ctx context.Context, id int64, name string, slug string) (model.Dimension, error) {
	var d model.Dimension
	err := r.pool.QueryRow(ctx,
		`UPDATE dimensions SET name = $2, slug = $3, updated_at = $4 WHERE id = $1
		 RETURNING id, name, slug, created_at, updated_at`,
		id, name, slug, time.Now().UTC()).
		Scan(&d.ID, &d.Name, &d.Slug, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Dimension{}, model.ErrDimensionNotFound
	}
	if isUniqueViolation(err) {
		return model.Dimension{}, fmt.Errorf("%w: slug %q already used", model.ErrConflict, slug)
	}
	if err != nil {
		return model.Dimension{}, fmt.Errorf("update dimension: %w", err)
	}
	return d, nil
}
