package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-admin/internal/model"
)

type UnlockTokenRepository struct {
	pool *pgxpool.Pool
}

func NewUnlockTokenRepository(pool *pgxpool.Pool) *UnlockTokenRepository {
	return &UnlockTokenRepository{pool: pool}
}

func (r *UnlockTokenRepository) Create(ctx context.Context, t model.UnlockToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO unlock_tokens (folder_id, user_id, token, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		t.FolderID, t.UserID, t.Token, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create unlock token: %w", err)
	}
	return nil
}

// Find returns the row matching all three keys regardless of expiry.
func (r *UnlockTokenRepository) Find(ctx context.Context, folderID string, userID string, token string) (model.UnlockToken, error) {
	var t model.UnlockToken
	err := r.pool.QueryRow(ctx,
		`SELECT folder_id, user_id, token, expires_at FROM unlock_tokens
		 WHERE folder_id = $1 AND user_id = $2 AND token = $3`,
		folderID, userID, token).Scan(&t.FolderID, &t.UserID, &t.Token, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UnlockToken{}, model.ErrInvalidUnlockToken
	}
	if err != nil {
		return model.UnlockToken{}, fmt.Errorf("find unlock token: %w", err)
	}
	return t, nil
}
