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

type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

const announcementColumns = `id, title, content, visibility, created_by, expires_at, created_at, updated_at`

func scanAnnouncement(row pgx.Row) (model.Announcement, error) {
	var a model.Announcement
	var visibility string
	err := row.Scan(&a.ID, &a.Title, &a.Content, &visibility, &a.CreatedBy, &a.ExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	a.Visibility = model.Visibility(visibility)
	return a, err
}

func (r *AnnouncementRepository) Create(ctx context.Context, a model.Announcement) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO announcements (id, title, content, visibility, created_by, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		a.ID, a.Title, a.Content, string(a.Visibility), a.CreatedBy, a.ExpiresAt, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (model.Announcement, error) {
	a, err := scanAnnouncement(r.pool.QueryRow(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Announcement{}, model.ErrAnnouncementNotFound
	}
	if err != nil {
		return model.Announcement{}, fmt.Errorf("find announcement: %w", err)
	}
	return a, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, a model.Announcement) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE announcements
		 SET title = $2, content = $3, visibility = $4, expires_at = $5, updated_at = $6
		 WHERE id = $1`,
		a.ID, a.Title, a.Content, string(a.Visibility), a.ExpiresAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAnnouncementNotFound
	}
	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAnnouncementNotFound
	}
	return nil
}

func (r *AnnouncementRepository) List(ctx context.Context) ([]model.Announcement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+announcementColumns+` FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return collectAnnouncements(rows)
}

// ListUndismissed returns announcements not expired at now and not
// dismissed by the user. Visibility is filtered by the caller.
func (r *AnnouncementRepository) ListUndismissed(ctx context.Context, userID string, now time.Time) ([]model.Announcement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+announcementColumns+` FROM announcements a
		 WHERE (a.expires_at IS NULL OR a.expires_at > $2)
		   AND NOT EXISTS (
		       SELECT 1 FROM announcement_dismissals d
		       WHERE d.announcement_id = a.id AND d.user_id = $1
		   )
		 ORDER BY a.created_at DESC`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list active announcements: %w", err)
	}
	return collectAnnouncements(rows)
}

// Dismiss records a dismissal. A repeated dismissal yields ErrConflict.
func (r *AnnouncementRepository) Dismiss(ctx context.Context, announcementID, userID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO announcement_dismissals (announcement_id, user_id, dismissed_at) VALUES ($1, $2, $3)`,
		announcementID, userID, at)
	if isUniqueViolation(err) {
		return model.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return model.ErrAnnouncementNotFound
	}
	if err != nil {
		return fmt.Errorf("dismiss announcement: %w", err)
	}
	return nil
}

func collectAnnouncements(rows pgx.Rows) ([]model.Announcement, error) {
	defer rows.Close()

	out := make([]model.Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
