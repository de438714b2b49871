package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-admin/internal/model"
)

type TrashRepository struct {
	pool *pgxpool.Pool
}

func NewTrashRepository(pool *pgxpool.Pool) *TrashRepository {
	return &TrashRepository{pool: pool}
}

const trashColumns = `id, item_id, item_type, item_name, dimension_id, root_deleted_folder_id,
	                  deleted_at, deleted_by`

func scanTrashItem(row pgx.Row) (model.TrashItem, error) {
	var t model.TrashItem
	var kind string
	err := row.Scan(&t.ID, &t.ItemID, &kind, &t.Name, &t.DimensionID, &t.RootDeletedFolderID,
		&t.DeletedAt, &t.DeletedBy)
	t.ItemType = model.ItemType(kind)
	return t, err
}

func insertTrashItems(ctx context.Context, q dbtx, items []model.TrashItem) error {
	for _, item := range items {
		_, err := q.Exec(ctx,
			`INSERT INTO trash_items (id, item_id, item_type, item_name, dimension_id,
			                          root_deleted_folder_id, deleted_at, deleted_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, item.ItemID, string(item.ItemType), item.Name, item.DimensionID,
			item.RootDeletedFolderID, item.DeletedAt, item.DeletedBy)
		if err != nil {
			return fmt.Errorf("insert trash item: %w", err)
		}
	}
	return nil
}

// ListTopLevel returns the items whose group root is themselves or who have
// no group at all, newest first. A nil dimension lists every dimension.
func (r *TrashRepository) ListTopLevel(ctx context.Context, dimensionID *int64) ([]model.TrashItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+trashColumns+` FROM trash_items
		 WHERE ($1::bigint IS NULL OR dimension_id = $1)
		   AND (root_deleted_folder_id IS NULL OR root_deleted_folder_id = item_id)
		 ORDER BY deleted_at DESC`, dimensionID)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	return collectTrash(rows)
}

// ListGroup returns the descendants recorded under a deleted folder.
func (r *TrashRepository) ListGroup(ctx context.Context, rootID string) ([]model.TrashItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+trashColumns+` FROM trash_items
		 WHERE root_deleted_folder_id = $1 AND item_id <> $1
		 ORDER BY item_type DESC, item_name`, rootID)
	if err != nil {
		return nil, fmt.Errorf("list trash group: %w", err)
	}
	return collectTrash(rows)
}

func (r *TrashRepository) FindByID(ctx context.Context, id string) (model.TrashItem, error) {
	item, err := scanTrashItem(r.pool.QueryRow(ctx,
		`SELECT `+trashColumns+` FROM trash_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrashItem{}, model.ErrTrashItemNotFound
	}
	if err != nil {
		return model.TrashItem{}, fmt.Errorf("find trash item: %w", err)
	}
	return item, nil
}

// Restore brings a top-level item back together with its whole group.
// Restored nodes whose parent is still deleted are re-attached to the root.
func (r *TrashRepository) Restore(ctx context.Context, item model.TrashItem) (int, error) {
	restored := 0
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var folderIDs, fileIDs []string

		if item.RootDeletedFolderID == nil {
			fileIDs = append(fileIDs, item.ItemID)
		} else {
			rows, err := tx.Query(ctx,
				`SELECT item_id, item_type FROM trash_items WHERE root_deleted_folder_id = $1`, item.ItemID)
			if err != nil {
				return fmt.Errorf("load trash group: %w", err)
			}
			for rows.Next() {
				var id, kind string
				if err := rows.Scan(&id, &kind); err != nil {
					rows.Close()
					return fmt.Errorf("scan trash group: %w", err)
				}
				if model.ItemType(kind) == model.ItemTypeFolder {
					folderIDs = append(folderIDs, id)
				} else {
					fileIDs = append(fileIDs, id)
				}
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}
		}

		if len(folderIDs) > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE folders SET deleted_at = NULL WHERE id = ANY($1::uuid[])`, folderIDs); err != nil {
				return fmt.Errorf("restore folders: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`UPDATE folders f SET parent_id = NULL
				 WHERE f.id = $1 AND EXISTS (
				     SELECT 1 FROM folders p WHERE p.id = f.parent_id AND p.deleted_at IS NOT NULL
				 )`, item.ItemID); err != nil {
				return fmt.Errorf("reattach restored folder: %w", err)
			}
		}
		if len(fileIDs) > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE files SET deleted_at = NULL WHERE id = ANY($1::uuid[])`, fileIDs); err != nil {
				return fmt.Errorf("restore files: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`UPDATE files fi SET folder_id = NULL
				 WHERE fi.id = ANY($1::uuid[]) AND EXISTS (
				     SELECT 1 FROM folders p WHERE p.id = fi.folder_id AND p.deleted_at IS NOT NULL
				 )`, fileIDs); err != nil {
				return fmt.Errorf("reattach restored files: %w", err)
			}
		}

		var tag pgconn.CommandTag
		var err error
		if item.RootDeletedFolderID == nil {
			tag, err = tx.Exec(ctx, `DELETE FROM trash_items WHERE id = $1`, item.ID)
		} else {
			tag, err = tx.Exec(ctx, `DELETE FROM trash_items WHERE root_deleted_folder_id = $1`, item.ItemID)
		}
		if err != nil {
			return fmt.Errorf("clear trash items: %w", err)
		}
		restored = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

func collectTrash(rows pgx.Rows) ([]model.TrashItem, error) {
	defer rows.Close()

	items := make([]model.TrashItem, 0)
	for rows.Next() {
		item, err := scanTrashItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trash item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
