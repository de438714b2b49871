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

type FolderRepository struct {
	pool *pgxpool.Pool
}

func NewFolderRepository(pool *pgxpool.Pool) *FolderRepository {
	return &FolderRepository{pool: pool}
}

const (
	folderColumns = `id, name, dimension_id, parent_id, task_locked, created_by, created_at`
	fileColumns   = `id, file_name, file_path, file_size, file_type, dimension_id, folder_id,
	                 uploaded_by, created_at, updated_at`
)

func scanFolder(row pgx.Row) (model.Folder, error) {
	var f model.Folder
	err := row.Scan(&f.ID, &f.Name, &f.DimensionID, &f.ParentID, &f.TaskLocked, &f.CreatedBy, &f.CreatedAt)
	return f, err
}

func scanFile(row pgx.Row) (model.FileRecord, error) {
	var f model.FileRecord
	err := row.Scan(&f.ID, &f.Name, &f.Path, &f.Size, &f.Type, &f.DimensionID, &f.FolderID,
		&f.UploadedBy, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *FolderRepository) CreateFolder(ctx context.Context, f model.Folder) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO folders (id, name, dimension_id, parent_id, task_locked, created_by, created_at)
		 VALUES ($1, $2, $3, $4, false, $5, $6)`,
		f.ID, f.Name, f.DimensionID, f.ParentID, f.CreatedBy, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) FindFolder(ctx context.Context, id string) (model.Folder, error) {
	f, err := scanFolder(r.pool.QueryRow(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Folder{}, model.ErrFolderNotFound
	}
	if err != nil {
		return model.Folder{}, fmt.Errorf("find folder: %w", err)
	}
	return f, nil
}

func (r *FolderRepository) IsLocked(ctx context.Context, id string) (bool, error) {
	var locked bool
	err := r.pool.QueryRow(ctx,
		`SELECT task_locked FROM folders WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, model.ErrFolderNotFound
	}
	if err != nil {
		return false, fmt.Errorf("read folder lock: %w", err)
	}
	return locked, nil
}

func (r *FolderRepository) ListContents(ctx context.Context, folderID string) ([]model.Folder, []model.FileRecord, error) {
	folderRows, err := r.pool.Query(ctx,
		`SELECT `+folderColumns+` FROM folders
		 WHERE parent_id = $1 AND deleted_at IS NULL ORDER BY name`, folderID)
	if err != nil {
		return nil, nil, fmt.Errorf("list child folders: %w", err)
	}
	folders, err := collectFolders(folderRows)
	if err != nil {
		return nil, nil, err
	}

	fileRows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE folder_id = $1 AND deleted_at IS NULL ORDER BY file_name`, folderID)
	if err != nil {
		return nil, nil, fmt.Errorf("list folder files: %w", err)
	}
	files, err := collectFiles(fileRows)
	if err != nil {
		return nil, nil, err
	}

	return folders, files, nil
}

// Subtree loads a live folder and all of its live descendants.
func (r *FolderRepository) Subtree(ctx context.Context, rootID string) (model.FolderSubtree, error) {
	root, err := r.FindFolder(ctx, rootID)
	if err != nil {
		return model.FolderSubtree{}, err
	}

	folderRows, err := r.pool.Query(ctx,
		`WITH RECURSIVE tree AS (
		     SELECT id FROM folders WHERE id = $1
		     UNION ALL
		     SELECT f.id FROM folders f JOIN tree t ON f.parent_id = t.id
		     WHERE f.deleted_at IS NULL
		 )
		 SELECT `+folderColumns+` FROM folders
		 WHERE id IN (SELECT id FROM tree) AND id <> $1`, rootID)
	if err != nil {
		return model.FolderSubtree{}, fmt.Errorf("load subtree folders: %w", err)
	}
	folders, err := collectFolders(folderRows)
	if err != nil {
		return model.FolderSubtree{}, err
	}

	ids := make([]string, 0, len(folders)+1)
	ids = append(ids, root.ID)
	for _, f := range folders {
		ids = append(ids, f.ID)
	}

	fileRows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE folder_id = ANY($1::uuid[]) AND deleted_at IS NULL`, ids)
	if err != nil {
		return model.FolderSubtree{}, fmt.Errorf("load subtree files: %w", err)
	}
	files, err := collectFiles(fileRows)
	if err != nil {
		return model.FolderSubtree{}, err
	}

	return model.FolderSubtree{Root: root, Folders: folders, Files: files}, nil
}

// TrashSubtree marks every node of the subtree deleted and records the trash
// items in a single transaction.
func (r *FolderRepository) TrashSubtree(ctx context.Context, tree model.FolderSubtree, items []model.TrashItem) error {
	folderIDs := []string{tree.Root.ID}
	for _, f := range tree.Folders {
		folderIDs = append(folderIDs, f.ID)
	}
	fileIDs := make([]string, 0, len(tree.Files))
	for _, f := range tree.Files {
		fileIDs = append(fileIDs, f.ID)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		deletedAt := time.Now().UTC()
		if len(items) > 0 {
			deletedAt = items[0].DeletedAt
		}

		if _, err := tx.Exec(ctx,
			`UPDATE folders SET deleted_at = $2 WHERE id = ANY($1::uuid[])`, folderIDs, deletedAt); err != nil {
			return fmt.Errorf("trash folders: %w", err)
		}
		if len(fileIDs) > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE files SET deleted_at = $2 WHERE id = ANY($1::uuid[])`, fileIDs, deletedAt); err != nil {
				return fmt.Errorf("trash files: %w", err)
			}
		}
		return insertTrashItems(ctx, tx, items)
	})
}

func (r *FolderRepository) CreateFile(ctx context.Context, f model.FileRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO files (id, file_name, file_path, file_size, file_type, dimension_id, folder_id,
		                    uploaded_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		f.ID, f.Name, f.Path, f.Size, f.Type, f.DimensionID, f.FolderID, f.UploadedBy, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (r *FolderRepository) FindFile(ctx context.Context, id string) (model.FileRecord, error) {
	f, err := scanFile(r.pool.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.FileRecord{}, model.ErrFileNotFound
	}
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}

func (r *FolderRepository) RenameFile(ctx context.Context, id string, name string) (model.FileRecord, error) {
	f, err := scanFile(r.pool.QueryRow(ctx,
		`UPDATE files SET file_name = $2, updated_at = $3
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+fileColumns, id, name, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.FileRecord{}, model.ErrFileNotFound
	}
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("rename file: %w", err)
	}
	return f, nil
}

func (r *FolderRepository) MoveFile(ctx context.Context, id string, folderID *string) (model.FileRecord, error) {
	f, err := scanFile(r.pool.QueryRow(ctx,
		`UPDATE files SET folder_id = $2, updated_at = $3
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+fileColumns, id, folderID, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.FileRecord{}, model.ErrFileNotFound
	}
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("move file: %w", err)
	}
	return f, nil
}

func (r *FolderRepository) TrashFile(ctx context.Context, item model.TrashItem) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE files SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, item.ItemID, item.DeletedAt)
		if err != nil {
			return fmt.Errorf("trash file: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrFileNotFound
		}
		return insertTrashItems(ctx, tx, []model.TrashItem{item})
	})
}

func collectFolders(rows pgx.Rows) ([]model.Folder, error) {
	defer rows.Close()

	out := make([]model.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func collectFiles(rows pgx.Rows) ([]model.FileRecord, error) {
	defer rows.Close()

	out := make([]model.FileRecord, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
