package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"school-admin/internal/model"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Log(ctx context.Context, entry model.ActivityEntry) error {
	var metadataJSON []byte
	if len(entry.Metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO task_activity_logs
		 (task_id, folder_id, dimension_id, action, actor_id, actor_role,
		  description, remark, metadata, due_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.TaskID, entry.FolderID, entry.DimensionID, entry.Action, entry.ActorID, entry.ActorRole,
		entry.Description, string(entry.Remark), metadataJSON, entry.Due, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("log activity entry: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if taskID := strings.TrimSpace(query.TaskID); taskID != "" {
		where = append(where, fmt.Sprintf("task_id = $%d", argIdx))
		args = append(args, taskID)
		argIdx++
	}
	if folderID := strings.TrimSpace(query.FolderID); folderID != "" {
		where = append(where, fmt.Sprintf("folder_id = $%d", argIdx))
		args = append(args, folderID)
		argIdx++
	}
	if query.DimensionID != nil {
		where = append(where, fmt.Sprintf("dimension_id = $%d", argIdx))
		args = append(args, *query.DimensionID)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM task_activity_logs %s", whereClause), args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count activity entries: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}
	meta := model.Meta{Page: query.Page, Limit: query.Limit, Total: total, TotalPages: totalPages}

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT id, task_id, folder_id, dimension_id, action, actor_id, actor_role,
		        description, remark, metadata, due_at, created_at
		 FROM task_activity_logs %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query activity entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		var remark string
		var metadataJSON []byte

		if err := rows.Scan(&e.ID, &e.TaskID, &e.FolderID, &e.DimensionID, &e.Action, &e.ActorID, &e.ActorRole,
			&e.Description, &remark, &metadataJSON, &e.Due, &e.CreatedAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan activity entry: %w", err)
		}
		e.Remark = model.Remark(remark)

		if len(metadataJSON) > 0 {
			var md map[string]any
			if jsonErr := json.Unmarshal(metadataJSON, &md); jsonErr == nil {
				e.Metadata = md
			}
		}
		entries = append(entries, e)
	}

	return entries, meta, rows.Err()
}

// SystemLogs reads the detailed report produced by get_system_logs_detailed.
func (r *ActivityRepository) SystemLogs(ctx context.Context, limit int, dimensionID *int64) ([]model.SystemLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, task_id, task_title, folder_name, dimension_name, actor_name, actor_role,
		        action, remark, description, created_at
		 FROM get_system_logs_detailed($1, $2)`, limit, dimensionID)
	if err != nil {
		return nil, fmt.Errorf("query system logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.SystemLog, 0)
	for rows.Next() {
		var l model.SystemLog
		if err := rows.Scan(&l.ID, &l.TaskID, &l.TaskTitle, &l.FolderName, &l.DimensionName, &l.ActorName,
			&l.ActorRole, &l.Action, &l.Remark, &l.Description, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan system log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
