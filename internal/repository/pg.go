package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"school-admin/internal/model"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func statusStrings(statuses []model.TaskStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// syncFolderLock sets task_locked from whether any unresolved task remains.
func syncFolderLock(ctx context.Context, q dbtx, folderID string) error {
	_, err := q.Exec(ctx,
		`UPDATE folders
		 SET task_locked = EXISTS (
		     SELECT 1 FROM tasks WHERE folder_id = $1 AND status = ANY($2)
		 )
		 WHERE id = $1`,
		folderID, statusStrings(model.UnresolvedStatuses))
	return err
}
