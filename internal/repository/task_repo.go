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

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const errAssigneeHasSubmissions = "a removed assignee already has submissions"

const taskColumns = `id, folder_id, dimension_id, title, description, status, due_at,
	                 created_by, created_at, updated_at`

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var status string
	err := row.Scan(&t.ID, &t.FolderID, &t.DimensionID, &t.Title, &t.Description, &status, &t.Due,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	t.Status = model.TaskStatus(status)
	return t, err
}

// Create inserts the task with its assignments and locks the folder. With
// exclusive set, a folder that already carries an unresolved task is refused.
func (r *TaskRepository) Create(ctx context.Context, task model.Task, exclusive bool) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var folderDeleted bool
		err := tx.QueryRow(ctx,
			`SELECT deleted_at IS NOT NULL FROM folders WHERE id = $1 FOR UPDATE`, task.FolderID).Scan(&folderDeleted)
		if errors.Is(err, pgx.ErrNoRows) || folderDeleted {
			return model.ErrFolderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock folder: %w", err)
		}

		if exclusive {
			var busy bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM tasks WHERE folder_id = $1 AND status = ANY($2))`,
				task.FolderID, statusStrings(model.UnresolvedStatuses)).Scan(&busy); err != nil {
				return fmt.Errorf("check folder tasks: %w", err)
			}
			if busy {
				return fmt.Errorf("%w: folder already has an unresolved task", model.ErrConflict)
			}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO tasks (id, folder_id, dimension_id, title, description, status, due_at,
			                    created_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
			task.ID, task.FolderID, task.DimensionID, task.Title, task.Description, string(task.Status),
			task.Due, task.CreatedBy, task.CreatedAt); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		if err := insertAssignments(ctx, tx, task.Assignments); err != nil {
			return err
		}
		if err := syncFolderLock(ctx, tx, task.FolderID); err != nil {
			return fmt.Errorf("sync folder lock: %w", err)
		}
		return nil
	})
}

// Update writes the editable fields. When assignments is non-nil the
// assignment set is reconciled: missing admins are removed, new ones added.
func (r *TaskRepository) Update(ctx context.Context, task model.Task, assignments []model.TaskAssignment) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE tasks SET title = $2, description = $3, due_at = $4, updated_at = $5 WHERE id = $1`,
			task.ID, task.Title, task.Description, task.Due, task.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrTaskNotFound
		}
		if assignments == nil {
			return nil
		}

		keep := make([]string, 0, len(assignments))
		for _, a := range assignments {
			keep = append(keep, a.AssignedAdminID)
		}

		// Submissions are history; an assignee who has submitted stays.
		var submitted bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (
			     SELECT 1 FROM task_submissions s
			     JOIN task_assignments ta ON ta.id = s.assignment_id
			     WHERE ta.task_id = $1 AND NOT (ta.assigned_admin_id = ANY($2::uuid[])))`,
			task.ID, keep).Scan(&submitted); err != nil {
			return fmt.Errorf("check removed assignees: %w", err)
		}
		if submitted {
			return fmt.Errorf("%w: %s", model.ErrConflict, errAssigneeHasSubmissions)
		}

		_, err = tx.Exec(ctx,
			`DELETE FROM task_assignments WHERE task_id = $1 AND NOT (assigned_admin_id = ANY($2::uuid[]))`,
			task.ID, keep)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", model.ErrConflict, errAssigneeHasSubmissions)
		}
		if err != nil {
			return fmt.Errorf("prune assignments: %w", err)
		}
		return insertAssignments(ctx, tx, assignments)
	})
}

func insertAssignments(ctx context.Context, q dbtx, assignments []model.TaskAssignment) error {
	for _, a := range assignments {
		if _, err := q.Exec(ctx,
			`INSERT INTO task_assignments (id, task_id, assigned_admin_id, created_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (task_id, assigned_admin_id) DO NOTHING`,
			a.ID, a.TaskID, a.AssignedAdminID, a.CreatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: assignee %s does not exist", model.ErrInvalidInput, a.AssignedAdminID)
			}
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, model.ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("find task: %w", err)
	}

	byTask, err := r.assignmentsFor(ctx, []string{t.ID})
	if err != nil {
		return model.Task{}, err
	}
	t.Assignments = byTask[t.ID]
	return t, nil
}

func (r *TaskRepository) ListByFolder(ctx context.Context, folderID string) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE folder_id = $1 ORDER BY created_at DESC`, folderID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	ids := make([]string, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return tasks, nil
	}

	byTask, err := r.assignmentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Assignments = byTask[tasks[i].ID]
	}
	return tasks, nil
}

func (r *TaskRepository) assignmentsFor(ctx context.Context, taskIDs []string) (map[string][]model.TaskAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ta.id, ta.task_id, ta.assigned_admin_id, COALESCE(a.full_name, ''), ta.created_at
		 FROM task_assignments ta
		 LEFT JOIN admins a ON a.id = ta.assigned_admin_id
		 WHERE ta.task_id = ANY($1::uuid[])
		 ORDER BY ta.created_at`, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.TaskAssignment, len(taskIDs))
	for rows.Next() {
		var a model.TaskAssignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.AssignedAdminID, &a.AssignedName, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out[a.TaskID] = append(out[a.TaskID], a)
	}
	return out, rows.Err()
}

// Delete removes the task (dependent rows cascade) and recomputes the folder lock.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var folderID string
		err := tx.QueryRow(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING folder_id`, id).Scan(&folderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if err := syncFolderLock(ctx, tx, folderID); err != nil {
			return fmt.Errorf("sync folder lock: %w", err)
		}
		return nil
	})
}

// RecordSubmission files the submission, moves the task to for-checking and
// resolves its pending revision requests.
func (r *TaskRepository) RecordSubmission(ctx context.Context, sub model.TaskSubmission) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var status, folderID string
		err := tx.QueryRow(ctx,
			`SELECT status, folder_id FROM tasks WHERE id = $1 FOR UPDATE`, sub.TaskID).Scan(&status, &folderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("lock task: %w", err)
		}
		if !model.TaskStatus(status).AcceptsSubmission() {
			return fmt.Errorf("%w: task is %s", model.ErrInvalidTransition, status)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO task_submissions (id, task_id, assignment_id, submitter_id, payload, note, is_late, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sub.ID, sub.TaskID, sub.AssignmentID, sub.SubmitterID, sub.Payload, sub.Note, sub.IsLate,
			sub.CreatedAt); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1`,
			sub.TaskID, string(model.TaskStatusForChecking), sub.CreatedAt); err != nil {
			return fmt.Errorf("advance task: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE revision_requests SET status = $2, resolved_at = $3 WHERE task_id = $1 AND status = $4`,
			sub.TaskID, string(model.RevisionResolved), sub.CreatedAt, string(model.RevisionPending)); err != nil {
			return fmt.Errorf("resolve revisions: %w", err)
		}
		if err := syncFolderLock(ctx, tx, folderID); err != nil {
			return fmt.Errorf("sync folder lock: %w", err)
		}
		return nil
	})
}

// ApplyReview moves a for-checking task to the reviewed status. A task in
// any other status yields ErrInvalidTransition.
func (r *TaskRepository) ApplyReview(ctx context.Context, review model.TaskReview, at time.Time) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
			review.TaskID, string(review.Status), at, string(model.TaskStatusForChecking))
		if err != nil {
			return fmt.Errorf("review task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: task is not awaiting review", model.ErrInvalidTransition)
		}

		if rr := review.Revision; rr != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO revision_requests (id, task_id, dimension_id, status, reason, requested_by, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				rr.ID, rr.TaskID, rr.DimensionID, string(rr.Status), rr.Reason, rr.RequestedBy,
				rr.CreatedAt); err != nil {
				return fmt.Errorf("insert revision request: %w", err)
			}
		}

		if err := syncFolderLock(ctx, tx, review.FolderID); err != nil {
			return fmt.Errorf("sync folder lock: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) CountIncomplete(ctx context.Context, folderID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE folder_id = $1 AND status = ANY($2)`,
		folderID, statusStrings(model.IncompleteStatuses)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count incomplete tasks: %w", err)
	}
	return n, nil
}

// CountPendingRevisions counts pending revision requests, optionally
// restricted to one dimension.
func (r *TaskRepository) CountPendingRevisions(ctx context.Context, dimensionID *int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM revision_requests
		 WHERE status = $1 AND ($2::bigint IS NULL OR dimension_id = $2)`,
		string(model.RevisionPending), dimensionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count revisions: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) ListRevisions(ctx context.Context, taskID string) ([]model.RevisionRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, task_id, dimension_id, status, reason, requested_by, created_at, resolved_at
		 FROM revision_requests WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	out := make([]model.RevisionRequest, 0)
	for rows.Next() {
		var rr model.RevisionRequest
		var status string
		if err := rows.Scan(&rr.ID, &rr.TaskID, &rr.DimensionID, &status, &rr.Reason, &rr.RequestedBy,
			&rr.CreatedAt, &rr.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		rr.Status = model.RevisionStatus(status)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListSubmissions returns submissions newest first, enriched with the
// submitter's name and email. Empty query fields do not filter.
func (r *TaskRepository) ListSubmissions(ctx context.Context, q model.SubmissionQuery) ([]model.TaskSubmission, error) {
	var taskID, assignmentID *string
	if q.TaskID != "" {
		taskID = &q.TaskID
	}
	if q.AssignmentID != "" {
		assignmentID = &q.AssignmentID
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.task_id, s.assignment_id, s.submitter_id, s.payload, s.note, s.is_late, s.created_at,
		        COALESCE(a.full_name, ''), COALESCE(a.email, '')
		 FROM task_submissions s
		 LEFT JOIN admins a ON a.id = s.submitter_id
		 WHERE ($1::uuid IS NULL OR s.task_id = $1)
		   AND ($2::uuid IS NULL OR s.assignment_id = $2)
		 ORDER BY s.created_at DESC`, taskID, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]model.TaskSubmission, 0)
	for rows.Next() {
		var s model.TaskSubmission
		if err := rows.Scan(&s.ID, &s.TaskID, &s.AssignmentID, &s.SubmitterID, &s.Payload, &s.Note, &s.IsLate,
			&s.CreatedAt, &s.SubmitterName, &s.SubmitterEmail); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListAssignmentsFor returns the caller's workload across all tasks.
func (r *TaskRepository) ListAssignmentsFor(ctx context.Context, adminID string) ([]model.AssignmentWorkload, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, ta.id, t.folder_id, t.title, t.status, t.due_at
		 FROM task_assignments ta
		 JOIN tasks t ON t.id = ta.task_id
		 WHERE ta.assigned_admin_id = $1
		 ORDER BY t.due_at NULLS LAST, t.created_at`, adminID)
	if err != nil {
		return nil, fmt.Errorf("list workload: %w", err)
	}
	defer rows.Close()

	out := make([]model.AssignmentWorkload, 0)
	for rows.Next() {
		var w model.AssignmentWorkload
		var status string
		if err := rows.Scan(&w.TaskID, &w.AssignmentID, &w.FolderID, &w.Title, &status, &w.Due); err != nil {
			return nil, fmt.Errorf("scan workload: %w", err)
		}
		w.Status = model.TaskStatus(status)
		out = append(out, w)
	}
	return out, rows.Err()
}
