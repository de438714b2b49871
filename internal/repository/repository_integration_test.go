//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/database"
	"school-admin/internal/model"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/repository/
// Every test seeds its own dimension so runs against a shared database do not
// interfere.

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))
	return db.Pool
}

type seed struct {
	t           *testing.T
	pool        *pgxpool.Pool
	dimensionID int64
	now         time.Time
}

func newSeed(t *testing.T, pool *pgxpool.Pool) *seed {
	t.Helper()
	slug := "it-" + uuid.NewString()
	dim, err := NewDimensionRepository(pool).Create(context.Background(), "Integration "+slug, slug)
	require.NoError(t, err)
	return &seed{t: t, pool: pool, dimensionID: dim.ID, now: time.Now().UTC().Truncate(time.Millisecond)}
}

func (s *seed) admin(name string) string {
	s.t.Helper()
	id := uuid.NewString()
	require.NoError(s.t, NewAdminRepository(s.pool).Create(context.Background(), model.Admin{
		ID:           id,
		Email:        id + "@school.test",
		FullName:     name,
		PasswordHash: "x",
		Role:         model.RoleOFP,
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}))
	return id
}

func (s *seed) folder(name string, parentID *string) string {
	s.t.Helper()
	id := uuid.NewString()
	require.NoError(s.t, NewFolderRepository(s.pool).CreateFolder(context.Background(), model.Folder{
		ID: id, Name: name, DimensionID: s.dimensionID, ParentID: parentID, CreatedBy: uuid.NewString(), CreatedAt: s.now,
	}))
	return id
}

func (s *seed) file(name string, folderID *string) string {
	s.t.Helper()
	id := uuid.NewString()
	size := int64(1024)
	require.NoError(s.t, NewFolderRepository(s.pool).CreateFile(context.Background(), model.FileRecord{
		ID: id, Name: name, Path: "it/" + id, Size: &size, DimensionID: s.dimensionID,
		FolderID: folderID, UploadedBy: uuid.NewString(), CreatedAt: s.now,
	}))
	return id
}

func (s *seed) task(folderID string, assignees ...string) model.Task {
	s.t.Helper()
	task := model.Task{
		ID:          uuid.NewString(),
		FolderID:    folderID,
		DimensionID: s.dimensionID,
		Title:       "Integration task",
		Status:      model.TaskStatusPending,
		CreatedBy:   uuid.NewString(),
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	for _, adminID := range assignees {
		task.Assignments = append(task.Assignments, model.TaskAssignment{
			ID: uuid.NewString(), TaskID: task.ID, AssignedAdminID: adminID, CreatedAt: s.now,
		})
	}
	require.NoError(s.t, NewTaskRepository(s.pool).Create(context.Background(), task, false))
	return task
}

func (s *seed) submit(task model.Task, assignment model.TaskAssignment) model.TaskSubmission {
	s.t.Helper()
	sub := model.TaskSubmission{
		ID:           uuid.NewString(),
		TaskID:       task.ID,
		AssignmentID: assignment.ID,
		SubmitterID:  assignment.AssignedAdminID,
		Payload:      "it/report.pdf",
		CreatedAt:    s.now,
	}
	require.NoError(s.t, NewTaskRepository(s.pool).RecordSubmission(context.Background(), sub))
	return sub
}

func (s *seed) locked(folderID string) bool {
	s.t.Helper()
	locked, err := NewFolderRepository(s.pool).IsLocked(context.Background(), folderID)
	require.NoError(s.t, err)
	return locked
}

func TestTaskRepository_FolderLockFollowsTaskStatus(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	s := newSeed(t, pool)
	tasks := NewTaskRepository(pool)

	worker := s.admin("Wes Worker")
	folderID := s.folder("reports", nil)
	require.False(t, s.locked(folderID))

	task := s.task(folderID, worker)
	assert.True(t, s.locked(folderID), "a pending task locks its folder")

	s.submit(task, task.Assignments[0])
	got, err := tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusForChecking, got.Status)
	assert.True(t, s.locked(folderID), "for-checking is still unresolved")

	require.NoError(t, tasks.ApplyReview(ctx, model.TaskReview{
		TaskID: task.ID, FolderID: folderID, Status: model.TaskStatusAccepted,
	}, s.now))
	assert.False(t, s.locked(folderID), "accepting the only task unlocks the folder")

	err = tasks.ApplyReview(ctx, model.TaskReview{TaskID: task.ID, FolderID: folderID, Status: model.TaskStatusRejected}, s.now)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	second := s.task(folderID, worker)
	require.True(t, s.locked(folderID))
	require.NoError(t, tasks.Delete(ctx, second.ID))
	assert.False(t, s.locked(folderID), "deleting the last unresolved task unlocks the folder")
}

func TestTaskRepository_ReviewRevisionRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	s := newSeed(t, pool)
	other := newSeed(t, pool)
	tasks := NewTaskRepository(pool)

	worker := s.admin("Wes Worker")
	folderID := s.folder("minutes", nil)
	task := s.task(folderID, worker)
	s.submit(task, task.Assignments[0])

	revision := &model.RevisionRequest{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		DimensionID: s.dimensionID,
		Status:      model.RevisionPending,
		Reason:      "missing totals",
		RequestedBy: uuid.NewString(),
		CreatedAt:   s.now,
	}
	require.NoError(t, tasks.ApplyReview(ctx, model.TaskReview{
		TaskID: task.ID, FolderID: folderID, Status: model.TaskStatusForRevision, Revision: revision,
	}, s.now))
	assert.True(t, s.locked(folderID), "for-revision keeps the folder locked")

	n, err := tasks.CountPendingRevisions(ctx, &s.dimensionID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = tasks.CountPendingRevisions(ctx, &other.dimensionID)
	require.NoError(t, err)
	assert.Zero(t, n, "the dimension filter excludes other dimensions")
	n, err = tasks.CountPendingRevisions(ctx, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	revisions, err := tasks.ListRevisions(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "missing totals", revisions[0].Reason)

	// Resubmitting resolves the pending request.
	s.submit(task, task.Assignments[0])
	n, err = tasks.CountPendingRevisions(ctx, &s.dimensionID)
	require.NoError(t, err)
	assert.Zero(t, n)

	revisions, err = tasks.ListRevisions(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, model.RevisionResolved, revisions[0].Status)
	assert.NotNil(t, revisions[0].ResolvedAt)
}

func TestTaskRepository_AssigneeRemovalKeepsSubmissions(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	s := newSeed(t, pool)
	tasks := NewTaskRepository(pool)

	worker := s.admin("Wes Worker")
	helper := s.admin("Hal Helper")
	task := s.task(s.folder("budgets", nil), worker, helper)
	sub := s.submit(task, task.Assignments[0])

	// Dropping the admin who submitted is refused.
	err := tasks.Update(ctx, task, []model.TaskAssignment{
		{ID: uuid.NewString(), TaskID: task.ID, AssignedAdminID: helper, CreatedAt: s.now},
	})
	assert.ErrorIs(t, err, model.ErrConflict)

	subs, err := tasks.ListSubmissions(ctx, model.SubmissionQuery{TaskID: task.ID})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].ID)

	// Dropping the admin who never submitted works and keeps the other row.
	require.NoError(t, tasks.Update(ctx, task, []model.TaskAssignment{
		{ID: uuid.NewString(), TaskID: task.ID, AssignedAdminID: worker, CreatedAt: s.now},
	}))
	got, err := tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Assignments, 1)
	assert.Equal(t, task.Assignments[0].ID, got.Assignments[0].ID)

	// Unknown assignees are bad input, not a backend failure.
	err = tasks.Update(ctx, task, []model.TaskAssignment{
		{ID: uuid.NewString(), TaskID: task.ID, AssignedAdminID: worker, CreatedAt: s.now},
		{ID: uuid.NewString(), TaskID: task.ID, AssignedAdminID: uuid.NewString(), CreatedAt: s.now},
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	// Deleting the task still takes its submissions with it.
	require.NoError(t, tasks.Delete(ctx, task.ID))
	subs, err = tasks.ListSubmissions(ctx, model.SubmissionQuery{TaskID: task.ID})
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestAdminRepository_ForeignKeysMapToDomainErrors(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	s := newSeed(t, pool)
	admins := NewAdminRepository(pool)

	missingDimension := int64(-1)
	id := uuid.NewString()
	err := admins.Create(ctx, model.Admin{
		ID: id, Email: id + "@school.test", FullName: "Nobody", PasswordHash: "x",
		Role: model.RoleLeader, DimensionID: &missingDimension, CreatedAt: s.now, UpdatedAt: s.now,
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	worker := s.admin("Wes Worker")
	task := s.task(s.folder("reports", nil), worker)
	s.submit(task, task.Assignments[0])

	assert.ErrorIs(t, admins.Delete(ctx, worker), model.ErrConflict)
	_, err = admins.FindByID(ctx, worker)
	assert.NoError(t, err)

	idle := s.admin("Ida Idle")
	require.NoError(t, admins.Delete(ctx, idle))
}

func TestTrashRepository_TopLevelAndRestore(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	s := newSeed(t, pool)
	folders := NewFolderRepository(pool)
	trash := NewTrashRepository(pool)
	deletedBy := uuid.NewString()

	parent := s.folder("archive", nil)
	child := s.folder("2025", &parent)
	nested := s.file("jan.pdf", &child)
	loose := s.file("loose.pdf", &parent)

	trashTree := func(rootID string, at time.Time) []model.TrashItem {
		t.Helper()
		tree, err := folders.Subtree(ctx, rootID)
		require.NoError(t, err)
		items := model.BuildTrashGroup(tree, deletedBy, at, uuid.NewString)
		require.NoError(t, folders.TrashSubtree(ctx, tree, items))
		return items
	}

	childItems := trashTree(child, s.now)
	require.Len(t, childItems, 2)

	looseFile, err := folders.FindFile(ctx, loose)
	require.NoError(t, err)
	looseItem := model.NewFileTrashItem(uuid.NewString(), looseFile, deletedBy, s.now.Add(time.Second))
	require.NoError(t, folders.TrashFile(ctx, looseItem))

	parentItems := trashTree(parent, s.now.Add(2*time.Second))
	require.Len(t, parentItems, 1, "already trashed nodes are not regrouped")

	top, err := trash.ListTopLevel(ctx, &s.dimensionID)
	require.NoError(t, err)
	ids := make([]string, 0, len(top))
	for _, item := range top {
		assert.True(t, item.IsTopLevel())
		ids = append(ids, item.ItemID)
	}
	assert.Equal(t, []string{parent, loose, child}, ids, "group roots and standalone items, newest first")

	group, err := trash.ListGroup(ctx, child)
	require.NoError(t, err)
	require.Len(t, group, 1)
	assert.Equal(t, nested, group[0].ItemID)

	// The child group comes back while its parent is still trashed, so it is
	// re-attached at the root.
	childRoot, err := trash.FindByID(ctx, childItems[0].ID)
	require.NoError(t, err)
	n, err := trash.Restore(ctx, childRoot)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	restoredChild, err := folders.FindFolder(ctx, child)
	require.NoError(t, err)
	assert.Nil(t, restoredChild.ParentID)
	restoredFile, err := folders.FindFile(ctx, nested)
	require.NoError(t, err)
	require.NotNil(t, restoredFile.FolderID)
	assert.Equal(t, child, *restoredFile.FolderID, "files inside the group keep their folder")

	n, err = trash.Restore(ctx, looseItem)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	restoredLoose, err := folders.FindFile(ctx, loose)
	require.NoError(t, err)
	assert.Nil(t, restoredLoose.FolderID, "a file whose folder is trashed lands at the root")

	top, err = trash.ListTopLevel(ctx, &s.dimensionID)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, parent, top[0].ItemID)
}
