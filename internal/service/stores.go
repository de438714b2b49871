package service

import (
	"context"
	"time"

	"school-admin/internal/model"
)

// The services below depend on these narrow views of the repositories so
// they can run against in-memory fakes in tests.

type AdminStore interface {
	FindByID(ctx context.Context, id string) (model.Admin, error)
	FindByEmail(ctx context.Context, email string) (model.Admin, error)
	Create(ctx context.Context, a model.Admin) error
	UpdateProfile(ctx context.Context, id string, fullName string) (model.Admin, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Admin, error)
	Count(ctx context.Context) (int, error)
	ForceSignOut(ctx context.Context, id string) error
}

type RefreshTokenStore interface {
	Store(ctx context.Context, token string, adminID string, expiresAt time.Time) error
	Consume(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type DimensionStore interface {
	List(ctx context.Context) ([]model.Dimension, error)
	FindByID(ctx context.Context, id int64) (model.Dimension, error)
	Create(ctx context.Context, name string, slug string) (model.Dimension, error)
	Update(ctx context.Context, id int64, name string, slug string) (model.Dimension, error)
}

type FolderStore interface {
	CreateFolder(ctx context.Context, f model.Folder) error
	FindFolder(ctx context.Context, id string) (model.Folder, error)
	IsLocked(ctx context.Context, id string) (bool, error)
	ListContents(ctx context.Context, folderID string) ([]model.Folder, []model.FileRecord, error)
	Subtree(ctx context.Context, rootID string) (model.FolderSubtree, error)
	TrashSubtree(ctx context.Context, tree model.FolderSubtree, items []model.TrashItem) error
	CreateFile(ctx context.Context, f model.FileRecord) error
	FindFile(ctx context.Context, id string) (model.FileRecord, error)
	RenameFile(ctx context.Context, id string, name string) (model.FileRecord, error)
	MoveFile(ctx context.Context, id string, folderID *string) (model.FileRecord, error)
	TrashFile(ctx context.Context, item model.TrashItem) error
}

type UnlockTokenStore interface {
	Create(ctx context.Context, t model.UnlockToken) error
	Find(ctx context.Context, folderID string, userID string, token string) (model.UnlockToken, error)
}

type TaskStore interface {
	Create(ctx context.Context, task model.Task, exclusive bool) error
	Update(ctx context.Context, task model.Task, assignments []model.TaskAssignment) error
	FindByID(ctx context.Context, id string) (model.Task, error)
	ListByFolder(ctx context.Context, folderID string) ([]model.Task, error)
	Delete(ctx context.Context, id string) error
	RecordSubmission(ctx context.Context, sub model.TaskSubmission) error
	ApplyReview(ctx context.Context, review model.TaskReview, at time.Time) error
	CountIncomplete(ctx context.Context, folderID string) (int, error)
	CountPendingRevisions(ctx context.Context, dimensionID *int64) (int, error)
	ListRevisions(ctx context.Context, taskID string) ([]model.RevisionRequest, error)
	ListSubmissions(ctx context.Context, q model.SubmissionQuery) ([]model.TaskSubmission, error)
	ListAssignmentsFor(ctx context.Context, adminID string) ([]model.AssignmentWorkload, error)
}

type UsageStore interface {
	SumByDimension(ctx context.Context) (map[int64]model.UsageSum, error)
	SumAll(ctx context.Context) (int64, error)
}

type TrashStore interface {
	ListTopLevel(ctx context.Context, dimensionID *int64) ([]model.TrashItem, error)
	ListGroup(ctx context.Context, rootID string) ([]model.TrashItem, error)
	FindByID(ctx context.Context, id string) (model.TrashItem, error)
	Restore(ctx context.Context, item model.TrashItem) (int, error)
}

type AnnouncementStore interface {
	Create(ctx context.Context, a model.Announcement) error
	FindByID(ctx context.Context, id string) (model.Announcement, error)
	Update(ctx context.Context, a model.Announcement) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Announcement, error)
	ListUndismissed(ctx context.Context, userID string, now time.Time) ([]model.Announcement, error)
	Dismiss(ctx context.Context, announcementID, userID string, at time.Time) error
}

type ActivityStore interface {
	Log(ctx context.Context, entry model.ActivityEntry) error
	Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error)
	SystemLogs(ctx context.Context, limit int, dimensionID *int64) ([]model.SystemLog, error)
}

// UsageInvalidator is told when file sizes counted by the storage totals
// change.
type UsageInvalidator interface {
	InvalidateUsage(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateUsage(context.Context) {}
