package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"school-admin/internal/event"
	"school-admin/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var (
	superAdmin = model.Identity{AdminID: "super", FullName: "Sam Super", Role: model.RoleSuperAdmin}
	orgAdmin   = model.Identity{AdminID: "admin", FullName: "Ada Admin", Role: model.RoleAdmin}
	ofpAdmin   = model.Identity{AdminID: "ofp", FullName: "Olu Ofp", Role: model.RoleOFP}
)

func leaderOf(id string, dimensionID int64) model.Identity {
	return model.Identity{AdminID: id, FullName: "Lee " + id, Role: model.RoleLeader, DimensionID: int64Ptr(dimensionID)}
}

// --- admins -----------------------------------------------------------------

type fakeAdmins struct {
	mu   sync.Mutex
	byID map[string]model.Admin
}

func newFakeAdmins(admins ...model.Admin) *fakeAdmins {
	f := &fakeAdmins{byID: map[string]model.Admin{}}
	for _, a := range admins {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAdmins) FindByID(_ context.Context, id string) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return model.Admin{}, model.ErrAdminNotFound
	}
	return a, nil
}

func (f *fakeAdmins) FindByEmail(_ context.Context, email string) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return model.Admin{}, model.ErrAdminNotFound
}

func (f *fakeAdmins) Create(_ context.Context, a model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, a.Email) {
			return model.ErrConflict
		}
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAdmins) UpdateProfile(_ context.Context, id string, fullName string) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return model.Admin{}, model.ErrAdminNotFound
	}
	a.FullName = fullName
	f.byID[id] = a
	return a, nil
}

func (f *fakeAdmins) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return model.ErrAdminNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAdmins) List(context.Context) ([]model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Admin, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (f *fakeAdmins) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID), nil
}

func (f *fakeAdmins) ForceSignOut(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return model.ErrAdminNotFound
	}
	now := time.Now().UTC()
	a.SessionsRevokedAt = &now
	f.byID[id] = a
	return nil
}

// --- refresh tokens ---------------------------------------------------------

type fakeRefreshTokens struct {
	mu     sync.Mutex
	owners map[string]string
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{owners: map[string]string{}}
}

func (f *fakeRefreshTokens) Store(_ context.Context, token string, adminID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners[token] = adminID
	return nil
}

func (f *fakeRefreshTokens) Consume(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[token]
	if !ok {
		return "", model.ErrTokenNotFound
	}
	delete(f.owners, token)
	return owner, nil
}

func (f *fakeRefreshTokens) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.owners, token)
	return nil
}

// --- folders & files --------------------------------------------------------

type fakeFolders struct {
	mu      sync.Mutex
	folders map[string]model.Folder
	files   map[string]model.FileRecord
	deleted map[string]bool
	trashed []model.TrashItem
}

func newFakeFolders(folders ...model.Folder) *fakeFolders {
	f := &fakeFolders{
		folders: map[string]model.Folder{},
		files:   map[string]model.FileRecord{},
		deleted: map[string]bool{},
	}
	for _, folder := range folders {
		f.folders[folder.ID] = folder
	}
	return f
}

func (f *fakeFolders) setLocked(id string, locked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder := f.folders[id]
	folder.TaskLocked = locked
	f.folders[id] = folder
}

func (f *fakeFolders) locked(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.folders[id].TaskLocked
}

func (f *fakeFolders) CreateFolder(_ context.Context, folder model.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders[folder.ID] = folder
	return nil
}

func (f *fakeFolders) FindFolder(_ context.Context, id string) (model.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || f.deleted[id] {
		return model.Folder{}, model.ErrFolderNotFound
	}
	return folder, nil
}

func (f *fakeFolders) IsLocked(ctx context.Context, id string) (bool, error) {
	folder, err := f.FindFolder(ctx, id)
	if err != nil {
		return false, err
	}
	return folder.TaskLocked, nil
}

func (f *fakeFolders) ListContents(_ context.Context, folderID string) ([]model.Folder, []model.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folders := make([]model.Folder, 0)
	for _, folder := range f.folders {
		if folder.ParentID != nil && *folder.ParentID == folderID && !f.deleted[folder.ID] {
			folders = append(folders, folder)
		}
	}
	files := make([]model.FileRecord, 0)
	for _, file := range f.files {
		if file.FolderID != nil && *file.FolderID == folderID && !f.deleted[file.ID] {
			files = append(files, file)
		}
	}
	return folders, files, nil
}

func (f *fakeFolders) Subtree(ctx context.Context, rootID string) (model.FolderSubtree, error) {
	root, err := f.FindFolder(ctx, rootID)
	if err != nil {
		return model.FolderSubtree{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	tree := model.FolderSubtree{Root: root}
	queue := []string{root.ID}
	inTree := map[string]bool{root.ID: true}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		ids := make([]string, 0)
		for id, folder := range f.folders {
			if folder.ParentID != nil && *folder.ParentID == parent && !f.deleted[id] {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		for _, id := range ids {
			tree.Folders = append(tree.Folders, f.folders[id])
			inTree[id] = true
			queue = append(queue, id)
		}
	}
	fileIDs := make([]string, 0)
	for id, file := range f.files {
		if file.FolderID != nil && inTree[*file.FolderID] && !f.deleted[id] {
			fileIDs = append(fileIDs, id)
		}
	}
	sort.Strings(fileIDs)
	for _, id := range fileIDs {
		tree.Files = append(tree.Files, f.files[id])
	}
	return tree, nil
}

func (f *fakeFolders) TrashSubtree(_ context.Context, tree model.FolderSubtree, items []model.TrashItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted[tree.Root.ID] = true
	for _, folder := range tree.Folders {
		f.deleted[folder.ID] = true
	}
	for _, file := range tree.Files {
		f.deleted[file.ID] = true
	}
	f.trashed = append(f.trashed, items...)
	return nil
}

func (f *fakeFolders) CreateFile(_ context.Context, file model.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[file.ID] = file
	return nil
}

func (f *fakeFolders) FindFile(_ context.Context, id string) (model.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok || f.deleted[id] {
		return model.FileRecord{}, model.ErrFileNotFound
	}
	return file, nil
}

func (f *fakeFolders) RenameFile(_ context.Context, id string, name string) (model.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return model.FileRecord{}, model.ErrFileNotFound
	}
	file.Name = name
	f.files[id] = file
	return file, nil
}

func (f *fakeFolders) MoveFile(_ context.Context, id string, folderID *string) (model.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return model.FileRecord{}, model.ErrFileNotFound
	}
	file.FolderID = folderID
	f.files[id] = file
	return file, nil
}

func (f *fakeFolders) TrashFile(_ context.Context, item model.TrashItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted[item.ItemID] = true
	f.trashed = append(f.trashed, item)
	return nil
}

// --- unlock tokens ----------------------------------------------------------

type fakeUnlockTokens struct {
	mu     sync.Mutex
	tokens []model.UnlockToken
	err    error
}

func (f *fakeUnlockTokens) Create(_ context.Context, t model.UnlockToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, t)
	return nil
}

func (f *fakeUnlockTokens) Find(_ context.Context, folderID string, userID string, token string) (model.UnlockToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.UnlockToken{}, f.err
	}
	for _, t := range f.tokens {
		if t.FolderID == folderID && t.UserID == userID && t.Token == token {
			return t, nil
		}
	}
	return model.UnlockToken{}, model.ErrInvalidUnlockToken
}

// --- tasks ------------------------------------------------------------------

// fakeTasks mirrors the transactional rules of the task repository,
// including recomputing the folder lock after each write.
type fakeTasks struct {
	mu          sync.Mutex
	folders     *fakeFolders
	tasks       map[string]model.Task
	submissions []model.TaskSubmission
	revisions   []model.RevisionRequest
}

func newFakeTasks(folders *fakeFolders) *fakeTasks {
	return &fakeTasks{folders: folders, tasks: map[string]model.Task{}}
}

func (f *fakeTasks) syncLock(folderID string) {
	locked := false
	for _, t := range f.tasks {
		if t.FolderID != folderID {
			continue
		}
		for _, s := range model.UnresolvedStatuses {
			if t.Status == s {
				locked = true
			}
		}
	}
	f.folders.setLocked(folderID, locked)
}

func (f *fakeTasks) Create(_ context.Context, task model.Task, exclusive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if exclusive {
		for _, t := range f.tasks {
			if t.FolderID == task.FolderID && t.Status != model.TaskStatusAccepted && t.Status != model.TaskStatusRejected {
				return model.ErrConflict
			}
		}
	}
	f.tasks[task.ID] = task
	f.syncLock(task.FolderID)
	return nil
}

func (f *fakeTasks) Update(_ context.Context, task model.Task, assignments []model.TaskAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[task.ID]
	if !ok {
		return model.ErrTaskNotFound
	}
	existing.Title, existing.Description, existing.Due, existing.UpdatedAt = task.Title, task.Description, task.Due, task.UpdatedAt
	if assignments != nil {
		wanted := make(map[string]bool, len(assignments))
		for _, a := range assignments {
			wanted[a.AssignedAdminID] = true
		}
		next := make([]model.TaskAssignment, 0, len(assignments))
		present := make(map[string]bool)
		for _, a := range existing.Assignments {
			if wanted[a.AssignedAdminID] {
				next = append(next, a)
				present[a.AssignedAdminID] = true
				continue
			}
			for _, sub := range f.submissions {
				if sub.AssignmentID == a.ID {
					return model.ErrConflict
				}
			}
		}
		for _, a := range assignments {
			if !present[a.AssignedAdminID] {
				next = append(next, a)
			}
		}
		existing.Assignments = next
	}
	f.tasks[task.ID] = existing
	return nil
}

func (f *fakeTasks) FindByID(_ context.Context, id string) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return model.Task{}, model.ErrTaskNotFound
	}
	return t, nil
}

func (f *fakeTasks) ListByFolder(_ context.Context, folderID string) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, 0)
	for _, t := range f.tasks {
		if t.FolderID == folderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return model.ErrTaskNotFound
	}
	delete(f.tasks, id)
	f.syncLock(t.FolderID)
	return nil
}

func (f *fakeTasks) RecordSubmission(_ context.Context, sub model.TaskSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[sub.TaskID]
	if !ok {
		return model.ErrTaskNotFound
	}
	if !t.Status.AcceptsSubmission() {
		return model.ErrInvalidTransition
	}
	f.submissions = append(f.submissions, sub)
	t.Status = model.TaskStatusForChecking
	f.tasks[t.ID] = t
	for i := range f.revisions {
		if f.revisions[i].TaskID == t.ID && f.revisions[i].Status == model.RevisionPending {
			f.revisions[i].Status = model.RevisionResolved
		}
	}
	f.syncLock(t.FolderID)
	return nil
}

func (f *fakeTasks) ApplyReview(_ context.Context, review model.TaskReview, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[review.TaskID]
	if !ok || !t.Status.AwaitsReview() {
		return model.ErrInvalidTransition
	}
	t.Status = review.Status
	f.tasks[t.ID] = t
	if review.Revision != nil {
		f.revisions = append(f.revisions, *review.Revision)
	}
	f.syncLock(review.FolderID)
	return nil
}

func (f *fakeTasks) CountIncomplete(_ context.Context, folderID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if t.FolderID == folderID && (t.Status == model.TaskStatusPending || t.Status == model.TaskStatusForChecking) {
			n++
		}
	}
	return n, nil
}

func (f *fakeTasks) CountPendingRevisions(_ context.Context, dimensionID *int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.revisions {
		if r.Status == model.RevisionPending && (dimensionID == nil || r.DimensionID == *dimensionID) {
			n++
		}
	}
	return n, nil
}

func (f *fakeTasks) ListSubmissions(_ context.Context, q model.SubmissionQuery) ([]model.TaskSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TaskSubmission, 0)
	for _, s := range f.submissions {
		if (q.TaskID == "" || s.TaskID == q.TaskID) && (q.AssignmentID == "" || s.AssignmentID == q.AssignmentID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTasks) ListAssignmentsFor(_ context.Context, adminID string) ([]model.AssignmentWorkload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.AssignmentWorkload, 0)
	for _, t := range f.tasks {
		for _, a := range t.Assignments {
			if a.AssignedAdminID == adminID {
				out = append(out, model.AssignmentWorkload{
					TaskID: t.ID, AssignmentID: a.ID, FolderID: t.FolderID, Title: t.Title, Status: t.Status, Due: t.Due,
				})
			}
		}
	}
	return out, nil
}

func (f *fakeTasks) ListRevisions(_ context.Context, taskID string) ([]model.RevisionRequest, error) {
	return f.revisionsFor(taskID), nil
}

func (f *fakeTasks) revisionsFor(taskID string) []model.RevisionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.RevisionRequest, 0)
	for _, r := range f.revisions {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out
}

// --- activity ---------------------------------------------------------------

type recordedActivity struct {
	Type  event.Type
	Entry model.ActivityEntry
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (f *fakeRecorder) Record(typ event.Type, entry model.ActivityEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedActivity{Type: typ, Entry: entry})
}

func (f *fakeRecorder) remarks() []model.Remark {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Remark, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Entry.Remark)
	}
	return out
}

// MockActivityStore is a testify mock of ActivityStore.
type MockActivityStore struct {
	mock.Mock
}

func (m *MockActivityStore) Log(ctx context.Context, entry model.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityStore) Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.ActivityEntry), args.Get(1).(model.Meta), args.Error(2)
}

func (m *MockActivityStore) SystemLogs(ctx context.Context, limit int, dimensionID *int64) ([]model.SystemLog, error) {
	args := m.Called(ctx, limit, dimensionID)
	return args.Get(0).([]model.SystemLog), args.Error(1)
}

// MockUsageStore is a testify mock of UsageStore.
type MockUsageStore struct {
	mock.Mock
}

func (m *MockUsageStore) SumByDimension(ctx context.Context) (map[int64]model.UsageSum, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[int64]model.UsageSum), args.Error(1)
}

func (m *MockUsageStore) SumAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockDimensionStore is a testify mock of DimensionStore.
type MockDimensionStore struct {
	mock.Mock
}

func (m *MockDimensionStore) List(ctx context.Context) ([]model.Dimension, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Dimension), args.Error(1)
}

func (m *MockDimensionStore) FindByID(ctx context.Context, id int64) (model.Dimension, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Dimension), args.Error(1)
}

func (m *MockDimensionStore) Create(ctx context.Context, name string, slug string) (model.Dimension, error) {
	args := m.Called(ctx, name, slug)
	return args.Get(0).(model.Dimension), args.Error(1)
}

func (m *MockDimensionStore) Update(ctx context.Context, id int64, name string, slug string) (model.Dimension, error) {
	args := m.Called(ctx, id, name, slug)
	return args.Get(0).(model.Dimension), args.Error(1)
}

// --- trash ------------------------------------------------------------------

type fakeTrash struct {
	mu       sync.Mutex
	items    []model.TrashItem
	restored []model.TrashItem
}

func (f *fakeTrash) ListTopLevel(_ context.Context, dimensionID *int64) ([]model.TrashItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TrashItem, 0)
	for _, item := range f.items {
		if dimensionID != nil && item.DimensionID != *dimensionID {
			continue
		}
		if item.RootDeletedFolderID == nil || *item.RootDeletedFolderID == item.ItemID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeletedAt.After(out[j].DeletedAt) })
	return out, nil
}

func (f *fakeTrash) ListGroup(_ context.Context, rootID string) ([]model.TrashItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TrashItem, 0)
	for _, item := range f.items {
		if item.RootDeletedFolderID != nil && *item.RootDeletedFolderID == rootID && item.ItemID != rootID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeTrash) FindByID(_ context.Context, id string) (model.TrashItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return model.TrashItem{}, model.ErrTrashItemNotFound
}

func (f *fakeTrash) Restore(_ context.Context, item model.TrashItem) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	n := 0
	for _, it := range f.items {
		grouped := it.RootDeletedFolderID != nil && item.RootDeletedFolderID != nil && *it.RootDeletedFolderID == item.ItemID
		if it.ID == item.ID || grouped {
			f.restored = append(f.restored, it)
			n++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return n, nil
}

// --- announcements ----------------------------------------------------------

type dismissal struct{ announcementID, userID string }

type fakeAnnouncements struct {
	mu         sync.Mutex
	items      map[string]model.Announcement
	dismissals map[dismissal]bool
}

func newFakeAnnouncements(items ...model.Announcement) *fakeAnnouncements {
	f := &fakeAnnouncements{items: map[string]model.Announcement{}, dismissals: map[dismissal]bool{}}
	for _, a := range items {
		f.items[a.ID] = a
	}
	return f
}

func (f *fakeAnnouncements) Create(_ context.Context, a model.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[a.ID] = a
	return nil
}

func (f *fakeAnnouncements) FindByID(_ context.Context, id string) (model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return model.Announcement{}, model.ErrAnnouncementNotFound
	}
	return a, nil
}

func (f *fakeAnnouncements) Update(_ context.Context, a model.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[a.ID]; !ok {
		return model.ErrAnnouncementNotFound
	}
	f.items[a.ID] = a
	return nil
}

func (f *fakeAnnouncements) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return model.ErrAnnouncementNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAnnouncements) List(context.Context) ([]model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Announcement, 0, len(f.items))
	for _, a := range f.items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAnnouncements) ListUndismissed(_ context.Context, userID string, now time.Time) ([]model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Announcement, 0)
	for _, a := range f.items {
		if a.Expired(now) || f.dismissals[dismissal{a.ID, userID}] {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAnnouncements) Dismiss(_ context.Context, announcementID, userID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[announcementID]; !ok {
		return model.ErrAnnouncementNotFound
	}
	key := dismissal{announcementID, userID}
	if f.dismissals[key] {
		return model.ErrConflict
	}
	f.dismissals[key] = true
	return nil
}

func (f *fakeAnnouncements) dismissalCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dismissals)
}
