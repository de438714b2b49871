package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"school-admin/internal/event"
	"school-admin/internal/model"
	"school-admin/internal/policy"
)

type activityRecorder interface {
	Record(typ event.Type, entry model.ActivityEntry)
}

// TaskService drives the task lifecycle:
//
//	pending -> for-checking -> accepted | for-revision | rejected
//
// for-revision and rejected re-enter for-checking through a new submission;
// accepted is terminal. Every state change recomputes the folder lock in the
// same transaction and is reported to the activity log afterwards.
type TaskService struct {
	tasks     TaskStore
	folders   FolderStore
	gate      *LockService
	activity  activityRecorder
	exclusive bool
	now       func() time.Time
	newID     func() string
}

// NewTaskService builds the workflow engine. With allowConcurrent false a
// folder carries at most one unresolved task at a time.
func NewTaskService(tasks TaskStore, folders FolderStore, gate *LockService, activity activityRecorder, allowConcurrent bool) *TaskService {
	return &TaskService{
		tasks:     tasks,
		folders:   folders,
		gate:      gate,
		activity:  activity,
		exclusive: !allowConcurrent,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *TaskService) Create(ctx context.Context, caller model.Identity, req model.CreateTaskRequest, unlockToken string) (model.Task, error) {
	if err := policy.Authorize(caller, policy.OpTaskCreate); err != nil {
		return model.Task{}, err
	}
	if err := policy.ScopeDimension(caller, req.DimensionID); err != nil {
		return model.Task{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	}
	assignees := uniqueIDs(req.Assignees)
	if len(assignees) == 0 {
		return model.Task{}, fmt.Errorf("%w: at least one assignee is required", model.ErrInvalidInput)
	}

	folder, err := s.folders.FindFolder(ctx, req.FolderID)
	if err != nil {
		return model.Task{}, err
	}
	if folder.DimensionID != req.DimensionID {
		return model.Task{}, fmt.Errorf("%w: folder belongs to another dimension", model.ErrInvalidInput)
	}
	// In exclusive mode the store refuses a busy folder with ErrConflict.
	if !s.exclusive {
		if err := s.gate.Authorize(ctx, folder.ID, caller.AdminID, unlockToken); err != nil {
			return model.Task{}, err
		}
	}

	now := s.now()
	task := model.Task{
		ID:          s.newID(),
		FolderID:    folder.ID,
		DimensionID: req.DimensionID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      model.TaskStatusPending,
		Due:         req.Due,
		CreatedBy:   caller.AdminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task.Assignments = s.buildAssignments(task.ID, assignees, now)

	if err := s.tasks.Create(ctx, task, s.exclusive); err != nil {
		return model.Task{}, err
	}

	s.record(event.TypeTaskCreated, task, caller, "create", model.RemarkCreated,
		fmt.Sprintf("%s created task %q", caller.FullName, task.Title),
		map[string]any{"assignees": assignees})
	return task, nil
}

// Update edits a task inside its folder, so a locked folder needs the
// caller's unlock token. Assignees who already submitted cannot be removed.
func (s *TaskService) Update(ctx context.Context, caller model.Identity, taskID string, req model.UpdateTaskRequest, unlockToken string) (model.Task, error) {
	if err := policy.Authorize(caller, policy.OpTaskUpdate); err != nil {
		return model.Task{}, err
	}
	task, err := s.scopedTask(ctx, caller, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.gate.Authorize(ctx, task.FolderID, caller.AdminID, unlockToken); err != nil {
		return model.Task{}, err
	}

	changed := make([]string, 0, 4)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return model.Task{}, fmt.Errorf("%w: title cannot be empty", model.ErrInvalidInput)
		}
		task.Title = title
		changed = append(changed, "title")
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
		changed = append(changed, "description")
	}
	if req.Due != nil {
		task.Due = req.Due
		changed = append(changed, "due")
	}

	now := s.now()
	var assignments []model.TaskAssignment
	if req.Assignees != nil {
		ids := uniqueIDs(req.Assignees)
		if len(ids) == 0 {
			return model.Task{}, fmt.Errorf("%w: at least one assignee is required", model.ErrInvalidInput)
		}
		if err := s.checkRemovedAssignees(ctx, task, ids); err != nil {
			return model.Task{}, err
		}
		assignments = s.buildAssignments(task.ID, ids, now)
		changed = append(changed, "assignees")
	}
	task.UpdatedAt = now

	if err := s.tasks.Update(ctx, task, assignments); err != nil {
		return model.Task{}, err
	}
	updated, err := s.tasks.FindByID(ctx, task.ID)
	if err != nil {
		return model.Task{}, err
	}

	s.record(event.TypeTaskEdited, updated, caller, "update", model.RemarkEdited,
		fmt.Sprintf("%s edited task %q", caller.FullName, updated.Title),
		map[string]any{"changed": changed})
	return updated, nil
}

func (s *TaskService) Get(ctx context.Context, caller model.Identity, taskID string) (model.Task, error) {
	if err := policy.Authorize(caller, policy.OpTaskRead); err != nil {
		return model.Task{}, err
	}
	return s.scopedTask(ctx, caller, taskID)
}

func (s *TaskService) ListByFolder(ctx context.Context, caller model.Identity, folderID string) ([]model.Task, error) {
	if err := policy.Authorize(caller, policy.OpTaskRead); err != nil {
		return nil, err
	}
	folder, err := s.folders.FindFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if err := policy.ScopeDimension(caller, folder.DimensionID); err != nil {
		return nil, err
	}
	return s.tasks.ListByFolder(ctx, folder.ID)
}

// Delete removes a task and its history. Like Update it passes the lock gate
// of the task's folder.
func (s *TaskService) Delete(ctx context.Context, caller model.Identity, taskID string, unlockToken string) error {
	if err := policy.Authorize(caller, policy.OpTaskDelete); err != nil {
		return err
	}
	task, err := s.scopedTask(ctx, caller, taskID)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, task.FolderID, caller.AdminID, unlockToken); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}

	s.record(event.TypeTaskDeleted, task, caller, "delete", model.RemarkDeleted,
		fmt.Sprintf("%s deleted task %q", caller.FullName, task.Title), nil)
	return nil
}

// Submit files work against one of the task's assignments. Only the admin
// named on that assignment may submit.
func (s *TaskService) Submit(ctx context.Context, caller model.Identity, taskID string, req model.SubmitWorkRequest) (model.TaskSubmission, error) {
	if err := policy.Authorize(caller, policy.OpTaskSubmit); err != nil {
		return model.TaskSubmission{}, err
	}
	payload := strings.TrimSpace(req.Payload)
	if payload == "" {
		return model.TaskSubmission{}, fmt.Errorf("%w: payload is required", model.ErrInvalidInput)
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return model.TaskSubmission{}, err
	}
	assignment, ok := task.AssignmentFor(req.AssignmentID)
	if !ok {
		return model.TaskSubmission{}, model.ErrAssignmentNotFound
	}
	if assignment.AssignedAdminID != caller.AdminID {
		return model.TaskSubmission{}, fmt.Errorf("%w: only the assignee may submit", model.ErrForbidden)
	}
	if !task.Status.AcceptsSubmission() {
		return model.TaskSubmission{}, fmt.Errorf("%w: task is %s", model.ErrInvalidTransition, task.Status)
	}

	now := s.now()
	sub := model.TaskSubmission{
		ID:           s.newID(),
		TaskID:       task.ID,
		AssignmentID: assignment.ID,
		SubmitterID:  caller.AdminID,
		Payload:      payload,
		Note:         strings.TrimSpace(req.Note),
		IsLate:       model.CheckIfLate(task.Due, now),
		CreatedAt:    now,
	}
	if err := s.tasks.RecordSubmission(ctx, sub); err != nil {
		return model.TaskSubmission{}, err
	}

	task.Status = model.TaskStatusForChecking
	s.record(event.TypeTaskSubmitted, task, caller, "submit", model.SubmissionRemark(task.Due, now),
		fmt.Sprintf("%s submitted work for %q", caller.FullName, task.Title),
		map[string]any{"submission_id": sub.ID, "assignment_id": assignment.ID})
	sub.SubmitterName = caller.FullName
	sub.SubmitterEmail = caller.Email
	return sub, nil
}

// Review settles a for-checking task. requestRevision also opens a pending
// revision request.
func (s *TaskService) Review(ctx context.Context, caller model.Identity, taskID string, req model.ReviewRequest) (model.Task, error) {
	if err := policy.Authorize(caller, policy.OpTaskReview); err != nil {
		return model.Task{}, err
	}
	next, remark, err := req.Decision.Outcome()
	if err != nil {
		return model.Task{}, err
	}
	task, err := s.scopedTask(ctx, caller, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if !task.Status.AwaitsReview() {
		return model.Task{}, fmt.Errorf("%w: task is %s", model.ErrInvalidTransition, task.Status)
	}

	now := s.now()
	review := model.TaskReview{TaskID: task.ID, FolderID: task.FolderID, Status: next}
	if next == model.TaskStatusForRevision {
		review.Revision = &model.RevisionRequest{
			ID:          s.newID(),
			TaskID:      task.ID,
			DimensionID: task.DimensionID,
			Status:      model.RevisionPending,
			Reason:      strings.TrimSpace(req.Comment),
			RequestedBy: caller.AdminID,
			CreatedAt:   now,
		}
	}
	if err := s.tasks.ApplyReview(ctx, review, now); err != nil {
		return model.Task{}, err
	}

	task.Status = next
	task.UpdatedAt = now
	metadata := map[string]any{"decision": string(req.Decision)}
	if c := strings.TrimSpace(req.Comment); c != "" {
		metadata["comment"] = c
	}
	s.record(event.TypeTaskReviewed, task, caller, "review", remark,
		fmt.Sprintf("%s reviewed %q: %s", caller.FullName, task.Title, remark), metadata)
	return task, nil
}

// Revisions lists the revision requests raised on a task, oldest first.
func (s *TaskService) Revisions(ctx context.Context, caller model.Identity, taskID string) ([]model.RevisionRequest, error) {
	if err := policy.Authorize(caller, policy.OpTaskRead); err != nil {
		return nil, err
	}
	task, err := s.scopedTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListRevisions(ctx, task.ID)
}

// IncompleteCount counts pending and for-checking tasks in a folder.
func (s *TaskService) IncompleteCount(ctx context.Context, caller model.Identity, folderID string) (int, error) {
	if err := policy.Authorize(caller, policy.OpTaskRead); err != nil {
		return 0, err
	}
	if strings.TrimSpace(folderID) == "" {
		return 0, fmt.Errorf("%w: folderId is required", model.ErrInvalidInput)
	}
	return s.tasks.CountIncomplete(ctx, folderID)
}

// PendingRevisionsCount is global for org-wide roles and per-dimension for leaders.
func (s *TaskService) PendingRevisionsCount(ctx context.Context, caller model.Identity) (int, error) {
	if err := policy.Authorize(caller, policy.OpRevisionCount); err != nil {
		return 0, err
	}
	scope, err := policy.DimensionFilter(caller)
	if err != nil {
		return 0, err
	}
	return s.tasks.CountPendingRevisions(ctx, scope)
}

// ListSubmissions filters by task and/or assignment. A leader either names a
// task in their dimension or sees only their own submissions.
func (s *TaskService) ListSubmissions(ctx context.Context, caller model.Identity, q model.SubmissionQuery) ([]model.TaskSubmission, error) {
	if err := policy.Authorize(caller, policy.OpTaskRead); err != nil {
		return nil, err
	}
	if caller.Role.OrgWide() {
		return s.tasks.ListSubmissions(ctx, q)
	}

	if q.TaskID != "" {
		if _, err := s.scopedTask(ctx, caller, q.TaskID); err != nil {
			return nil, err
		}
		return s.tasks.ListSubmissions(ctx, q)
	}

	all, err := s.tasks.ListSubmissions(ctx, q)
	if err != nil {
		return nil, err
	}
	own := make([]model.TaskSubmission, 0, len(all))
	for _, sub := range all {
		if sub.SubmitterID == caller.AdminID {
			own = append(own, sub)
		}
	}
	return own, nil
}

func (s *TaskService) MyAssignments(ctx context.Context, caller model.Identity) ([]model.AssignmentWorkload, error) {
	if err := policy.Authorize(caller, policy.OpTaskRead); err != nil {
		return nil, err
	}
	return s.tasks.ListAssignmentsFor(ctx, caller.AdminID)
}

func (s *TaskService) scopedTask(ctx context.Context, caller model.Identity, taskID string) (model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if err := policy.ScopeDimension(caller, task.DimensionID); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// checkRemovedAssignees refuses an assignee set that drops an admin whose
// assignment already carries submissions.
func (s *TaskService) checkRemovedAssignees(ctx context.Context, task model.Task, keep []string) error {
	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	removed := make(map[string]bool)
	for _, a := range task.Assignments {
		if !kept[a.AssignedAdminID] {
			removed[a.ID] = true
		}
	}
	if len(removed) == 0 {
		return nil
	}

	subs, err := s.tasks.ListSubmissions(ctx, model.SubmissionQuery{TaskID: task.ID})
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if removed[sub.AssignmentID] {
			return fmt.Errorf("%w: assignee %s already submitted work", model.ErrConflict, sub.SubmitterID)
		}
	}
	return nil
}

func (s *TaskService) buildAssignments(taskID string, adminIDs []string, at time.Time) []model.TaskAssignment {
	out := make([]model.TaskAssignment, 0, len(adminIDs))
	for _, id := range adminIDs {
		out = append(out, model.TaskAssignment{
			ID:              s.newID(),
			TaskID:          taskID,
			AssignedAdminID: id,
			CreatedAt:       at,
		})
	}
	return out
}

func (s *TaskService) record(typ event.Type, task model.Task, caller model.Identity, action string, remark model.Remark, description string, metadata map[string]any) {
	s.activity.Record(typ, model.ActivityEntry{
		TaskID:      task.ID,
		FolderID:    task.FolderID,
		DimensionID: task.DimensionID,
		Action:      action,
		ActorID:     caller.AdminID,
		ActorRole:   caller.ActorRole(),
		Description: description,
		Remark:      remark,
		Metadata:    metadata,
		Due:         task.Due,
		CreatedAt:   s.now(),
	})
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
