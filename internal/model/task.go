package model

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "pending"
	TaskStatusForChecking TaskStatus = "for-checking"
	TaskStatusAccepted    TaskStatus = "accepted"
	TaskStatusForRevision TaskStatus = "for-revision"
	TaskStatusRejected    TaskStatus = "rejected"
)

// IncompleteStatuses are counted by the incomplete-task badge.
var IncompleteStatuses = []TaskStatus{TaskStatusPending, TaskStatusForChecking}

// UnresolvedStatuses keep the owning folder task-locked.
var UnresolvedStatuses = []TaskStatus{TaskStatusPending, TaskStatusForChecking, TaskStatusForRevision}

// AcceptsSubmission reports whether a new submission may be filed.
func (s TaskStatus) AcceptsSubmission() bool {
	switch s {
	case TaskStatusPending, TaskStatusForRevision, TaskStatusRejected:
		return true
	}
	return false
}

func (s TaskStatus) AwaitsReview() bool {
	return s == TaskStatusForChecking
}

type ReviewDecision string

const (
	DecisionAccept          ReviewDecision = "accept"
	DecisionRequestRevision ReviewDecision = "requestRevision"
	DecisionReject          ReviewDecision = "reject"
)

// Outcome maps a review decision to the next status and the log remark.
func (d ReviewDecision) Outcome() (TaskStatus, Remark, error) {
	switch d {
	case DecisionAccept:
		return TaskStatusAccepted, RemarkAccepted, nil
	case DecisionRequestRevision:
		return TaskStatusForRevision, RemarkForRevision, nil
	case DecisionReject:
		return TaskStatusRejected, RemarkRejected, nil
	}
	return "", "", fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, d)
}

// CheckIfLate is true only when at is strictly after due.
func CheckIfLate(due *time.Time, at time.Time) bool {
	return due != nil && at.After(*due)
}

type Task struct {
	ID          string           `json:"id"`
	FolderID    string           `json:"folder_id"`
	DimensionID int64            `json:"dimension_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      TaskStatus       `json:"status"`
	Due         *time.Time       `json:"due,omitempty"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Assignments []TaskAssignment `json:"assignments,omitempty"`
}

// AssignmentFor returns the assignment with the given id.
func (t Task) AssignmentFor(assignmentID string) (TaskAssignment, bool) {
	for _, a := range t.Assignments {
		if a.ID == assignmentID {
			return a, true
		}
	}
	return TaskAssignment{}, false
}

type TaskAssignment struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"task_id"`
	AssignedAdminID string    `json:"assigned_admin_id"`
	AssignedName    string    `json:"assigned_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type TaskSubmission struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"task_id"`
	AssignmentID   string    `json:"assignment_id"`
	SubmitterID    string    `json:"submitter_id"`
	Payload        string    `json:"payload"`
	Note           string    `json:"note,omitempty"`
	IsLate         bool      `json:"is_late"`
	CreatedAt      time.Time `json:"created_at"`
	SubmitterName  string    `json:"submitter_name,omitempty"`
	SubmitterEmail string    `json:"submitter_email,omitempty"`
}

type RevisionStatus string

const (
	RevisionPending  RevisionStatus = "pending"
	RevisionResolved RevisionStatus = "resolved"
)

type RevisionRequest struct {
	ID          string         `json:"id"`
	TaskID      string         `json:"task_id"`
	DimensionID int64          `json:"dimension_id"`
	Status      RevisionStatus `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	RequestedBy string         `json:"requested_by"`
	CreatedAt   time.Time      `json:"created_at"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
}

// TaskReview is the persisted result of reviewing a submission.
type TaskReview struct {
	TaskID   string
	FolderID string
	Status   TaskStatus
	Revision *RevisionRequest
}

type SubmissionQuery struct {
	TaskID       string
	AssignmentID string
}

type AssignmentWorkload struct {
	TaskID       string     `json:"task_id"`
	AssignmentID string     `json:"assignment_id"`
	FolderID     string     `json:"folder_id"`
	Title        string     `json:"title"`
	Status       TaskStatus `json:"status"`
	Due          *time.Time `json:"due,omitempty"`
}
