package model

import "time"

// Remark classifies a task activity entry.
type Remark string

const (
	RemarkCreated     Remark = "Created"
	RemarkEdited      Remark = "Edited"
	RemarkDeleted     Remark = "Deleted"
	RemarkAccepted    Remark = "Accepted"
	RemarkForRevision Remark = "For Revision"
	RemarkRejected    Remark = "Rejected"
	RemarkLate        Remark = "Late"
	RemarkOnTime      Remark = "On time"
)

// SubmissionRemark picks Late or On time for a submission made at the given instant.
func SubmissionRemark(due *time.Time, at time.Time) Remark {
	if CheckIfLate(due, at) {
		return RemarkLate
	}
	return RemarkOnTime
}

// ActivityEntry is an append-only task audit record.
type ActivityEntry struct {
	ID          int64          `json:"id"`
	TaskID      string         `json:"task_id"`
	FolderID    string         `json:"folder_id"`
	DimensionID int64          `json:"dimension_id"`
	Action      string         `json:"action"`
	ActorID     string         `json:"actor_id"`
	ActorRole   string         `json:"actor_role"`
	Description string         `json:"description"`
	Remark      Remark         `json:"remark"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Due         *time.Time     `json:"due,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type ActivityQuery struct {
	TaskID      string
	FolderID    string
	DimensionID *int64
	Page        int
	Limit       int
}

// SystemLog is one row of the detailed log report.
type SystemLog struct {
	ID            int64     `json:"id"`
	TaskID        string    `json:"task_id"`
	TaskTitle     string    `json:"task_title"`
	FolderName    string    `json:"folder_name"`
	DimensionName string    `json:"dimension_name"`
	ActorName     string    `json:"actor_name"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	Remark        string    `json:"remark"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}
