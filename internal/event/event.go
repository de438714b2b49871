package event

import (
	"time"

	"school-admin/internal/model"
)

type Type string

const (
	TypeTaskCreated   Type = "task.created"
	TypeTaskEdited    Type = "task.edited"
	TypeTaskDeleted   Type = "task.deleted"
	TypeTaskSubmitted Type = "task.submitted"
	TypeTaskReviewed  Type = "task.reviewed"
)

// Event carries one activity entry from a request to the recorder.
type Event struct {
	ID        string              `json:"id"`
	Type      Type                `json:"type"`
	Entry     model.ActivityEntry `json:"entry"`
	Timestamp time.Time           `json:"timestamp"`
	ActorID   string              `json:"actor_id,omitempty"`
}

type Bus interface {
	// Publish never blocks; it reports false when any subscriber dropped the event.
	Publish(e Event) bool
	Subscribe() (<-chan Event, func())
}
