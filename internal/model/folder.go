package model

import "time"

type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DimensionID int64     `json:"dimension_id"`
	ParentID    *string   `json:"parent_id,omitempty"`
	TaskLocked  bool      `json:"task_locked"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileRecord is the metadata of a document whose bytes live in object storage.
type FileRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Size        *int64    `json:"size,omitempty"`
	Type        string    `json:"type"`
	DimensionID int64     `json:"dimension_id"`
	FolderID    *string   `json:"folder_id,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FolderContents struct {
	Folder  Folder       `json:"folder"`
	Folders []Folder     `json:"folders"`
	Files   []FileRecord `json:"files"`
}

// FolderSubtree is a folder together with every live descendant.
type FolderSubtree struct {
	Root    Folder
	Folders []Folder
	Files   []FileRecord
}

type UnlockToken struct {
	FolderID  string    `json:"folder_id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Usable reports whether the token is still inside its validity window.
func (t UnlockToken) Usable(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

type LockStatus struct {
	FolderID   string `json:"folder_id"`
	TaskLocked bool   `json:"task_locked"`
}
