package model

import "time"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ProvisionAdminRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name" validate:"required,max=120"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        Role   `json:"role" validate:"required,min=1,max=4"`
	DimensionID *int64 `json:"dimension_id" validate:"omitempty,min=1"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
}

type DimensionRequest struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
}

type CreateFolderRequest struct {
	Name        string  `json:"name" validate:"required"`
	DimensionID int64   `json:"dimension_id" validate:"required,min=1"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
}

type RegisterFileRequest struct {
	Name        string  `json:"name" validate:"required"`
	Path        string  `json:"path" validate:"required"`
	Size        *int64  `json:"size" validate:"omitempty,min=0"`
	Type        string  `json:"type"`
	DimensionID int64   `json:"dimension_id" validate:"required,min=1"`
	FolderID    *string `json:"folder_id" validate:"omitempty,uuid"`
}

type RenameFileRequest struct {
	Name string `json:"name" validate:"required"`
}

type MoveFileRequest struct {
	FolderID *string `json:"folder_id" validate:"omitempty,uuid"`
}

type UnlockFolderRequest struct {
	Password string `json:"password" validate:"required"`
}

type VerifyUnlockRequest struct {
	Token string `json:"token" validate:"required"`
}

type CreateTaskRequest struct {
	FolderID    string     `json:"folder_id" validate:"required,uuid"`
	DimensionID int64      `json:"dimension_id" validate:"required,min=1"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Assignees   []string   `json:"assignees" validate:"required,min=1,dive,uuid"`
	Due         *time.Time `json:"due"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Due         *time.Time `json:"due"`
	Assignees   []string   `json:"assignees" validate:"omitempty,dive,uuid"`
}

type SubmitWorkRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
	Payload      string `json:"payload" validate:"required"`
	Note         string `json:"note"`
}

type ReviewRequest struct {
	Decision ReviewDecision `json:"decision" validate:"required,oneof=accept requestRevision reject"`
	Comment  string         `json:"comment"`
}

type CreateAnnouncementRequest struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Content    string     `json:"content" validate:"required"`
	Visibility Visibility `json:"visibility" validate:"omitempty,oneof=all admins leaders"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

type UpdateAnnouncementRequest struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=200"`
	Content     *string     `json:"content" validate:"omitempty,min=1"`
	Visibility  *Visibility `json:"visibility" validate:"omitempty,oneof=all admins leaders"`
	ExpiresAt   *time.Time  `json:"expires_at"`
	ClearExpiry bool        `json:"clear_expiry"`
}
