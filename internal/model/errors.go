package model

import "errors"

var (
	// Identity
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrProfileNotFound    = errors.New("admin profile not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenNotFound      = errors.New("token not found")

	// Authorization
	ErrForbidden = errors.New("forbidden")

	// Lookups
	ErrAdminNotFound        = errors.New("admin not found")
	ErrDimensionNotFound    = errors.New("dimension not found")
	ErrFolderNotFound       = errors.New("folder not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrTrashItemNotFound    = errors.New("trash item not found")

	// State
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid task status transition")
	ErrFolderLocked       = errors.New("folder is locked by an unresolved task")
	ErrInvalidUnlockToken = errors.New("unlock token is invalid or expired")

	ErrInvalidInput = errors.New("invalid input")
)
