package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"school-admin/internal/model"
	"school-admin/internal/policy"
)

// LockService gates file operations inside task-locked folders.
type LockService struct {
	folders FolderStore
	tokens  UnlockTokenStore
	admins  AdminStore
	ttl     time.Duration
	now     func() time.Time
}

func NewLockService(folders FolderStore, tokens UnlockTokenStore, admins AdminStore, ttl time.Duration) *LockService {
	return &LockService{
		folders: folders,
		tokens:  tokens,
		admins:  admins,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *LockService) IsLocked(ctx context.Context, folderID string) (bool, error) {
	return s.folders.IsLocked(ctx, folderID)
}

// Status reports the lock flag of a folder the caller can see.
func (s *LockService) Status(ctx context.Context, caller model.Identity, folderID string) (model.LockStatus, error) {
	if err := policy.Authorize(caller, policy.OpFolderRead); err != nil {
		return model.LockStatus{}, err
	}
	folder, err := s.folders.FindFolder(ctx, folderID)
	if err != nil {
		return model.LockStatus{}, err
	}
	if err := policy.ScopeDimension(caller, folder.DimensionID); err != nil {
		return model.LockStatus{}, err
	}
	return model.LockStatus{FolderID: folder.ID, TaskLocked: folder.TaskLocked}, nil
}

// VerifyUnlock is true iff a token row matches all three keys and has not
// expired. Lookup failures and misses are indistinguishable to the caller.
func (s *LockService) VerifyUnlock(ctx context.Context, folderID string, token string, userID string) bool {
	if token == "" {
		return false
	}
	t, err := s.tokens.Find(ctx, folderID, userID, token)
	if err != nil {
		if !errors.Is(err, model.ErrInvalidUnlockToken) {
			slog.Warn("unlock token lookup failed", "folder_id", folderID, "error", err.Error())
		}
		return false
	}
	return t.Usable(s.now())
}

// Verify checks a token the caller holds for a folder they can see and
// returns ErrInvalidUnlockToken when it does not admit them.
func (s *LockService) Verify(ctx context.Context, caller model.Identity, folderID string, token string) error {
	if err := policy.Authorize(caller, policy.OpFolderRead); err != nil {
		return err
	}
	folder, err := s.folders.FindFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if err := policy.ScopeDimension(caller, folder.DimensionID); err != nil {
		return err
	}
	if !s.VerifyUnlock(ctx, folder.ID, token, caller.AdminID) {
		return model.ErrInvalidUnlockToken
	}
	return nil
}

// Unlock re-authenticates the caller and issues a token for the folder.
// Tokens stay valid until they expire.
func (s *LockService) Unlock(ctx context.Context, caller model.Identity, folderID string, password string) (model.UnlockToken, error) {
	if err := policy.Authorize(caller, policy.OpFolderUnlock); err != nil {
		return model.UnlockToken{}, err
	}
	folder, err := s.folders.FindFolder(ctx, folderID)
	if err != nil {
		return model.UnlockToken{}, err
	}
	if err := policy.ScopeDimension(caller, folder.DimensionID); err != nil {
		return model.UnlockToken{}, err
	}

	admin, err := s.admins.FindByID(ctx, caller.AdminID)
	if err != nil {
		return model.UnlockToken{}, asProfileError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return model.UnlockToken{}, model.ErrInvalidCredentials
	}

	token := model.UnlockToken{
		FolderID:  folder.ID,
		UserID:    caller.AdminID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return model.UnlockToken{}, err
	}
	return token, nil
}

// Authorize admits an operation inside folderID when the folder is not
// task-locked or the caller presents a valid unlock token.
func (s *LockService) Authorize(ctx context.Context, folderID string, userID string, token string) error {
	locked, err := s.IsLocked(ctx, folderID)
	if err != nil {
		return err
	}
	if !locked {
		return nil
	}
	if s.VerifyUnlock(ctx, folderID, token, userID) {
		return nil
	}
	return model.ErrFolderLocked
}
