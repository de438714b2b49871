package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/model"
)

func newLockFixture(t *testing.T, now time.Time) (*LockService, *fakeFolders, *fakeUnlockTokens) {
	t.Helper()
	folders := newFakeFolders(
		model.Folder{ID: "locked", DimensionID: 5, TaskLocked: true},
		model.Folder{ID: "open", DimensionID: 5},
	)
	tokens := &fakeUnlockTokens{}
	admins := newFakeAdmins(
		model.Admin{ID: "lead", PasswordHash: mustHash(t, "pw"), Role: model.RoleLeader, DimensionID: int64Ptr(5)},
		model.Admin{ID: "admin", PasswordHash: mustHash(t, "pw"), Role: model.RoleAdmin},
	)
	svc := NewLockService(folders, tokens, admins, 15*time.Minute)
	svc.now = fixedClock(now)
	return svc, folders, tokens
}

func TestLockService_VerifyUnlock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	svc, _, tokens := newLockFixture(t, now)
	tokens.tokens = []model.UnlockToken{
		{FolderID: "locked", UserID: "lead", Token: "live", ExpiresAt: now.Add(time.Minute)},
		{FolderID: "locked", UserID: "lead", Token: "stale", ExpiresAt: now.Add(-time.Second)},
		{FolderID: "locked", UserID: "lead", Token: "edge", ExpiresAt: now},
	}

	assert.True(t, svc.VerifyUnlock(ctx, "locked", "live", "lead"))
	assert.True(t, svc.VerifyUnlock(ctx, "locked", "live", "lead"), "tokens are reusable until expiry")
	assert.False(t, svc.VerifyUnlock(ctx, "locked", "stale", "lead"), "expired token must be invalid")
	assert.False(t, svc.VerifyUnlock(ctx, "locked", "edge", "lead"), "expiry must be strictly in the future")
	assert.False(t, svc.VerifyUnlock(ctx, "locked", "live", "someone-else"))
	assert.False(t, svc.VerifyUnlock(ctx, "open", "live", "lead"))
	assert.False(t, svc.VerifyUnlock(ctx, "locked", "", "lead"))

	tokens.err = errors.New("connection reset")
	assert.False(t, svc.VerifyUnlock(ctx, "locked", "live", "lead"), "lookup errors collapse to invalid")
	assert.ErrorIs(t, svc.Verify(ctx, leaderOf("lead", 5), "locked", "live"), model.ErrInvalidUnlockToken)
}

func TestLockService_Verify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	svc, _, tokens := newLockFixture(t, now)
	tokens.tokens = []model.UnlockToken{{FolderID: "locked", UserID: "lead", Token: "live", ExpiresAt: now.Add(time.Minute)}}

	assert.NoError(t, svc.Verify(ctx, leaderOf("lead", 5), "locked", "live"))
	assert.ErrorIs(t, svc.Verify(ctx, leaderOf("lead", 5), "locked", "wrong"), model.ErrInvalidUnlockToken)
	assert.ErrorIs(t, svc.Verify(ctx, leaderOf("lead", 5), "locked", ""), model.ErrInvalidUnlockToken)
	assert.ErrorIs(t, svc.Verify(ctx, leaderOf("lead", 6), "locked", "live"), model.ErrForbidden)
	assert.ErrorIs(t, svc.Verify(ctx, leaderOf("lead", 5), "missing", "live"), model.ErrFolderNotFound)
}

func TestLockService_Authorize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	svc, _, tokens := newLockFixture(t, now)
	tokens.tokens = []model.UnlockToken{{FolderID: "locked", UserID: "lead", Token: "live", ExpiresAt: now.Add(time.Minute)}}

	assert.NoError(t, svc.Authorize(ctx, "open", "lead", ""))
	assert.ErrorIs(t, svc.Authorize(ctx, "locked", "lead", ""), model.ErrFolderLocked)
	assert.ErrorIs(t, svc.Authorize(ctx, "locked", "lead", "wrong"), model.ErrFolderLocked)
	assert.NoError(t, svc.Authorize(ctx, "locked", "lead", "live"))
	assert.ErrorIs(t, svc.Authorize(ctx, "missing", "lead", ""), model.ErrFolderNotFound)
}

func TestLockService_Unlock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	t.Run("re-authenticates and issues a time-boxed token", func(t *testing.T) {
		svc, _, _ := newLockFixture(t, now)

		token, err := svc.Unlock(ctx, leaderOf("lead", 5), "locked", "pw")
		require.NoError(t, err)
		assert.Equal(t, now.Add(15*time.Minute), token.ExpiresAt)
		assert.NoError(t, svc.Authorize(ctx, "locked", "lead", token.Token))

		svc.now = fixedClock(now.Add(15 * time.Minute))
		assert.ErrorIs(t, svc.Authorize(ctx, "locked", "lead", token.Token), model.ErrFolderLocked)
	})

	t.Run("wrong password issues nothing", func(t *testing.T) {
		svc, _, tokens := newLockFixture(t, now)

		_, err := svc.Unlock(ctx, leaderOf("lead", 5), "locked", "bad")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		assert.Empty(t, tokens.tokens)
	})

	t.Run("leader cannot unlock another dimension", func(t *testing.T) {
		svc, _, _ := newLockFixture(t, now)

		_, err := svc.Unlock(ctx, leaderOf("lead", 6), "locked", "pw")
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("status reports the flag", func(t *testing.T) {
		svc, _, _ := newLockFixture(t, now)

		status, err := svc.Status(ctx, orgAdmin, "locked")
		require.NoError(t, err)
		assert.True(t, status.TaskLocked)

		locked, err := svc.IsLocked(ctx, "open")
		require.NoError(t, err)
		assert.False(t, locked)
	})
}
