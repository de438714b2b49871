package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/model"
)

func TestAnnouncementService_ListActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	store := newFakeAnnouncements(
		model.Announcement{ID: "a-all", Title: "Holiday", Visibility: model.VisibilityAll},
		model.Announcement{ID: "a-admins", Title: "Budget", Visibility: model.VisibilityAdmins, ExpiresAt: &future},
		model.Announcement{ID: "a-leaders", Title: "Reports due", Visibility: model.VisibilityLeaders},
		model.Announcement{ID: "a-expired", Title: "Old", Visibility: model.VisibilityAll, ExpiresAt: &past},
	)
	svc := NewAnnouncementService(store)
	svc.now = fixedClock(now)

	ids := func(items []model.Announcement) []string {
		out := make([]string, 0, len(items))
		for _, a := range items {
			out = append(out, a.ID)
		}
		return out
	}

	adminView, err := svc.ListActive(ctx, orgAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-admins", "a-all"}, ids(adminView))

	leaderView, err := svc.ListActive(ctx, leaderOf("lead", 5))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-all", "a-leaders"}, ids(leaderView))

	all, err := svc.ListAdmin(ctx, superAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 4, "the management view includes expired items")
}

func TestAnnouncementService_Dismiss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeAnnouncements(model.Announcement{ID: "a1", Title: "Hi", Visibility: model.VisibilityAll})
	svc := NewAnnouncementService(store)
	lead := leaderOf("lead", 5)

	require.NoError(t, svc.Dismiss(ctx, lead, "a1"))
	require.NoError(t, svc.Dismiss(ctx, lead, "a1"), "dismissing twice is not an error")
	assert.Equal(t, 1, store.dismissalCount())

	active, err := svc.ListActive(ctx, lead)
	require.NoError(t, err)
	assert.Empty(t, active)

	others, err := svc.ListActive(ctx, orgAdmin)
	require.NoError(t, err)
	assert.Len(t, others, 1, "dismissals are per admin")

	assert.ErrorIs(t, svc.Dismiss(ctx, lead, "missing"), model.ErrAnnouncementNotFound)
}

func TestAnnouncementService_CreateAndUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeAnnouncements()
	svc := NewAnnouncementService(store)

	_, err := svc.Create(ctx, leaderOf("lead", 5), model.CreateAnnouncementRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.Create(ctx, orgAdmin, model.CreateAnnouncementRequest{Title: "  ", Content: "y"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	created, err := svc.Create(ctx, orgAdmin, model.CreateAnnouncementRequest{Title: " Exams ", Content: "Week 12"})
	require.NoError(t, err)
	assert.Equal(t, "Exams", created.Title)
	assert.Equal(t, model.VisibilityAll, created.Visibility)

	expiry := time.Now().Add(24 * time.Hour)
	leaders := model.VisibilityLeaders
	updated, err := svc.Update(ctx, orgAdmin, created.ID, model.AnnouncementPatch{Visibility: &leaders, ExpiresAt: &expiry})
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityLeaders, updated.Visibility)
	require.NotNil(t, updated.ExpiresAt)

	cleared, err := svc.Update(ctx, orgAdmin, created.ID, model.AnnouncementPatch{ClearExpiry: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.ExpiresAt)

	bogus := model.Visibility("everyone")
	_, err = svc.Update(ctx, orgAdmin, created.ID, model.AnnouncementPatch{Visibility: &bogus})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, orgAdmin, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, orgAdmin, created.ID), model.ErrAnnouncementNotFound)
}
