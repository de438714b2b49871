package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/model"
)

func newTrashFixture() (*TrashService, *fakeTrash) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeTrash{items: []model.TrashItem{
		{ID: "t-folder", ItemID: "f1", ItemType: model.ItemTypeFolder, Name: "minutes", DimensionID: 5, RootDeletedFolderID: strPtr("f1"), DeletedAt: base},
		{ID: "t-sub", ItemID: "f2", ItemType: model.ItemTypeFolder, Name: "2025", DimensionID: 5, RootDeletedFolderID: strPtr("f1"), DeletedAt: base},
		{ID: "t-nested", ItemID: "doc1", ItemType: model.ItemTypeFile, Name: "jan.pdf", DimensionID: 5, RootDeletedFolderID: strPtr("f1"), DeletedAt: base},
		{ID: "t-single", ItemID: "doc2", ItemType: model.ItemTypeFile, Name: "loose.pdf", DimensionID: 5, DeletedAt: base.Add(time.Hour)},
		{ID: "t-other", ItemID: "doc3", ItemType: model.ItemTypeFile, Name: "budget.xlsx", DimensionID: 8, DeletedAt: base.Add(2 * time.Hour)},
	}}
	return NewTrashService(store, nil), store
}

func TestTrashService_ListTopLevel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("hides grouped descendants, newest first", func(t *testing.T) {
		svc, _ := newTrashFixture()
		items, err := svc.ListTopLevel(ctx, orgAdmin, nil)
		require.NoError(t, err)

		ids := make([]string, 0, len(items))
		for _, item := range items {
			assert.True(t, item.IsTopLevel())
			ids = append(ids, item.ID)
		}
		assert.Equal(t, []string{"t-other", "t-single", "t-folder"}, ids)
	})

	t.Run("leaders only see their dimension", func(t *testing.T) {
		svc, _ := newTrashFixture()
		items, err := svc.ListTopLevel(ctx, leaderOf("lead", 5), nil)
		require.NoError(t, err)
		require.Len(t, items, 2)
		for _, item := range items {
			assert.Equal(t, int64(5), item.DimensionID)
		}

		_, err = svc.ListTopLevel(ctx, leaderOf("lead", 5), int64Ptr(8))
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestTrashService_ListGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTrashFixture()

	group, err := svc.ListGroup(ctx, orgAdmin, "t-folder")
	require.NoError(t, err)
	assert.Len(t, group, 2)

	empty, err := svc.ListGroup(ctx, orgAdmin, "t-single")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.ListGroup(ctx, orgAdmin, "missing")
	assert.ErrorIs(t, err, model.ErrTrashItemNotFound)
}

func TestTrashService_Restore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("restoring the root brings back the group", func(t *testing.T) {
		svc, store := newTrashFixture()
		n, err := svc.Restore(ctx, leaderOf("lead", 5), "t-folder")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Len(t, store.items, 2)
	})

	t.Run("grouped descendants cannot be restored alone", func(t *testing.T) {
		svc, store := newTrashFixture()
		_, err := svc.Restore(ctx, orgAdmin, "t-nested")
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Empty(t, store.restored)
	})

	t.Run("out of scope", func(t *testing.T) {
		svc, _ := newTrashFixture()
		_, err := svc.Restore(ctx, leaderOf("lead", 5), "t-other")
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("restored files count toward storage again", func(t *testing.T) {
		_, store := newTrashFixture()
		usage := &countingInvalidator{}
		svc := NewTrashService(store, usage)

		_, err := svc.Restore(ctx, orgAdmin, "t-nested")
		require.Error(t, err)
		assert.Zero(t, usage.calls)

		_, err = svc.Restore(ctx, orgAdmin, "t-single")
		require.NoError(t, err)
		assert.Equal(t, 1, usage.calls)
	})
}
