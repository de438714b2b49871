package service

import (
	"context"
	"fmt"

	"school-admin/internal/model"
	"school-admin/internal/policy"
)

// TrashService exposes soft-deleted items. Items deleted together with a
// folder are grouped under that folder and hidden from the top-level view.
type TrashService struct {
	trash TrashStore
	usage UsageInvalidator
}

func NewTrashService(trash TrashStore, usage UsageInvalidator) *TrashService {
	if usage == nil {
		usage = noopInvalidator{}
	}
	return &TrashService{trash: trash, usage: usage}
}

// ListTopLevel returns the trash view for a dimension, newest first. A nil
// dimension lists every dimension the caller may see.
func (s *TrashService) ListTopLevel(ctx context.Context, caller model.Identity, dimensionID *int64) ([]model.TrashItem, error) {
	if err := policy.Authorize(caller, policy.OpTrashRead); err != nil {
		return nil, err
	}
	scope, err := s.scope(caller, dimensionID)
	if err != nil {
		return nil, err
	}

	items, err := s.trash.ListTopLevel(ctx, scope)
	if err != nil {
		return nil, err
	}
	return model.TopLevel(items), nil
}

// ListGroup returns the descendants trashed together with a folder.
func (s *TrashService) ListGroup(ctx context.Context, caller model.Identity, trashID string) ([]model.TrashItem, error) {
	if err := policy.Authorize(caller, policy.OpTrashRead); err != nil {
		return nil, err
	}
	root, err := s.scopedItem(ctx, caller, trashID)
	if err != nil {
		return nil, err
	}
	if root.ItemType != model.ItemTypeFolder {
		return []model.TrashItem{}, nil
	}
	return s.trash.ListGroup(ctx, root.ItemID)
}

// Restore brings back a top-level item and everything grouped under it.
func (s *TrashService) Restore(ctx context.Context, caller model.Identity, trashID string) (int, error) {
	if err := policy.Authorize(caller, policy.OpTrashRestore); err != nil {
		return 0, err
	}
	item, err := s.scopedItem(ctx, caller, trashID)
	if err != nil {
		return 0, err
	}
	if !item.IsTopLevel() {
		return 0, fmt.Errorf("%w: restore the deleted parent folder instead", model.ErrInvalidInput)
	}
	n, err := s.trash.Restore(ctx, item)
	if err != nil {
		return 0, err
	}
	s.usage.InvalidateUsage(ctx)
	return n, nil
}

func (s *TrashService) scopedItem(ctx context.Context, caller model.Identity, trashID string) (model.TrashItem, error) {
	item, err := s.trash.FindByID(ctx, trashID)
	if err != nil {
		return model.TrashItem{}, err
	}
	if err := policy.ScopeDimension(caller, item.DimensionID); err != nil {
		return model.TrashItem{}, err
	}
	return item, nil
}

func (s *TrashService) scope(caller model.Identity, requested *int64) (*int64, error) {
	if requested != nil {
		if err := policy.ScopeDimension(caller, *requested); err != nil {
			return nil, err
		}
		return requested, nil
	}
	return policy.DimensionFilter(caller)
}
