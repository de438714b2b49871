package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"school-admin/internal/model"
	"school-admin/internal/policy"
)

type AnnouncementService struct {
	announcements AnnouncementStore
	now           func() time.Time
}

func NewAnnouncementService(announcements AnnouncementStore) *AnnouncementService {
	return &AnnouncementService{
		announcements: announcements,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *AnnouncementService) Create(ctx context.Context, caller model.Identity, req model.CreateAnnouncementRequest) (model.Announcement, error) {
	if err := policy.Authorize(caller, policy.OpAnnouncementCreate); err != nil {
		return model.Announcement{}, err
	}

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return model.Announcement{}, fmt.Errorf("%w: title and content are required", model.ErrInvalidInput)
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = model.VisibilityAll
	}
	if !visibility.Valid() {
		return model.Announcement{}, fmt.Errorf("%w: unknown visibility %q", model.ErrInvalidInput, visibility)
	}

	now := s.now()
	a := model.Announcement{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		Visibility: visibility,
		CreatedBy:  caller.AdminID,
		ExpiresAt:  req.ExpiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return model.Announcement{}, err
	}
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, caller model.Identity, id string, patch model.AnnouncementPatch) (model.Announcement, error) {
	if err := policy.Authorize(caller, policy.OpAnnouncementManage); err != nil {
		return model.Announcement{}, err
	}
	a, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		return model.Announcement{}, err
	}

	if patch.Title != nil {
		if a.Title = strings.TrimSpace(*patch.Title); a.Title == "" {
			return model.Announcement{}, fmt.Errorf("%w: title cannot be empty", model.ErrInvalidInput)
		}
	}
	if patch.Content != nil {
		if a.Content = strings.TrimSpace(*patch.Content); a.Content == "" {
			return model.Announcement{}, fmt.Errorf("%w: content cannot be empty", model.ErrInvalidInput)
		}
	}
	if patch.Visibility != nil {
		if !patch.Visibility.Valid() {
			return model.Announcement{}, fmt.Errorf("%w: unknown visibility %q", model.ErrInvalidInput, *patch.Visibility)
		}
		a.Visibility = *patch.Visibility
	}
	switch {
	case patch.ClearExpiry:
		a.ExpiresAt = nil
	case patch.ExpiresAt != nil:
		a.ExpiresAt = patch.ExpiresAt
	}
	a.UpdatedAt = s.now()

	if err := s.announcements.Update(ctx, a); err != nil {
		return model.Announcement{}, err
	}
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, caller model.Identity, id string) error {
	if err := policy.Authorize(caller, policy.OpAnnouncementManage); err != nil {
		return err
	}
	return s.announcements.Delete(ctx, id)
}

// Dismiss hides an announcement for the caller. Dismissing twice succeeds.
func (s *AnnouncementService) Dismiss(ctx context.Context, caller model.Identity, id string) error {
	if err := policy.Authorize(caller, policy.OpAnnouncementRead); err != nil {
		return err
	}
	err := s.announcements.Dismiss(ctx, id, caller.AdminID, s.now())
	if errors.Is(err, model.ErrConflict) {
		return nil
	}
	return err
}

// ListAdmin returns every announcement, including expired ones.
func (s *AnnouncementService) ListAdmin(ctx context.Context, caller model.Identity) ([]model.Announcement, error) {
	if err := policy.Authorize(caller, policy.OpAnnouncementManage); err != nil {
		return nil, err
	}
	return s.announcements.List(ctx)
}

// ListActive returns what the caller should currently see: unexpired,
// undismissed and visible to their role.
func (s *AnnouncementService) ListActive(ctx context.Context, caller model.Identity) ([]model.Announcement, error) {
	if err := policy.Authorize(caller, policy.OpAnnouncementRead); err != nil {
		return nil, err
	}
	now := s.now()
	all, err := s.announcements.ListUndismissed(ctx, caller.AdminID, now)
	if err != nil {
		return nil, err
	}

	out := make([]model.Announcement, 0, len(all))
	for _, a := range all {
		if !a.Expired(now) && a.Visibility.VisibleTo(caller.Role) {
			out = append(out, a)
		}
	}
	return out, nil
}
