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

type AdminService struct {
	admins   AdminStore
	hashCost int
	now      func() time.Time
}

func NewAdminService(admins AdminStore) *AdminService {
	return &AdminService{
		admins:   admins,
		hashCost: defaultHashCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminService) Me(ctx context.Context, caller model.Identity) (model.Admin, error) {
	admin, err := s.admins.FindByID(ctx, caller.AdminID)
	if err != nil {
		return model.Admin{}, asProfileError(err)
	}
	return admin, nil
}

func (s *AdminService) UpdateProfile(ctx context.Context, caller model.Identity, fullName string) (model.Admin, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return model.Admin{}, fmt.Errorf("%w: full_name is required", model.ErrInvalidInput)
	}
	admin, err := s.admins.UpdateProfile(ctx, caller.AdminID, fullName)
	if err != nil {
		return model.Admin{}, asProfileError(err)
	}
	return admin, nil
}

func (s *AdminService) List(ctx context.Context, caller model.Identity) ([]model.Admin, error) {
	if err := policy.Authorize(caller, policy.OpAdminList); err != nil {
		return nil, err
	}
	return s.admins.List(ctx)
}

// Provision creates an admin account. Leaders must be bound to a dimension.
func (s *AdminService) Provision(ctx context.Context, caller model.Identity, req model.ProvisionAdminRequest) (model.Admin, error) {
	if err := policy.Authorize(caller, policy.OpAdminProvision); err != nil {
		return model.Admin{}, err
	}
	if !req.Role.Valid() {
		return model.Admin{}, fmt.Errorf("%w: unknown role %d", model.ErrInvalidInput, req.Role)
	}
	if req.Role == model.RoleLeader && req.DimensionID == nil {
		return model.Admin{}, fmt.Errorf("%w: leaders require a dimension", model.ErrInvalidInput)
	}

	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" || req.Password == "" {
		return model.Admin{}, fmt.Errorf("%w: email, full_name and password are required", model.ErrInvalidInput)
	}

	hash, err := hashPassword(req.Password, s.hashCost)
	if err != nil {
		return model.Admin{}, err
	}

	now := s.now()
	admin := model.Admin{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         req.Role,
		DimensionID:  req.DimensionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return model.Admin{}, err
	}
	return admin, nil
}

// ForceSignOut revokes every session of the target admin.
func (s *AdminService) ForceSignOut(ctx context.Context, caller model.Identity, adminID string) error {
	if err := policy.Authorize(caller, policy.OpAdminForceSignOut); err != nil {
		return err
	}
	return s.admins.ForceSignOut(ctx, adminID)
}

func (s *AdminService) Delete(ctx context.Context, caller model.Identity, adminID string) error {
	if err := policy.Authorize(caller, policy.OpAdminDelete); err != nil {
		return err
	}
	if adminID == caller.AdminID {
		return fmt.Errorf("%w: cannot delete your own account", model.ErrInvalidInput)
	}
	return s.admins.Delete(ctx, adminID)
}

func asProfileError(err error) error {
	if errors.Is(err, model.ErrAdminNotFound) {
		return model.ErrProfileNotFound
	}
	return err
}
