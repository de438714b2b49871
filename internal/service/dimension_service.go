package service

import (
	"context"
	"fmt"
	"strings"

	"school-admin/internal/model"
	"school-admin/internal/policy"
	"school-admin/internal/util"
)

type DimensionService struct {
	dimensions DimensionStore
}

func NewDimensionService(dimensions DimensionStore) *DimensionService {
	return &DimensionService{dimensions: dimensions}
}

func (s *DimensionService) List(ctx context.Context, caller model.Identity) ([]model.Dimension, error) {
	if err := policy.Authorize(caller, policy.OpDimensionRead); err != nil {
		return nil, err
	}
	return s.dimensions.List(ctx)
}

func (s *DimensionService) Create(ctx context.Context, caller model.Identity, name string) (model.Dimension, error) {
	if err := policy.Authorize(caller, policy.OpDimensionManage); err != nil {
		return model.Dimension{}, err
	}
	name, slug, err := dimensionName(name)
	if err != nil {
		return model.Dimension{}, err
	}
	return s.dimensions.Create(ctx, name, slug)
}

func (s *DimensionService) Update(ctx context.Context, caller model.Identity, id int64, name string) (model.Dimension, error) {
	if err := policy.Authorize(caller, policy.OpDimensionManage); err != nil {
		return model.Dimension{}, err
	}
	name, slug, err := dimensionName(name)
	if err != nil {
		return model.Dimension{}, err
	}
	return s.dimensions.Update(ctx, id, name, slug)
}

func dimensionName(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	slug := util.Slugify(name)
	if name == "" || slug == "" {
		return "", "", fmt.Errorf("%w: dimension name must contain letters or digits", model.ErrInvalidInput)
	}
	return name, slug, nil
}
