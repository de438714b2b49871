package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"school-admin/internal/cache"
	"school-admin/internal/model"
	"school-admin/internal/policy"
)

const (
	bytesPerGiB = 1024 * 1024 * 1024

	cacheKeyDimensionUsage = "storage:dimensions"
	cacheKeyOverallUsage   = "storage:overall"
)

// StorageService reports file-size totals against the capacity budget.
// Figures are snapshots; they may lag concurrent uploads by the cache TTL.
type StorageService struct {
	usage         UsageStore
	dimensions    DimensionStore
	cache         cache.Cache
	capacityBytes int64
	cacheTTL      time.Duration
}

func NewStorageService(usage UsageStore, dimensions DimensionStore, c cache.Cache, capacityBytes int64, cacheTTL time.Duration) *StorageService {
	if c == nil {
		c = cache.Noop{}
	}
	return &StorageService{
		usage:         usage,
		dimensions:    dimensions,
		cache:         c,
		capacityBytes: capacityBytes,
		cacheTTL:      cacheTTL,
	}
}

// PerDimensionUsage lists every dimension, including those without files.
func (s *StorageService) PerDimensionUsage(ctx context.Context, caller model.Identity) ([]model.DimensionUsage, error) {
	if err := policy.Authorize(caller, policy.OpStorageRead); err != nil {
		return nil, err
	}

	var cached []model.DimensionUsage
	if s.fromCache(ctx, cacheKeyDimensionUsage, &cached) {
		return cached, nil
	}

	dims, err := s.dimensions.List(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := s.usage.SumByDimension(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.DimensionUsage, 0, len(dims))
	for _, d := range dims {
		sum := sums[d.ID]
		out = append(out, model.DimensionUsage{
			DimensionID:       d.ID,
			Name:              d.Name,
			Slug:              d.Slug,
			TotalFiles:        sum.Files,
			TotalStorageBytes: sum.Bytes,
			TotalStorageGB:    BytesToGiB(sum.Bytes),
		})
	}

	s.toCache(ctx, cacheKeyDimensionUsage, out)
	return out, nil
}

func (s *StorageService) OverallUsage(ctx context.Context, caller model.Identity) (model.OverallUsage, error) {
	if err := policy.Authorize(caller, policy.OpStorageRead); err != nil {
		return model.OverallUsage{}, err
	}

	var cached model.OverallUsage
	if s.fromCache(ctx, cacheKeyOverallUsage, &cached) {
		return cached, nil
	}

	used, err := s.usage.SumAll(ctx)
	if err != nil {
		return model.OverallUsage{}, err
	}

	out := model.OverallUsage{
		UsedBytes:      used,
		UsedGB:         BytesToGiB(used),
		CapacityGB:     BytesToGiB(s.capacityBytes),
		PercentageUsed: PercentageUsed(used, s.capacityBytes),
	}

	s.toCache(ctx, cacheKeyOverallUsage, out)
	return out, nil
}

// InvalidateUsage drops the cached totals so the next read recomputes them.
func (s *StorageService) InvalidateUsage(ctx context.Context) {
	if err := s.cache.Delete(ctx, cacheKeyDimensionUsage, cacheKeyOverallUsage); err != nil {
		slog.Warn("storage cache invalidation failed", "error", err.Error())
	}
}

func (s *StorageService) fromCache(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		slog.Warn("storage cache read failed", "key", key, "error", err.Error())
		return false
	}
	return hit
}

func (s *StorageService) toCache(ctx context.Context, key string, value any) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		slog.Warn("storage cache write failed", "key", key, "error", err.Error())
	}
}

// BytesToGiB converts with divisor 1024^3, rounded to two decimals.
func BytesToGiB(b int64) float64 {
	return round2(float64(b) / bytesPerGiB)
}

// PercentageUsed is used/capacity*100, clamped to [0, 100].
func PercentageUsed(used int64, capacity int64) float64 {
	if capacity <= 0 || used <= 0 {
		return 0
	}
	pct := float64(used) / float64(capacity) * 100
	return round2(math.Min(pct, 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
