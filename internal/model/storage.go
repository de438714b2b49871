package model

type DimensionUsage struct {
	DimensionID       int64   `json:"dimension_id"`
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	TotalFiles        int     `json:"total_files"`
	TotalStorageBytes int64   `json:"total_storage_bytes"`
	TotalStorageGB    float64 `json:"total_storage_gb"`
}

// UsageSum is the raw aggregate for one dimension.
type UsageSum struct {
	Files int
	Bytes int64
}

type OverallUsage struct {
	UsedBytes      int64   `json:"used_bytes"`
	UsedGB         float64 `json:"used_gb"`
	CapacityGB     float64 `json:"capacity_gb"`
	PercentageUsed float64 `json:"percentage_used"`
}
