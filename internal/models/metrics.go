package models

import "time"

// SystemMetrics is the JSON snapshot served by /metrics/summary.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	FilesParsed              uint64    `json:"files_parsed"`
	FilesFailed              uint64    `json:"files_failed"`
	ExportsRendered          uint64    `json:"exports_rendered"`
	ActiveSessions           int64     `json:"active_sessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
