package api

import (
	"time"

	"github.com/ovpnstatus/internal/version"
)

// HealthChecker provides health check data to the API server.
type HealthChecker interface {
	CheckHealth() *HealthStatus
}

// HealthStatus is the full health check response.
type HealthStatus struct {
	Status    string       `json:"status"` // "ok" or "degraded"
	Time      time.Time    `json:"time"`
	Uptime    string       `json:"uptime"`         // human-readable
	UptimeSec float64      `json:"uptime_seconds"` // machine-readable
	Version   version.Info `json:"version"`
	Report    ReportHealth `json:"report"`
	Cache     *CacheHealth `json:"cache,omitempty"`
}

// ReportHealth reports the freshness of the dashboard JSON.
type ReportHealth struct {
	Path       string     `json:"path"`
	Available  bool       `json:"available"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	AgeSec     float64    `json:"age_seconds,omitempty"`
	Stale      bool       `json:"stale"`
	Error      string     `json:"error,omitempty"`
}

// CacheHealth reports BadgerDB cache status.
type CacheHealth struct {
	Enabled bool    `json:"enabled"`
	Keys    uint64  `json:"keys"`
	HitRate float64 `json:"hit_rate"`
}
