package main

import (
	"time"

	"github.com/ovpnstatus/internal/api"
	"github.com/ovpnstatus/internal/cache"
	"github.com/ovpnstatus/internal/version"
	"github.com/spf13/afero"
)

// serverHealthChecker implements api.HealthChecker using concrete server dependencies.
type serverHealthChecker struct {
	fs           afero.Fs
	reportPath   string
	reportMaxAge time.Duration
	cache        cache.Cache
	startTime    time.Time
}

func (h *serverHealthChecker) CheckHealth() *api.HealthStatus {
	now := time.Now().UTC()
	uptime := now.Sub(h.startTime)

	status := &api.HealthStatus{
		Status:    "ok",
		Time:      now,
		Uptime:    uptime.Truncate(time.Second).String(),
		UptimeSec: uptime.Seconds(),
		Version:   version.Get(),
	}

	// A missing or stale report means the parser cron has stopped
	status.Report = api.CheckReport(h.fs, h.reportPath, h.reportMaxAge, now)
	if !status.Report.Available || status.Report.Stale {
		status.Status = "degraded"
	}

	// Cache stats (if enabled)
	if h.cache != nil {
		metrics := h.cache.GetMetrics()
		status.Cache = &api.CacheHealth{
			Enabled: true,
			Keys:    metrics.Keys,
			HitRate: metrics.HitRate(),
		}
	}

	return status
}
