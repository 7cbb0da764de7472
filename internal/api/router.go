package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures a Chi router with all API routes
func (s *Server) SetupRouter() http.Handler {
	r := chi.NewRouter()

	// Built-in Chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Custom middleware
	r.Use(s.LoggingMiddleware)

	// Host utilization, polled by the dashboard
	r.Get("/metrics", s.MetricsHandler)

	r.Get("/api/health", s.HealthHandler)
	r.Get("/api/report", s.ReportHandler)

	// Prometheus exposition of the server's own counters
	r.Method(http.MethodGet, "/debug/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}
