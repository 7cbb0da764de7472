package api

import (
	"net/http"
	"time"

	"github.com/ovpnstatus/internal/cache"
	"github.com/ovpnstatus/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// Options wires a Server
type Options struct {
	Sampler    metrics.Source
	Cache      cache.Cache   // optional
	SampleTTL  time.Duration // how long a cached sample is served
	DiskPath   string        // part of the sample cache key
	Fs         afero.Fs
	ReportPath string // dashboard JSON served by /api/report
}

// Server represents the API server
type Server struct {
	sampler   metrics.Source
	cache     cache.Cache
	keys      *cache.KeyGenerator
	sampleTTL time.Duration
	diskPath  string
	samples   singleflight.Group

	fs         afero.Fs
	reportPath string

	healthChecker HealthChecker

	registry    *prometheus.Registry
	instruments *instruments
}

// New creates a new API server
func New(opts Options) *Server {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	registry := prometheus.NewRegistry()
	return &Server{
		sampler:     opts.Sampler,
		cache:       opts.Cache,
		keys:        cache.NewKeyGenerator(""),
		sampleTTL:   opts.SampleTTL,
		diskPath:    opts.DiskPath,
		fs:          opts.Fs,
		reportPath:  opts.ReportPath,
		registry:    registry,
		instruments: newInstruments(registry),
	}
}

// SetHealthChecker sets the health checker for the server
func (s *Server) SetHealthChecker(hc HealthChecker) {
	s.healthChecker = hc
}

// Registry exposes the server's Prometheus registry
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// HealthHandler handles health check requests
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if s.healthChecker != nil {
		WriteJSONSuccess(w, s.healthChecker.CheckHealth())
		return
	}
	WriteJSONSuccess(w, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// MetricsHandler serves the host utilization sample
func (s *Server) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	sample, err := s.currentSample(r.Context())
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	WriteJSONSuccess(w, sample)
}
