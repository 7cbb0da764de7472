package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovpnstatus/internal/api"
	"github.com/ovpnstatus/internal/cache"
	"github.com/ovpnstatus/internal/config"
	"github.com/ovpnstatus/internal/logging"
	"github.com/ovpnstatus/internal/metrics"
	"github.com/ovpnstatus/internal/version"
	"github.com/spf13/afero"
)

func main() {
	// Command line flags
	var (
		configPath  = flag.String("config", "config.yaml", "Path to configuration file")
		port        = flag.Int("port", 0, "HTTP server port (overrides config)")
		host        = flag.String("host", "", "HTTP server host (overrides config)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ovpnstatus server %s\n", version.GetFullVersionInfo())
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := logging.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logging.Info("ovpnstatus server starting",
		slog.String("version", version.GetFullVersionInfo()),
		slog.String("config", *configPath))

	// Sample cache, optional
	var cacheImpl cache.Cache
	if cfg.Cache.Enabled {
		cacheImpl, err = cache.New(&cache.Config{
			Enabled:              true,
			BadgerPath:           cfg.Cache.Path,
			BadgerMaxMemoryMB:    cfg.Cache.MaxMemoryMB,
			BadgerValueLogMaxMB:  cfg.Cache.ValueLogMaxMB,
			BadgerCompactL0:      cfg.Cache.CompactOnClose,
			BadgerGCInterval:     cfg.Cache.GCInterval,
			BadgerGCDiscardRatio: cfg.Cache.GCDiscardRatio,
		})
		if err != nil {
			logging.Fatal("Failed to initialize BadgerCache", logging.Err(err))
		}
		defer cacheImpl.Close()

		logging.Info("BadgerCache initialized",
			slog.String("path", cfg.Cache.Path),
			slog.Int("memory_mb", cfg.Cache.MaxMemoryMB),
			slog.Duration("sample_ttl", cfg.Cache.SampleTTL))
	} else {
		logging.Info("Cache is disabled")
	}

	sampler := metrics.NewSampler(metrics.SamplerConfig{
		DiskPath:    cfg.Server.DiskPath,
		CPUInterval: cfg.Server.CPUSampleInterval,
		GPU:         metrics.NewNvidiaSMI(cfg.Server.NvidiaSMI, cfg.Server.GPUTimeout),
	})

	fs := afero.NewOsFs()
	reportPath := cfg.ReportFile()

	apiServer := api.New(api.Options{
		Sampler:    sampler,
		Cache:      cacheImpl,
		SampleTTL:  cfg.Cache.SampleTTL,
		DiskPath:   cfg.Server.DiskPath,
		Fs:         fs,
		ReportPath: reportPath,
	})
	apiServer.SetHealthChecker(&serverHealthChecker{
		fs:           fs,
		reportPath:   reportPath,
		reportMaxAge: cfg.Server.ReportMaxAge,
		cache:        cacheImpl,
		startTime:    time.Now(),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           apiServer.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// cpu_usage blocks for the sample interval, leave headroom
		WriteTimeout: 30*time.Second + cfg.Server.CPUSampleInterval,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logging.Info("Server starting", slog.String("address", "http://"+server.Addr))
		logging.Info("Available endpoints:")
		logging.Infof("    http://%s/metrics        - Host utilization", server.Addr)
		logging.Infof("    http://%s/api/health     - Health check", server.Addr)
		logging.Infof("    http://%s/api/report     - Latest dashboard JSON (%s)", server.Addr, reportPath)
		logging.Infof("    http://%s/debug/metrics  - Prometheus metrics", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed to start", logging.Err(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown timed out, forcing close", logging.Err(err))
		if err := server.Close(); err != nil {
			logging.Error("Server force close error", logging.Err(err))
		}
	}

	logging.Info("Server stopped")
}
