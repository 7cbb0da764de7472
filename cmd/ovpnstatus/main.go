package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovpnstatus/internal/config"
	"github.com/ovpnstatus/internal/logging"
	"github.com/ovpnstatus/internal/pipeline"
	"github.com/ovpnstatus/internal/storage"
	"github.com/ovpnstatus/internal/version"
)

func main() {
	var (
		configPath    = flag.String("config", "config.yaml", "Path to configuration file")
		statusPath    = flag.String("status", "", "OpenVPN status file, - for stdin (overrides config)")
		outputPath    = flag.String("output", "", "Dashboard JSON destination, - for stdout (overrides config)")
		interval      = flag.Duration("interval", -1, "Re-run every interval, 0 runs once (overrides config)")
		noArchive     = flag.Bool("no-archive", false, "Skip the history archive even when configured")
		exampleConfig = flag.String("example-config", "", "Write config.example.yaml into this directory and exit")
		showVersion   = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ovpnstatus %s\n", version.GetFullVersionInfo())
		os.Exit(0)
	}

	if *exampleConfig != "" {
		if err := config.CreateExampleConfig(*exampleConfig); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *statusPath != "" {
		cfg.Status.Path = *statusPath
	}
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}
	if *interval >= 0 {
		cfg.Status.Interval = *interval
	}

	if err := logging.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		StatusPath: cfg.Status.Path,
		OutputPath: cfg.Output.Path,
	}

	if cfg.Archive.Enabled && !*noArchive {
		if archive := openArchive(ctx, &cfg.Archive); archive != nil {
			defer archive.Close()
			opts.Archive = archive
		}
	}

	if cfg.Status.Interval > 0 {
		err = pipeline.Watch(ctx, opts, cfg.Status.Interval)
	} else {
		_, err = pipeline.Run(ctx, opts)
	}

	if code := exitCode(err); code != 0 {
		logging.Error("ovpnstatus failed", logging.Err(err))
		os.Exit(code)
	}
}

// openArchive connects the history archive. The dashboard JSON does not
// depend on it, so a failure only disables archiving for this process.
func openArchive(ctx context.Context, cfg *config.ArchiveConfig) storage.Archive {
	sc, err := cfg.ToStorageConfig()
	if err != nil {
		logging.Warn("archive disabled: invalid configuration", logging.Err(err))
		return nil
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	archive, err := storage.Open(openCtx, sc)
	if err != nil {
		logging.Warn("archive disabled: connection failed", logging.Backend(sc.Backend), logging.Err(err))
		return nil
	}

	logging.Info("archive enabled", logging.Backend(sc.Backend))
	return archive
}

// exitCode maps a pipeline error to the process status. An empty status
// file is not a failure.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, pipeline.ErrNoData), errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}
