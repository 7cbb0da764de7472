package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ovpnstatus/internal/storage"
)

// Validator interface for config validation
type Validator interface {
	Validate() error
}

// ValidationErrors collects multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Add(err error) {
	if err != nil {
		ve.Errors = append(ve.Errors, err)
	}
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = fmt.Sprintf("  - %s", err.Error())
	}

	return fmt.Sprintf("configuration validation failed:\n%s",
		strings.Join(messages, "\n"))
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs.Add(c.Status.Validate())
	errs.Add(c.Output.Validate())

	if c.Archive.Enabled {
		errs.Add(c.Archive.Validate())
	}

	errs.Add(c.Server.Validate())

	if c.Cache.Enabled {
		errs.Add(c.Cache.Validate())
	}

	errs.Add(validateLogging(c.Logging.Level, c.Logging.MaxSize, c.Logging.MaxBackups, c.Logging.MaxAge))

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates the status input section
func (c *StatusConfig) Validate() error {
	var errs ValidationErrors

	if c.Path == "" {
		errs.Add(fmt.Errorf("status.path is required"))
	}
	if c.Interval < 0 {
		errs.Add(fmt.Errorf("status.interval cannot be negative, got %s", c.Interval))
	}
	if c.Interval > 0 && c.Interval < time.Second {
		errs.Add(fmt.Errorf("status.interval must be at least 1s, got %s", c.Interval))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates the output section
func (c *OutputConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	return nil
}

// Validate validates the archive section
func (c *ArchiveConfig) Validate() error {
	var errs ValidationErrors

	switch c.Backend {
	case storage.BackendClickHouse:
		errs.Add(c.ClickHouse.Validate())
	case storage.BackendDuckDB, storage.BackendSQLite:
		if c.dsn() == "" {
			errs.Add(fmt.Errorf("archive.%s.path is required for the %s backend", c.Backend, c.Backend))
		}
	case storage.BackendPostgres, storage.BackendMySQL:
		if c.dsn() == "" {
			errs.Add(fmt.Errorf("archive.%s.dsn is required for the %s backend", c.Backend, c.Backend))
		}
	default:
		errs.Add(fmt.Errorf("archive.backend must be one of: %v, got %q", storage.Backends, c.Backend))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates ClickHouse configuration
func (c *ClickHouseConfig) Validate() error {
	var errs ValidationErrors

	if c.Host == "" {
		errs.Add(fmt.Errorf("clickhouse.host is required"))
	}

	if c.Port < 1 || c.Port > 65535 {
		errs.Add(fmt.Errorf("clickhouse.port must be between 1-65535, got %d", c.Port))
	}

	if c.Database == "" {
		errs.Add(fmt.Errorf("clickhouse.database is required"))
	}

	if c.DialTimeout != "" {
		if _, err := time.ParseDuration(c.DialTimeout); err != nil {
			errs.Add(fmt.Errorf("clickhouse.dial_timeout is not a duration: %q", c.DialTimeout))
		}
	}

	switch c.Compression {
	case "", "none", "lz4", "zstd":
	default:
		errs.Add(fmt.Errorf("clickhouse.compression must be one of: [none lz4 zstd], got %q", c.Compression))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates the metrics server section
func (c *ServerConfig) Validate() error {
	var errs ValidationErrors

	if c.Port < 1 || c.Port > 65535 {
		errs.Add(fmt.Errorf("server.port must be between 1-65535, got %d", c.Port))
	}
	if c.CPUSampleInterval < 0 {
		errs.Add(fmt.Errorf("server.cpu_sample_interval cannot be negative"))
	}
	if c.GPUTimeout < 0 {
		errs.Add(fmt.Errorf("server.gpu_timeout cannot be negative"))
	}
	if c.ReportMaxAge < 0 {
		errs.Add(fmt.Errorf("server.report_max_age cannot be negative"))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	var errs ValidationErrors

	if c.MaxMemoryMB < 1 {
		errs.Add(fmt.Errorf("cache.max_memory_mb must be positive, got %d", c.MaxMemoryMB))
	}

	if c.ValueLogMaxMB < 1 {
		errs.Add(fmt.Errorf("cache.value_log_max_mb must be positive, got %d", c.ValueLogMaxMB))
	}

	if c.SampleTTL < time.Second {
		errs.Add(fmt.Errorf("cache.sample_ttl must be at least 1s, got %s", c.SampleTTL))
	}

	if c.GCDiscardRatio < 0 || c.GCDiscardRatio > 1 {
		errs.Add(fmt.Errorf("cache.gc_discard_ratio must be between 0 and 1, got %.2f", c.GCDiscardRatio))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// validateLogging checks the logging section
func validateLogging(level string, maxSize, maxBackups, maxAge int) error {
	var errs ValidationErrors

	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if level == l {
			levelValid = true
			break
		}
	}
	if !levelValid && level != "" {
		errs.Add(fmt.Errorf("logging.level must be one of: %v, got %s", validLevels, level))
	}

	if maxSize < 0 {
		errs.Add(fmt.Errorf("logging.max_size cannot be negative, got %d", maxSize))
	}

	if maxBackups < 0 {
		errs.Add(fmt.Errorf("logging.max_backups cannot be negative, got %d", maxBackups))
	}

	if maxAge < 0 {
		errs.Add(fmt.Errorf("logging.max_age cannot be negative, got %d", maxAge))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}
