package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ovpnstatus/internal/logging"
	"github.com/ovpnstatus/internal/storage"
	"gopkg.in/yaml.v3"
)

// StatusConfig locates the OpenVPN status file
type StatusConfig struct {
	Path     string        `yaml:"path"`     // status file written by the daemon, "-" for stdin
	Interval time.Duration `yaml:"interval"` // watch mode period, 0 for one-shot
}

// OutputConfig locates the dashboard JSON document
type OutputConfig struct {
	Path string `yaml:"path"` // "-" for stdout
}

// ClickHouseConfig holds ClickHouse database connection configuration
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseSSL   bool   `yaml:"use_ssl,omitempty"`

	DialTimeout string `yaml:"dial_timeout,omitempty"`
	Compression string `yaml:"compression,omitempty"` // none, zstd, lz4
}

// FileDBConfig locates an embedded database file (duckdb, sqlite)
type FileDBConfig struct {
	Path string `yaml:"path"`
}

// ServerDBConfig holds a database/sql connection string (postgres, mysql)
type ServerDBConfig struct {
	DSN string `yaml:"dsn"`
}

// ArchiveConfig controls the optional snapshot history
type ArchiveConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Backend    string           `yaml:"backend"` // clickhouse, duckdb, postgres, mysql, sqlite
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	DuckDB     FileDBConfig     `yaml:"duckdb"`
	SQLite     FileDBConfig     `yaml:"sqlite"`
	Postgres   ServerDBConfig   `yaml:"postgres"`
	MySQL      ServerDBConfig   `yaml:"mysql"`
}

// ServerConfig holds the metrics server settings
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	DiskPath          string        `yaml:"disk_path"`           // mount point reported as disk_usage
	CPUSampleInterval time.Duration `yaml:"cpu_sample_interval"` // window for cpu_usage
	NvidiaSMI         string        `yaml:"nvidia_smi"`          // nvidia-smi binary
	GPUTimeout        time.Duration `yaml:"gpu_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ReportPath        string        `yaml:"report_path"`    // served by /api/report, defaults to output.path
	ReportMaxAge      time.Duration `yaml:"report_max_age"` // health turns degraded past this age, 0 disables
}

// CacheConfig holds cache configuration
// Note: Only BadgerCache is supported.
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Path           string        `yaml:"path"` // empty keeps badger in memory
	MaxMemoryMB    int           `yaml:"max_memory_mb"`
	ValueLogMaxMB  int           `yaml:"value_log_max_mb"`
	SampleTTL      time.Duration `yaml:"sample_ttl"`
	CompactOnClose bool          `yaml:"compact_on_close"`
	GCInterval     time.Duration `yaml:"gc_interval"`
	GCDiscardRatio float64       `yaml:"gc_discard_ratio"`
}

// Config represents the complete application configuration
type Config struct {
	Status  StatusConfig   `yaml:"status"`
	Output  OutputConfig   `yaml:"output"`
	Archive ArchiveConfig  `yaml:"archive"`
	Server  ServerConfig   `yaml:"server"`
	Cache   CacheConfig    `yaml:"cache"`
	Logging logging.Config `yaml:"logging"`
}

// Default configurations

func DefaultStatusConfig() StatusConfig {
	return StatusConfig{
		Path: "/var/log/openvpn/status.log",
	}
}

func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Path: "openvpn_logs.json",
	}
}

func DefaultClickHouseConfig() ClickHouseConfig {
	return ClickHouseConfig{
		Host:        "localhost",
		Port:        9000,
		Database:    "ovpnstatus",
		Username:    "default",
		DialTimeout: "30s",
		Compression: "lz4",
	}
}

func DefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Enabled:    false,
		Backend:    storage.BackendDuckDB,
		ClickHouse: DefaultClickHouseConfig(),
		DuckDB: FileDBConfig{
			Path: "./ovpnstatus.duckdb",
		},
		SQLite: FileDBConfig{
			Path: "./ovpnstatus.sqlite",
		},
	}
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "0.0.0.0",
		Port:              5000,
		DiskPath:          "/",
		CPUSampleInterval: time.Second,
		NvidiaSMI:         "nvidia-smi",
		GPUTimeout:        5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:        false,
		Path:           "",
		MaxMemoryMB:    16,
		ValueLogMaxMB:  16,
		SampleTTL:      5 * time.Second,
		CompactOnClose: true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// Default returns a configuration with every section at its default
func Default() *Config {
	return &Config{
		Status:  DefaultStatusConfig(),
		Output:  DefaultOutputConfig(),
		Archive: DefaultArchiveConfig(),
		Server:  DefaultServerConfig(),
		Cache:   DefaultCacheConfig(),
		Logging: *logging.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*Config, error) {
	// If config file doesn't exist, run on defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults, fills gaps and validates the result
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateExampleConfig creates example configuration file
func CreateExampleConfig(dir string) error {
	if err := SaveConfig(Default(), filepath.Join(dir, "config.example.yaml")); err != nil {
		return fmt.Errorf("failed to create example config: %w", err)
	}
	return nil
}

// applyDefaults fills zero values left by a partial config file
func (c *Config) applyDefaults() {
	if c.Archive.Backend == "" {
		c.Archive.Backend = storage.BackendDuckDB
	}
	if c.Archive.ClickHouse.Port == 0 {
		c.Archive.ClickHouse.Port = 9000
	}
	if c.Archive.ClickHouse.Username == "" {
		c.Archive.ClickHouse.Username = "default"
	}
	if c.Archive.ClickHouse.DialTimeout == "" {
		c.Archive.ClickHouse.DialTimeout = "30s"
	}
	if c.Archive.ClickHouse.Compression == "" {
		c.Archive.ClickHouse.Compression = "lz4"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.DiskPath == "" {
		c.Server.DiskPath = "/"
	}
	if c.Server.NvidiaSMI == "" {
		c.Server.NvidiaSMI = "nvidia-smi"
	}
	if c.Server.GPUTimeout == 0 {
		c.Server.GPUTimeout = 5 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Cache.MaxMemoryMB == 0 {
		c.Cache.MaxMemoryMB = 16
	}
	if c.Cache.ValueLogMaxMB == 0 {
		c.Cache.ValueLogMaxMB = 16
	}
	if c.Cache.SampleTTL == 0 {
		c.Cache.SampleTTL = 5 * time.Second
	}
	if c.Cache.GCInterval == 0 {
		c.Cache.GCInterval = 10 * time.Minute
	}
	if c.Cache.GCDiscardRatio == 0 {
		c.Cache.GCDiscardRatio = 0.5
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	// Default to console if neither configured
	if !c.Logging.Console && c.Logging.File == "" {
		c.Logging.Console = true
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 28
	}
}

// ToStorageConfig converts the archive section for storage.Open
func (c *ArchiveConfig) ToStorageConfig() (*storage.Config, error) {
	dialTimeout, err := time.ParseDuration(c.ClickHouse.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid archive.clickhouse.dial_timeout: %w", err)
	}

	return &storage.Config{
		Backend: c.Backend,
		ClickHouse: storage.ClickHouseConfig{
			Host:        c.ClickHouse.Host,
			Port:        c.ClickHouse.Port,
			Database:    c.ClickHouse.Database,
			Username:    c.ClickHouse.Username,
			Password:    c.ClickHouse.Password,
			UseSSL:      c.ClickHouse.UseSSL,
			DialTimeout: dialTimeout,
			Compression: c.ClickHouse.Compression,
		},
		DSN: c.dsn(),
	}, nil
}

// dsn returns the connection string of the selected database/sql backend
func (c *ArchiveConfig) dsn() string {
	switch c.Backend {
	case storage.BackendDuckDB:
		return c.DuckDB.Path
	case storage.BackendSQLite:
		return c.SQLite.Path
	case storage.BackendPostgres:
		return c.Postgres.DSN
	case storage.BackendMySQL:
		return c.MySQL.DSN
	}
	return ""
}

// ReportFile returns the dashboard JSON the server publishes
func (c *Config) ReportFile() string {
	if c.Server.ReportPath != "" {
		return c.Server.ReportPath
	}
	return c.Output.Path
}

// Addr returns the listen address of the metrics server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
