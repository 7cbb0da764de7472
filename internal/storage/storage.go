package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovpnstatus/internal/parser"
)

// Supported archive backends
const (
	BackendClickHouse = "clickhouse"
	BackendDuckDB     = "duckdb"
	BackendPostgres   = "postgres"
	BackendMySQL      = "mysql"
	BackendSQLite     = "sqlite"
)

// Backends lists every supported archive backend
var Backends = []string{BackendClickHouse, BackendDuckDB, BackendPostgres, BackendMySQL, BackendSQLite}

// Archive keeps a history of rendered status documents
type Archive interface {
	StoreSnapshot(ctx context.Context, snap Snapshot) error
	Close() error
}

// Snapshot is one archived cycle
type Snapshot struct {
	ID         uuid.UUID
	Updated    string    // timestamp reported by the OpenVPN daemon, verbatim
	CapturedAt time.Time // when the cycle ran
	Document   *parser.Document
}

// NewSnapshot stamps a document with a fresh id
func NewSnapshot(doc *parser.Document, capturedAt time.Time) Snapshot {
	return Snapshot{
		ID:         uuid.New(),
		Updated:    doc.Updated,
		CapturedAt: capturedAt.UTC(),
		Document:   doc,
	}
}

// ClickHouseConfig holds ClickHouse connection settings
type ClickHouseConfig struct {
	Host        string
	Port        int
	Database    string
	Username    string
	Password    string
	UseSSL      bool
	DialTimeout time.Duration
	Compression string
}

// Config selects and configures an archive backend
type Config struct {
	Backend    string
	ClickHouse ClickHouseConfig
	DSN        string // connection string, or file path for duckdb and sqlite
}

// Open connects to the configured backend and ensures its schema exists
func Open(ctx context.Context, cfg *Config) (Archive, error) {
	if cfg.Backend == BackendClickHouse {
		a, err := NewClickHouseArchive(ctx, &cfg.ClickHouse)
		if err != nil {
			return nil, err
		}
		if err := a.CreateSchema(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		return a, nil
	}

	if _, ok := dialects[cfg.Backend]; !ok {
		return nil, fmt.Errorf("unsupported archive backend: %s", cfg.Backend)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("archive backend %s needs a dsn or path", cfg.Backend)
	}

	a, err := NewSQLArchive(ctx, cfg.Backend, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := a.CreateSchema(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
