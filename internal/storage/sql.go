package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLArchive stores snapshots through database/sql. It serves the
// duckdb, postgres, mysql and sqlite backends.
type SQLArchive struct {
	conn    *sql.DB
	dialect dialect
	backend string
	mu      sync.RWMutex
}

// NewSQLArchive opens dsn with the driver registered for backend.
// For duckdb and sqlite the dsn is a file path.
func NewSQLArchive(ctx context.Context, backend, dsn string) (*SQLArchive, error) {
	d, ok := dialects[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported archive backend: %s", backend)
	}

	conn, err := sql.Open(d.driver, dsn+d.dsnSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", backend, err)
	}

	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", backend, err)
	}

	return &SQLArchive{conn: conn, dialect: d, backend: backend}, nil
}

// Backend names the database behind the archive
func (a *SQLArchive) Backend() string {
	return a.backend
}

// CreateSchema creates the archive tables if missing
func (a *SQLArchive) CreateSchema(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, stmt := range a.dialect.schema {
		if _, err := a.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create archive schema: %w", err)
		}
	}
	return nil
}

// StoreSnapshot inserts one snapshot inside a single transaction
func (a *SQLArchive) StoreSnapshot(ctx context.Context, snap Snapshot) error {
	rows := Flatten(snap)

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	clientSQL := a.dialect.insert("vpn_clients",
		"snapshot_id", "captured_at", "updated", "common_name", "real_address",
		"bytes_received", "bytes_sent", "connected_since")
	for _, r := range rows.Clients {
		if _, err := tx.ExecContext(ctx, clientSQL,
			r.SnapshotID.String(), r.CapturedAt, r.Updated, r.CommonName,
			r.RealAddress, r.BytesReceived, r.BytesSent, r.ConnectedSince); err != nil {
			return fmt.Errorf("failed to insert client row: %w", err)
		}
	}

	addressSQL := a.dialect.insert("vpn_virtual_addresses",
		"snapshot_id", "real_address", "seq", "address", "last_ref")
	for _, r := range rows.Addresses {
		if _, err := tx.ExecContext(ctx, addressSQL,
			r.SnapshotID.String(), r.RealAddress, r.Position, r.Address, r.LastRef); err != nil {
			return fmt.Errorf("failed to insert address row: %w", err)
		}
	}

	statSQL := a.dialect.insert("vpn_global_stats",
		"snapshot_id", "captured_at", "stat_name", "stat_value")
	for _, r := range rows.Stats {
		if _, err := tx.ExecContext(ctx, statSQL,
			r.SnapshotID.String(), r.CapturedAt, r.Name, r.Value); err != nil {
			return fmt.Errorf("failed to insert stats row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Conn returns the underlying sql.DB connection (thread-safe)
func (a *SQLArchive) Conn() *sql.DB {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.conn
}

// Close closes the database connection
func (a *SQLArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
