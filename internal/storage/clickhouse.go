package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseArchive writes snapshots through the native ClickHouse protocol
type ClickHouseArchive struct {
	conn driver.Conn
	mu   sync.Mutex
}

// NewClickHouseArchive opens and pings a ClickHouse connection
func NewClickHouseArchive(ctx context.Context, cfg *ClickHouseConfig) (*ClickHouseArchive, error) {
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
		Compression: compressionFor(cfg.Compression),
	}

	if cfg.UseSSL {
		options.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseArchive{conn: conn}, nil
}

func compressionFor(method string) *clickhouse.Compression {
	switch method {
	case "zstd":
		return &clickhouse.Compression{Method: clickhouse.CompressionZSTD}
	case "none":
		return nil
	default:
		return &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	}
}

var clickhouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS vpn_clients (
		snapshot_id UUID,
		captured_at DateTime64(3, 'UTC'),
		updated String,
		common_name String,
		real_address String,
		bytes_received String,
		bytes_sent String,
		connected_since String
	) ENGINE = MergeTree()
	ORDER BY (captured_at, real_address)
	PARTITION BY toYYYYMM(captured_at)`,

	`CREATE TABLE IF NOT EXISTS vpn_virtual_addresses (
		snapshot_id UUID,
		real_address String,
		seq UInt16,
		address String,
		last_ref String
	) ENGINE = MergeTree()
	ORDER BY (snapshot_id, real_address, seq)`,

	`CREATE TABLE IF NOT EXISTS vpn_global_stats (
		snapshot_id UUID,
		captured_at DateTime64(3, 'UTC'),
		stat_name LowCardinality(String),
		stat_value String
	) ENGINE = MergeTree()
	ORDER BY (stat_name, captured_at)`,
}

// CreateSchema creates the archive tables if missing
func (a *ClickHouseArchive) CreateSchema(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, stmt := range clickhouseSchema {
		if err := a.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create archive schema: %w", err)
		}
	}
	return nil
}

// StoreSnapshot inserts one snapshot using the native batch API
func (a *ClickHouseArchive) StoreSnapshot(ctx context.Context, snap Snapshot) error {
	rows := Flatten(snap)

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(rows.Clients) > 0 {
		batch, err := a.conn.PrepareBatch(ctx, `INSERT INTO vpn_clients (
			snapshot_id, captured_at, updated, common_name, real_address,
			bytes_received, bytes_sent, connected_since
		)`)
		if err != nil {
			return fmt.Errorf("failed to prepare client batch: %w", err)
		}
		for _, r := range rows.Clients {
			if err := batch.Append(r.SnapshotID, r.CapturedAt, r.Updated, r.CommonName,
				r.RealAddress, r.BytesReceived, r.BytesSent, r.ConnectedSince); err != nil {
				_ = batch.Abort()
				return fmt.Errorf("failed to append client row: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send client batch: %w", err)
		}
	}

	if len(rows.Addresses) > 0 {
		batch, err := a.conn.PrepareBatch(ctx, `INSERT INTO vpn_virtual_addresses (
			snapshot_id, real_address, seq, address, last_ref
		)`)
		if err != nil {
			return fmt.Errorf("failed to prepare address batch: %w", err)
		}
		for _, r := range rows.Addresses {
			if err := batch.Append(r.SnapshotID, r.RealAddress, uint16(r.Position), r.Address, r.LastRef); err != nil {
				_ = batch.Abort()
				return fmt.Errorf("failed to append address row: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send address batch: %w", err)
		}
	}

	if len(rows.Stats) > 0 {
		batch, err := a.conn.PrepareBatch(ctx, `INSERT INTO vpn_global_stats (
			snapshot_id, captured_at, stat_name, stat_value
		)`)
		if err != nil {
			return fmt.Errorf("failed to prepare stats batch: %w", err)
		}
		for _, r := range rows.Stats {
			if err := batch.Append(r.SnapshotID, r.CapturedAt, r.Name, r.Value); err != nil {
				_ = batch.Abort()
				return fmt.Errorf("failed to append stats row: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send stats batch: %w", err)
		}
	}

	return nil
}

// Close closes the ClickHouse connection
func (a *ClickHouseArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
