package storage

import (
	"fmt"
	"strings"
)

// dialect captures what differs between the database/sql backends
type dialect struct {
	driver    string
	numbered  bool // $1, $2 placeholders instead of ?
	dsnSuffix string
	schema    []string
}

func (d dialect) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if d.numbered {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

func (d dialect) insert(table string, columns ...string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), d.placeholders(len(columns)))
}

var dialects = map[string]dialect{
	BackendDuckDB: {
		driver: "duckdb",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS vpn_clients (
				snapshot_id VARCHAR NOT NULL,
				captured_at TIMESTAMP NOT NULL,
				updated VARCHAR NOT NULL,
				common_name VARCHAR NOT NULL,
				real_address VARCHAR NOT NULL,
				bytes_received VARCHAR NOT NULL,
				bytes_sent VARCHAR NOT NULL,
				connected_since VARCHAR NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS vpn_virtual_addresses (
				snapshot_id VARCHAR NOT NULL,
				real_address VARCHAR NOT NULL,
				seq INTEGER NOT NULL,
				address VARCHAR NOT NULL,
				last_ref VARCHAR NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS vpn_global_stats (
				snapshot_id VARCHAR NOT NULL,
				captured_at TIMESTAMP NOT NULL,
				stat_name VARCHAR NOT NULL,
				stat_value VARCHAR NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_vpn_clients_snapshot ON vpn_clients(snapshot_id)`,
		},
	},

	BackendPostgres: {
		driver:   "postgres",
		numbered: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS vpn_clients (
				id BIGSERIAL PRIMARY KEY,
				snapshot_id UUID NOT NULL,
				captured_at TIMESTAMPTZ NOT NULL,
				updated TEXT NOT NULL,
				common_name TEXT NOT NULL,
				real_address TEXT NOT NULL,
				bytes_received TEXT NOT NULL,
				bytes_sent TEXT NOT NULL,
				connected_since TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS vpn_virtual_addresses (
				id BIGSERIAL PRIMARY KEY,
				snapshot_id UUID NOT NULL,
				real_address TEXT NOT NULL,
				seq INTEGER NOT NULL,
				address TEXT NOT NULL,
				last_ref TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS vpn_global_stats (
				id BIGSERIAL PRIMARY KEY,
				snapshot_id UUID NOT NULL,
				captured_at TIMESTAMPTZ NOT NULL,
				stat_name TEXT NOT NULL,
				stat_value TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_vpn_clients_snapshot ON vpn_clients (snapshot_id)`,
			`CREATE INDEX IF NOT EXISTS idx_vpn_clients_captured_at ON vpn_clients (captured_at)`,
		},
	},

	BackendMySQL: {
		driver: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS vpn_clients (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				snapshot_id CHAR(36) NOT NULL,
				captured_at DATETIME(3) NOT NULL,
				updated VARCHAR(64) NOT NULL,
				common_name VARCHAR(255) NOT NULL,
				real_address VARCHAR(255) NOT NULL,
				bytes_received VARCHAR(32) NOT NULL,
				bytes_sent VARCHAR(32) NOT NULL,
				connected_since VARCHAR(64) NOT NULL,
				INDEX idx_vpn_clients_snapshot (snapshot_id),
				INDEX idx_vpn_clients_captured_at (captured_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS vpn_virtual_addresses (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				snapshot_id CHAR(36) NOT NULL,
				real_address VARCHAR(255) NOT NULL,
				seq INT NOT NULL,
				address VARCHAR(64) NOT NULL,
				last_ref VARCHAR(64) NOT NULL,
				INDEX idx_vpn_virtual_addresses_snapshot (snapshot_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS vpn_global_stats (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				snapshot_id CHAR(36) NOT NULL,
				captured_at DATETIME(3) NOT NULL,
				stat_name VARCHAR(255) NOT NULL,
				stat_value VARCHAR(255) NOT NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
	},

	BackendSQLite: {
		driver:    "sqlite3",
		dsnSuffix: "?_journal_mode=WAL&_busy_timeout=5000",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS vpn_clients (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				snapshot_id TEXT NOT NULL,
				captured_at TIMESTAMP NOT NULL,
				updated TEXT NOT NULL,
				common_name TEXT NOT NULL,
				real_address TEXT NOT NULL,
				bytes_received TEXT NOT NULL,
				bytes_sent TEXT NOT NULL,
				connected_since TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS vpn_virtual_addresses (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				snapshot_id TEXT NOT NULL,
				real_address TEXT NOT NULL,
				seq INTEGER NOT NULL,
				address TEXT NOT NULL,
				last_ref TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS vpn_global_stats (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				snapshot_id TEXT NOT NULL,
				captured_at TIMESTAMP NOT NULL,
				stat_name TEXT NOT NULL,
				stat_value TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_vpn_clients_snapshot ON vpn_clients (snapshot_id)`,
		},
	},
}
