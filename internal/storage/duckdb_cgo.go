//go:build cgo

package storage

import (
	_ "github.com/marcboeker/go-duckdb"
)
