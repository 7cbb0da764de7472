package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// StatusFixture is the shared status-version 1 sample under testdata/status
const StatusFixture = "status/server.status"

// StatusGolden is the dashboard JSON StatusFixture renders to
const StatusGolden = "status/server.json"

// TempFile creates a temporary file with content for testing
func TempFile(t *testing.T, dir, pattern, content string) string {
	t.Helper()

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer f.Close()

	if content != "" {
		if _, err := f.WriteString(content); err != nil {
			t.Fatalf("Failed to write to temp file: %v", err)
		}
	}

	return f.Name()
}

// LoadFixture loads a test fixture file from testdata directory
// Walks up the directory tree to find testdata/ regardless of nesting level
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	dir := cwd
	for i := 0; i < 10; i++ {
		testdataPath := filepath.Join(dir, "testdata", path)
		if data, err := os.ReadFile(testdataPath); err == nil {
			return data
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatalf("Failed to load fixture %s from testdata/ (searched up from %s)", path, cwd)
	return nil
}

// LoadFixtureString loads a test fixture as string
func LoadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(LoadFixture(t, path))
}

// SkipIfShort skips test if running in short mode
func SkipIfShort(t *testing.T, reason string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skipping in short mode: %s", reason)
	}
}

// ClickHouseAddr returns the host and port of a test ClickHouse server from
// CLICKHOUSE_TEST_HOST (default port 9000), skipping the test when unset.
func ClickHouseAddr(t *testing.T) (string, int) {
	t.Helper()
	host := os.Getenv("CLICKHOUSE_TEST_HOST")
	if host == "" {
		t.Skip("ClickHouse tests need CLICKHOUSE_TEST_HOST")
	}
	return host, 9000
}

// WithTimeout runs a test function with timeout using context
func WithTimeout(t *testing.T, timeout time.Duration, fn func(ctx context.Context)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("Test timed out after %v", timeout)
	}
}
