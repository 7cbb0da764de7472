package logging

import (
	"log/slog"
	"time"
)

// Common field helpers for consistent structured logging

// RunID tags every line of one parse-and-write cycle
func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}

// Duration logs duration in milliseconds
func Duration(name string, d time.Duration) slog.Attr {
	return slog.Int64(name+"_ms", d.Milliseconds())
}

// Err creates error field
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Count creates count field
func Count(name string, count int) slog.Attr {
	return slog.Int(name+"_count", count)
}

// File creates file path field
func File(path string) slog.Attr {
	return slog.String("file", path)
}

// Output creates output path field
func Output(path string) slog.Attr {
	return slog.String("output", path)
}

// Backend names the archive backend
func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}

// HTTP creates HTTP request fields
func HTTP(method, path string, status int) []any {
	return []any{
		slog.String("http_method", method),
		slog.String("http_path", path),
		slog.Int("http_status", status),
	}
}
