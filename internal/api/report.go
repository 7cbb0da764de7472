package api

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/afero"
)

// ReportHandler serves the latest dashboard JSON written by ovpnstatus
func (s *Server) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if s.reportPath == "" {
		WriteJSONError(w, "report path not configured", http.StatusNotFound)
		return
	}

	f, err := s.fs.Open(s.reportPath)
	if errors.Is(err, os.ErrNotExist) {
		WriteJSONError(w, "report not available", http.StatusNotFound)
		return
	}
	if err != nil {
		WriteJSONError(w, "report unreadable", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		WriteJSONError(w, "report unreadable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// CheckReport describes the report file at path. A report older than
// maxAge is stale; maxAge 0 disables the check.
func CheckReport(fs afero.Fs, path string, maxAge time.Duration, now time.Time) ReportHealth {
	rh := ReportHealth{Path: path}

	info, err := fs.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			rh.Error = err.Error()
		}
		return rh
	}

	modified := info.ModTime().UTC()
	rh.Available = true
	rh.ModifiedAt = &modified
	rh.AgeSec = now.Sub(modified).Seconds()
	if maxAge > 0 && now.Sub(modified) > maxAge {
		rh.Stale = true
	}
	return rh
}
