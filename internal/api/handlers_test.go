package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ovpnstatus/internal/cache"
	"github.com/ovpnstatus/internal/metrics"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSampler struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *fakeSampler) Sample(ctx context.Context) (*metrics.Sample, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	s := &metrics.Sample{
		CPUUsage:  12.5,
		RAMUsage:  40,
		DiskUsage: 71.2,
		NetworkIO: metrics.NetworkIO{BytesSent: 1000, BytesRecv: 2000},
	}
	s.SetGPU(nil, errors.New("gpu telemetry disabled"))
	return s, nil
}

func newTestServer(t *testing.T, sampler metrics.Source, c cache.Cache) (*Server, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	s := New(Options{
		Sampler:    sampler,
		Cache:      c,
		SampleTTL:  time.Minute,
		DiskPath:   "/",
		Fs:         fs,
		ReportPath: "/srv/dashy/openvpn_logs.json",
	})
	return s, fs
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestMetricsHandler(t *testing.T) {
	s, _ := newTestServer(t, &fakeSampler{}, nil)

	w := get(t, s.SetupRouter(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	assert.JSONEq(t, `{
		"cpu_usage": 12.5,
		"ram_usage": 40,
		"disk_usage": 71.2,
		"network_io": {"bytes_sent": 1000, "bytes_recv": 2000},
		"error": "gpu telemetry disabled"
	}`, w.Body.String())
}

func TestMetricsHandlerSamplerFailure(t *testing.T) {
	s, _ := newTestServer(t, &fakeSampler{err: errors.New("no /proc")}, nil)

	w := get(t, s.SetupRouter(), "/metrics")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "no /proc", body["error"])
}

func TestMetricsHandlerUsesCache(t *testing.T) {
	c, err := cache.NewBadgerCache(&cache.BadgerConfig{MaxMemoryMB: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	sampler := &fakeSampler{}
	s, _ := newTestServer(t, sampler, c)
	router := s.SetupRouter()

	for i := 0; i < 3; i++ {
		w := get(t, router, "/metrics")
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, int32(1), sampler.calls.Load(), "later requests should be served from cache")
	assert.Equal(t, uint64(2), c.GetMetrics().Hits)
}

func TestMetricsHandlerCollapsesConcurrentSamples(t *testing.T) {
	sampler := &fakeSampler{delay: 100 * time.Millisecond}
	s, _ := newTestServer(t, sampler, nil)
	router := s.SetupRouter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := get(t, router, "/metrics")
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()

	assert.Less(t, sampler.calls.Load(), int32(8))
}

func TestMetricsHandlerWithoutSampler(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	w := get(t, s.SetupRouter(), "/metrics")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReportHandler(t *testing.T) {
	s, fs := newTestServer(t, &fakeSampler{}, nil)
	router := s.SetupRouter()

	w := get(t, router, "/api/report")
	assert.Equal(t, http.StatusNotFound, w.Code)

	report := "{\n  \"updated\": \"2024-01-01 00:00:00\",\n  \"clients\": [],\n  \"global_stats\": {}\n}\n"
	require.NoError(t, fs.MkdirAll("/srv/dashy", 0755))
	require.NoError(t, afero.WriteFile(fs, "/srv/dashy/openvpn_logs.json", []byte(report), 0644))

	w = get(t, router, "/api/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, report, w.Body.String())
}

func TestReportHandlerNotConfigured(t *testing.T) {
	s := New(Options{Sampler: &fakeSampler{}})

	w := get(t, s.SetupRouter(), "/api/report")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckReport(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Now()

	rh := CheckReport(fs, "/out.json", time.Minute, now)
	assert.False(t, rh.Available)
	assert.Empty(t, rh.Error)

	require.NoError(t, afero.WriteFile(fs, "/out.json", []byte("{}"), 0644))
	require.NoError(t, fs.Chtimes("/out.json", now.Add(-5*time.Minute), now.Add(-5*time.Minute)))

	rh = CheckReport(fs, "/out.json", time.Minute, now)
	assert.True(t, rh.Available)
	assert.True(t, rh.Stale)
	assert.InDelta(t, 300, rh.AgeSec, 1)

	rh = CheckReport(fs, "/out.json", 0, now)
	assert.False(t, rh.Stale, "maxAge 0 disables staleness")
}

func TestPrometheusEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeSampler{}, nil)
	router := s.SetupRouter()

	_ = get(t, router, "/metrics")

	w := get(t, router, "/debug/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, `ovpnstatus_http_requests_total{code="200",route="/metrics"} 1`), body)
	assert.Contains(t, body, "ovpnstatus_sample_duration_seconds_count 1")
	assert.Contains(t, body, "ovpnstatus_gpu_errors_total 1")
}
