package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// instruments are the server's own Prometheus metrics
type instruments struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	sampleDuration prometheus.Histogram
	sampleErrors   prometheus.Counter
	gpuErrors      prometheus.Counter
	cacheHits      prometheus.Counter
	sharedSamples  prometheus.Counter
}

func newInstruments(registry prometheus.Registerer) *instruments {
	in := &instruments{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ovpnstatus_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ovpnstatus_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		sampleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ovpnstatus_sample_duration_seconds",
			Help:    "Time taken to collect one host sample",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}),
		sampleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ovpnstatus_sample_errors_total",
			Help: "Host samples that failed",
		}),
		gpuErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ovpnstatus_gpu_errors_total",
			Help: "Samples taken without GPU telemetry",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ovpnstatus_sample_cache_hits_total",
			Help: "Samples served from the cache",
		}),
		sharedSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ovpnstatus_sample_shared_total",
			Help: "Requests that joined an in-flight sample",
		}),
	}

	registry.MustRegister(
		in.requests,
		in.requestLatency,
		in.sampleDuration,
		in.sampleErrors,
		in.gpuErrors,
		in.cacheHits,
		in.sharedSamples,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return in
}
