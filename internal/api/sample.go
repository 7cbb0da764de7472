package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ovpnstatus/internal/cache"
	"github.com/ovpnstatus/internal/logging"
	"github.com/ovpnstatus/internal/metrics"
)

// currentSample returns a cached sample when one is fresh, otherwise takes
// a new one. Concurrent callers share a single in-flight sample.
func (s *Server) currentSample(ctx context.Context) (*metrics.Sample, error) {
	if s.sampler == nil {
		return nil, errors.New("host sampler not configured")
	}

	key := s.keys.SampleKey(s.diskPath)

	if s.cache != nil && s.sampleTTL > 0 {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var sample metrics.Sample
			if err := json.Unmarshal(data, &sample); err == nil {
				s.instruments.cacheHits.Inc()
				return &sample, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			logging.Warn("sample cache read failed", logging.Err(err))
		}
	}

	v, err, shared := s.samples.Do(key, func() (any, error) {
		// Sampling outlives any single request that triggered it
		sctx := context.WithoutCancel(ctx)

		start := time.Now()
		sample, err := s.sampler.Sample(sctx)
		s.instruments.sampleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.instruments.sampleErrors.Inc()
			return nil, err
		}
		if sample.Error != "" {
			s.instruments.gpuErrors.Inc()
		}

		if s.cache != nil && s.sampleTTL > 0 {
			if data, err := json.Marshal(sample); err == nil {
				if err := s.cache.Set(sctx, key, data, s.sampleTTL); err != nil {
					logging.Warn("sample cache write failed", logging.Err(err))
				}
			}
		}
		return sample, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.instruments.sharedSamples.Inc()
	}

	return v.(*metrics.Sample), nil
}
