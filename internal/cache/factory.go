package cache

import (
	"time"
)

// Config holds configuration for cache creation
// Note: Only BadgerCache is supported.
type Config struct {
	Enabled bool

	// Empty BadgerPath keeps the store in memory
	BadgerPath           string
	BadgerMaxMemoryMB    int
	BadgerValueLogMaxMB  int
	BadgerCompactL0      bool
	BadgerGCInterval     time.Duration
	BadgerGCDiscardRatio float64
}

// DefaultConfig returns a small in-memory configuration for host samples
func DefaultConfig() *Config {
	return &Config{
		Enabled:              true,
		BadgerMaxMemoryMB:    16,
		BadgerValueLogMaxMB:  16,
		BadgerCompactL0:      true,
		BadgerGCInterval:     10 * time.Minute,
		BadgerGCDiscardRatio: 0.5,
	}
}

// New creates a new BadgerCache based on the configuration
// Returns nil if caching is disabled
func New(config *Config) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if !config.Enabled {
		return nil, nil
	}

	return NewBadgerCache(&BadgerConfig{
		Path:             config.BadgerPath,
		MaxMemoryMB:      config.BadgerMaxMemoryMB,
		ValueLogMaxMB:    config.BadgerValueLogMaxMB,
		CompactL0OnClose: config.BadgerCompactL0,
		GCInterval:       config.BadgerGCInterval,
		GCDiscardRatio:   config.BadgerGCDiscardRatio,
	})
}
