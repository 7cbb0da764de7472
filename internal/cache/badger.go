package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ovpnstatus/internal/logging"
)

type BadgerCache struct {
	db      *badger.DB
	metrics *Metrics
	config  *BadgerConfig
	stopGC  chan struct{}
}

type BadgerConfig struct {
	Path             string // empty for an in-memory store
	MaxMemoryMB      int
	ValueLogMaxMB    int
	CompactL0OnClose bool
	GCInterval       time.Duration
	GCDiscardRatio   float64
}

func NewBadgerCache(config *BadgerConfig) (*BadgerCache, error) {
	if config.GCInterval == 0 {
		config.GCInterval = 10 * time.Minute
	}
	if config.GCDiscardRatio == 0 {
		config.GCDiscardRatio = 0.5
	}

	opts := badger.DefaultOptions(config.Path)
	if config.Path == "" {
		opts = opts.WithInMemory(true)
	}

	if config.MaxMemoryMB > 0 {
		opts = opts.WithMemTableSize(int64(config.MaxMemoryMB) << 20)
	}
	if config.ValueLogMaxMB > 0 && config.Path != "" {
		opts = opts.WithValueLogFileSize(int64(config.ValueLogMaxMB) << 20)
	}
	opts = opts.WithCompactL0OnClose(config.CompactL0OnClose)

	opts = opts.WithNumVersionsToKeep(1)
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	cache := &BadgerCache{
		db:      db,
		metrics: &Metrics{},
		config:  config,
		stopGC:  make(chan struct{}),
	}

	// Value log GC is meaningless for an in-memory store
	if config.Path != "" {
		go cache.runGC()
	}

	return cache, nil
}

// Get returns the stored value or ErrMiss
func (bc *BadgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := bc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		if item.IsDeletedOrExpired() {
			return badger.ErrKeyNotFound
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}

		// Values carry an 8-byte expiry prefix
		if len(value) < 8 {
			return badger.ErrKeyNotFound
		}
		expires := int64(binary.LittleEndian.Uint64(value[:8]))
		if expires > 0 && time.Now().Unix() >= expires {
			return badger.ErrKeyNotFound
		}
		value = value[8:]
		return nil
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		atomic.AddUint64(&bc.metrics.Misses, 1)
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	atomic.AddUint64(&bc.metrics.Hits, 1)
	return value, nil
}

func (bc *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).Unix()
	}

	fullValue := make([]byte, 8+len(value))
	binary.LittleEndian.PutUint64(fullValue[:8], uint64(expires))
	copy(fullValue[8:], value)

	err := bc.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), fullValue)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})

	if err == nil {
		atomic.AddUint64(&bc.metrics.Sets, 1)
	}

	return err
}

func (bc *BadgerCache) Delete(ctx context.Context, key string) error {
	err := bc.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})

	if err == nil {
		atomic.AddUint64(&bc.metrics.Deletes, 1)
	}

	return err
}

// GetMetrics returns a snapshot of the counters
func (bc *BadgerCache) GetMetrics() *Metrics {
	m := &Metrics{
		Hits:    atomic.LoadUint64(&bc.metrics.Hits),
		Misses:  atomic.LoadUint64(&bc.metrics.Misses),
		Sets:    atomic.LoadUint64(&bc.metrics.Sets),
		Deletes: atomic.LoadUint64(&bc.metrics.Deletes),
	}

	lsm, vlog := bc.db.Size()
	m.Size = uint64(lsm + vlog)

	_ = bc.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			m.Keys++
		}
		return nil
	})

	return m
}

func (bc *BadgerCache) Close() error {
	close(bc.stopGC)
	return bc.db.Close()
}

func (bc *BadgerCache) runGC() {
	ticker := time.NewTicker(bc.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bc.performGC()
		case <-bc.stopGC:
			return
		}
	}
}

func (bc *BadgerCache) performGC() {
	startTime := time.Now()
	cycles := 0

	for {
		err := bc.db.RunValueLogGC(bc.config.GCDiscardRatio)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				if cycles > 0 {
					logging.Debug("badger GC completed",
						logging.Count("cycle", cycles),
						logging.Duration("gc", time.Since(startTime)))
				}
				break
			}
			logging.Warn("badger GC failed", logging.Count("cycle", cycles), logging.Err(err))
			break
		}
		cycles++
	}
}
