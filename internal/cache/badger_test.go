package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newMemoryCache(t *testing.T) *BadgerCache {
	t.Helper()

	c, err := NewBadgerCache(&BadgerConfig{MaxMemoryMB: 8})
	if err != nil {
		t.Fatalf("NewBadgerCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBadgerCacheSetGet(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get() = %q, want value", got)
	}

	if _, err := c.Get(ctx, "absent"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(absent) error = %v, want ErrMiss", err)
	}

	m := c.GetMetrics()
	if m.Hits != 1 || m.Misses != 1 || m.Sets != 1 {
		t.Errorf("metrics = %+v, want 1 hit, 1 miss, 1 set", m)
	}
	if m.Keys != 1 {
		t.Errorf("Keys = %d, want 1", m.Keys)
	}
	if rate := m.HitRate(); rate != 50 {
		t.Errorf("HitRate() = %v, want 50", rate)
	}
}

func TestBadgerCacheExpiry(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(2100 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after ttl error = %v, want ErrMiss", err)
	}
}

func TestBadgerCacheDelete(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after delete error = %v, want ErrMiss", err)
	}
}

func TestBadgerCacheOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := NewBadgerCache(&BadgerConfig{Path: dir, ValueLogMaxMB: 1, GCInterval: time.Hour})
	if err != nil {
		t.Fatalf("NewBadgerCache() error = %v", err)
	}
	if err := c.Set(ctx, "k", []byte("persisted"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	c, err = NewBadgerCache(&BadgerConfig{Path: dir, ValueLogMaxMB: 1, GCInterval: time.Hour})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer c.Close()

	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "persisted" {
		t.Errorf("Get() = %q, %v", got, err)
	}
}

func TestNewDisabled(t *testing.T) {
	c, err := New(&Config{Enabled: false})
	if err != nil || c != nil {
		t.Errorf("New(disabled) = %v, %v; want nil, nil", c, err)
	}
}

func TestHitRateNoLookups(t *testing.T) {
	if rate := (&Metrics{}).HitRate(); rate != 0 {
		t.Errorf("HitRate() = %v, want 0", rate)
	}
}

func TestKeyGenerator(t *testing.T) {
	kg := NewKeyGenerator("")
	if got := kg.SampleKey("/"); got != "ovs:sample:/" {
		t.Errorf("SampleKey() = %q", got)
	}
	if got := kg.GPUKey(); got != "ovs:gpu" {
		t.Errorf("GPUKey() = %q", got)
	}
}
