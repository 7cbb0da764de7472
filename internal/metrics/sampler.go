package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Source produces host samples
type Source interface {
	Sample(ctx context.Context) (*Sample, error)
}

// SamplerConfig configures a Sampler
type SamplerConfig struct {
	DiskPath    string        // mount point for disk_usage
	CPUInterval time.Duration // cpu_usage is averaged over this window
	GPU         GPUReader     // nil reports "gpu telemetry disabled"
}

// Sampler reads host utilization through gopsutil
type Sampler struct {
	diskPath    string
	cpuInterval time.Duration
	gpu         GPUReader

	cpuPercent func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	memory     func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	diskUsage  func(ctx context.Context, path string) (*disk.UsageStat, error)
	netIO      func(ctx context.Context, pernic bool) ([]net.IOCountersStat, error)
}

// NewSampler returns a sampler backed by the running host
func NewSampler(cfg SamplerConfig) *Sampler {
	if cfg.DiskPath == "" {
		cfg.DiskPath = "/"
	}
	return &Sampler{
		diskPath:    cfg.DiskPath,
		cpuInterval: cfg.CPUInterval,
		gpu:         cfg.GPU,
		cpuPercent:  cpu.PercentWithContext,
		memory:      mem.VirtualMemoryWithContext,
		diskUsage:   disk.UsageWithContext,
		netIO:       net.IOCountersWithContext,
	}
}

// Sample collects one reading. Host counter failures are errors; GPU
// failures are reported inside the sample.
func (s *Sampler) Sample(ctx context.Context) (*Sample, error) {
	sample := &Sample{}

	percents, err := s.cpuPercent(ctx, s.cpuInterval, false)
	if err != nil {
		return nil, fmt.Errorf("cpu usage: %w", err)
	}
	if len(percents) > 0 {
		sample.CPUUsage = percents[0]
	}

	vm, err := s.memory(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory usage: %w", err)
	}
	sample.RAMUsage = vm.UsedPercent

	du, err := s.diskUsage(ctx, s.diskPath)
	if err != nil {
		return nil, fmt.Errorf("disk usage of %s: %w", s.diskPath, err)
	}
	sample.DiskUsage = du.UsedPercent

	counters, err := s.netIO(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("network counters: %w", err)
	}
	if len(counters) > 0 {
		sample.NetworkIO = NetworkIO{
			BytesSent: counters[0].BytesSent,
			BytesRecv: counters[0].BytesRecv,
		}
	}

	if s.gpu == nil {
		sample.SetGPU(nil, fmt.Errorf("gpu telemetry disabled"))
	} else {
		sample.SetGPU(s.gpu.ReadGPU(ctx))
	}

	return sample, nil
}
