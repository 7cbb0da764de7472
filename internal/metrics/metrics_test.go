package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGPU struct {
	reading *GPUReading
	err     error
}

func (f fakeGPU) ReadGPU(context.Context) (*GPUReading, error) {
	return f.reading, f.err
}

func fakeSampler(gpu GPUReader) *Sampler {
	s := NewSampler(SamplerConfig{GPU: gpu})
	s.cpuPercent = func(context.Context, time.Duration, bool) ([]float64, error) {
		return []float64{12.5}, nil
	}
	s.memory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{UsedPercent: 40}, nil
	}
	s.diskUsage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Path: path, UsedPercent: 71.2}, nil
	}
	s.netIO = func(context.Context, bool) ([]net.IOCountersStat, error) {
		return []net.IOCountersStat{{Name: "all", BytesSent: 1000, BytesRecv: 2000}}, nil
	}
	return s
}

func TestSampleWithGPU(t *testing.T) {
	s := fakeSampler(fakeGPU{reading: &GPUReading{Temperature: 45, Utilization: 3, PowerDraw: 21.5}})

	sample, err := s.Sample(context.Background())
	require.NoError(t, err)

	data, err := json.Marshal(sample)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"cpu_usage": 12.5,
		"ram_usage": 40,
		"disk_usage": 71.2,
		"network_io": {"bytes_sent": 1000, "bytes_recv": 2000},
		"gpu_temperature": 45,
		"gpu_utilization": 3,
		"gpu_power_draw": 21.5
	}`, string(data))
}

func TestSampleGPUFailure(t *testing.T) {
	s := fakeSampler(fakeGPU{err: errors.New("nvidia-smi: executable file not found in $PATH")})

	sample, err := s.Sample(context.Background())
	require.NoError(t, err)

	data, err := json.Marshal(sample)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "nvidia-smi: executable file not found in $PATH", got["error"])
	assert.NotContains(t, got, "gpu_temperature")
	assert.NotContains(t, got, "gpu_utilization")
	assert.NotContains(t, got, "gpu_power_draw")
}

func TestSampleWithoutGPUReader(t *testing.T) {
	sample, err := fakeSampler(nil).Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gpu telemetry disabled", sample.Error)
}

func TestSampleHostFailure(t *testing.T) {
	s := fakeSampler(nil)
	s.memory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return nil, errors.New("no /proc")
	}

	_, err := s.Sample(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory usage")
}

func TestSampleUsesDiskPath(t *testing.T) {
	s := fakeSampler(nil)
	s.diskPath = "/srv"

	var seen string
	s.diskUsage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		seen = path
		return &disk.UsageStat{UsedPercent: 1}, nil
	}

	_, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/srv", seen)
}

func TestParseNvidiaSMI(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    *GPUReading
		wantErr bool
	}{
		{
			name: "single gpu",
			out:  "45, 3, 21.50\n",
			want: &GPUReading{Temperature: 45, Utilization: 3, PowerDraw: 21.5},
		},
		{
			name: "first of several gpus",
			out:  "50, 10, 30.00\n61, 99, 250.12\n",
			want: &GPUReading{Temperature: 50, Utilization: 10, PowerDraw: 30},
		},
		{
			name:    "power not supported",
			out:     "45, 3, [N/A]\n",
			wantErr: true,
		},
		{
			name:    "wrong field count",
			out:     "45, 3\n",
			wantErr: true,
		},
		{
			name:    "empty",
			out:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNvidiaSMI(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNvidiaSMIReadGPU(t *testing.T) {
	n := NewNvidiaSMI("", time.Second)
	assert.Equal(t, "nvidia-smi", n.Path)

	var gotName string
	var gotArgs []string
	n.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("45, 3, 21.50\n"), nil
	}

	r, err := n.ReadGPU(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45.0, r.Temperature)
	assert.Equal(t, "nvidia-smi", gotName)
	assert.Equal(t, nvidiaSMIArgs, gotArgs)
}

func TestNvidiaSMIMissingBinary(t *testing.T) {
	n := NewNvidiaSMI("/nonexistent/nvidia-smi", time.Second)

	_, err := n.ReadGPU(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/nvidia-smi")
}
