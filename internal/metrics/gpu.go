package metrics

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GPUReader reads GPU telemetry
type GPUReader interface {
	ReadGPU(ctx context.Context) (*GPUReading, error)
}

var nvidiaSMIArgs = []string{
	"--query-gpu=temperature.gpu,utilization.gpu,power.draw",
	"--format=csv,noheader,nounits",
}

// NvidiaSMI queries the first GPU through the nvidia-smi binary
type NvidiaSMI struct {
	Path    string
	Timeout time.Duration

	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewNvidiaSMI returns a reader for the binary at path
func NewNvidiaSMI(path string, timeout time.Duration) *NvidiaSMI {
	if path == "" {
		path = "nvidia-smi"
	}
	return &NvidiaSMI{
		Path:    path,
		Timeout: timeout,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// ReadGPU runs nvidia-smi and parses its first line
func (n *NvidiaSMI) ReadGPU(ctx context.Context) (*GPUReading, error) {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	out, err := n.run(ctx, n.Path, nvidiaSMIArgs...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %v: %s", n.Path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", n.Path, err)
	}

	return parseNvidiaSMI(string(out))
}

// parseNvidiaSMI reads "temperature, utilization, power" from the first line.
// Hosts with several GPUs print one line each; only the first is reported.
func parseNvidiaSMI(out string) (*GPUReading, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Split(strings.TrimSpace(line), ", ")
	if len(fields) != 3 {
		return nil, fmt.Errorf("unexpected nvidia-smi output %q", line)
	}

	values := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("could not convert string to float: %q", f)
		}
		values[i] = v
	}

	return &GPUReading{
		Temperature: values[0],
		Utilization: values[1],
		PowerDraw:   values[2],
	}, nil
}
