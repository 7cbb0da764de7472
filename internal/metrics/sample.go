package metrics

// NetworkIO holds cumulative interface counters since boot
type NetworkIO struct {
	BytesSent uint64 `json:"bytes_sent"`
	BytesRecv uint64 `json:"bytes_recv"`
}

// GPUReading is one nvidia-smi query result
type GPUReading struct {
	Temperature float64
	Utilization float64
	PowerDraw   float64
}

// Sample is the /metrics payload. The gpu_* fields and error are mutually
// exclusive: error carries the reason GPU telemetry is missing.
type Sample struct {
	CPUUsage  float64   `json:"cpu_usage"`
	RAMUsage  float64   `json:"ram_usage"`
	DiskUsage float64   `json:"disk_usage"`
	NetworkIO NetworkIO `json:"network_io"`

	GPUTemperature *float64 `json:"gpu_temperature,omitempty"`
	GPUUtilization *float64 `json:"gpu_utilization,omitempty"`
	GPUPowerDraw   *float64 `json:"gpu_power_draw,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// SetGPU fills the gpu fields, or error when err is non-nil
func (s *Sample) SetGPU(r *GPUReading, err error) {
	if err != nil {
		s.GPUTemperature, s.GPUUtilization, s.GPUPowerDraw = nil, nil, nil
		s.Error = err.Error()
		return
	}
	temp, util, power := r.Temperature, r.Utilization, r.PowerDraw
	s.GPUTemperature = &temp
	s.GPUUtilization = &util
	s.GPUPowerDraw = &power
	s.Error = ""
}
