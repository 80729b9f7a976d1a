//go:build !gpu

package hardware

// Builds without the gpu tag carry no NVML code.
func InitializeHardware() error {
	return nil
}

func ShutdownHardware() {}

// ListGpus reports the SYCL record as the node's only GPU.
func ListGpus() []GpuInfo {
	return []GpuInfo{SyclGpuInfo()}
}
