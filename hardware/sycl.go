package hardware

import "strconv"

// GpuInfo describes one GPU as reported to the host.
type GpuInfo struct {
	Name         string `json:"name"`
	Vendor       string `json:"vendor"`
	TotalMemory  uint64 `json:"totalMemory"`
	FreeMemory   uint64 `json:"freeMemory"`
	IsIntegrated bool   `json:"isIntegrated"`
	ComputeUnits int    `json:"computeUnits"`
}

const (
	syclDeviceName   = "Intel(R) Arc(TM) A770 Graphics"
	syclVendor       = "Intel Corporation"
	syclTotalMemory  = 16384 * 1024 * 1024 // 16 GiB
	syclComputeUnits = 32                  // Xe-cores
)

// SyclGpuInfo returns the SYCL GPU record. The values are placeholders until
// SYCL device enumeration is implemented: free memory is only known at
// runtime and is reported as 0.
func SyclGpuInfo() GpuInfo {
	return GpuInfo{
		Name:         syclDeviceName,
		Vendor:       syclVendor,
		TotalMemory:  syclTotalMemory,
		FreeMemory:   0,
		IsIntegrated: false,
		ComputeUnits: syclComputeUnits,
	}
}

// TotalMemoryGB returns total memory in whole gigabytes.
func (g GpuInfo) TotalMemoryGB() uint64 {
	return g.TotalMemory / 1024 / 1024 / 1024
}

// applyGpuInfo copies a single-device record into the spec fields.
func applyGpuInfo(specs *HardwareSpecs, info GpuInfo, count int) {
	specs.GPUCount = strconv.Itoa(count)
	specs.GPUModel = info.Name
	specs.GPUVendor = info.Vendor
	specs.GPUVRAMGB = strconv.FormatUint(info.TotalMemoryGB(), 10)
	specs.GPUIntegrated = strconv.FormatBool(info.IsIntegrated)
	specs.GPUComputeUnits = strconv.Itoa(info.ComputeUnits)
}
