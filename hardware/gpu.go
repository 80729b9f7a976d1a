//go:build gpu

package hardware

import (
	"fmt"
	"sync/atomic"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"gpuinfo-agent/logger"
)

// NvidiaVendor is the vendor reported for NVML devices.
const NvidiaVendor = "NVIDIA Corporation"

// nvmlReady is set between a successful InitializeHardware and ShutdownHardware.
var nvmlReady atomic.Bool

func InitializeHardware() error {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return fmt.Errorf("NVML init failed: %v", nvml.ErrorString(ret))
	}
	nvmlReady.Store(true)
	return nil
}

func ShutdownHardware() {
	if nvmlReady.Swap(false) {
		nvml.Shutdown()
	}
}

// NvmlAvailable reports whether NVML calls may be made.
func NvmlAvailable() bool {
	return nvmlReady.Load()
}

// ListGpus returns one record per NVML device, in index order. Devices that
// cannot be opened are skipped. Without NVML, or if no device remains, the
// SYCL record is returned.
func ListGpus() []GpuInfo {
	if !NvmlAvailable() {
		return []GpuInfo{SyclGpuInfo()}
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		logger.Warn().Str("nvml", nvml.ErrorString(ret)).Msg("NVML device count failed, reporting SYCL GPU")
		return []GpuInfo{SyclGpuInfo()}
	}

	gpus := make([]GpuInfo, 0, count)
	for i := 0; i < count; i++ {
		dev, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			logger.Warn().Int("gpu.index", i).Str("nvml", nvml.ErrorString(ret)).Msg("could not open GPU")
			continue
		}
		gpus = append(gpus, nvmlGpuInfo(dev))
	}

	if len(gpus) == 0 {
		logger.Warn().Int("count", count).Msg("no usable NVML device, reporting SYCL GPU")
		return []GpuInfo{SyclGpuInfo()}
	}
	return gpus
}

func nvmlGpuInfo(dev nvml.Device) GpuInfo {
	info := GpuInfo{Vendor: NvidiaVendor}
	if name, ret := dev.GetName(); ret == nvml.SUCCESS {
		info.Name = name
	}
	if mem, ret := dev.GetMemoryInfo(); ret == nvml.SUCCESS {
		info.TotalMemory = mem.Total
		info.FreeMemory = mem.Free
	}
	if attrs, ret := dev.GetAttributes(); ret == nvml.SUCCESS {
		info.ComputeUnits = int(attrs.MultiprocessorCount)
	}
	return info
}
