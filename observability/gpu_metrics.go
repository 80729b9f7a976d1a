//go:build gpu

package observability

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"go.opentelemetry.io/otel/metric"

	"gpuinfo-agent/hardware"
)

// observeGpuMetrics reads utilization, temperature and VRAM use for every
// NVML device. The series carry the same attributes as the device's
// gpu.memory.* series.
func observeGpuMetrics(o metric.Observer, g gpuGauges) {
	if !hardware.NvmlAvailable() {
		return
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return
	}

	index := 0
	for i := 0; i < count; i++ {
		dev, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}

		name, _ := dev.GetName()
		attrs := gpuAttributes(index, hardware.GpuInfo{Name: name, Vendor: hardware.NvidiaVendor})
		index++

		if util, ret := dev.GetUtilizationRates(); ret == nvml.SUCCESS {
			o.ObserveFloat64(g.utilization, float64(util.Gpu), attrs)
		}
		if temp, ret := dev.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
			o.ObserveFloat64(g.temperature, float64(temp), attrs)
		}
		if mem, ret := dev.GetMemoryInfo(); ret == nvml.SUCCESS && mem.Total > 0 {
			o.ObserveFloat64(g.vram, float64(mem.Used)/float64(mem.Total)*100.0, attrs)
		}
	}
}
