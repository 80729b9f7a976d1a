//go:build !gpu

package observability

import (
	"go.opentelemetry.io/otel/metric"
)

// Without NVML there are no live readings; the NVIDIA gauges stay empty.
func observeGpuMetrics(metric.Observer, gpuGauges) {}
