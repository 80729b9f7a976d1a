package observability

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"gpuinfo-agent/config"
	"gpuinfo-agent/hardware"
)

func initMeterProvider(ctx context.Context, cfg config.OTelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)
	return meterProvider, nil
}

// gpuGauges are the per-device GPU instruments.
type gpuGauges struct {
	memTotal     metric.Int64ObservableGauge
	memFree      metric.Int64ObservableGauge
	computeUnits metric.Int64ObservableGauge
	integrated   metric.Int64ObservableGauge

	// Live NVML readings, only observed with the gpu build tag.
	utilization metric.Float64ObservableGauge
	temperature metric.Float64ObservableGauge
	vram        metric.Float64ObservableGauge
}

func (g gpuGauges) instruments() []metric.Observable {
	return []metric.Observable{
		g.memTotal, g.memFree, g.computeUnits, g.integrated,
		g.utilization, g.temperature, g.vram,
	}
}

// gpuAttributes identifies one GPU in every series it emits.
func gpuAttributes(index int, info hardware.GpuInfo) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.Int("gpu.index", index),
		attribute.String("gpu.name", info.Name),
		attribute.String("gpu.vendor", info.Vendor),
	)
}

func observeGpuInfo(o metric.Observer, g gpuGauges, index int, info hardware.GpuInfo) {
	attrs := gpuAttributes(index, info)

	integrated := int64(0)
	if info.IsIntegrated {
		integrated = 1
	}
	o.ObserveInt64(g.memTotal, int64(info.TotalMemory), attrs)
	o.ObserveInt64(g.memFree, int64(info.FreeMemory), attrs)
	o.ObserveInt64(g.computeUnits, int64(info.ComputeUnits), attrs)
	o.ObserveInt64(g.integrated, integrated, attrs)
}

// harddiskUsedPercent is the used share of the network mounts in mountsFile,
// 0 when none are found.
func harddiskUsedPercent(mountsFile string) float64 {
	total, used, err := hardware.GetTotalDiskUsage(mountsFile)
	if err != nil || total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100.0
}

// RegisterMetrics creates the agent's gauges on mp and a single callback
// that observes them all. mountsFile lists the host mounts used for the
// hard disk gauge.
func RegisterMetrics(mp metric.MeterProvider, mountsFile string) error {
	meter := mp.Meter(meterName)

	var errs []error
	float64Gauge := func(name, desc, unit string) metric.Float64ObservableGauge {
		g, err := meter.Float64ObservableGauge(name, metric.WithDescription(desc), metric.WithUnit(unit))
		errs = append(errs, err)
		return g
	}
	int64Gauge := func(name, desc, unit string) metric.Int64ObservableGauge {
		g, err := meter.Int64ObservableGauge(name, metric.WithDescription(desc), metric.WithUnit(unit))
		errs = append(errs, err)
		return g
	}

	cpuGauge := float64Gauge("system.cpu.utilization", "CPU Utilization Percentage", "%")
	memGauge := float64Gauge("system.memory.utilization", "Memory Utilization Percentage", "%")
	storageUsedGauge := int64Gauge("system.storage.used_gb", "Used Storage on root partition in GB", "GBy")
	harddiskUsedPercentGauge := float64Gauge("system.harddisk.used_percent",
		"Used space percentage across network mounts", "%")

	gpu := gpuGauges{
		memTotal:     int64Gauge("gpu.memory.total", "GPU total memory", "By"),
		memFree:      int64Gauge("gpu.memory.free", "GPU free memory", "By"),
		computeUnits: int64Gauge("gpu.compute_units", "GPU compute units", "{unit}"),
		integrated:   int64Gauge("gpu.integrated", "1 if the GPU is integrated, 0 if discrete", "1"),
		utilization:  float64Gauge("system.gpu.utilization", "GPU Utilization Percentage", "%"),
		temperature:  float64Gauge("system.gpu.temperature", "GPU Temperature in Celsius", "Cel"),
		vram:         float64Gauge("system.gpu.vram.utilization", "GPU VRAM Utilization Percentage", "%"),
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	instruments := append([]metric.Observable{
		cpuGauge, memGauge, storageUsedGauge, harddiskUsedPercentGauge,
	}, gpu.instruments()...)

	_, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
			o.ObserveFloat64(cpuGauge, percentages[0])
		}
		if vmStat, err := mem.VirtualMemory(); err == nil {
			o.ObserveFloat64(memGauge, vmStat.UsedPercent)
		}
		if usage, err := disk.Usage("/"); err == nil {
			o.ObserveInt64(storageUsedGauge, int64(usage.Used/(1024*1024*1024)))
		}
		o.ObserveFloat64(harddiskUsedPercentGauge, harddiskUsedPercent(mountsFile))

		for i, info := range hardware.ListGpus() {
			observeGpuInfo(o, gpu, i, info)
		}
		observeGpuMetrics(o, gpu)
		return nil
	}, instruments...)
	return err
}
