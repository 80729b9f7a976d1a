package addon

import "gpuinfo-agent/hardware"

// GetSyclGpuInfo allocates one object in env and fills it with the SYCL GPU
// record. The values are fixed until device enumeration lands; the call
// keeps no state and touches no hardware.
func GetSyclGpuInfo(env Env) Object {
	info := hardware.SyclGpuInfo()

	obj := env.NewObject()
	obj.Set("name", info.Name)
	obj.Set("vendor", info.Vendor)
	obj.Set("totalMemory", info.TotalMemory)
	obj.Set("freeMemory", info.FreeMemory)
	obj.Set("isIntegrated", info.IsIntegrated)
	obj.Set("computeUnits", info.ComputeUnits)
	return obj
}
