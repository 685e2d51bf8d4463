package platform

import (
	"context"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostInfo is the extended host description shown by the system verb.
// Unlike Facts it is informational only; nothing branches on it.
type HostInfo struct {
	// Hostname is the host's name
	Hostname string
	// OS is the platform name reported by the OS (e.g. "ubuntu", "darwin")
	OS string
	// OSVersion is the platform version
	OSVersion string
	// KernelVersion is the running kernel version
	KernelVersion string
	// TotalMemoryMB is the total physical memory in megabytes
	TotalMemoryMB uint64
	// CPUModel is the model name of the first CPU
	CPUModel string
}

// Describe gathers the extended host description. Fields that cannot be
// read are left zero rather than failing the whole call.
func Describe(ctx context.Context) HostInfo {
	var info HostInfo

	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = hi.Hostname
		info.OS = hi.Platform
		info.OSVersion = hi.PlatformVersion
		info.KernelVersion = hi.KernelVersion
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemoryMB = vm.Total / (1024 * 1024)
	}
	if infos, err := cpuInfo(ctx); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0]
	}

	return info
}
