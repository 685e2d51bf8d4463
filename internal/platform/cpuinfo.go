package platform

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
)

// cpuInfo returns the model names of the host CPUs.
func cpuInfo(ctx context.Context) ([]string, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, ci := range infos {
		names = append(names, ci.ModelName)
	}
	return names, nil
}
