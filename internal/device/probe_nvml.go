//go:build cuda

package device

import (
	"log/slog"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

var (
	nvmlOnce  sync.Once
	nvmlCount int
)

// probeCUDACount asks NVML how many accelerators the process can see. The
// answer is probed once; device hotplug during a run is not supported.
func probeCUDACount() int {
	nvmlOnce.Do(func() {
		if ret := nvml.Init(); ret != nvml.SUCCESS {
			slog.Debug("NVML init failed, reporting zero CUDA devices.", "reason", nvml.ErrorString(ret))
			return
		}
		count, ret := nvml.DeviceGetCount()
		if ret != nvml.SUCCESS {
			slog.Debug("NVML device count failed.", "reason", nvml.ErrorString(ret))
			return
		}
		nvmlCount = count
	})
	return nvmlCount
}
