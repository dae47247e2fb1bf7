//go:build !cuda

package device

// probeCUDACount reports zero accelerators when NVML support is compiled
// out. Rebuild with -tags cuda for real probing, or set GRIDPIN_CUDA_COUNT
// to force a visible-device count.
func probeCUDACount() int {
	return 0
}
