package device

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Kind names a class of compute device.
type Kind string

const (
	// CPU is the host processor. It is always visible.
	CPU Kind = "cpu"
	// CUDA is an NVIDIA accelerator, addressed by index.
	CUDA Kind = "cuda"
)

// Device identifies a single compute device, e.g. "cpu" or "cuda:1".
// The zero value is the CPU.
type Device struct {
	Kind  Kind
	Index int
}

// ErrUnavailable is wrapped into errors returned when an identifier does
// not name a device visible to this process.
var ErrUnavailable = errors.New("device unavailable")

// Parse converts a device identifier string into a Device. Recognized forms
// are "cpu" and "cuda:N". Parse does not check visibility; use Validate
// for that.
func Parse(s string) (Device, error) {
	if s == "cpu" {
		return Device{Kind: CPU}, nil
	}
	if rest, ok := strings.CutPrefix(s, "cuda:"); ok {
		idx, err := strconv.Atoi(rest)
		if err != nil || idx < 0 {
			return Device{}, fmt.Errorf("invalid cuda device index in %q", s)
		}
		return Device{Kind: CUDA, Index: idx}, nil
	}
	return Device{}, fmt.Errorf("unrecognized device identifier %q", s)
}

// String renders the identifier form accepted by Parse.
func (d Device) String() string {
	if d.Kind == CPU || d.Kind == "" {
		return string(CPU)
	}
	return fmt.Sprintf("%s:%d", d.Kind, d.Index)
}

// IsCPU reports whether d is the host processor, including the zero value.
func (d Device) IsCPU() bool {
	return d.Kind == CPU || d.Kind == ""
}

// countEnvVar forces the visible accelerator count regardless of what the
// probe reports, the same way CUDA_VISIBLE_DEVICES narrows a process's view.
const countEnvVar = "GRIDPIN_CUDA_COUNT"

// List returns the devices visible to this process: always the CPU, plus
// one "cuda:i" entry per visible accelerator.
func List() []Device {
	devices := []Device{{Kind: CPU}}
	for i := 0; i < cudaCount(); i++ {
		devices = append(devices, Device{Kind: CUDA, Index: i})
	}
	return devices
}

// Strings returns List rendered as identifier strings, in the same order.
func Strings() []string {
	devices := List()
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.String()
	}
	return out
}

func cudaCount() int {
	if raw := os.Getenv(countEnvVar); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return probeCUDACount()
}

// Validate returns an ErrUnavailable-wrapped error when d is not visible
// to this process.
func Validate(d Device) error {
	if d.IsCPU() {
		return nil
	}
	for _, have := range List() {
		if have == d {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, d)
}

// DefaultTarget elects the device used when a pinned step does not choose
// one: cuda:0 when visible, else the first visible accelerator, else cpu.
func DefaultTarget() Device {
	var first *Device
	for _, d := range List() {
		if d.IsCPU() {
			continue
		}
		if d.Index == 0 {
			return d
		}
		if first == nil {
			d := d
			first = &d
		}
	}
	if first != nil {
		return *first
	}
	return Device{Kind: CPU}
}
