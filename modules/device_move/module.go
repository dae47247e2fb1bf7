// Package device_move provides the "device_move" node: it moves a batch of
// frame tensors onto an explicitly chosen device as an ordinary pipeline
// step. Unlike the pinned wrapper variants it never touches the resolver;
// the device is an argument, not an ambient override.
package device_move

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/device"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/internal/tensor"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the device_move node.
type Input struct {
	Frames []*tensor.Tensor `cty:"frames"`
	Device string           `cty:"device"`
}

// OnRunDeviceMove is the handler for the 'device_move' node.
func OnRunDeviceMove(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "device_move", "device", input.Device)

	if len(input.Frames) == 0 {
		return cty.NilVal, errors.New("frames is required and must not be empty")
	}
	if input.Device == "" {
		return cty.NilVal, errors.New("device is required")
	}
	target, err := device.Parse(input.Device)
	if err != nil {
		return cty.NilVal, err
	}
	if err := device.Validate(target); err != nil {
		return cty.NilVal, fmt.Errorf("%w (visible: %s)", err, strings.Join(device.Strings(), ", "))
	}

	moved := make([]cty.Value, len(input.Frames))
	for i, frame := range input.Frames {
		m, err := frame.To(target)
		if err != nil {
			return cty.NilVal, fmt.Errorf("moving frame %d: %w", i, err)
		}
		moved[i] = tensor.Val(m)
	}

	logger.Info("Frames moved.", "frames", len(moved))

	return cty.ObjectVal(map[string]cty.Value{
		"frames": cty.ListVal(moved),
		"device": cty.StringVal(target.String()),
	}), nil
}

// Register registers the handler with the host registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("device_move", &registry.Runner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunDeviceMove,
	})
}
