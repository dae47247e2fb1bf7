package pin

import (
	"context"
	"fmt"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/device"
	"github.com/vk/gridpin/internal/invoke"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/internal/tensor"
	"github.com/zclconf/go-cty/cty"
)

// Run executes runner with args pinned to target.
//
// The target is validated eagerly, before any relocation or override, so an
// unknown device fails fast instead of surfacing halfway through the
// delegate. A delegate failure is returned as-is after the saved resolver
// has been restored.
func Run(ctx context.Context, target device.Device, runner *registry.Runner, args map[string]cty.Value) (cty.Value, error) {
	if err := device.Validate(target); err != nil {
		return cty.NilVal, err
	}
	logger := ctxlog.FromContext(ctx).With("device", target.String())

	moved, err := tensor.RelocateArgs(args, target)
	if err != nil {
		return cty.NilVal, fmt.Errorf("relocating arguments: %w", err)
	}

	restore := device.Override(device.Fixed(target))
	defer restore()
	logger.Debug("Device resolution pinned for delegate execution.")

	out, err := invoke.Runner(ctx, runner, moved)
	if err != nil {
		return cty.NilVal, err
	}

	relocated, err := tensor.Relocate(out, target)
	if err != nil {
		return cty.NilVal, fmt.Errorf("relocating result: %w", err)
	}
	logger.Debug("Delegate result relocated.")
	return relocated, nil
}
