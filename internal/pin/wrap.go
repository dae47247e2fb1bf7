package pin

import (
	"context"
	"log/slog"

	"github.com/vk/gridpin/internal/device"
	"github.com/vk/gridpin/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Suffix is appended to a delegate's node type name to form the pinned
// variant's name.
const Suffix = "_pinned"

// Args is the pinned variant's input: the wrapper's own device selection
// plus the untouched argument set forwarded to the delegate.
type Args struct {
	Device string               `cty:"device"`
	Rest   map[string]cty.Value `cty:",remain"`
}

// Module registers a pinned variant for each named delegate node type. It
// must appear after the modules providing the delegates in the
// application's module list, since it only wraps what is already
// registered.
type Module struct {
	// Runners lists the delegate node types to wrap.
	Runners []string

	// DefaultDevice is used for steps that leave the device argument
	// unset. Empty elects device.DefaultTarget() per execution.
	DefaultDevice string
}

// Register implements registry.Module. A delegate that is not present in
// this deployment is skipped with an informational notice — never an error.
func (m *Module) Register(r *registry.Registry) {
	for _, name := range m.Runners {
		delegate, ok := r.Lookup(name)
		if !ok {
			slog.Info("Delegate node type not present, skipping pinned variant.", "runner", name)
			continue
		}
		r.Register(name+Suffix, &registry.Runner{
			NewInput: func() any { return new(Args) },
			Fn:       m.pinnedHandler(delegate),
		})
		slog.Debug("Registered pinned variant.", "runner", name+Suffix, "delegate", name)
	}
}

func (m *Module) pinnedHandler(delegate *registry.Runner) func(context.Context, *Args) (cty.Value, error) {
	return func(ctx context.Context, in *Args) (cty.Value, error) {
		target, err := m.target(in.Device)
		if err != nil {
			return cty.NilVal, err
		}
		return Run(ctx, target, delegate, in.Rest)
	}
}

func (m *Module) target(arg string) (device.Device, error) {
	raw := arg
	if raw == "" {
		raw = m.DefaultDevice
	}
	if raw == "" {
		return device.DefaultTarget(), nil
	}
	return device.Parse(raw)
}
