package tensor

import (
	"fmt"

	"github.com/vk/gridpin/internal/device"
	"github.com/zclconf/go-cty/cty"
)

// Relocate returns a value isomorphic to v in which every tensor leaf has
// been moved to target: the container shape is preserved and non-tensor
// leaves pass through untouched. The walk covers nested objects, maps,
// tuples, lists and sets.
func Relocate(v cty.Value, target device.Device) (cty.Value, error) {
	if v == cty.NilVal {
		return v, nil
	}
	return cty.Transform(v, func(path cty.Path, leaf cty.Value) (cty.Value, error) {
		t, ok := FromVal(leaf)
		if !ok {
			return leaf, nil
		}
		moved, err := t.To(target)
		if err != nil {
			return cty.NilVal, fmt.Errorf("relocating tensor to %s: %w", target, err)
		}
		return Val(moved), nil
	})
}

// RelocateArgs applies Relocate to every value of an evaluated argument
// set, returning a new map.
func RelocateArgs(args map[string]cty.Value, target device.Device) (map[string]cty.Value, error) {
	if args == nil {
		return nil, nil
	}
	moved := make(map[string]cty.Value, len(args))
	for name, v := range args {
		mv, err := Relocate(v, target)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		moved[name] = mv
	}
	return moved, nil
}
