// Package invoke carries the shared decode-and-call path used by the
// executor and by the pinned wrapper variants when dispatching to a runner.
package invoke

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/gridpin/internal/ctyconv"
	"github.com/vk/gridpin/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Runner decodes args into a fresh input struct for r and calls its
// handler. Handler errors come back unchanged; only argument decoding
// failures produce an error of invoke's own.
func Runner(ctx context.Context, r *registry.Runner, args map[string]cty.Value) (cty.Value, error) {
	var input any
	if r.NewInput != nil {
		input = r.NewInput()
	}
	if input != nil {
		if err := ctyconv.DecodeArgs(args, input); err != nil {
			return cty.NilVal, fmt.Errorf("decoding arguments: %w", err)
		}
	}

	fn := reflect.ValueOf(r.Fn)
	callArgs := make([]reflect.Value, 2)
	callArgs[0] = reflect.ValueOf(ctx)
	if input == nil {
		callArgs[1] = reflect.Zero(fn.Type().In(1))
	} else {
		callArgs[1] = reflect.ValueOf(input)
	}

	results := fn.Call(callArgs)
	if errVal := results[1].Interface(); errVal != nil {
		return cty.NilVal, errVal.(error)
	}
	return results[0].Interface().(cty.Value), nil
}
