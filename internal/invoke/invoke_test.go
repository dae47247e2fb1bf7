package invoke

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridpin/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

type greetInput struct {
	Name string `cty:"name"`
}

func TestRunner_DecodesAndCalls(t *testing.T) {
	r := &registry.Runner{
		NewInput: func() any { return new(greetInput) },
		Fn: func(ctx context.Context, in *greetInput) (cty.Value, error) {
			return cty.StringVal("hello " + in.Name), nil
		},
	}

	out, err := Runner(context.Background(), r, map[string]cty.Value{
		"name": cty.StringVal("grid"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello grid", out.AsString())
}

func TestRunner_NilNewInput(t *testing.T) {
	r := &registry.Runner{
		Fn: func(ctx context.Context, _ *greetInput) (cty.Value, error) {
			return cty.True, nil
		},
	}

	out, err := Runner(context.Background(), r, nil)
	require.NoError(t, err)
	assert.True(t, out.True())
}

func TestRunner_HandlerErrorUnchanged(t *testing.T) {
	sentinel := errors.New("delegate exploded")
	r := &registry.Runner{
		NewInput: func() any { return new(greetInput) },
		Fn: func(ctx context.Context, _ *greetInput) (cty.Value, error) {
			return cty.NilVal, sentinel
		},
	}

	_, err := Runner(context.Background(), r, nil)
	require.Error(t, err)
	// The exact error value comes back, no wrapping.
	assert.Equal(t, sentinel, err)
}

func TestRunner_DecodeFailureWrapped(t *testing.T) {
	r := &registry.Runner{
		NewInput: func() any { return new(greetInput) },
		Fn: func(ctx context.Context, _ *greetInput) (cty.Value, error) {
			t.Fatal("handler must not run when decoding fails")
			return cty.NilVal, nil
		},
	}

	_, err := Runner(context.Background(), r, map[string]cty.Value{
		"name": cty.ListVal([]cty.Value{cty.True}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding arguments")
}
