package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridpin/internal/device"
	"github.com/zclconf/go-cty/cty"
)

func mustTensor(t *testing.T, dev device.Device) *Tensor {
	t.Helper()
	tr, err := New(Uint8, []int{2, 2, 3}, dev)
	require.NoError(t, err)
	return tr
}

func TestRelocate_PreservesStructureMovesOnlyTensors(t *testing.T) {
	t.Setenv("GRIDPIN_CUDA_COUNT", "1")

	t1 := mustTensor(t, cuda0)
	t2 := mustTensor(t, cuda0)

	in := cty.ObjectVal(map[string]cty.Value{
		"frames": cty.ListVal([]cty.Value{Val(t1), Val(t2)}),
		"count":  cty.NumberIntVal(2),
		"info": cty.ObjectVal(map[string]cty.Value{
			"path":   cty.StringVal("clip.mp4"),
			"inline": cty.TupleVal([]cty.Value{cty.True, Val(t1)}),
		}),
	})

	out, err := Relocate(in, cpu)
	require.NoError(t, err)

	// Non-tensor leaves and the container shape are untouched.
	count, _ := out.GetAttr("count").AsBigFloat().Int64()
	assert.EqualValues(t, 2, count)
	assert.Equal(t, "clip.mp4", out.GetAttr("info").GetAttr("path").AsString())
	assert.True(t, out.GetAttr("info").GetAttr("inline").Index(cty.NumberIntVal(0)).True())

	frames := out.GetAttr("frames")
	require.Equal(t, 2, frames.LengthInt())
	for it := frames.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		moved, ok := FromVal(elem)
		require.True(t, ok)
		assert.Equal(t, cpu, moved.Device())
	}

	nested, ok := FromVal(out.GetAttr("info").GetAttr("inline").Index(cty.NumberIntVal(1)))
	require.True(t, ok)
	assert.Equal(t, cpu, nested.Device())

	// The inputs keep their original placement.
	assert.Equal(t, cuda0, t1.Device())
	assert.Equal(t, cuda0, t2.Device())
}

func TestRelocate_NoTensorsIsIdentity(t *testing.T) {
	in := cty.ObjectVal(map[string]cty.Value{
		"filename": cty.StringVal("out.mp4"),
		"fps":      cty.NumberIntVal(8),
	})
	out, err := Relocate(in, cpu)
	require.NoError(t, err)
	assert.True(t, in.RawEquals(out))
}

func TestRelocate_NilAndNullPassThrough(t *testing.T) {
	out, err := Relocate(cty.NilVal, cpu)
	require.NoError(t, err)
	assert.Equal(t, cty.NilVal, out)

	out, err = Relocate(cty.NullVal(cty.String), cpu)
	require.NoError(t, err)
	assert.True(t, out.IsNull())
}

func TestRelocate_UnknownTargetFails(t *testing.T) {
	t.Setenv("GRIDPIN_CUDA_COUNT", "0")

	in := cty.ObjectVal(map[string]cty.Value{"frame": Val(mustTensor(t, cpu))})
	_, err := Relocate(in, cuda0)
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrUnavailable)
}

func TestRelocateArgs(t *testing.T) {
	t.Setenv("GRIDPIN_CUDA_COUNT", "1")

	args := map[string]cty.Value{
		"frames":   cty.ListVal([]cty.Value{Val(mustTensor(t, cpu))}),
		"filename": cty.StringVal("out.mp4"),
	}

	moved, err := RelocateArgs(args, cuda0)
	require.NoError(t, err)

	got, ok := FromVal(moved["frames"].Index(cty.NumberIntVal(0)))
	require.True(t, ok)
	assert.Equal(t, cuda0, got.Device())
	assert.Equal(t, "out.mp4", moved["filename"].AsString())
}

func TestRelocateArgs_NilMap(t *testing.T) {
	moved, err := RelocateArgs(nil, cpu)
	require.NoError(t, err)
	assert.Nil(t, moved)
}
