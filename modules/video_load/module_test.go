package video_load

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridpin/internal/device"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/internal/tensor"
)

func requireFFmpeg(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not in PATH")
	}
	return path
}

// makeClip renders a short synthetic test clip.
func makeClip(t *testing.T, frames int) string {
	t.Helper()
	ffmpeg := requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	cmd := exec.Command(ffmpeg,
		"-v", "error",
		"-f", "lavfi",
		"-i", "testsrc=duration=1:size=64x48:rate="+strconv.Itoa(frames),
		"-pix_fmt", "yuv420p",
		path,
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return path
}

func TestOnRunVideoLoad_PathRequired(t *testing.T) {
	_, err := OnRunVideoLoad(context.Background(), &Input{})
	assert.ErrorContains(t, err, "path is required")
}

func TestOnRunVideoLoad_MissingFile(t *testing.T) {
	_, err := OnRunVideoLoad(context.Background(), &Input{Path: "/no/such/clip.mp4"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOnRunVideoLoad_DecodesFrames(t *testing.T) {
	t.Setenv("GRIDPIN_CUDA_COUNT", "0")
	path := makeClip(t, 4)

	out, err := OnRunVideoLoad(context.Background(), &Input{
		Path:   path,
		Width:  32,
		Height: 24,
	})
	require.NoError(t, err)

	count, _ := out.GetAttr("frame_count").AsBigFloat().Int64()
	assert.EqualValues(t, 4, count)

	frames := out.GetAttr("frames")
	require.Equal(t, 4, frames.LengthInt())
	for it := frames.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		frame, ok := tensor.FromVal(elem)
		require.True(t, ok)
		assert.Equal(t, tensor.Uint8, frame.DType())
		assert.Equal(t, []int{24, 32, 3}, frame.Shape())
		assert.True(t, frame.Device().IsCPU())
	}

	info := out.GetAttr("video_info")
	assert.Equal(t, path, info.GetAttr("path").AsString())
}

func TestOnRunVideoLoad_FrameLimit(t *testing.T) {
	t.Setenv("GRIDPIN_CUDA_COUNT", "0")
	path := makeClip(t, 8)

	out, err := OnRunVideoLoad(context.Background(), &Input{
		Path:       path,
		Width:      32,
		Height:     24,
		FrameLimit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.GetAttr("frames").LengthInt())
}

func TestOnRunVideoLoad_FramesFollowTheResolver(t *testing.T) {
	t.Setenv("GRIDPIN_CUDA_COUNT", "1")
	path := makeClip(t, 2)

	restore := device.Override(device.Fixed(device.Device{Kind: device.CUDA, Index: 0}))
	defer restore()

	out, err := OnRunVideoLoad(context.Background(), &Input{Path: path, Width: 32, Height: 24})
	require.NoError(t, err)

	frames := out.GetAttr("frames")
	for it := frames.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		frame, _ := tensor.FromVal(elem)
		assert.Equal(t, device.Device{Kind: device.CUDA, Index: 0}, frame.Device())
	}
}

func TestModule_Register(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	_, ok := r.Lookup("video_load")
	assert.True(t, ok)
}
