// Package video_combine provides the "video_combine" node: it encodes a
// sequence of RGB frame tensors into a video container. Before encoding it
// moves every frame to the resolver-elected device, mirroring how the
// node behaves in a deployment where frames may arrive from elsewhere.
package video_combine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/device"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/internal/tensor"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the video_combine node.
type Input struct {
	Frames    []*tensor.Tensor `cty:"frames"`
	Filename  string           `cty:"filename"`
	FrameRate int              `cty:"frame_rate"`
	Format    string           `cty:"format"`
}

const defaultFrameRate = 8

// OnRunVideoCombine is the handler for the 'video_combine' node.
func OnRunVideoCombine(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "video_combine")

	if len(input.Frames) == 0 {
		return cty.NilVal, errors.New("frames is required and must not be empty")
	}
	if input.Filename == "" {
		return cty.NilVal, errors.New("filename is required")
	}
	frameRate := input.FrameRate
	if frameRate <= 0 {
		frameRate = defaultFrameRate
	}
	format := input.Format
	if format == "" {
		format = "mp4"
	}

	height, width, err := frameGeometry(input.Frames)
	if err != nil {
		return cty.NilVal, err
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return cty.NilVal, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	outPath := input.Filename
	if filepath.Ext(outPath) == "" {
		outPath += "." + format
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cty.NilVal, fmt.Errorf("creating output directory: %w", err)
		}
	}

	// The node's own device handling: frames are gathered onto whatever
	// device the resolver elects before their bytes are streamed out.
	dev := device.Resolve()

	var raw bytes.Buffer
	raw.Grow(len(input.Frames) * height * width * 3)
	for i, frame := range input.Frames {
		moved, err := frame.To(dev)
		if err != nil {
			return cty.NilVal, fmt.Errorf("gathering frame %d onto %s: %w", i, dev, err)
		}
		raw.Write(moved.Bytes())
	}

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d", frameRate),
		"-i", "pipe:0",
		"-pix_fmt", "yuv420p",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stdin = &raw
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return cty.NilVal, fmt.Errorf("ffmpeg encode failed: %w: %s", err, stderr.String())
	}

	logger.Info("Video encoded.", "filename", outPath, "frames", len(input.Frames), "frame_rate", frameRate)

	return cty.ObjectVal(map[string]cty.Value{
		"filename":    cty.StringVal(outPath),
		"frame_count": cty.NumberIntVal(int64(len(input.Frames))),
	}), nil
}

// frameGeometry checks all frames are uint8 [height width 3] with one
// shared geometry and returns it.
func frameGeometry(frames []*tensor.Tensor) (height, width int, err error) {
	for i, frame := range frames {
		if frame.DType() != tensor.Uint8 {
			return 0, 0, fmt.Errorf("frame %d has dtype %s, want %s", i, frame.DType(), tensor.Uint8)
		}
		shape := frame.Shape()
		if len(shape) != 3 || shape[2] != 3 {
			return 0, 0, fmt.Errorf("frame %d has shape %v, want [height width 3]", i, shape)
		}
		if i == 0 {
			height, width = shape[0], shape[1]
			continue
		}
		if shape[0] != height || shape[1] != width {
			return 0, 0, fmt.Errorf("frame %d geometry %dx%d differs from first frame %dx%d", i, shape[1], shape[0], width, height)
		}
	}
	return height, width, nil
}

// Register registers the handler with the host registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("video_combine", &registry.Runner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunVideoCombine,
	})
}
