// Package video_load provides the "video_load" node: it decodes a video
// file into per-frame RGB tensors. Frame placement consults the
// process-wide device resolver, which is exactly the query the pinned
// wrapper variant overrides.
package video_load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/device"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/internal/tensor"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the video_load node.
type Input struct {
	Path       string `cty:"path"`
	Width      int    `cty:"width"`
	Height     int    `cty:"height"`
	FrameLimit int    `cty:"frame_limit"`
}

const (
	defaultWidth  = 320
	defaultHeight = 240
)

// OnRunVideoLoad is the handler for the 'video_load' node.
func OnRunVideoLoad(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "video_load", "path", input.Path)

	if input.Path == "" {
		return cty.NilVal, errors.New("path is required")
	}
	if _, err := os.Stat(input.Path); err != nil {
		return cty.NilVal, fmt.Errorf("probing input file: %w", err)
	}
	width, height := input.Width, input.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return cty.NilVal, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-v", "error",
		"-i", input.Path,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return cty.NilVal, fmt.Errorf("wiring ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return cty.NilVal, fmt.Errorf("starting ffmpeg: %w", err)
	}

	frameBytes := width * height * 3
	var frames []cty.Value
	for input.FrameLimit <= 0 || len(frames) < input.FrameLimit {
		buf := make([]byte, frameBytes)
		if _, err := io.ReadFull(stdout, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			_ = cmd.Wait()
			return cty.NilVal, fmt.Errorf("reading decoded frames: %w", err)
		}

		// Each frame lands wherever the resolver currently points. Under a
		// pinned execution every one of these queries yields the target.
		dev := device.Resolve()
		t, err := tensor.FromBytes(tensor.Uint8, []int{height, width, 3}, dev, buf)
		if err != nil {
			_ = cmd.Wait()
			return cty.NilVal, err
		}
		frames = append(frames, tensor.Val(t))
	}
	// Drain so ffmpeg can exit cleanly when a frame limit stopped us early.
	_, _ = io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil {
		return cty.NilVal, fmt.Errorf("ffmpeg decode failed: %w: %s", err, stderr.String())
	}
	if len(frames) == 0 {
		return cty.NilVal, fmt.Errorf("no frames decoded from %s", input.Path)
	}

	logger.Info("Video decoded.", "frames", len(frames), "width", width, "height", height)

	return cty.ObjectVal(map[string]cty.Value{
		"frames":      cty.ListVal(frames),
		"frame_count": cty.NumberIntVal(int64(len(frames))),
		"video_info": cty.ObjectVal(map[string]cty.Value{
			"path":   cty.StringVal(input.Path),
			"width":  cty.NumberIntVal(int64(width)),
			"height": cty.NumberIntVal(int64(height)),
		}),
	}), nil
}

// Register registers the handler with the host registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("video_load", &registry.Runner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunVideoLoad,
	})
}
