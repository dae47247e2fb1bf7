package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGrid(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validGrid = `
step "video_load" "clip" {
  arguments {
    path = "clip.mp4"
  }
}
`

func TestResolveGridPath_File(t *testing.T) {
	path := writeGrid(t, t.TempDir(), "main.hcl", validGrid)

	files, err := ResolveGridPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestResolveGridPath_Directory(t *testing.T) {
	dir := t.TempDir()
	a := writeGrid(t, dir, "a.hcl", validGrid)
	b := writeGrid(t, dir, "b.hcl", validGrid)
	writeGrid(t, dir, "notes.txt", "not a grid")

	files, err := ResolveGridPath(context.Background(), dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)
}

func TestResolveGridPath_NotFound(t *testing.T) {
	_, err := ResolveGridPath(context.Background(), "/no/such/grid.hcl")
	assert.ErrorContains(t, err, "grid path not found")
}

func TestResolveGridPath_WrongExtension(t *testing.T) {
	path := writeGrid(t, t.TempDir(), "main.yaml", "steps: []")
	_, err := ResolveGridPath(context.Background(), path)
	assert.ErrorContains(t, err, "not an .hcl file")
}

func TestDecodeGridFile(t *testing.T) {
	path := writeGrid(t, t.TempDir(), "main.hcl", `
step "video_load" "clip" {
  arguments {
    path  = "clip.mp4"
    width = 320
  }
}

step "video_combine" "out" {
  depends_on = ["video_load.clip"]
  arguments {
    filename = "out.mp4"
  }
}
`)

	config, err := DecodeGridFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, config.Steps, 2)

	assert.Equal(t, "video_load", config.Steps[0].RunnerType)
	assert.Equal(t, "clip", config.Steps[0].Name)
	assert.Equal(t, "video_load.clip", config.Steps[0].ID())
	assert.Equal(t, []string{"video_load.clip"}, config.Steps[1].DependsOn)
}

func TestDecodeGridFile_ParseError(t *testing.T) {
	path := writeGrid(t, t.TempDir(), "broken.hcl", `step "a" {`)

	_, err := DecodeGridFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")
}

func TestLoadGrids_ConcatenatesSteps(t *testing.T) {
	dir := t.TempDir()
	writeGrid(t, dir, "a.hcl", validGrid)
	writeGrid(t, dir, "b.hcl", `
step "video_combine" "out" {
  arguments {
    filename = "out.mp4"
  }
}
`)

	steps, err := LoadGrids(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}

func TestLoadGrids_EmptyDirectory(t *testing.T) {
	steps, err := LoadGrids(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, steps)
}
