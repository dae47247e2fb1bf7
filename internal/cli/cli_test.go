package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_GridFlag(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"--grid", "grid.hcl"}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "grid.hcl", cfg.GridPath)
	// Defaults.
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DefaultDevice)
	assert.Equal(t, 0, cfg.MediaPort)
	assert.Equal(t, "media", cfg.MediaDir)
}

func TestParse_Shorthand(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"-g", "grid.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "grid.hcl", cfg.GridPath)
}

func TestParse_PositionalPath(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"grids/"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "grids/", cfg.GridPath)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_UnknownFlag(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--bogus"}, &out)
	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParse_DeviceFlag(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"--grid", "g.hcl", "--device", "cuda:1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "cuda:1", cfg.DefaultDevice)
}

func TestParse_InvalidDevice(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--grid", "g.hcl", "--device", "tpu"}, &out)
	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid device")
}

func TestParse_InvalidLogFormat(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--grid", "g.hcl", "--log-format", "xml"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-format")
}

func TestParse_InvalidLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--grid", "g.hcl", "--log-level", "loud"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-level")
}

func TestParse_MediaFlags(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"--grid", "g.hcl", "--media-port", "8188", "--media-dir", "/tmp/media"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 8188, cfg.MediaPort)
	assert.Equal(t, "/tmp/media", cfg.MediaDir)
}
