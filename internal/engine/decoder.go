// Package engine loads and decodes grid files into the schema model.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/fsutil"
	"github.com/vk/gridpin/internal/schema"
)

// ResolveGridPath takes a path and returns the .hcl files it names. A file
// path returns itself; a directory is scanned recursively.
func ResolveGridPath(ctx context.Context, path string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving grid path.", "path", path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("grid path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if info.IsDir() {
		logger.Debug("Path is a directory, scanning for HCL files.", "directory", path)
		return fsutil.FindFilesByExtension(path, ".hcl")
	}

	if filepath.Ext(path) != ".hcl" {
		return nil, fmt.Errorf("specified file is not an .hcl file: %s", path)
	}
	return []string{path}, nil
}

// DecodeGridFile parses and decodes a single HCL grid file.
func DecodeGridFile(ctx context.Context, filePath string) (*schema.GridConfig, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding grid file.", "path", filePath)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}

	var config schema.GridConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Successfully decoded grid file.", "path", filePath, "steps_found", len(config.Steps))
	return &config, nil
}

// LoadGrids resolves path and decodes every grid file found, returning the
// concatenated step list in file order.
func LoadGrids(ctx context.Context, path string) ([]*schema.Step, error) {
	files, err := ResolveGridPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		ctxlog.FromContext(ctx).Warn("No .hcl grid files found in path.", "path", path)
	}
	var steps []*schema.Step
	for _, filePath := range files {
		config, err := DecodeGridFile(ctx, filePath)
		if err != nil {
			return nil, err
		}
		steps = append(steps, config.Steps...)
	}
	return steps, nil
}
