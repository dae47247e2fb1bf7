// Package upload provides the "upload" node: it pushes a produced media
// file to the host's upload endpoint as a multipart form and returns the
// name the server assigned. It never touches device placement.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the upload node.
type Input struct {
	Path  string `cty:"path"`
	URL   string `cty:"url"`
	Field string `cty:"field"`
}

// OnRunUpload is the handler for the 'upload' node.
func OnRunUpload(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "upload", "url", input.URL)

	if input.Path == "" {
		return cty.NilVal, errors.New("path is required")
	}
	if input.URL == "" {
		return cty.NilVal, errors.New("url is required")
	}
	field := input.Field
	if field == "" {
		field = "file"
	}

	client := resty.New()
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		SetFile(field, input.Path).
		Post(input.URL)
	if err != nil {
		return cty.NilVal, fmt.Errorf("uploading %s: %w", input.Path, err)
	}
	if resp.IsError() {
		return cty.NilVal, fmt.Errorf("upload failed with status %s", resp.Status())
	}

	// The endpoint answers {"name": "..."}; fall back to the local base
	// name for servers that reply with an empty body.
	name := filepath.Base(input.Path)
	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Bytes(), &body); err == nil && body.Name != "" {
		name = body.Name
	}

	logger.Info("File uploaded.", "name", name, "status", resp.Status())

	return cty.ObjectVal(map[string]cty.Value{
		"name":   cty.StringVal(name),
		"status": cty.StringVal(resp.Status()),
	}), nil
}

// Register registers the handler with the host registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("upload", &registry.Runner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunUpload,
	})
}
