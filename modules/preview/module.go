// Package preview provides the "preview" node: it notifies the host UI
// over socket.io that a rendered file is ready to preview. Pure plumbing —
// it never influences device placement.
package preview

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the preview node.
type Input struct {
	URL                string `cty:"url"`
	Namespace          string `cty:"namespace"`
	Event              string `cty:"event"`
	Filename           string `cty:"filename"`
	Timeout            string `cty:"timeout"`
	InsecureSkipVerify bool   `cty:"insecure_skip_verify"`
}

// opResult passes the outcome through the done channel.
type opResult struct {
	err error
}

// OnRunPreview is the handler for the 'preview' node.
func OnRunPreview(ctx context.Context, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "preview", "url", input.URL, "filename", input.Filename)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	if input.URL == "" {
		return cty.NilVal, errors.New("url is required")
	}
	if input.Filename == "" {
		return cty.NilVal, errors.New("filename is required")
	}
	event := input.Event
	if event == "" {
		event = "preview"
	}

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected to preview channel", "namespace", input.Namespace, "sid", io.Id())
		io.Emit(event, map[string]any{"filename": input.Filename})
		done <- opResult{}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				done <- opResult{err: err}
				return
			}
		}
		done <- opResult{err: errors.New("preview connection failed")}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return cty.NilVal, fmt.Errorf("timed out after connecting while emitting '%s'", event)
		}
		return cty.NilVal, errors.New("timed out while waiting for initial connection")
	case result := <-done:
		if result.err != nil {
			return cty.NilVal, fmt.Errorf("preview notification failed: %w", result.err)
		}
	}

	logger.Info("Preview notification delivered.", "event", event)

	return cty.ObjectVal(map[string]cty.Value{
		"delivered": cty.BoolVal(true),
		"event":     cty.StringVal(event),
	}), nil
}

// Register registers the handler with the host registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("preview", &registry.Runner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunPreview,
	})
}
