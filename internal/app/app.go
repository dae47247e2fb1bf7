package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/engine"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/internal/schema"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	steps    []*schema.Step
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry.
// Failing to load the configured grid is a fatal startup error and panics;
// the caller recovers it into a clean exit.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	steps, err := engine.LoadGrids(ctx, cfg.GridPath)
	if err != nil {
		panic(fmt.Errorf("failed to load grid configuration: %w", err))
	}
	logger.Debug("Grid configuration loaded.", "steps", len(steps))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(cfg)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		steps:    steps,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Steps returns the loaded grid steps. This is primarily for testing.
func (a *App) Steps() []*schema.Step {
	return a.steps
}
