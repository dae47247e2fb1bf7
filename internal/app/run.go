package app

import (
	"context"
	"fmt"

	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/executor"
)

// Run executes the loaded grid.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.MediaPort > 0 {
		a.startMediaServer(a.config.MediaPort, a.config.MediaDir)
	}

	a.logger.Info("Node handlers registered:", "count", len(a.registry.Names()), "keys", a.registry.Names())

	if len(a.steps) == 0 {
		a.logger.Warn("No steps found in grid, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting execution...", "steps", len(a.steps))
	exec := executor.New(a.registry)
	if err := exec.Run(ctx, a.steps); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
