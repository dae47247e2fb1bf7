package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridpin/internal/app"
	"github.com/vk/gridpin/internal/registry"
)

// HarnessResult holds the outcomes of a grid-level test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunGridTest provides a standardized harness: it writes gridHCL to a
// temporary file, builds an app around it with the provided modules (the
// core module set when none are given), runs it, and captures logs.
func RunGridTest(t *testing.T, gridHCL string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	gridPath := filepath.Join(tmpDir, "main.hcl")
	require.NoError(t, os.WriteFile(gridPath, []byte(gridHCL), 0o644))

	cfg, err := app.NewConfig(app.Config{
		GridPath:  gridPath,
		LogLevel:  "debug",
		LogFormat: "text",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg, modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
