package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // .hcl file or directory of .hcl files

	LogFormat string
	LogLevel  string

	// DefaultDevice is the device identifier pinned steps use when a step
	// leaves the device argument unset. Empty elects a default per
	// execution.
	DefaultDevice string

	// MediaPort serves the upload/preview HTTP endpoints when > 0.
	MediaPort int
	// MediaDir is where uploaded files are stored and previews are served
	// from.
	MediaDir string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
