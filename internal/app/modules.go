package app

import (
	"github.com/vk/gridpin/internal/pin"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/modules/device_move"
	"github.com/vk/gridpin/modules/preview"
	"github.com/vk/gridpin/modules/upload"
	"github.com/vk/gridpin/modules/video_combine"
	"github.com/vk/gridpin/modules/video_load"
)

// coreModules is the definitive list of modules compiled into the gridpin
// binary. The pin module comes last: it can only wrap delegates that are
// already registered.
func coreModules(cfg *Config) []registry.Module {
	return []registry.Module{
		&video_load.Module{},
		&video_combine.Module{},
		&device_move.Module{},
		&upload.Module{},
		&preview.Module{},
		&pin.Module{
			Runners:       []string{"video_load", "video_combine"},
			DefaultDevice: cfg.DefaultDevice,
		},
	}
}
