// Package config handles meshview configuration loading and management.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Camera  CameraConfig  `yaml:"camera"`
	Preview PreviewConfig `yaml:"preview"`
	Picking PickingConfig `yaml:"picking"`
	Loader  LoaderConfig  `yaml:"loader"`
	Logging LoggingConfig `yaml:"logging"`
}

// CameraConfig holds the orbit camera setup. Angles are in degrees.
type CameraConfig struct {
	FOV             float32 `yaml:"fov"`
	Near            float32 `yaml:"near"`
	Far             float32 `yaml:"far"`
	Distance        float32 `yaml:"distance"`
	MinDistance     float32 `yaml:"min_distance"`
	MaxDistance     float32 `yaml:"max_distance"`
	Pitch           float32 `yaml:"pitch"`
	Yaw             float32 `yaml:"yaw"`
	DragSensitivity float32 `yaml:"drag_sensitivity"` // degrees per pixel
	ZoomSensitivity float32 `yaml:"zoom_sensitivity"` // fraction of distance per wheel step
}

// PreviewConfig holds offscreen preview rendering settings.
type PreviewConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Shading     string `yaml:"shading"`
	Background  string `yaml:"background"` // hex color
	BBoxOverlay bool   `yaml:"bbox_overlay"`
}

// PickingConfig selects the ray intersection strategy.
type PickingConfig struct {
	UseDuals bool `yaml:"use_duals"`
	Parallel bool `yaml:"parallel"`
}

// LoaderConfig holds mesh loading settings.
type LoaderConfig struct {
	ComputeNormals bool          `yaml:"compute_normals"`
	WatchDebounce  time.Duration `yaml:"watch_debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	JSON       bool   `yaml:"json"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Shading modes understood by the preview renderer.
var ShadingModes = []string{"flat", "normal", "depth", "checker"}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			FOV:             45,
			Near:            0.01,
			Far:             100,
			Distance:        4,
			MinDistance:     0.5,
			MaxDistance:     50,
			Pitch:           20,
			Yaw:             30,
			DragSensitivity: 0.5,
			ZoomSensitivity: 0.1,
		},
		Preview: PreviewConfig{
			Width:       640,
			Height:      480,
			Shading:     "flat",
			Background:  "#1e2328",
			BBoxOverlay: true,
		},
		Picking: PickingConfig{
			UseDuals: true,
		},
		Loader: LoaderConfig{
			ComputeNormals: true,
			WatchDebounce:  250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	cam := c.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		return fmt.Errorf("camera.fov must be in (0, 180), got %g", cam.FOV)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("camera near/far must satisfy 0 < near < far, got %g/%g", cam.Near, cam.Far)
	}
	if cam.MinDistance <= 0 || cam.MaxDistance < cam.MinDistance {
		return fmt.Errorf("camera distance limits must satisfy 0 < min <= max, got %g/%g", cam.MinDistance, cam.MaxDistance)
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return fmt.Errorf("preview size must be positive, got %dx%d", c.Preview.Width, c.Preview.Height)
	}
	if !slices.Contains(ShadingModes, c.Preview.Shading) {
		return fmt.Errorf("unknown preview shading %q", c.Preview.Shading)
	}
	if c.Loader.WatchDebounce < 0 {
		return fmt.Errorf("loader.watch_debounce must not be negative")
	}
	return nil
}
