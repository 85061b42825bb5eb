// Package config handles demo configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all demo settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Texture TextureConfig `yaml:"texture"`
	Engine  EngineConfig  `yaml:"engine"`
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	AppHeight  int    `yaml:"app_height"` // logical interface height
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// MeshConfig describes the revolved object.
type MeshConfig struct {
	StepsU        uint32  `yaml:"steps_u"`
	StepsV        uint32  `yaml:"steps_v"`
	Major         float32 `yaml:"major"`
	Minor         float32 `yaml:"minor"`
	TexCoordScale float32 `yaml:"texcoord_scale"`
}

// TextureConfig controls the procedural texture.
type TextureConfig struct {
	Size int `yaml:"size"`
	FPS  int `yaml:"fps"` // refreshes per second
}

// Quantum returns the refresh interval.
func (t TextureConfig) Quantum() time.Duration {
	return time.Second / time.Duration(t.FPS)
}

// EngineConfig holds scene and render manager settings.
type EngineConfig struct {
	// Progress reports manager creation progress through the logger.
	Progress     bool          `yaml:"progress"`
	ShaderCache  string        `yaml:"shader_cache"`
	TextureCache string        `yaml:"texture_cache"`
	ProcessIdle  time.Duration `yaml:"process_idle"`
	LayoutPasses int           `yaml:"layout_passes"`
}

// CaptureConfig controls F12 screenshots.
type CaptureConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "Revolve",
			Width:     1600,
			Height:    900,
			AppHeight: 720,
			VSync:     true,
		},
		Mesh: MeshConfig{
			StepsU:        64,
			StepsV:        32,
			Major:         8,
			Minor:         2,
			TexCoordScale: 2,
		},
		Texture: TextureConfig{
			Size: 256,
			FPS:  30,
		},
		Engine: EngineConfig{
			Progress:     false,
			ShaderCache:  "shader.cache",
			TextureCache: "texture.cache",
			ProcessIdle:  time.Second,
			LayoutPasses: 32,
		},
		Capture: CaptureConfig{
			Dir:    "",
			Prefix: "screenshot",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values the demo cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.AppHeight <= 0 {
		errs = append(errs, fmt.Errorf("app height %d must be positive", c.Window.AppHeight))
	}
	if c.Mesh.StepsU == 0 || c.Mesh.StepsV == 0 {
		errs = append(errs, fmt.Errorf("mesh steps %dx%d must be at least 1", c.Mesh.StepsU, c.Mesh.StepsV))
	}
	if c.Mesh.Minor <= 0 {
		errs = append(errs, fmt.Errorf("minor radius %v must be positive", c.Mesh.Minor))
	}
	if c.Texture.Size <= 0 {
		errs = append(errs, fmt.Errorf("texture size %d must be positive", c.Texture.Size))
	}
	if c.Texture.FPS <= 0 {
		errs = append(errs, fmt.Errorf("texture fps %d must be positive", c.Texture.FPS))
	}
	if c.Engine.ProcessIdle <= 0 {
		errs = append(errs, fmt.Errorf("process idle %v must be positive", c.Engine.ProcessIdle))
	}
	if c.Engine.LayoutPasses <= 0 {
		errs = append(errs, fmt.Errorf("layout passes %d must be positive", c.Engine.LayoutPasses))
	}
	return errors.Join(errs...)
}
