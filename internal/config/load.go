package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skyscene/internal/logger"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Render.Pipeline {
	case PipelineAuto, PipelineForward, PipelineDeferred:
	default:
		return fmt.Errorf("render.pipeline: unknown pipeline %q", c.Render.Pipeline)
	}
	switch c.Scene.Camera {
	case CameraAuto, CameraBuiltin, CameraDefault:
	default:
		return fmt.Errorf("scene.camera: unknown camera %q", c.Scene.Camera)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Render.Exposure <= 0 {
		return fmt.Errorf("render.exposure: %g must be positive", c.Render.Exposure)
	}
	if c.Render.ShadowResolution <= 0 {
		return fmt.Errorf("render.shadow_resolution: %d must be positive", c.Render.ShadowResolution)
	}
	if c.Animation.Speed <= 0 {
		return fmt.Errorf("animation.speed: %g must be positive", c.Animation.Speed)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	var candidates []string
	for _, dir := range []string{".", ConfigDir()} {
		for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "SkyScene")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "SkyScene")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "skyscene")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "skyscene")
	}
}

// loadFromFile loads config from a YAML or TOML file, merging with existing
// values. The format follows the extension.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}
