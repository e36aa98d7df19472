// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Window    WindowConfig    `yaml:"window" toml:"window"`
	Render    RenderConfig    `yaml:"render" toml:"render"`
	Scene     SceneConfig     `yaml:"scene" toml:"scene"`
	Sky       SkyConfig       `yaml:"sky" toml:"sky"`
	Animation AnimationConfig `yaml:"animation" toml:"animation"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Viewer    ViewerConfig    `yaml:"viewer" toml:"viewer"`
}

// WindowConfig holds display settings. The viewport keeps its initial size
// for the whole run.
type WindowConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
}

// Pipeline choices for RenderConfig.Pipeline.
const (
	PipelineAuto     = "auto" // deferred for static scenes, forward for animated ones
	PipelineForward  = "forward"
	PipelineDeferred = "deferred"
)

// Camera choices for SceneConfig.Camera.
const (
	CameraAuto    = "auto" // the asset camera when present
	CameraBuiltin = "builtin"
	CameraDefault = "default"
)

// RenderConfig holds pipeline settings.
type RenderConfig struct {
	Pipeline         string  `yaml:"pipeline" toml:"pipeline"`
	Exposure         float32 `yaml:"exposure" toml:"exposure"`
	ShadowResolution int     `yaml:"shadow_resolution" toml:"shadow_resolution"`
	Skybox           bool    `yaml:"skybox" toml:"skybox"`
	Mirror           bool    `yaml:"mirror" toml:"mirror"`
	DebugGL          bool    `yaml:"debug_gl" toml:"debug_gl"`
}

// SceneConfig names the files a run loads.
type SceneConfig struct {
	Dir       string `yaml:"dir" toml:"dir"` // searched for relative paths
	File      string `yaml:"file" toml:"file"`
	Info      string `yaml:"info" toml:"info"`
	Skybox    string `yaml:"skybox" toml:"skybox"`
	SkyboxDir string `yaml:"skybox_dir" toml:"skybox_dir"`
	Camera    string `yaml:"camera" toml:"camera"`
	Watch     bool   `yaml:"watch" toml:"watch"` // reload Info when it changes
}

// SkyConfig holds the sun-sky model parameters.
type SkyConfig struct {
	ThetaDeg  float32 `yaml:"theta_deg" toml:"theta_deg"` // sun zenith angle
	Turbidity float32 `yaml:"turbidity" toml:"turbidity"`
}

// AnimationConfig holds playback settings.
type AnimationConfig struct {
	Speed float64 `yaml:"speed" toml:"speed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// ViewerConfig holds settings of the interactive viewer.
type ViewerConfig struct {
	ShowPanel     bool    `yaml:"show_panel" toml:"show_panel"`
	ScreenshotDir string  `yaml:"screenshot_dir" toml:"screenshot_dir"`
	Font          string  `yaml:"font" toml:"font"` // TTF file; empty keeps the built-in font
	FontSize      float32 `yaml:"font_size" toml:"font_size"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "skyscene",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			Pipeline:         PipelineAuto,
			Exposure:         1.0,
			ShadowResolution: 1024,
			Skybox:           true,
			Mirror:           true,
		},
		Scene: SceneConfig{
			Dir:       "resources/scenes",
			File:      "bunnyscene.glb",
			Info:      "bunnyscene_info.json",
			Skybox:    "rainbow",
			SkyboxDir: "resources/skyboxes",
			Camera:    CameraAuto,
		},
		Sky: SkyConfig{
			ThetaDeg:  85,
			Turbidity: 7,
		},
		Animation: AnimationConfig{
			Speed: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Viewer: ViewerConfig{
			ShowPanel:     true,
			ScreenshotDir: "screenshots",
			FontSize:      16,
		},
	}
}
