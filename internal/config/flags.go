package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml, .yml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and GL error checks")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSkybox     = flag.String("s", "", "Skybox name")
	flagPipeline   = flag.String("pipeline", "", "Initial pipeline: auto, forward or deferred")
	flagWatch      = flag.Bool("watch", false, "Reload the scene info file when it changes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. The first two
// positional arguments name the scene file and the scene info file.
func applyFlags(cfg *Config) {
	applyArgs(cfg, flag.Args())
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Render.DebugGL = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagSkybox != "" {
		cfg.Scene.Skybox = *flagSkybox
	}
	if *flagPipeline != "" {
		cfg.Render.Pipeline = *flagPipeline
	}
	if *flagWatch {
		cfg.Scene.Watch = true
	}
}

func applyArgs(cfg *Config, args []string) {
	if len(args) > 0 {
		cfg.Scene.File = args[0]
	}
	if len(args) > 1 {
		cfg.Scene.Info = args[1]
	}
}
