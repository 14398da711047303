package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and FPS reporting")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagScale      = flag.Float64("scale", 0, "Carousel camera scale")
	flagAssets     = flag.String("assets", "", "Directory for relative image references")
	flagItems      = flag.String("items", "", "YAML file with the carousel items")
	flagDumpAtlas  = flag.String("dump-atlas", "", "Write the composed atlas PNG into this directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.ShowFPS = true
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
	if *flagScale > 0 {
		cfg.Carousel.Scale = float32(*flagScale)
	}
	if *flagAssets != "" {
		cfg.Assets.Root = *flagAssets
	}
	if *flagItems != "" {
		cfg.Assets.ItemsFile = *flagItems
	}
	if *flagDumpAtlas != "" {
		cfg.Debug.DumpAtlas = *flagDumpAtlas
	}
}
