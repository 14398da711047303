// Package config handles viewer configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/pulpcarousel/internal/catalog"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Carousel CarouselConfig `yaml:"carousel"`
	Assets   AssetsConfig   `yaml:"assets"`
	Items    []catalog.Item `yaml:"items"`
	Logging  LoggingConfig  `yaml:"logging"`
	Debug    DebugConfig    `yaml:"debug"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string  `yaml:"title"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	MaxDPR     float32 `yaml:"max_dpr"` // Values of 1 or less keep the drawable at window size
}

// CarouselConfig holds engine tuning.
type CarouselConfig struct {
	Scale        float32       `yaml:"scale"`
	SphereRadius float32       `yaml:"sphere_radius"`
	Subdivisions int           `yaml:"subdivisions"`
	DiscSteps    int           `yaml:"disc_steps"`
	CellSize     int           `yaml:"cell_size"` // Atlas cell edge in pixels
	StartDelay   time.Duration `yaml:"start_delay"`
}

// AssetsConfig controls where item images come from.
type AssetsConfig struct {
	Root        string        `yaml:"root"` // Directory serving relative image references
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	ItemsFile   string        `yaml:"items_file"` // Optional YAML item list, overrides inline items
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DebugConfig holds developer switches.
type DebugConfig struct {
	ShowFPS   bool   `yaml:"show_fps"`
	DumpAtlas string `yaml:"dump_atlas"` // Directory to write the composed atlas PNG into
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Pulp Carousel",
			Width:  1280,
			Height: 720,
			VSync:  true,
			MaxDPR: 2,
		},
		Carousel: CarouselConfig{
			Scale:        1.0,
			SphereRadius: 2,
			Subdivisions: 1,
			DiscSteps:    56,
			CellSize:     1024,
			StartDelay:   100 * time.Millisecond,
		},
		Assets: AssetsConfig{
			Root:        "public",
			HTTPTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
