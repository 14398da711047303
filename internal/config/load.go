package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/pulpcarousel/internal/catalog"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.loadItems(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadItems replaces the inline item list with the items file, if set.
func (c *Config) loadItems() error {
	if c.Assets.ItemsFile == "" {
		return nil
	}
	items, err := catalog.Load(c.Assets.ItemsFile)
	if err != nil {
		return fmt.Errorf("loading items: %w", err)
	}
	c.Items = items
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./carousel.yaml",
		filepath.Join(ConfigDir(), "carousel.yaml"),
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
		return filepath.Join(home, "Library", "Application Support", "PulpCarousel")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PulpCarousel")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pulp-carousel")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pulp-carousel")
	}
}

// loadFromFile merges a YAML file over the existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
