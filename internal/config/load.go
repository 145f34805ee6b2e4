package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for in standard locations.
const FileName = "collide.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the search locations
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that octree and loading parameters are usable.
func (c *Config) Validate() error {
	if c.Octree.MaxShapesPerNode < 1 {
		return fmt.Errorf("octree.max_shapes_per_node must be >= 1, got %d", c.Octree.MaxShapesPerNode)
	}
	if c.Octree.SmallestNodeMultiplier <= 0 || c.Octree.SmallestNodeMultiplier > 1 {
		return fmt.Errorf("octree.smallest_node_multiplier must be in (0, 1], got %v", c.Octree.SmallestNodeMultiplier)
	}
	if c.Loading.FrameBudget < 0 {
		return fmt.Errorf("loading.frame_budget must not be negative, got %v", c.Loading.FrameBudget)
	}
	if c.Terrain.CellSize <= 0 {
		return fmt.Errorf("terrain.cell_size must be positive, got %v", c.Terrain.CellSize)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./" + FileName,
		filepath.Join(ConfigDir(), FileName),
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
		return filepath.Join(home, "Library", "Application Support", "Collide")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Collide")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "collide")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "collide")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
