// Package config handles collision core configuration loading and management.
package config

import "time"

// Config holds all collision core settings.
type Config struct {
	Octree  OctreeConfig  `yaml:"octree"`
	Loading LoadingConfig `yaml:"loading"`
	Terrain TerrainConfig `yaml:"terrain"`
	Logging LoggingConfig `yaml:"logging"`
}

// OctreeConfig holds octree construction parameters. Pre-baked .oct files
// must be produced with the same values they are loaded with.
type OctreeConfig struct {
	SmallestNodeMultiplier float32 `yaml:"smallest_node_multiplier"` // Fraction of the root size
	MaxShapesPerNode       int     `yaml:"max_shapes_per_node"`      // Subdivision threshold
}

// LoadingConfig holds asset loading settings.
type LoadingConfig struct {
	AssetRoot   string        `yaml:"asset_root"`   // Directory containing Assets/
	FrameBudget time.Duration `yaml:"frame_budget"` // Octree build time per frame
}

// TerrainConfig holds heightmap to mesh conversion settings.
type TerrainConfig struct {
	CellSize    float32 `yaml:"cell_size"`    // World units between heightmap samples
	HeightScale float32 `yaml:"height_scale"` // World height of a full-white sample
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Octree: OctreeConfig{
			SmallestNodeMultiplier: 0.01,
			MaxShapesPerNode:       16,
		},
		Loading: LoadingConfig{
			AssetRoot:   ".",
			FrameBudget: 10 * time.Millisecond,
		},
		Terrain: TerrainConfig{
			CellSize:    1,
			HeightScale: 32,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
