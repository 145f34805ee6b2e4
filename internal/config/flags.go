package config

import (
	"flag"
	"time"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMaxShapes = flag.Int("max-shapes", 0, "Octree subdivision threshold (shapes per node)")
	flagMinNode   = flag.Float64("min-node", 0, "Smallest octree node as a fraction of the root size")
	flagBudget    = flag.Duration("budget", 0, "Octree build time budget per frame")
	flagAssets    = flag.String("assets", "", "Asset root directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMaxShapes > 0 {
		cfg.Octree.MaxShapesPerNode = *flagMaxShapes
	}
	if *flagMinNode > 0 {
		cfg.Octree.SmallestNodeMultiplier = float32(*flagMinNode)
	}
	if *flagBudget > 0 {
		cfg.Loading.FrameBudget = *flagBudget
	}
	if *flagAssets != "" {
		cfg.Loading.AssetRoot = *flagAssets
	}
}

// resetFlags restores flag defaults; used by tests.
func resetFlags() {
	*flagConfig = ""
	*flagDebug = false
	*flagMaxShapes = 0
	*flagMinNode = 0
	*flagBudget = time.Duration(0)
	*flagAssets = ""
}
