// octtool bakes, inspects and queries collision octrees for heightmap terrain.
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/collide/internal/config"
	"github.com/Faultbox/collide/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	command, rest := args[0], args[1:]
	switch command {
	case "bake":
		err = cmdBake(os.Stdout, cfg, rest)
	case "info":
		err = cmdInfo(os.Stdout, cfg, rest)
	case "query", "q":
		err = cmdQuery(os.Stdout, cfg, rest)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `octtool - collision octree utility

Usage:
  octtool [flags] <command> [options]

Flags:
  -config <file>     Config file (default: ./collide.yaml, then user config dir)
  -assets <dir>      Asset root containing Assets/octrees
  -max-shapes <n>    Octree subdivision threshold
  -min-node <f>      Smallest node as a fraction of the root size
  -budget <d>        Build time budget per frame (info)
  -debug             Enable debug logging

Commands:
  bake <heightmap...>          Build and write Assets/octrees/<name>.oct
  info <heightmap>             Load an octree the way the game does and print stats
  query <heightmap> <x> <z>    Ray cast down onto the terrain at (x, z)
        -at x,y,z -yaw deg -scale f   place the terrain instance first

Examples:
  octtool -assets ./game bake maps/valley.png maps/hills.bmp
  octtool -assets ./game info maps/valley.png
  octtool query maps/valley.png 12.5 40
  octtool query -at 100,0,50 -yaw 90 maps/hills.bmp 102 51`)
}
