package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/collide/internal/assets"
	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/internal/config"
	"github.com/Faultbox/collide/internal/logger"
	"github.com/Faultbox/collide/internal/terrain"
)

// loadTerrain decodes a heightmap file and returns it with its triangles.
func loadTerrain(cfg *config.Config, path string) (*terrain.Heightmap, []collision.Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	h, err := terrain.DecodeHeightmap(f, cfg.Terrain.CellSize, cfg.Terrain.HeightScale)
	if err != nil {
		return nil, nil, err
	}
	return h, terrain.BuildMesh(h).Triangles(), nil
}

func cmdBake(w io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bake", flag.ContinueOnError)
	dryRun := fs.Bool("n", false, "Build but do not write files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: octtool bake [-n] <heightmap...>")
	}

	log := logger.Named("bake")
	var errs error
	baked := 0
	for _, src := range fs.Args() {
		out, err := bakeOne(cfg, src, *dryRun)
		if err != nil {
			log.Warn("bake failed", zap.String("source", src), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}
		baked++
		fmt.Fprintf(w, "Baked: %s -> %s\n", src, out)
	}

	if failed := len(multierr.Errors(errs)); failed > 0 {
		fmt.Fprintf(w, "\n(%d baked, %d failed)\n", baked, failed)
	}
	return errs
}

// bakeOne builds the octree for one heightmap and writes it under the asset
// root. It returns the written path.
func bakeOne(cfg *config.Config, src string, dryRun bool) (string, error) {
	_, shapes, err := loadTerrain(cfg, src)
	if err != nil {
		return "", err
	}

	build := assets.NewOctreeBuild(shapes, cfg.Octree, clock.New())
	tree := build.Run()
	if n := build.Rejected(); n > 0 {
		logger.Named("bake").Warn("shapes left out of octree",
			zap.String("source", src),
			zap.Int("rejected", n))
	}
	outPath := filepath.Join(cfg.Loading.AssetRoot, filepath.FromSlash(assets.OctreePath(src)))

	stats := tree.Stats()
	logger.Named("bake").Info("octree built",
		zap.String("source", src),
		zap.Int("shapes", stats.Shapes),
		zap.Int("nodes", stats.Nodes),
		zap.Int("depth", stats.MaxDepth))
	if dryRun {
		return outPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if err := tree.Encode(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}
