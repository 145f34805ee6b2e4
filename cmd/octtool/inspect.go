package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"

	"github.com/Faultbox/collide/internal/assets"
	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/internal/config"
	"github.com/Faultbox/collide/internal/octree"
	"github.com/Faultbox/collide/pkg/math"
)

// loadOctree loads the octree for src through a MeshStore, one frame
// budget at a time, and reports how many frames it took.
func loadOctree(cfg *config.Config, src string, shapes []collision.Shape) (*octree.Octree, int) {
	store := assets.NewMeshStore(os.DirFS(cfg.Loading.AssetRoot), cfg.Octree, clock.New())
	frames := 0
	for {
		frames++
		if tree, done := store.LoadOctree(src, shapes, cfg.Loading.FrameBudget); done {
			return tree, frames
		}
	}
}

func cmdInfo(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: octtool info <heightmap>")
	}
	src := args[0]

	h, shapes, err := loadTerrain(cfg, src)
	if err != nil {
		return err
	}
	tree, frames := loadOctree(cfg, src, shapes)

	origin := "generated"
	if _, err := fs.Stat(os.DirFS(cfg.Loading.AssetRoot), assets.OctreePath(src)); err == nil {
		origin = "baked " + assets.OctreePath(src)
	}

	sx, sz := h.Size()
	stats := tree.Stats()
	fmt.Fprintf(w, "Heightmap: %s (%dx%d samples, %gx%g units)\n", src, h.Width, h.Depth, sx, sz)
	fmt.Fprintf(w, "Octree:    %s in %d frame(s)\n", origin, frames)
	fmt.Fprintf(w, "Root:      %v size %g\n", tree.Root().Position, tree.Root().Size)
	fmt.Fprintf(w, "Shapes:    %d\n", stats.Shapes)
	fmt.Fprintf(w, "Nodes:     %d (%d leaves, depth %d)\n", stats.Nodes, stats.Leaves, stats.MaxDepth)
	fmt.Fprintf(w, "Refs:      %d\n", stats.References)
	return nil
}

func cmdQuery(w io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	at := fs.String("at", "0,0,0", "Instance position as x,y,z")
	yaw := fs.Float64("yaw", 0, "Instance yaw in degrees")
	scale := fs.Float64("scale", 1, "Instance uniform scale")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return fmt.Errorf("usage: octtool query [-at x,y,z] [-yaw deg] [-scale f] <heightmap> <x> <z>")
	}
	src := fs.Arg(0)
	x, err := strconv.ParseFloat(fs.Arg(1), 32)
	if err != nil {
		return fmt.Errorf("bad x %q: %w", fs.Arg(1), err)
	}
	z, err := strconv.ParseFloat(fs.Arg(2), 32)
	if err != nil {
		return fmt.Errorf("bad z %q: %w", fs.Arg(2), err)
	}
	pos, err := parseVec3(*at)
	if err != nil {
		return fmt.Errorf("bad -at %q: %w", *at, err)
	}
	if *scale <= 0 {
		return fmt.Errorf("bad -scale %g: must be positive", *scale)
	}

	h, shapes, err := loadTerrain(cfg, src)
	if err != nil {
		return err
	}
	tree, _ := loadOctree(cfg, src, shapes)

	s := float32(*scale)
	rot := math.QuatFromEuler(0, float32(*yaw*gomath.Pi/180), 0)
	model := math.Compose(pos, rot, math.Vec3{X: s, Y: s, Z: s})

	world := tree.Root().Bounds().Transform(model)
	top := world.Max.Y + 1
	start := math.Vec3{X: float32(x), Y: top, Z: float32(z)}
	ray := collision.NewRay(start, math.Vec3{Y: -1})
	dist := tree.RayCastAt(model, ray, top-world.Min.Y, false)
	if dist < 0 {
		fmt.Fprintf(w, "No terrain at (%g, %g)\n", x, z)
		return nil
	}

	cell := cfg.Terrain.CellSize * s
	probe := collision.NewOBB(
		math.Vec3{X: float32(x) - cell/2, Y: world.Min.Y, Z: float32(z) - cell/2},
		math.Vec3{X: float32(x) + cell/2, Y: top, Z: float32(z) + cell/2})
	near := tree.ShapesForCollisionAt(model, probe, nil)

	fmt.Fprintf(w, "Ground:    %g (ray distance %g)\n", top-dist, dist)
	if model == math.Identity() {
		fmt.Fprintf(w, "Heightmap: %g\n", h.HeightAt(float32(x), float32(z)))
	}
	fmt.Fprintf(w, "Nearby:    %d triangle(s)\n", len(near))
	return nil
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("want x,y,z")
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return math.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}
