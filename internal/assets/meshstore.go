package assets

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/internal/config"
	"github.com/Faultbox/collide/internal/logger"
	"github.com/Faultbox/collide/internal/octree"
)

// OctreeDir is where pre-baked octrees live, relative to the asset root.
const OctreeDir = "Assets/octrees"

// OctreePath returns the baked octree path for a mesh or heightmap source:
// its basename with the extension replaced by .oct, under OctreeDir.
func OctreePath(source string) string {
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	name := strings.TrimSuffix(base, path.Ext(base))
	return OctreeDir + "/" + name + ".oct"
}

// MeshStore hands out one octree per mesh source. Octrees are shared by
// every instance of the mesh. Not safe for concurrent use.
type MeshStore struct {
	fsys   fs.FS
	cfg    config.OctreeConfig
	clock  clock.Clock
	log    *zap.Logger
	trees  *Cache[*octree.Octree]
	builds map[string]*OctreeBuild
}

// NewMeshStore creates a store reading baked octrees from fsys. clk drives
// the build budget; pass clock.New() outside tests.
func NewMeshStore(fsys fs.FS, cfg config.OctreeConfig, clk clock.Clock) *MeshStore {
	return &MeshStore{
		fsys:   fsys,
		cfg:    cfg,
		clock:  clk,
		log:    logger.Named("assets"),
		trees:  NewCache[*octree.Octree](),
		builds: make(map[string]*OctreeBuild),
	}
}

// LoadOctree returns the octree for source, built over shapes in the order
// given. The first call probes OctreePath(source); a valid baked file
// finishes the load at once. A missing or malformed file starts an
// incremental build, and each call then spends at most budget on it. The
// bool reports completion; until then the returned tree is partial.
func (s *MeshStore) LoadOctree(source string, shapes []collision.Shape, budget time.Duration) (*octree.Octree, bool) {
	if tree, ok := s.trees.Get(source); ok {
		return tree, true
	}

	build, ok := s.builds[source]
	if !ok {
		if tree := s.probe(source, shapes); tree != nil {
			s.trees.Set(source, tree)
			return tree, true
		}
		build = NewOctreeBuild(shapes, s.cfg, s.clock)
		s.builds[source] = build
	}

	if !build.Step(budget) {
		s.log.Debug("octree build in progress",
			zap.String("source", source),
			zap.Int("remaining", build.Remaining()))
		return build.Octree(), false
	}

	delete(s.builds, source)
	tree := build.Octree()
	s.trees.Set(source, tree)
	stats := tree.Stats()
	s.log.Info("octree built",
		zap.String("source", source),
		zap.Int("shapes", stats.Shapes),
		zap.Int("nodes", stats.Nodes),
		zap.Int("depth", stats.MaxDepth))
	if n := build.Rejected(); n > 0 {
		s.log.Warn("shapes left out of octree",
			zap.String("source", source),
			zap.Int("rejected", n))
	}
	return tree, true
}

// probe loads the baked octree for source, or returns nil when there is no
// usable file.
func (s *MeshStore) probe(source string, shapes []collision.Shape) *octree.Octree {
	p := OctreePath(source)
	f, err := s.fsys.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("no baked octree, generating", zap.String("path", p))
		} else {
			s.log.Warn("cannot open baked octree, generating", zap.String("path", p), zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	tree, err := octree.Parse(f, shapes)
	if err != nil {
		s.log.Warn("invalid baked octree, generating", zap.String("path", p), zap.Error(err))
		return nil
	}
	s.log.Debug("loaded baked octree", zap.String("path", p), zap.Int("shapes", tree.Len()))
	return tree
}

// Octree returns the completed octree for source, if any.
func (s *MeshStore) Octree(source string) (*octree.Octree, bool) {
	return s.trees.Peek(source)
}

// Pending reports how many shapes of an in-progress build remain.
func (s *MeshStore) Pending(source string) int {
	if b, ok := s.builds[source]; ok {
		return b.Remaining()
	}
	return 0
}

// Forget drops the cached octree and any build in progress for source.
func (s *MeshStore) Forget(source string) {
	s.trees.Delete(source)
	delete(s.builds, source)
}

// Stats returns octree cache hits and misses.
func (s *MeshStore) Stats() (hits, misses int) {
	return s.trees.Stats()
}
