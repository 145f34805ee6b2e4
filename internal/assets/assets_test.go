package assets

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/internal/config"
	"github.com/Faultbox/collide/internal/terrain"
	"github.com/Faultbox/collide/pkg/math"
)

const source = "Assets/heightmaps/valley.png"

var octreeCfg = config.OctreeConfig{SmallestNodeMultiplier: 0.05, MaxShapesPerNode: 4}

// terrainShapes returns the triangles of a 5x5 sloped heightmap.
func terrainShapes(t *testing.T) []collision.Shape {
	t.Helper()
	heights := make([]float32, 25)
	for i := range heights {
		heights[i] = float32(i%5) * 0.5
	}
	h, err := terrain.NewHeightmap(5, 5, 1, heights)
	require.NoError(t, err)
	return terrain.BuildMesh(h).Triangles()
}

// tickingClock advances by step on every reading.
type tickingClock struct {
	*clock.Mock
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	c.Mock.Add(c.step)
	return c.Mock.Now()
}

func TestOctreePath(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"Assets/heightmaps/valley.png", "Assets/octrees/valley.oct"},
		{"rock.obj", "Assets/octrees/rock.oct"},
		{"models/props/crate.tar.gz", "Assets/octrees/crate.tar.oct"},
		{`C:\maps\hill.bmp`, "Assets/octrees/hill.oct"},
		{"noext", "Assets/octrees/noext.oct"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, OctreePath(tt.source))
		})
	}
}

func TestLoadOctreeFromBakedFile(t *testing.T) {
	shapes := terrainShapes(t)
	baked := NewOctreeBuild(shapes, octreeCfg, clock.NewMock()).Run()

	fsys := fstest.MapFS{
		"Assets/octrees/valley.oct": {Data: []byte(baked.DataString())},
	}
	store := NewMeshStore(fsys, octreeCfg, clock.NewMock())

	tree, done := store.LoadOctree(source, shapes, 0)
	require.True(t, done)
	assert.Equal(t, baked.DataString(), tree.DataString())
	assert.Zero(t, store.Pending(source))

	again, done := store.LoadOctree(source, shapes, 0)
	assert.True(t, done)
	assert.Same(t, tree, again)

	hits, misses := store.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	cached, ok := store.Octree(source)
	assert.True(t, ok)
	assert.Same(t, tree, cached)
}

func TestLoadOctreeGeneratesIncrementally(t *testing.T) {
	shapes := terrainShapes(t)
	store := NewMeshStore(fstest.MapFS{}, octreeCfg, clock.NewMock())

	// The mock clock never advances, so a zero budget inserts one shape
	// per call.
	for i := 1; i < len(shapes); i++ {
		tree, done := store.LoadOctree(source, shapes, 0)
		require.False(t, done, "call %d", i)
		require.NotNil(t, tree)
		assert.Equal(t, len(shapes)-i, store.Pending(source))

		_, ok := store.Octree(source)
		assert.False(t, ok)
	}

	tree, done := store.LoadOctree(source, shapes, 0)
	require.True(t, done)
	assert.Equal(t, len(shapes), tree.Len())

	direct := NewOctreeBuild(shapes, octreeCfg, clock.NewMock()).Run()
	assert.Equal(t, direct.DataString(), tree.DataString())
}

func TestLoadOctreeFallsBackOnMalformedFile(t *testing.T) {
	shapes := terrainShapes(t)
	fsys := fstest.MapFS{
		"Assets/octrees/valley.oct": {Data: []byte("octree 1 0.1 4 999\n")},
	}
	store := NewMeshStore(fsys, octreeCfg, clock.NewMock())

	tree, done := store.LoadOctree(source, shapes, time.Hour)
	require.True(t, done)
	assert.Equal(t, len(shapes), tree.Len())

	ray := collision.NewRay(math.Vec3{X: 1.3, Y: 10, Z: 1.4}, math.Vec3{Y: -1})
	assert.InDelta(t, 10-0.65, tree.RayCast(ray, 100, false), 1e-4)
}

func TestLoadOctreeRespectsBudget(t *testing.T) {
	shapes := terrainShapes(t)
	clk := &tickingClock{Mock: clock.NewMock(), step: time.Millisecond}
	store := NewMeshStore(fstest.MapFS{}, octreeCfg, clk)

	_, done := store.LoadOctree(source, shapes, 3*time.Millisecond)
	require.False(t, done)
	assert.Equal(t, len(shapes)-3, store.Pending(source))

	_, done = store.LoadOctree(source, shapes, 3*time.Millisecond)
	require.False(t, done)
	assert.Equal(t, len(shapes)-6, store.Pending(source))
}

func TestForget(t *testing.T) {
	shapes := terrainShapes(t)
	store := NewMeshStore(fstest.MapFS{}, octreeCfg, clock.NewMock())

	first, done := store.LoadOctree(source, shapes, time.Hour)
	require.True(t, done)

	store.Forget(source)
	_, ok := store.Octree(source)
	assert.False(t, ok)

	second, done := store.LoadOctree(source, shapes, time.Hour)
	require.True(t, done)
	assert.NotSame(t, first, second)
}

func TestOctreeBuildEmptyMesh(t *testing.T) {
	build := NewOctreeBuild(nil, octreeCfg, clock.NewMock())
	assert.True(t, build.Step(0))
	assert.True(t, build.Done())
	assert.Equal(t, float32(0), build.Octree().Root().Size)
}

func TestOctreeBuildCountsRejectedShapes(t *testing.T) {
	p := math.Vec3{X: 1, Y: 2, Z: 3}
	point := []collision.Shape{
		collision.NewTriangle(p, p, p),
		collision.NewTriangle(p, p, p),
	}
	build := NewOctreeBuild(point, octreeCfg, clock.NewMock())
	build.Run()
	assert.Equal(t, 2, build.Rejected())
	assert.Zero(t, build.Octree().Root().Size)

	shapes := terrainShapes(t)
	build = NewOctreeBuild(shapes, octreeCfg, clock.NewMock())
	assert.Equal(t, len(shapes), build.Run().Len())
	assert.Zero(t, build.Rejected())
}

func TestCache(t *testing.T) {
	c := NewCache[int]()

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Peek("b")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, c.Len())

	c.Delete("a")
	assert.Zero(t, c.Len())

	c.Set("b", 2)
	c.Clear()
	hits, misses = c.Stats()
	assert.Zero(t, hits+misses)
	assert.Zero(t, c.Len())
}
