package octree

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/pkg/math"
)

func v3(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

// gridTriangles returns 2*n*n triangles over [0,n]x[0,n] in the XZ plane
// with a little height variation.
func gridTriangles(n int) []collision.Shape {
	height := func(i, j int) float32 { return float32((i*7+j*3)%5) * 0.1 }
	shapes := make([]collision.Shape, 0, 2*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p00 := v3(float32(i), height(i, j), float32(j))
			p10 := v3(float32(i+1), height(i+1, j), float32(j))
			p01 := v3(float32(i), height(i, j+1), float32(j+1))
			p11 := v3(float32(i+1), height(i+1, j+1), float32(j+1))
			shapes = append(shapes,
				collision.NewTriangle(p00, p01, p10),
				collision.NewTriangle(p10, p01, p11))
		}
	}
	return shapes
}

func buildGrid(t *testing.T, n, maxShapes int) *Octree {
	t.Helper()
	shapes := gridTriangles(n)
	tree := New(v3(0, 0, 0), v3(float32(n), 0.4, float32(n)), 0.01, maxShapes)
	require.Equal(t, len(shapes), tree.AddShapes(shapes))
	return tree
}

var probes = []struct {
	name     string
	min, max math.Vec3
}{
	{"corner cell", v3(0.1, -1, 0.1), v3(0.9, 1, 0.9)},
	{"middle strip", v3(3.5, -1, 0), v3(4.5, 1, 8)},
	{"everything", v3(-1, -1, -1), v3(9, 9, 9)},
	{"above the mesh", v3(2, 5, 2), v3(3, 6, 3)},
	{"outside", v3(20, 0, 20), v3(21, 1, 21)},
}

func brute(shapes []collision.Shape, query collision.AABB) []collision.Shape {
	var out []collision.Shape
	for _, s := range shapes {
		if s.ModelBounds().Overlaps(query) {
			out = append(out, s)
		}
	}
	return out
}

func assertUnique(t *testing.T, shapes []collision.Shape) {
	t.Helper()
	seen := make(map[collision.Shape]bool, len(shapes))
	for _, s := range shapes {
		require.False(t, seen[s], "shape returned twice")
		seen[s] = true
	}
}

// boxFaces returns one triangle lying in each of the six face planes of
// [lo, hi].
func boxFaces(lo, hi math.Vec3) []collision.Shape {
	return []collision.Shape{
		collision.NewTriangle(v3(lo.X, lo.Y, lo.Z), v3(lo.X, hi.Y, lo.Z), v3(lo.X, lo.Y, hi.Z)),
		collision.NewTriangle(v3(hi.X, lo.Y, lo.Z), v3(hi.X, hi.Y, lo.Z), v3(hi.X, lo.Y, hi.Z)),
		collision.NewTriangle(v3(lo.X, lo.Y, lo.Z), v3(hi.X, lo.Y, lo.Z), v3(lo.X, lo.Y, hi.Z)),
		collision.NewTriangle(v3(lo.X, hi.Y, lo.Z), v3(hi.X, hi.Y, lo.Z), v3(lo.X, hi.Y, hi.Z)),
		collision.NewTriangle(v3(lo.X, lo.Y, lo.Z), v3(hi.X, lo.Y, lo.Z), v3(lo.X, hi.Y, lo.Z)),
		collision.NewTriangle(v3(lo.X, lo.Y, hi.Z), v3(hi.X, lo.Y, hi.Z), v3(lo.X, hi.Y, hi.Z)),
	}
}

func TestShapesOnBoundsAreIndexed(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 2000; i++ {
		lo := v3(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50)
		hi := lo.Add(v3(rng.Float32()*20+0.5, rng.Float32()*20+0.5, rng.Float32()*20+0.5))
		shapes := boxFaces(lo, hi)

		tree := New(lo, hi, 0.05, 1)
		root := tree.Root().Bounds()
		require.True(t, root.Min.X <= lo.X && root.Min.Y <= lo.Y && root.Min.Z <= lo.Z,
			"root %v does not reach min %v", root, lo)
		require.True(t, root.Max.X >= hi.X && root.Max.Y >= hi.Y && root.Max.Z >= hi.Z,
			"root %v does not reach max %v", root, hi)
		require.Equal(t, len(shapes), tree.AddShapes(shapes), "bounds %v %v", lo, hi)

		for _, s := range shapes {
			b := s.ModelBounds()
			found := tree.ShapesForCollision(collision.NewOBB(b.Min, b.Max), nil)
			require.Contains(t, found, s, "face %v missing for bounds %v %v", b, lo, hi)
		}
	}
}

func TestRayCastHitsWallOnBounds(t *testing.T) {
	// Bounds whose float32 center-based root used to fall one ulp inside
	// min.X.
	lo := v3(10.466026, 0, 0)
	hi := v3(20.5, 3, 7)
	floor := collision.NewTriangle(v3(lo.X, 0, 0), v3(lo.X, 0, hi.Z), v3(hi.X, 0, 0))
	wall := collision.NewTriangle(v3(lo.X, 0, 0), v3(lo.X, hi.Y, 0), v3(lo.X, 0, hi.Z))
	shapes := []collision.Shape{floor, wall}

	tree := New(lo, hi, 0.01, 1)
	require.Equal(t, 2, tree.AddShapes(shapes))

	ray := collision.NewRay(v3(lo.X-5, 1, 1), v3(1, 0, 0))
	want := collision.DoRayCast(ray, shapes, 100, false)
	require.Greater(t, want, float32(0))
	assert.InDelta(t, want, tree.RayCast(ray, 100, false), 1e-4)
}

func TestNewCubicRoot(t *testing.T) {
	tree := New(v3(0, 0, 0), v3(4, 2, 1), 0.25, 8)

	root := tree.Root()
	assert.Equal(t, float32(4), root.Size)
	assert.Equal(t, v3(0, -1, -1.5), root.Position)
	assert.Equal(t, float32(1), tree.MinNodeSize())
	assert.Equal(t, 8, tree.MaxShapesPerNode())
	assert.Equal(t, math.Identity(), tree.ModelMatrix())
}

func TestNewClampsParameters(t *testing.T) {
	tree := New(v3(0, 0, 0), v3(1, 1, 1), 0, 0)

	assert.Greater(t, tree.MinNodeSize(), float32(0))
	assert.Equal(t, 1, tree.MaxShapesPerNode())
}

func TestEmptyTree(t *testing.T) {
	tree := New(math.Vec3{}, math.Vec3{}, 0.1, 4)
	assert.Equal(t, float32(0), tree.Root().Size)

	box := collision.NewOBB(v3(-1, -1, -1), v3(1, 1, 1))
	assert.Empty(t, tree.ShapesForCollision(box, nil))

	ray := collision.NewRay(v3(0, 0, 5), v3(0, 0, -1))
	assert.Empty(t, tree.ShapesForRayCast(ray, nil, 100))
	assert.Equal(t, float32(-1), tree.RayCast(ray, 100, false))

	tree.Prune()
	assert.Equal(t, Stats{Nodes: 1, Leaves: 1}, tree.Stats())

	parsed, err := ParseString(tree.DataString(), nil)
	require.NoError(t, err)
	assert.Equal(t, float32(0), parsed.Root().Size)

	tri := collision.NewTriangle(v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0))
	assert.False(t, tree.AddShape(tri))
}

func TestAddShapeOutsideRoot(t *testing.T) {
	tree := New(v3(0, 0, 0), v3(1, 1, 1), 0.1, 4)
	far := collision.NewTriangle(v3(10, 10, 10), v3(11, 10, 10), v3(10, 11, 10))

	assert.False(t, tree.AddShape(far))
	assert.Equal(t, 1, tree.Len(), "shape is still registered")
	assert.Zero(t, tree.Stats().References)
}

func TestSubdivision(t *testing.T) {
	tree := buildGrid(t, 8, 4)

	stats := tree.Stats()
	assert.Greater(t, stats.MaxDepth, 0)
	assert.GreaterOrEqual(t, stats.References, stats.Shapes)
	assert.Equal(t, 128, stats.Shapes)

	tree.Walk(func(n *Node, _ int) bool {
		if n.HasChildren() {
			assert.Empty(t, n.Content, "node holds children and content")
		}
		if len(n.Content) > tree.MaxShapesPerNode() {
			assert.Less(t, n.Size/2, tree.MinNodeSize(), "overfull node could have split")
		}
		return true
	})
}

func TestShapesForCollision(t *testing.T) {
	tree := buildGrid(t, 8, 4)

	for _, p := range probes {
		t.Run(p.name, func(t *testing.T) {
			box := collision.NewOBB(p.min, p.max)
			got := tree.ShapesForCollision(box, nil)
			assertUnique(t, got)
			for _, s := range brute(tree.Shapes(), box.WorldBounds()) {
				assert.Contains(t, got, s)
			}
		})
	}
}

func TestShapesForCollisionAppends(t *testing.T) {
	tree := buildGrid(t, 4, 4)
	sentinel := collision.NewParticle(math.Vec3{})

	box := collision.NewOBB(v3(0, -1, 0), v3(1, 1, 1))
	out := tree.ShapesForCollision(box, []collision.Shape{sentinel})
	require.NotEmpty(t, out)
	assert.Same(t, sentinel, out[0])

	// A second query starts a fresh de-duplication pass.
	again := tree.ShapesForCollision(box, nil)
	assert.Len(t, again, len(out)-1)
}

func TestPruneInvariant(t *testing.T) {
	tree := buildGrid(t, 8, 2)
	box := collision.NewOBB(v3(2, -1, 2), v3(5, 1, 3))
	before := tree.ShapesForCollision(box, nil)

	emptyLeaves := 0
	tree.Walk(func(n *Node, _ int) bool {
		if !n.HasChildren() && len(n.Content) == 0 {
			emptyLeaves++
		}
		return true
	})
	require.Greater(t, emptyLeaves, 0, "thin mesh should leave empty octants")

	tree.Prune()
	tree.Walk(func(n *Node, _ int) bool {
		if n != tree.Root() {
			assert.True(t, n.HasChildren() || len(n.Content) > 0, "empty node survived prune")
		}
		return true
	})
	assert.ElementsMatch(t, before, tree.ShapesForCollision(box, nil))
}

func TestRayCastSingleTriangle(t *testing.T) {
	tri := collision.NewTriangle(v3(0, 0, 0), v3(1, 0, 0), v3(1, 1, 0))
	bounds := tri.ModelBounds()
	tree := New(bounds.Min, bounds.Max, 0.01, 16)
	require.True(t, tree.AddShape(tri))

	ray := collision.NewRay(v3(0.5, 0.5, 5), v3(0, 0, -1))
	assert.InDelta(t, 5.0, tree.RayCast(ray, 100, false), 1e-5)
	assert.InDelta(t, 5.0, tree.RayCast(ray, 100, true), 1e-5)
	assert.Equal(t, float32(-1), tree.RayCast(ray, 4, false))

	miss := collision.NewRay(v3(3, 3, 5), v3(0, 0, -1))
	assert.Equal(t, float32(-1), tree.RayCast(miss, 100, false))
}

func TestQueriesAtMatrix(t *testing.T) {
	tri := collision.NewTriangle(v3(0, 0, 0), v3(1, 0, 0), v3(1, 1, 0))
	bounds := tri.ModelBounds()
	tree := New(bounds.Min, bounds.Max, 0.01, 16)
	tree.AddShape(tri)

	ray := collision.NewRay(v3(0.5, 0.5, 5), v3(0, 0, -1))
	lowered := math.Translate(0, 0, -2)

	assert.InDelta(t, 7.0, tree.RayCastAt(lowered, ray, 100, false), 1e-5)
	assert.Equal(t, lowered, tree.ModelMatrix())
	assert.Equal(t, lowered, tri.TransformMatrix())

	assert.InDelta(t, 5.0, tree.RayCastAt(math.Identity(), ray, 100, false), 1e-5)

	near := collision.NewOBB(v3(0, 0, -2.5), v3(1, 1, -1.5))
	assert.Empty(t, tree.ShapesForCollisionAt(math.Identity(), near, nil))
	assert.Equal(t, []collision.Shape{tri}, tree.ShapesForCollisionAt(lowered, near, nil))

	assert.Equal(t, []collision.Shape{tri}, tree.ShapesForRayCastAt(lowered, ray, nil, 100))
	assert.Empty(t, tree.ShapesForRayCastAt(lowered, ray, nil, 5))
}

func TestMarkUpdateNeeded(t *testing.T) {
	tri := collision.NewTriangle(v3(0, 0, 0), v3(1, 0, 0), v3(1, 1, 0))
	tree := New(v3(0, 0, 0), v3(1, 1, 0), 0.01, 16)
	tree.AddShape(tri)

	tree.SetModelMatrix(math.Translate(1, 0, 0))
	assert.Equal(t, v3(1, 0, 0), tri.TransformedVertices()[0])

	tri.SetVertices(v3(0, 0, 1), v3(1, 0, 1), v3(1, 1, 1))
	tree.MarkUpdateNeeded()
	assert.Equal(t, v3(1, 0, 1), tri.TransformedVertices()[0])
}

func TestRayQueryFromInside(t *testing.T) {
	tree := buildGrid(t, 4, 4)

	// The ray starts inside the root, above the first cell whose lower
	// triangle is the plane y = 0.2x + 0.3z.
	ray := collision.NewRay(v3(0.25, 2, 0.25), v3(0, -1, 0))
	got := tree.ShapesForRayCast(ray, nil, 100)
	assert.NotEmpty(t, got)
	assertUnique(t, got)

	dist := tree.RayCast(ray, 100, false)
	assert.InDelta(t, 2-0.125, dist, 1e-4)
}

func TestWireframe(t *testing.T) {
	tree := buildGrid(t, 4, 4)
	tree.Prune()

	filled := 0
	tree.Walk(func(n *Node, _ int) bool {
		if len(n.Content) > 0 {
			filled++
		}
		return true
	})

	lines := tree.Wireframe()
	assert.Len(t, lines, filled*WireframeVertexCount*3)

	tree.SetModelMatrix(math.Translate(100, 0, 0))
	moved := tree.Wireframe()
	assert.InDelta(t, lines[0]+100, moved[0], 1e-4)
}
