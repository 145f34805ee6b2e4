package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/collide/pkg/math"
)

func TestIdentifyIntersection(t *testing.T) {
	a := []Shape{unitCube(v3(0, 0, 0))}

	assert.True(t, IdentifyIntersection(a, []Shape{unitCube(v3(5, 0, 0)), unitCube(v3(0.9, 0, 0))}))
	assert.False(t, IdentifyIntersection(a, []Shape{unitCube(v3(5, 0, 0))}))
	assert.False(t, IdentifyIntersection(a, nil))
}

func TestIdentifyIntersectionInformation(t *testing.T) {
	a := unitCube(v3(0, 0, 0))
	near := unitCube(v3(0.9, 0, 0))
	above := unitCube(v3(0, 0.8, 0))
	far := unitCube(v3(5, 0, 0))

	prior := IntersectionInformation{Depth: 42}
	out, hit := IdentifyIntersectionInformation([]Shape{a}, []Shape{near, far, above}, []IntersectionInformation{prior})
	require.True(t, hit)
	require.Len(t, out, 3)
	assert.Equal(t, float32(42), out[0].Depth)

	first := out[1]
	assert.Same(t, a, first.ShapeA)
	assert.Same(t, near, first.ShapeB)
	assert.InDelta(t, 0.1, first.Depth, 1e-5)
	assertVecNear(t, v3(-1, 0, 0), first.Axis, 1e-5)
	assertVecNear(t, v3(0.45, 0, 0), first.Point, 1e-5)

	second := out[2]
	assert.Same(t, above, second.ShapeB)
	assert.InDelta(t, 0.2, second.Depth, 1e-5)
	assertVecNear(t, v3(0, -1, 0), second.Axis, 1e-5)

	out, hit = IdentifyIntersectionInformation([]Shape{a}, []Shape{far}, nil)
	assert.False(t, hit)
	assert.Empty(t, out)
}

func stackedTriangles(heights ...float32) []Shape {
	shapes := make([]Shape, 0, len(heights))
	for _, z := range heights {
		shapes = append(shapes, NewTriangle(v3(0, 0, z), v3(1, 0, z), v3(0, 1, z)))
	}
	return shapes
}

func TestDoRayCast(t *testing.T) {
	shapes := stackedTriangles(-4, -2, 0)
	ray := NewRay(v3(0.25, 0.25, 5), v3(0, 0, -1))

	closest := DoRayCast(ray, shapes, 100, false)
	assert.InDelta(t, 5, closest, 1e-5)

	// The closest hit never exceeds any single-shape hit.
	for _, s := range shapes {
		single := DoRayCast(ray, []Shape{s}, 100, false)
		require.GreaterOrEqual(t, single, float32(0))
		assert.LessOrEqual(t, closest, single)
	}

	// breakOnFirstHit returns the first hit in scan order.
	assert.InDelta(t, 9, DoRayCast(ray, shapes, 100, true), 1e-5)

	assert.Equal(t, float32(-1), DoRayCast(ray, shapes, 4, false))
	assert.Equal(t, float32(-1), DoRayCast(ray, nil, 100, false))

	miss := NewRay(v3(3, 3, 5), v3(0, 0, -1))
	assert.Equal(t, float32(-1), DoRayCast(miss, shapes, 100, false))
}

func TestDoRayCastTransformedRay(t *testing.T) {
	shapes := stackedTriangles(0)
	ray := NewRay(math.Vec3{}, v3(0, 0, -1))
	ray.SetTransformMatrix(math.Translate(0.25, 0.25, 3))

	assert.InDelta(t, 3, DoRayCast(ray, shapes, 100, false), 1e-5)
}
