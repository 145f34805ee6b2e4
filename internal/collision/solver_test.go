package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/collide/pkg/math"
)

func TestTranslationNeededPicksDeepest(t *testing.T) {
	box := unitCube(v3(0, 0, 0))
	infos := []IntersectionInformation{
		{Axis: v3(1, 0, 0), Depth: 0.1, ShapeA: box, ShapeB: unitCube(v3(1, 0, 0))},
		{Axis: v3(0, 1, 0), Depth: 0.5, ShapeA: box, ShapeB: unitCube(v3(0, 1, 0))},
		{Axis: v3(0, 0, 1), Depth: 0.2, ShapeA: box, ShapeB: unitCube(v3(0, 0, 1))},
	}

	got := TranslationNeeded(infos)
	assertVecNear(t, v3(0, 0.5, 0), got, 1e-6)
}

func TestTranslationNeededTriangleFaceFilter(t *testing.T) {
	box := unitCube(v3(0, 0, 0))
	floor := NewTriangle(v3(-2, 0, -2), v3(-2, 0, 2), v3(2, 0, -2))

	infos := []IntersectionInformation{
		// Edge graze: deeper but not along the face normal.
		{Axis: v3(1, 0, 0), Depth: 0.9, ShapeA: box, ShapeB: floor},
		{Axis: v3(0, 1, 0), Depth: 0.3, ShapeA: box, ShapeB: floor},
	}

	got := TranslationNeeded(infos)
	assertVecNear(t, v3(0, 0.3, 0), got, 1e-6)
}

func TestTranslationNeededNothingQualifies(t *testing.T) {
	floor := NewTriangle(v3(-2, 0, -2), v3(-2, 0, 2), v3(2, 0, -2))

	assert.Equal(t, math.Vec3{}, TranslationNeeded(nil))
	assert.Equal(t, math.Vec3{}, TranslationNeeded([]IntersectionInformation{
		{Axis: v3(0, 0, 1), Depth: 0.4, ShapeB: floor},
	}))
}

func TestTranslationResolvesCubeOverlap(t *testing.T) {
	a := unitCube(v3(0, 0, 0))
	b := unitCube(v3(0.9, 0, 0))

	infos, hit := IdentifyIntersectionInformation([]Shape{a}, []Shape{b}, nil)
	assert.True(t, hit)

	a.SetTransformMatrix(math.Translate(TranslationNeeded(infos).X, 0, 0))
	// Resolved cubes are left touching, up to rounding.
	if _, depth, ok := Intersection3D(a, b); ok {
		assert.Less(t, depth, float32(1e-5))
	}
}
