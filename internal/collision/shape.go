// Package collision implements the convex shape family and the
// Separating-Axis-Theorem engine used for narrow-phase collision and ray casts.
package collision

import (
	"fmt"

	"github.com/Faultbox/collide/pkg/math"
)

// Kind identifies a concrete Shape variant.
type Kind int

// Shape variants.
const (
	KindOBB Kind = iota
	KindTriangle
	KindRay
	KindParticle
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindOBB:
		return "OBB"
	case KindTriangle:
		return "Triangle"
	case KindRay:
		return "Ray"
	case KindParticle:
		return "Particle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is a convex shape in model space plus a transform matrix. The
// transformed accessors are memoized and recomputed on first read after
// SetTransformMatrix or SetUpdateNeeded. The set of implementations is closed:
// *OBB, *Triangle, *Ray and *Particle.
type Shape interface {
	Kind() Kind
	// Margin is extra slack applied by the continuous test.
	Margin() float32

	TransformedVertices() []math.Vec3
	TransformedNormals() []math.Vec3
	TransformedEdges() []math.Vec3
	TransformedEdgeNormals() []math.Vec3

	SetTransformMatrix(m math.Mat4)
	SetUpdateNeeded()
	TransformMatrix() math.Mat4

	// ModelBounds is the axis-aligned box of the untransformed geometry.
	ModelBounds() AABB

	sealed()
}

// transformCache holds the transform matrix and the memoized world-space
// geometry shared by every Shape variant.
type transformCache struct {
	matrix math.Mat4
	margin float32

	verticesDirty    bool
	normalsDirty     bool
	edgesDirty       bool
	edgeNormalsDirty bool

	vertices    []math.Vec3
	normals     []math.Vec3
	edges       []math.Vec3
	edgeNormals []math.Vec3
}

func newTransformCache() transformCache {
	c := transformCache{matrix: math.Identity()}
	c.SetUpdateNeeded()
	return c
}

// SetUpdateNeeded marks every cached sequence for recomputation.
func (c *transformCache) SetUpdateNeeded() {
	c.verticesDirty = true
	c.normalsDirty = true
	c.edgesDirty = true
	c.edgeNormalsDirty = true
}

// SetTransformMatrix replaces the transform matrix and invalidates the cache.
func (c *transformCache) SetTransformMatrix(m math.Mat4) {
	c.matrix = m
	c.SetUpdateNeeded()
}

// TransformMatrix returns the current transform matrix.
func (c *transformCache) TransformMatrix() math.Mat4 {
	return c.matrix
}

// Margin returns the continuous-test slack.
func (c *transformCache) Margin() float32 {
	return c.margin
}

// SetMargin sets the continuous-test slack.
func (c *transformCache) SetMargin(margin float32) {
	c.margin = margin
}

func (c *transformCache) sealed() {}

// transformPoints writes m*p for every p into dst, reusing its storage.
func transformPoints(dst []math.Vec3, m math.Mat4, src []math.Vec3) []math.Vec3 {
	dst = dst[:0]
	for _, p := range src {
		dst = append(dst, m.TransformVec3(p))
	}
	return dst
}

// transformNormals applies the inverse-transpose of m to every normal and
// re-normalizes. Degenerate results stay zero and are skipped by the SAT axis
// enumeration.
func transformNormals(dst []math.Vec3, m math.Mat4, src []math.Vec3) []math.Vec3 {
	nm := m.NormalMatrix()
	dst = dst[:0]
	for _, n := range src {
		dst = append(dst, nm.TransformDirection(n).Normalize())
	}
	return dst
}
