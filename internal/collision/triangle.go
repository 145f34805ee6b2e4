package collision

import "github.com/Faultbox/collide/pkg/math"

// Triangle is a single mesh face. Its face normal follows the winding order
// (b-a)×(c-a).
type Triangle struct {
	transformCache

	points [3]math.Vec3
	normal math.Vec3
}

// NewTriangle creates a triangle from three model-space vertices.
func NewTriangle(a, b, c math.Vec3) *Triangle {
	t := &Triangle{transformCache: newTransformCache()}
	t.SetVertices(a, b, c)
	return t
}

// SetVertices replaces the model-space geometry.
func (t *Triangle) SetVertices(a, b, c math.Vec3) {
	t.points = [3]math.Vec3{a, b, c}
	t.normal = b.Sub(a).Cross(c.Sub(a)).Normalize()
	t.SetUpdateNeeded()
}

// Kind implements Shape.
func (t *Triangle) Kind() Kind { return KindTriangle }

// Vertices returns the model-space vertices.
func (t *Triangle) Vertices() [3]math.Vec3 { return t.points }

// Normal returns the model-space face normal. It is zero for a degenerate
// triangle.
func (t *Triangle) Normal() math.Vec3 { return t.normal }

// ModelBounds implements Shape.
func (t *Triangle) ModelBounds() AABB {
	return AABBFromPoints(t.points[:])
}

// TransformedVertices implements Shape.
func (t *Triangle) TransformedVertices() []math.Vec3 {
	if t.verticesDirty {
		t.vertices = transformPoints(t.vertices, t.matrix, t.points[:])
		t.verticesDirty = false
	}
	return t.vertices
}

// TransformedNormals implements Shape. The face normal is carried by the
// inverse-transpose of the transform and re-normalized.
func (t *Triangle) TransformedNormals() []math.Vec3 {
	if t.normalsDirty {
		t.normals = transformNormals(t.normals, t.matrix, []math.Vec3{t.normal})
		t.normalsDirty = false
	}
	return t.normals
}

// TransformedEdges implements Shape.
func (t *Triangle) TransformedEdges() []math.Vec3 {
	if t.edgesDirty {
		v := t.TransformedVertices()
		t.edges = append(t.edges[:0],
			v[1].Sub(v[0]), v[2].Sub(v[1]), v[0].Sub(v[2]))
		t.edgesDirty = false
	}
	return t.edges
}

// TransformedEdgeNormals implements Shape. Each edge-normal lies in the
// triangle plane and points away from the opposite vertex.
func (t *Triangle) TransformedEdgeNormals() []math.Vec3 {
	if t.edgeNormalsDirty {
		n := t.TransformedNormals()[0]
		edges := t.TransformedEdges()
		t.edgeNormals = t.edgeNormals[:0]
		for _, e := range edges {
			t.edgeNormals = append(t.edgeNormals, e.Cross(n).Normalize())
		}
		t.edgeNormalsDirty = false
	}
	return t.edgeNormals
}
