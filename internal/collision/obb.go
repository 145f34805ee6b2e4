package collision

import "github.com/Faultbox/collide/pkg/math"

var unitAxes = []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}}

// OBB is a box built from a model-space min/max corner pair. With an
// identity transform it doubles as an AABB.
type OBB struct {
	transformCache

	min, max math.Vec3
	corners  [8]math.Vec3
}

// NewOBB creates a box spanning [min, max].
func NewOBB(min, max math.Vec3) *OBB {
	b := &OBB{transformCache: newTransformCache()}
	b.SetBounds(min, max)
	return b
}

// NewOBBFromCenter creates a box from its center and half extents.
func NewOBBFromCenter(center, halfExtents math.Vec3) *OBB {
	return NewOBB(center.Sub(halfExtents), center.Add(halfExtents))
}

// SetBounds replaces the model-space corners.
func (b *OBB) SetBounds(min, max math.Vec3) {
	b.min = min.Min(max)
	b.max = min.Max(max)
	b.corners = AABB{Min: b.min, Max: b.max}.Corners()
	b.SetUpdateNeeded()
}

// Kind implements Shape.
func (b *OBB) Kind() Kind { return KindOBB }

// ModelBounds implements Shape.
func (b *OBB) ModelBounds() AABB {
	return AABB{Min: b.min, Max: b.max}
}

// WorldBounds returns the axis-aligned box enclosing the transformed corners.
func (b *OBB) WorldBounds() AABB {
	return AABBFromPoints(b.TransformedVertices())
}

// TransformedVertices implements Shape.
func (b *OBB) TransformedVertices() []math.Vec3 {
	if b.verticesDirty {
		b.vertices = transformPoints(b.vertices, b.matrix, b.corners[:])
		b.verticesDirty = false
	}
	return b.vertices
}

// TransformedNormals implements Shape.
func (b *OBB) TransformedNormals() []math.Vec3 {
	if b.normalsDirty {
		b.normals = transformNormals(b.normals, b.matrix, unitAxes)
		b.normalsDirty = false
	}
	return b.normals
}

// TransformedEdges implements Shape. The box has three edge directions.
func (b *OBB) TransformedEdges() []math.Vec3 {
	if b.edgesDirty {
		b.edges = b.edges[:0]
		for _, axis := range unitAxes {
			b.edges = append(b.edges, b.matrix.TransformDirection(axis))
		}
		b.edgesDirty = false
	}
	return b.edges
}

// TransformedEdgeNormals implements Shape. A box has no in-plane fallback,
// so these are its face normals.
func (b *OBB) TransformedEdgeNormals() []math.Vec3 {
	if b.edgeNormalsDirty {
		b.edgeNormals = append(b.edgeNormals[:0], b.TransformedNormals()...)
		b.edgeNormalsDirty = false
	}
	return b.edgeNormals
}
