package collision

import "github.com/Faultbox/collide/pkg/math"

// Ray is a half-line. It presents its start as the single vertex and its
// direction as normal, edge and edge-normal so the SAT code can treat it
// like any other shape.
type Ray struct {
	transformCache

	start     math.Vec3
	direction math.Vec3
}

// NewRay creates a ray. The direction is normalized.
func NewRay(start, direction math.Vec3) *Ray {
	r := &Ray{transformCache: newTransformCache()}
	r.Set(start, direction)
	return r
}

// Set replaces the model-space start and direction.
func (r *Ray) Set(start, direction math.Vec3) {
	r.start = start
	r.direction = direction.Normalize()
	r.SetUpdateNeeded()
}

// Kind implements Shape.
func (r *Ray) Kind() Kind { return KindRay }

// Start returns the model-space origin.
func (r *Ray) Start() math.Vec3 { return r.start }

// Direction returns the model-space unit direction.
func (r *Ray) Direction() math.Vec3 { return r.direction }

// ModelBounds implements Shape. A ray is unbounded, so this only covers its
// start point.
func (r *Ray) ModelBounds() AABB {
	return AABB{Min: r.start, Max: r.start}
}

// TransformedStart returns the world-space origin.
func (r *Ray) TransformedStart() math.Vec3 {
	return r.TransformedVertices()[0]
}

// TransformedDirection returns the world-space unit direction.
func (r *Ray) TransformedDirection() math.Vec3 {
	return r.TransformedNormals()[0]
}

// PointAt returns the world-space point at distance t along the ray.
func (r *Ray) PointAt(t float32) math.Vec3 {
	return r.TransformedStart().Add(r.TransformedDirection().Scale(t))
}

// TransformedVertices implements Shape.
func (r *Ray) TransformedVertices() []math.Vec3 {
	if r.verticesDirty {
		r.vertices = append(r.vertices[:0], r.matrix.TransformVec3(r.start))
		r.verticesDirty = false
	}
	return r.vertices
}

// TransformedNormals implements Shape.
func (r *Ray) TransformedNormals() []math.Vec3 {
	if r.normalsDirty {
		r.normals = append(r.normals[:0], r.matrix.TransformDirection(r.direction).Normalize())
		r.normalsDirty = false
	}
	return r.normals
}

// TransformedEdges implements Shape.
func (r *Ray) TransformedEdges() []math.Vec3 {
	if r.edgesDirty {
		r.edges = append(r.edges[:0], r.TransformedNormals()...)
		r.edgesDirty = false
	}
	return r.edges
}

// TransformedEdgeNormals implements Shape.
func (r *Ray) TransformedEdgeNormals() []math.Vec3 {
	if r.edgeNormalsDirty {
		r.edgeNormals = append(r.edgeNormals[:0], r.TransformedNormals()...)
		r.edgeNormalsDirty = false
	}
	return r.edgeNormals
}
