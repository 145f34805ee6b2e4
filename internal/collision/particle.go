package collision

import "github.com/Faultbox/collide/pkg/math"

// Particle is a single point with no normals or edges. Only the other
// shape's axes are tested against it.
type Particle struct {
	transformCache

	position math.Vec3
}

// NewParticle creates a point shape.
func NewParticle(position math.Vec3) *Particle {
	p := &Particle{transformCache: newTransformCache()}
	p.SetPosition(position)
	return p
}

// SetPosition replaces the model-space point.
func (p *Particle) SetPosition(position math.Vec3) {
	p.position = position
	p.SetUpdateNeeded()
}

// Kind implements Shape.
func (p *Particle) Kind() Kind { return KindParticle }

// Position returns the model-space point.
func (p *Particle) Position() math.Vec3 { return p.position }

// ModelBounds implements Shape.
func (p *Particle) ModelBounds() AABB {
	return AABB{Min: p.position, Max: p.position}
}

// TransformedVertices implements Shape.
func (p *Particle) TransformedVertices() []math.Vec3 {
	if p.verticesDirty {
		p.vertices = append(p.vertices[:0], p.matrix.TransformVec3(p.position))
		p.verticesDirty = false
	}
	return p.vertices
}

// TransformedNormals implements Shape.
func (p *Particle) TransformedNormals() []math.Vec3 { return nil }

// TransformedEdges implements Shape.
func (p *Particle) TransformedEdges() []math.Vec3 { return nil }

// TransformedEdgeNormals implements Shape.
func (p *Particle) TransformedEdgeNormals() []math.Vec3 { return nil }
