package octree

import (
	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/pkg/math"
)

// ShapesForCollision appends to out every shape held by a node whose world
// box overlaps the world bounds of box. Each shape is appended once.
func (t *Octree) ShapesForCollision(box *collision.OBB, out []collision.Shape) []collision.Shape {
	query := box.WorldBounds()
	return t.collect(out, func(world collision.AABB) bool {
		return world.Overlaps(query)
	})
}

// ShapesForCollisionAt is ShapesForCollision with the tree placed at m.
func (t *Octree) ShapesForCollisionAt(m math.Mat4, box *collision.OBB, out []collision.Shape) []collision.Shape {
	t.applyMatrix(m)
	return t.ShapesForCollision(box, out)
}

// ShapesForRayCast appends to out every shape held by a node that ray enters
// within maxDistance. Each shape is appended once.
func (t *Octree) ShapesForRayCast(ray *collision.Ray, out []collision.Shape, maxDistance float32) []collision.Shape {
	origin := ray.TransformedStart()
	dir := ray.TransformedDirection()
	return t.collect(out, func(world collision.AABB) bool {
		if world.Contains(origin) {
			return true
		}
		dist, hit := world.IntersectRay(origin, dir)
		return hit && dist <= maxDistance
	})
}

// ShapesForRayCastAt is ShapesForRayCast with the tree placed at m.
func (t *Octree) ShapesForRayCastAt(m math.Mat4, ray *collision.Ray, out []collision.Shape, maxDistance float32) []collision.Shape {
	t.applyMatrix(m)
	return t.ShapesForRayCast(ray, out, maxDistance)
}

// RayCast returns the distance to the closest shape hit by ray within
// maxDistance, or -1. With breakOnFirstHit any hit is returned.
func (t *Octree) RayCast(ray *collision.Ray, maxDistance float32, breakOnFirstHit bool) float32 {
	t.scratch = t.ShapesForRayCast(ray, t.scratch[:0], maxDistance)
	return collision.DoRayCast(ray, t.scratch, maxDistance, breakOnFirstHit)
}

// RayCastAt is RayCast with the tree placed at m.
func (t *Octree) RayCastAt(m math.Mat4, ray *collision.Ray, maxDistance float32, breakOnFirstHit bool) float32 {
	t.applyMatrix(m)
	return t.RayCast(ray, maxDistance, breakOnFirstHit)
}

// collect walks the nodes whose world box passes test and appends their
// content, skipping shapes already emitted by this query.
func (t *Octree) collect(out []collision.Shape, test func(collision.AABB) bool) []collision.Shape {
	if t.root.Size <= 0 {
		return out
	}
	t.epoch++
	if t.epoch == 0 {
		clear(t.visited)
		t.epoch = 1
	}
	return t.collectNode(t.root, t.root.Bounds(), out, test)
}

// collectNode visits n, whose model-space cell is box.
func (t *Octree) collectNode(n *Node, box collision.AABB, out []collision.Shape, test func(collision.AABB) bool) []collision.Shape {
	if !test(box.Transform(t.modelMatrix)) {
		return out
	}
	for _, s := range n.Content {
		i, ok := t.index[s]
		if !ok {
			out = append(out, s)
			continue
		}
		if t.visited[i] == t.epoch {
			continue
		}
		t.visited[i] = t.epoch
		out = append(out, s)
	}
	for i, c := range n.Children {
		if c != nil {
			out = t.collectNode(c, n.childBox(box, i), out, test)
		}
	}
	return out
}
