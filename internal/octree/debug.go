package octree

import "github.com/Faultbox/collide/pkg/math"

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes      int
	Leaves     int
	MaxDepth   int
	References int // content entries, counting duplicates
	Shapes     int // registered shapes
}

// Walk visits nodes in depth-first pre-order. Returning false from fn skips
// the node's children.
func (t *Octree) Walk(fn func(n *Node, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		if c != nil {
			walk(c, depth+1, fn)
		}
	}
}

// Stats returns node and content counts.
func (t *Octree) Stats() Stats {
	s := Stats{Shapes: len(t.shapes)}
	t.Walk(func(n *Node, depth int) bool {
		s.Nodes++
		s.MaxDepth = max(s.MaxDepth, depth)
		s.References += len(n.Content)
		if !n.HasChildren() {
			s.Leaves++
		}
		return true
	})
	return s
}

// WireframeVertexCount is the number of vertices emitted per box
// (12 edges × 2 endpoints).
const WireframeVertexCount = 24

// boxEdges lists corner pairs of a box; corner bit 0 selects max X, bit 1
// max Y, bit 2 max Z.
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// Top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// Vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// Wireframe returns line vertices, format [x, y, z] per vertex, outlining
// every leaf that holds content, in world space.
func (t *Octree) Wireframe() []float32 {
	var out []float32
	t.Walk(func(n *Node, _ int) bool {
		if len(n.Content) == 0 {
			return true
		}
		var corners [8]math.Vec3
		for i, c := range n.Bounds().Corners() {
			corners[i] = t.modelMatrix.TransformVec3(c)
		}
		for _, e := range boxEdges {
			a, b := corners[e[0]], corners[e[1]]
			out = append(out, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
		}
		return true
	})
	return out
}
