// Package octree provides a spatial index over static collision shapes with
// box and ray queries and a text persistence format.
package octree

import (
	gomath "math"

	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/pkg/math"
)

// minMultiplicator keeps the smallest node size strictly positive.
const minMultiplicator = 1e-6

// Octree indexes shapes by their model-space bounds. Node boxes stay in model
// space; the stored model matrix maps them to world space at query time.
//
// An Octree is not safe for concurrent use. When one tree is shared between
// several instances, use the ...At query forms so the matrix and the query
// travel together.
type Octree struct {
	root             *Node
	minNodeSize      float32
	maxShapesPerNode int
	modelMatrix      math.Mat4

	// shapes records every registered shape in insertion order; the
	// position is the shape's index in the persisted form.
	shapes []collision.Shape
	index  map[collision.Shape]int

	// visited de-duplicates query results: visited[i] == epoch marks shape
	// i as already emitted by the running query.
	visited []uint32
	epoch   uint32

	scratch []collision.Shape
}

// New creates an empty tree whose root is the smallest cube containing
// [min, max], centered on it. minNodeSize is the root size times
// smallestNodeSizeMultiplicator; subdivision never produces smaller nodes.
func New(min, max math.Vec3, smallestNodeSizeMultiplicator float32, maxShapesPerNode int) *Octree {
	size := max.Sub(min).MaxComponent()
	if !(size > 0) || gomath.IsInf(float64(size), 0) {
		size = 0
	}
	center := min.Add(max).Scale(0.5)
	half := size / 2
	pos := center.Sub(math.Vec3{X: half, Y: half, Z: half})
	if size > 0 {
		pos = pos.Min(min)
		size = enclose(pos, size, max)
	}
	root := &Node{Position: pos, Size: size}
	if !(smallestNodeSizeMultiplicator > 0) {
		smallestNodeSizeMultiplicator = minMultiplicator
	}
	return newTree(root, size*smallestNodeSizeMultiplicator, maxShapesPerNode)
}

// enclose grows size until the cube at pos reaches hi on every axis, as
// computed in float32.
func enclose(pos math.Vec3, size float32, hi math.Vec3) float32 {
	up := float32(gomath.Inf(1))
	for {
		gap := max(hi.X-(pos.X+size), hi.Y-(pos.Y+size), hi.Z-(pos.Z+size))
		if !(gap > 0) {
			return size
		}
		size = gomath.Nextafter32(size+gap, up)
	}
}

func newTree(root *Node, minNodeSize float32, maxShapesPerNode int) *Octree {
	if maxShapesPerNode < 1 {
		maxShapesPerNode = 1
	}
	return &Octree{
		root:             root,
		minNodeSize:      minNodeSize,
		maxShapesPerNode: maxShapesPerNode,
		modelMatrix:      math.Identity(),
		index:            make(map[collision.Shape]int),
	}
}

// Root returns the root node.
func (t *Octree) Root() *Node { return t.root }

// MinNodeSize returns the smallest allowed node side.
func (t *Octree) MinNodeSize() float32 { return t.minNodeSize }

// MaxShapesPerNode returns the subdivision threshold.
func (t *Octree) MaxShapesPerNode() int { return t.maxShapesPerNode }

// ModelMatrix returns the stored model-to-world transform.
func (t *Octree) ModelMatrix() math.Mat4 { return t.modelMatrix }

// Shapes returns the registered shapes in insertion order.
func (t *Octree) Shapes() []collision.Shape { return t.shapes }

// Len returns the number of registered shapes.
func (t *Octree) Len() int { return len(t.shapes) }

// register records s in the registry and reports its index.
func (t *Octree) register(s collision.Shape) int {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := len(t.shapes)
	t.shapes = append(t.shapes, s)
	t.index[s] = i
	t.visited = append(t.visited, 0)
	return i
}

// AddShape registers s and inserts it into every leaf whose cell overlaps its
// model-space bounds. It reports false when s lies outside the root.
func (t *Octree) AddShape(s collision.Shape) bool {
	t.register(s)
	s.SetTransformMatrix(t.modelMatrix)

	bounds := s.ModelBounds()
	box := t.root.Bounds()
	if t.root.Size <= 0 || bounds.IsEmpty() || !box.Overlaps(bounds) {
		return false
	}
	t.insert(t.root, box, s, bounds)
	return true
}

// AddShapes inserts every shape and returns how many landed inside the root.
func (t *Octree) AddShapes(shapes []collision.Shape) int {
	added := 0
	for _, s := range shapes {
		if t.AddShape(s) {
			added++
		}
	}
	return added
}

// insert places s below n, whose cell is box.
func (t *Octree) insert(n *Node, box collision.AABB, s collision.Shape, bounds collision.AABB) {
	if n.HasChildren() {
		for i := range n.Children {
			child := n.childBox(box, i)
			if !child.Overlaps(bounds) {
				continue
			}
			if n.Children[i] == nil {
				n.Children[i] = n.childNode(i)
			}
			t.insert(n.Children[i], child, s, bounds)
		}
		return
	}

	n.Content = append(n.Content, s)
	childSize := n.Size / 2
	if len(n.Content) > t.maxShapesPerNode && childSize > 0 && childSize >= t.minNodeSize {
		t.subdivide(n, box)
	}
}

// subdivide creates all 8 octants and moves the content down.
func (t *Octree) subdivide(n *Node, box collision.AABB) {
	for i := range n.Children {
		n.Children[i] = n.childNode(i)
	}
	content := n.Content
	n.Content = nil
	for _, s := range content {
		t.insert(n, box, s, s.ModelBounds())
	}
}

// Prune removes every branch that holds no shapes. Call it once all planned
// insertions are done; the root is always kept.
func (t *Octree) Prune() {
	prune(t.root)
}

func prune(n *Node) bool {
	for i, c := range n.Children {
		if c != nil && prune(c) {
			n.Children[i] = nil
		}
	}
	return len(n.Content) == 0 && !n.HasChildren()
}

// SetModelMatrix stores m and hands it to every registered shape.
func (t *Octree) SetModelMatrix(m math.Mat4) {
	t.modelMatrix = m
	for _, s := range t.shapes {
		s.SetTransformMatrix(m)
	}
}

// MarkUpdateNeeded forces every registered shape to recompute its
// transformed geometry with the current matrix.
func (t *Octree) MarkUpdateNeeded() {
	for _, s := range t.shapes {
		s.SetUpdateNeeded()
	}
}

// applyMatrix switches to m only when it differs from the stored matrix.
func (t *Octree) applyMatrix(m math.Mat4) {
	if m != t.modelMatrix {
		t.SetModelMatrix(m)
	}
}
