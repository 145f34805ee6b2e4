package octree

import (
	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/pkg/math"
)

// Node is one cubic cell of the tree in model space. A node holds either
// children or content, never both.
type Node struct {
	// Position is the minimum corner.
	Position math.Vec3
	// Size is the cube's side length.
	Size float32

	// Children are indexed by octant: bit 0 selects the upper X half,
	// bit 1 upper Y, bit 2 upper Z. Pruned or never-created octants are nil.
	Children [8]*Node
	Content  []collision.Shape
}

// Bounds returns the node's model-space box.
func (n *Node) Bounds() collision.AABB {
	return collision.AABB{
		Min: n.Position,
		Max: n.Position.Add(math.Vec3{X: n.Size, Y: n.Size, Z: n.Size}),
	}
}

// HasChildren reports whether any octant is populated.
func (n *Node) HasChildren() bool {
	for _, c := range n.Children {
		if c != nil {
			return true
		}
	}
	return false
}

// ChildMask returns a bitmask of the populated octants.
func (n *Node) ChildMask() uint8 {
	var mask uint8
	for i, c := range n.Children {
		if c != nil {
			mask |= 1 << i
		}
	}
	return mask
}

// childPosition returns the minimum corner of octant i.
func (n *Node) childPosition(i int) math.Vec3 {
	half := n.Size / 2
	pos := n.Position
	if i&1 != 0 {
		pos.X += half
	}
	if i&2 != 0 {
		pos.Y += half
	}
	if i&4 != 0 {
		pos.Z += half
	}
	return pos
}

func (n *Node) childNode(i int) *Node {
	return &Node{Position: n.childPosition(i), Size: n.Size / 2}
}

// childBox splits box, the node's own cell, at the node's midpoint and
// returns octant i. Children tile the parent exactly: shared faces use the
// same midpoint value and outer faces are the parent's.
func (n *Node) childBox(box collision.AABB, i int) collision.AABB {
	mid := n.childPosition(7)
	child := box
	if i&1 != 0 {
		child.Min.X = mid.X
	} else {
		child.Max.X = mid.X
	}
	if i&2 != 0 {
		child.Min.Y = mid.Y
	} else {
		child.Max.Y = mid.Y
	}
	if i&4 != 0 {
		child.Min.Z = mid.Z
	} else {
		child.Max.Z = mid.Z
	}
	return child
}
