package assets

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/internal/config"
	"github.com/Faultbox/collide/internal/octree"
)

// OctreeBuild inserts a mesh's shapes into a new octree a few at a time, so
// a large mesh can be indexed across many frames.
type OctreeBuild struct {
	tree    *octree.Octree
	pending []collision.Shape
	clock   clock.Clock
	done    bool

	// rejected counts shapes the tree refused, i.e. degenerate ones or
	// ones outside the root.
	rejected int
}

// NewOctreeBuild prepares a build over the bounds of shapes. Shapes are
// inserted in order, which fixes their indices in the persisted form.
func NewOctreeBuild(shapes []collision.Shape, cfg config.OctreeConfig, clk clock.Clock) *OctreeBuild {
	bounds := collision.BoundsOf(shapes)
	if bounds.IsEmpty() {
		bounds = collision.AABB{}
	}
	return &OctreeBuild{
		tree:    octree.New(bounds.Min, bounds.Max, cfg.SmallestNodeMultiplier, cfg.MaxShapesPerNode),
		pending: append([]collision.Shape(nil), shapes...),
		clock:   clk,
	}
}

// Step inserts pending shapes until budget has elapsed, always making
// progress by at least one shape. It prunes the tree and reports true once
// every shape is in.
func (b *OctreeBuild) Step(budget time.Duration) bool {
	if b.done {
		return true
	}
	deadline := b.clock.Now().Add(budget)
	for len(b.pending) > 0 {
		if !b.tree.AddShape(b.pending[0]) {
			b.rejected++
		}
		b.pending[0] = nil
		b.pending = b.pending[1:]
		if !b.clock.Now().Before(deadline) {
			break
		}
	}
	if len(b.pending) == 0 {
		b.tree.Prune()
		b.done = true
	}
	return b.done
}

// Run completes the build without a time limit.
func (b *OctreeBuild) Run() *octree.Octree {
	for !b.Step(time.Hour) {
	}
	return b.tree
}

// Octree returns the tree being built. It is incomplete until Done.
func (b *OctreeBuild) Octree() *octree.Octree { return b.tree }

// Remaining returns the number of shapes not yet inserted.
func (b *OctreeBuild) Remaining() int { return len(b.pending) }

// Rejected returns how many shapes could not be indexed so far.
func (b *OctreeBuild) Rejected() int { return b.rejected }

// Done reports whether every shape has been inserted.
func (b *OctreeBuild) Done() bool { return b.done }
