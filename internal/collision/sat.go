package collision

import (
	gomath "math"

	"github.com/Faultbox/collide/pkg/math"
)

const (
	// axisEpsilon is the length below which a candidate axis carries no
	// direction and is skipped.
	axisEpsilon = 1e-6

	// parallelThreshold skips edge pairs whose cross product is unstable.
	parallelThreshold = 0.99

	// velocityEpsilon is the projected speed below which an axis is
	// treated as static by the swept test.
	velocityEpsilon = 1e-9

	// contactTolerance is the relative tolerance used to collect vertices
	// tied for an extremal projection.
	contactTolerance = 1e-5
)

// project returns the [min, max] interval of vertices along axis.
func project(axis math.Vec3, vertices []math.Vec3) (lo, hi float32) {
	lo = float32(gomath.Inf(1))
	hi = float32(gomath.Inf(-1))
	for _, v := range vertices {
		d := axis.Dot(v)
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo, hi
}

// Overlap projects both vertex sets onto axis and returns the length of the
// shared interval. reversed reports that A escapes along -axis, so the axis
// pointing from B toward A is the negated one. ok is false when the intervals
// are disjoint or touching, i.e. axis separates the shapes.
func Overlap(axis math.Vec3, verticesA, verticesB []math.Vec3) (overlap float32, reversed bool, ok bool) {
	if len(verticesA) == 0 || len(verticesB) == 0 {
		return 0, false, false
	}
	minA, maxA := project(axis, verticesA)
	minB, maxB := project(axis, verticesB)

	d1 := maxB - minA // push A along +axis
	d2 := maxA - minB // push A along -axis
	if d1 <= 0 || d2 <= 0 {
		return 0, false, false
	}
	switch {
	case d1 < d2:
		return d1, false, true
	case d2 < d1:
		return d2, true, true
	case minA+maxA != minB+maxB:
		return d1, minA+maxA < minB+maxB, true
	default:
		// Concentric intervals: the side is taken from the shapes' centroids
		// so that swapping A and B flips the result. Coincident vertex sets
		// give no preference and keep +axis.
		return d1, centroidLess(verticesA, verticesB), true
	}
}

// centroidLess orders the centroids of two vertex sets lexicographically
// by X, Y then Z.
func centroidLess(a, b []math.Vec3) bool {
	ca, cb := centroid(a), centroid(b)
	switch {
	case ca.X != cb.X:
		return ca.X < cb.X
	case ca.Y != cb.Y:
		return ca.Y < cb.Y
	default:
		return ca.Z < cb.Z
	}
}

func centroid(vertices []math.Vec3) math.Vec3 {
	var sum math.Vec3
	for _, v := range vertices {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float32(len(vertices)))
}

// visitAxes calls fn with every usable candidate axis of the pair, in order:
// A's normals, B's normals, then either the edge-normals of both shapes
// (coplanar planar shapes) or the cross products of their edges. Degenerate
// axes are skipped. Iteration stops when fn returns false, in which case
// visitAxes returns false too.
func visitAxes(a, b Shape, fn func(axis math.Vec3) bool) bool {
	visit := func(axis math.Vec3) bool {
		if axis.IsNearZero(axisEpsilon) || !axis.IsFinite() {
			return true
		}
		return fn(axis.Normalize())
	}

	normalsA := a.TransformedNormals()
	normalsB := b.TransformedNormals()
	for _, n := range normalsA {
		if !visit(n) {
			return false
		}
	}
	for _, n := range normalsB {
		if !visit(n) {
			return false
		}
	}

	edgesA := a.TransformedEdges()
	edgesB := b.TransformedEdges()

	coplanar := len(normalsA) == 1 && len(normalsB) == 1 &&
		normalsA[0].Cross(normalsB[0]).IsNearZero(axisEpsilon)

	// A point has no edges to cross, so the other shape's in-plane
	// boundaries are all that is left to separate them.
	if coplanar || len(edgesA) == 0 || len(edgesB) == 0 {
		for _, n := range a.TransformedEdgeNormals() {
			if !visit(n) {
				return false
			}
		}
		for _, n := range b.TransformedEdgeNormals() {
			if !visit(n) {
				return false
			}
		}
		return true
	}

	for _, ea := range edgesA {
		ua := ea.Normalize()
		for _, eb := range edgesB {
			ub := eb.Normalize()
			if d := ua.Dot(ub); d > parallelThreshold || d < -parallelThreshold {
				continue
			}
			if !visit(ua.Cross(ub)) {
				return false
			}
		}
	}
	return true
}

// Intersection3D runs the discrete SAT test. On intersection it returns the
// minimum translation axis, pointing from b toward a, and the penetration
// depth along it. A pair without any usable axis is reported as not
// intersecting.
func Intersection3D(a, b Shape) (axis math.Vec3, depth float32, ok bool) {
	verticesA := a.TransformedVertices()
	verticesB := b.TransformedVertices()

	depth = float32(gomath.Inf(1))
	found := false
	separated := !visitAxes(a, b, func(candidate math.Vec3) bool {
		overlap, reversed, hit := Overlap(candidate, verticesA, verticesB)
		if !hit {
			return false
		}
		if overlap < depth {
			depth = overlap
			axis = candidate
			if reversed {
				axis = candidate.Negate()
			}
			found = true
		}
		return true
	})
	if separated || !found {
		return math.Vec3{}, 0, false
	}
	return axis, depth, true
}

// IntersectionPoint approximates the contact point of two shapes that
// overlap along axis: the vertices of both shapes tied for the extremes that
// bound the smaller overlap are averaged.
func IntersectionPoint(a, b Shape, axis math.Vec3) (math.Vec3, error) {
	verticesA := a.TransformedVertices()
	verticesB := b.TransformedVertices()
	if len(verticesA) == 0 || len(verticesB) == 0 {
		return math.Vec3{}, ErrPrecondition
	}
	minA, maxA := project(axis, verticesA)
	minB, maxB := project(axis, verticesB)

	overlap1 := maxB - minA
	overlap2 := maxA - minB
	if overlap1 <= 0 || overlap2 <= 0 {
		return math.Vec3{}, ErrPrecondition
	}

	extremeA, extremeB := maxA, minB
	if overlap1 < overlap2 {
		extremeA, extremeB = minA, maxB
	}

	var sum math.Vec3
	count := 0
	collect := func(vertices []math.Vec3, extreme float32) {
		tol := contactTolerance * max(1, absf(extreme))
		for _, v := range vertices {
			if absf(axis.Dot(v)-extreme) <= tol {
				sum = sum.Add(v)
				count++
			}
		}
	}
	collect(verticesA, extremeA)
	collect(verticesB, extremeB)

	return sum.Scale(1 / float32(count)), nil
}

// ContinuousOverlap returns the time interval during which the projections
// of A, moving with relVel relative to B, overlap along axis. Both intervals
// are widened by slack. ok is false when they never overlap. A static axis
// yields an unbounded interval if the projections overlap now.
func ContinuousOverlap(axis math.Vec3, verticesA, verticesB []math.Vec3, relVel math.Vec3, slack float32) (enter, exit float32, ok bool) {
	if len(verticesA) == 0 || len(verticesB) == 0 {
		return 0, 0, false
	}
	minA, maxA := project(axis, verticesA)
	minB, maxB := project(axis, verticesB)
	minB -= slack
	maxB += slack

	s := axis.Dot(relVel)
	if absf(s) < velocityEpsilon {
		if maxA+axisEpsilon >= minB && minA-axisEpsilon <= maxB {
			return float32(gomath.Inf(-1)), float32(gomath.Inf(1)), true
		}
		return 0, 0, false
	}

	enter = (minB - maxA) / s
	exit = (maxB - minA) / s
	if s < 0 {
		enter, exit = exit, enter
	}
	return enter, exit, true
}

// ContinuousIntersection3D sweeps a and b with their velocities and returns
// the earliest time in [0, timeMax] at which they touch, or -1. The margins
// of both shapes widen every projection.
func ContinuousIntersection3D(a, b Shape, velA, velB math.Vec3, timeMax float32) float32 {
	verticesA := a.TransformedVertices()
	verticesB := b.TransformedVertices()
	relVel := velA.Sub(velB)
	slack := a.Margin() + b.Margin()

	enter := float32(gomath.Inf(-1))
	exit := float32(gomath.Inf(1))
	tested := 0
	hit := visitAxes(a, b, func(axis math.Vec3) bool {
		tested++
		e, x, ok := ContinuousOverlap(axis, verticesA, verticesB, relVel, slack)
		if !ok {
			return false
		}
		enter = max(enter, e)
		exit = min(exit, x)
		return enter <= exit
	})
	if !hit || tested == 0 || exit < 0 {
		return -1
	}
	enter = max(enter, 0)
	if enter > timeMax {
		return -1
	}
	return enter
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
