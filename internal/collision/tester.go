package collision

import "github.com/Faultbox/collide/pkg/math"

// IntersectionInformation describes one colliding pair.
type IntersectionInformation struct {
	// Axis is the unit separation direction, pointing from ShapeB toward
	// ShapeA.
	Axis  math.Vec3
	Depth float32
	// Point is an approximate contact point.
	Point  math.Vec3
	ShapeA Shape
	ShapeB Shape
}

// IdentifyIntersection reports whether any shape of a intersects any shape
// of b. It stops at the first colliding pair.
func IdentifyIntersection(a, b []Shape) bool {
	for _, sa := range a {
		for _, sb := range b {
			if _, _, ok := Intersection3D(sa, sb); ok {
				return true
			}
		}
	}
	return false
}

// IdentifyIntersectionInformation tests every pair of a × b and appends one
// record per colliding pair to out. It returns the extended slice and
// whether any pair collided.
func IdentifyIntersectionInformation(a, b []Shape, out []IntersectionInformation) ([]IntersectionInformation, bool) {
	hit := false
	for _, sa := range a {
		for _, sb := range b {
			axis, depth, ok := Intersection3D(sa, sb)
			if !ok {
				continue
			}
			info := IntersectionInformation{
				Axis:   axis,
				Depth:  depth,
				ShapeA: sa,
				ShapeB: sb,
			}
			if p, err := IntersectionPoint(sa, sb, axis); err == nil {
				info.Point = p
			}
			out = append(out, info)
			hit = true
		}
	}
	return out, hit
}

// DoRayCast sweeps ray along its own direction against every shape and
// returns the distance to the closest hit within maxDistance, or -1. Each
// hit tightens the limit for the remaining shapes. With breakOnFirstHit the
// first hit found is returned regardless of distance.
func DoRayCast(ray *Ray, shapes []Shape, maxDistance float32, breakOnFirstHit bool) float32 {
	direction := ray.TransformedDirection()
	closest := float32(-1)
	limit := maxDistance
	for _, s := range shapes {
		t := ContinuousIntersection3D(ray, s, direction, math.Vec3{}, limit)
		if t < 0 {
			continue
		}
		if breakOnFirstHit {
			return t
		}
		if closest < 0 || t < closest {
			closest = t
			limit = t
		}
	}
	return closest
}
