package collision

import "github.com/Faultbox/collide/pkg/math"

// faceAlignment is the minimum dot product between a contact axis and a
// triangle's face normal for the contact to count as a face hit.
const faceAlignment = 0.99

// TranslationNeeded turns a frame's contacts into one corrective
// displacement: the deepest accepted axis scaled by its depth. Contacts
// against a single-normal shape B (a triangle) are accepted only when their
// axis is nearly parallel to its face normal, which discards edge grazes.
// Returns the zero vector when nothing qualifies.
func TranslationNeeded(infos []IntersectionInformation) math.Vec3 {
	var (
		best     math.Vec3
		deepest  float32
		accepted bool
	)
	for i := range infos {
		info := &infos[i]
		if info.ShapeB != nil {
			if normals := info.ShapeB.TransformedNormals(); len(normals) == 1 {
				if info.Axis.Dot(normals[0]) < faceAlignment {
					continue
				}
			}
		}
		if !accepted || info.Depth > deepest {
			best = info.Axis
			deepest = info.Depth
			accepted = true
		}
	}
	if !accepted {
		return math.Vec3{}
	}
	return best.Scale(deepest)
}
