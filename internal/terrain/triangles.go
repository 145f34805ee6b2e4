package terrain

import (
	"fmt"

	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/pkg/math"
)

// Triangles builds collision triangles from an interleaved vertex buffer.
// Only the first three floats of each vertex (the position) are read. With
// nil indices every three consecutive vertices form a triangle.
func Triangles(buf []float32, stride int, indices []uint32) ([]collision.Shape, error) {
	if stride < 3 || len(buf)%stride != 0 {
		return nil, fmt.Errorf("stride %d for %d floats: %w", stride, len(buf), ErrBadStride)
	}
	count := len(buf) / stride
	position := func(i uint32) math.Vec3 {
		o := int(i) * stride
		return math.Vec3{X: buf[o], Y: buf[o+1], Z: buf[o+2]}
	}

	if indices == nil {
		if count%3 != 0 {
			return nil, fmt.Errorf("%d vertices do not form triangles: %w", count, ErrBadIndex)
		}
		shapes := make([]collision.Shape, 0, count/3)
		for i := uint32(0); int(i) < count; i += 3 {
			shapes = append(shapes, collision.NewTriangle(position(i), position(i+1), position(i+2)))
		}
		return shapes, nil
	}

	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%d indices do not form triangles: %w", len(indices), ErrBadIndex)
	}
	for _, idx := range indices {
		if int(idx) >= count {
			return nil, fmt.Errorf("index %d with %d vertices: %w", idx, count, ErrBadIndex)
		}
	}
	shapes := make([]collision.Shape, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		shapes = append(shapes, collision.NewTriangle(
			position(indices[i]), position(indices[i+1]), position(indices[i+2])))
	}
	return shapes, nil
}
