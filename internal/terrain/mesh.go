package terrain

import (
	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/pkg/math"
)

// BuildMesh creates the terrain mesh: one quad of two triangles per cell,
// with normals smoothed across cells.
func BuildMesh(h *Heightmap) *Mesh {
	cellsX := h.Width - 1
	cellsZ := h.Depth - 1

	vertices := make([]Vertex, 0, cellsX*cellsZ*4)
	indices := make([]uint32, 0, cellsX*cellsZ*6)

	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}

	uScale := 1 / float32(cellsX)
	vScale := 1 / float32(cellsZ)

	for z := 0; z < cellsZ; z++ {
		for x := 0; x < cellsX; x++ {
			// Corners: 0=SW, 1=SE, 2=NW, 3=NE
			var corners [4][3]float32
			var uvs [4][2]float32
			for i := range corners {
				cx, cz := x+(i&1), z+(i>>1)
				corners[i] = [3]float32{float32(cx) * h.CellSize, h.At(cx, cz), float32(cz) * h.CellSize}
				uvs[i] = [2]float32{float32(cx) * uScale, float32(cz) * vScale}
				updateBounds(&bounds, corners[i])
			}

			// The diagonals' cross product averages both triangles' normals.
			normal := normalize(cross(sub(corners[2], corners[1]), sub(corners[3], corners[0])))

			base := uint32(len(vertices))
			for i := range corners {
				vertices = append(vertices, Vertex{Position: corners[i], Normal: normal, TexCoord: uvs[i]})
			}
			indices = append(indices,
				base+0, base+2, base+1,
				base+1, base+2, base+3,
			)
		}
	}

	SmoothNormals(vertices)

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}
}

// Interleaved returns the vertices as position, normal, UV triples packed
// VertexStride floats apart.
func (m *Mesh) Interleaved() []float32 {
	buf := make([]float32, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		buf = append(buf, v.Position[:]...)
		buf = append(buf, v.Normal[:]...)
		buf = append(buf, v.TexCoord[:]...)
	}
	return buf
}

// Triangles returns one collision triangle per mesh face, in index order.
func (m *Mesh) Triangles() []collision.Shape {
	shapes := make([]collision.Shape, 0, len(m.Indices)/3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Position
		b := m.Vertices[m.Indices[i+1]].Position
		c := m.Vertices[m.Indices[i+2]].Position
		shapes = append(shapes, collision.NewTriangle(vec(a), vec(b), vec(c)))
	}
	return shapes
}

// MinMax returns the bounds as vectors.
func (b Bounds) MinMax() (min, max math.Vec3) {
	return vec(b.Min), vec(b.Max)
}

// SmoothNormals averages normals at shared vertex positions.
// Uses epsilon comparison for floating point positions.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	// Average normals for vertices at same position
	for _, indices := range posMap {
		if len(indices) < 2 {
			continue
		}

		var sum [3]float32
		for _, idx := range indices {
			sum[0] += vertices[idx].Normal[0]
			sum[1] += vertices[idx].Normal[1]
			sum[2] += vertices[idx].Normal[2]
		}

		avg := normalize(sum)
		for _, idx := range indices {
			vertices[idx].Normal = avg
		}
	}
}

// Helper functions

func updateBounds(b *Bounds, p [3]float32) {
	for i := range p {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

func vec(p [3]float32) math.Vec3 {
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float32) [3]float32 {
	v := vec(a).Cross(vec(b))
	return [3]float32{v.X, v.Y, v.Z}
}

func normalize(v [3]float32) [3]float32 {
	n := vec(v).Normalize()
	return [3]float32{n.X, n.Y, n.Z}
}
