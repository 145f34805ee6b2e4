// Package terrain turns grayscale heightmaps into terrain meshes and the
// triangle shapes the collision octree indexes.
package terrain

import "errors"

// Errors returned by the terrain package.
var (
	ErrEmptyHeightmap = errors.New("terrain: heightmap needs at least 2x2 samples")
	ErrBadStride      = errors.New("terrain: invalid vertex stride")
	ErrBadIndex       = errors.New("terrain: invalid triangle index")
)

// VertexStride is the number of floats per interleaved vertex:
// position (3), normal (3), UV (2).
const VertexStride = 8

// Vertex represents a terrain mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh holds the terrain mesh data.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Heightmap is a regular grid of heights. Sample (x, z) sits at world
// position (x*CellSize, Heights[z*Width+x], z*CellSize).
type Heightmap struct {
	Heights  []float32
	Width    int // samples along X
	Depth    int // samples along Z
	CellSize float32
}
