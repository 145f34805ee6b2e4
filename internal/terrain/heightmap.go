package terrain

import (
	"fmt"
	"image"
	"image/color"
	"io"

	// Registered heightmap decoders.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// NewHeightmap wraps a row-major height grid.
func NewHeightmap(width, depth int, cellSize float32, heights []float32) (*Heightmap, error) {
	if width < 2 || depth < 2 {
		return nil, ErrEmptyHeightmap
	}
	if len(heights) != width*depth {
		return nil, fmt.Errorf("terrain: %d heights for a %dx%d grid", len(heights), width, depth)
	}
	return &Heightmap{Heights: heights, Width: width, Depth: depth, CellSize: cellSize}, nil
}

// DecodeHeightmap reads a PNG, BMP or TIFF image and maps each pixel's
// luminance from [0, 1] to [0, heightScale].
func DecodeHeightmap(r io.Reader, cellSize, heightScale float32) (*Heightmap, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap: %w", err)
	}

	b := img.Bounds()
	width, depth := b.Dx(), b.Dy()
	if width < 2 || depth < 2 {
		return nil, fmt.Errorf("%s heightmap %dx%d: %w", format, width, depth, ErrEmptyHeightmap)
	}

	heights := make([]float32, width*depth)
	for z := 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+z)).(color.Gray16)
			heights[z*width+x] = float32(g.Y) / 0xffff * heightScale
		}
	}
	return NewHeightmap(width, depth, cellSize, heights)
}

// At returns the sample at grid coordinates, clamped to the grid.
func (h *Heightmap) At(x, z int) float32 {
	x = clampi(x, 0, h.Width-1)
	z = clampi(z, 0, h.Depth-1)
	return h.Heights[z*h.Width+x]
}

// Size returns the world extent along X and Z.
func (h *Heightmap) Size() (x, z float32) {
	return float32(h.Width-1) * h.CellSize, float32(h.Depth-1) * h.CellSize
}

// HeightAt returns the bilinearly interpolated height at a world position.
// Positions outside the grid are clamped to its edge.
func (h *Heightmap) HeightAt(worldX, worldZ float32) float32 {
	cellFX := worldX / h.CellSize
	cellFZ := worldZ / h.CellSize

	cellX := clampi(int(cellFX), 0, h.Width-2)
	cellZ := clampi(int(cellFZ), 0, h.Depth-2)

	// Get fractional position within cell (0-1)
	fracX := clampf(cellFX-float32(cellX), 0, 1)
	fracZ := clampf(cellFZ-float32(cellZ), 0, 1)

	// South edge (lower Z): lerp between SW and SE
	south := h.At(cellX, cellZ)*(1-fracX) + h.At(cellX+1, cellZ)*fracX
	// North edge (higher Z): lerp between NW and NE
	north := h.At(cellX, cellZ+1)*(1-fracX) + h.At(cellX+1, cellZ+1)*fracX

	return south*(1-fracZ) + north*fracZ
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
