package tile

import "math/bits"

// Grid describes the tile pyramid of one image.
type Grid struct {
	Width    int // full resolution width in pixels
	Height   int // full resolution height in pixels
	TileSize int // tile edge in pixels, Size if zero
}

func (g Grid) tileSize() int {
	if g.TileSize <= 0 {
		return Size
	}
	return g.TileSize
}

// Footprint returns the edge length in image pixels covered by one tile at level z.
func (g Grid) Footprint(z int) float64 {
	return float64(g.tileSize()) * float64(uint64(1)<<z)
}

// Columns returns the number of tile columns at level z.
func (g Grid) Columns(z int) int {
	return ceilDiv(g.Width, g.tileSize(), z)
}

// Rows returns the number of tile rows at level z.
func (g Grid) Rows(z int) int {
	return ceilDiv(g.Height, g.tileSize(), z)
}

// MaxLevel returns the coarsest level, the first one where the whole image fits one tile.
func (g Grid) MaxLevel() int {
	side := max(g.Width, g.Height)
	n := (side - 1) / g.tileSize()
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n))
}

// Contains reports whether the tile origin lies inside the image.
func (g Grid) Contains(t ID) bool {
	z := int(t.Z)
	return z <= g.MaxLevel() && int(t.X) < g.Columns(z) && int(t.Y) < g.Rows(z)
}

// Extent returns the size in image pixels of the region covered by the tile,
// which is smaller than the footprint for the last row and column.
func (g Grid) Extent(t ID) (w, h float64) {
	f := g.Footprint(int(t.Z))
	w = min(f, float64(g.Width)-float64(t.X)*f)
	h = min(f, float64(g.Height)-float64(t.Y)*f)
	return w, h
}

// Range returns the full index range of level z.
func (g Grid) Range(z int) Range {
	return Range{MinX: 0, MinY: 0, MaxX: g.Columns(z) - 1, MaxY: g.Rows(z) - 1, Z: z}
}

func ceilDiv(size, tileSize, z int) int {
	f := tileSize << z
	return (size + f - 1) / f
}

// Range is an inclusive rectangle of tile indices at one level.
// A range with MaxX < MinX or MaxY < MinY is empty.
type Range struct {
	MinX, MinY int
	MaxX, MaxY int
	Z          int
}

func (r Range) Empty() bool {
	return r.MaxX < r.MinX || r.MaxY < r.MinY
}

func (r Range) Contains(t ID) bool {
	x, y := int(t.X), int(t.Y)
	return int(t.Z) == r.Z && x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}
