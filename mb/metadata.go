package mb

import (
	"fmt"
	"strconv"

	"github.com/eak1mov/go-tileview/tile"
)

// Metadata keys describing the pyramid image.
const (
	KeyWidth    = "width"
	KeyHeight   = "height"
	KeyTileSize = "tile_size"
	KeyFormat   = "format"
)

// Metadata is the content of the metadata table.
type Metadata map[string]string

// Grid decodes the pyramid geometry and the tile format.
// The tile size is optional; the image size is required.
func (m Metadata) Grid() (tile.Grid, string, error) {
	var grid tile.Grid
	for _, field := range []struct {
		key      string
		dst      *int
		optional bool
	}{
		{KeyWidth, &grid.Width, false},
		{KeyHeight, &grid.Height, false},
		{KeyTileSize, &grid.TileSize, true},
	} {
		value, found := m[field.key]
		if !found {
			if field.optional {
				continue
			}
			return tile.Grid{}, "", fmt.Errorf("%w: %v", ErrMissingMetadata, field.key)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return tile.Grid{}, "", fmt.Errorf("mbtiles metadata %v: %w", field.key, err)
		}
		*field.dst = n
	}
	return grid, m[KeyFormat], nil
}

// SetGrid encodes the pyramid geometry and, if set, the tile format.
func (m Metadata) SetGrid(grid tile.Grid, format string) {
	m[KeyWidth] = strconv.Itoa(grid.Width)
	m[KeyHeight] = strconv.Itoa(grid.Height)
	if grid.TileSize > 0 {
		m[KeyTileSize] = strconv.Itoa(grid.TileSize)
	}
	if format != "" {
		m[KeyFormat] = format
	}
}
