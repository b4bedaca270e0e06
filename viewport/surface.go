package viewport

import (
	"image"

	"github.com/eak1mov/go-tileview/tile"
)

// Container reports the current size of the area the viewport is laid out in.
type Container interface {
	Size() (width, height int)
}

// Canvas is the 2D drawing surface the viewport renders into.
type Canvas interface {
	// Resize sets the size of the backing surface in device pixels.
	Resize(width, height int)

	// Clear clears the whole surface and resets the translation.
	Clear()

	// Translate shifts the origin of subsequent draws.
	Translate(dx, dy float64)

	// DrawImage draws img scaled into the rectangle (x, y, w, h) relative to the current origin.
	DrawImage(img image.Image, x, y, w, h float64) error
}

// Tile is one pyramid tile requested by a viewport.
// ID, Source and URL never change; Loaded, Failed and Image are only
// written by the goroutine owning the viewport.
type Tile struct {
	ID     tile.ID
	Source string // mirror base the tile was requested from
	URL    string

	Loaded bool
	Failed bool
	Image  image.Image
}

// Completion reports the outcome of one tile fetch.
type Completion struct {
	Tile  *Tile
	Image image.Image
	Err   error
}

// Loader fetches tile images asynchronously.
//
// Load must not block. Every Load call eventually produces one Completion on the
// channel returned by Completions, in any order.
type Loader interface {
	Load(t *Tile)
	Completions() <-chan Completion
}
