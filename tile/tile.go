// Package tile provides common tile types: identity, pyramid geometry and sources.
package tile

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Size is the edge length in pixels of every tile bitmap.
const Size = 256

var ErrNotFound = errors.New("tileview: tile not found")

// ID represents tile coordinates in an image pyramid.
// Level Z = 0 is full resolution, each following level halves it.
type ID struct {
	X uint32
	Y uint32
	Z uint32
}

// Key returns the tile identity key "x-y-z".
func (t ID) Key() string {
	return fmt.Sprintf("%d-%d-%d", t.X, t.Y, t.Z)
}

func (t ID) String() string {
	return t.Key()
}

// Reader defines an interface for reading encoded tile images from a tile source.
type Reader interface {
	// ReadTile reads a single tile.
	// It returns ErrNotFound (possibly wrapped) if the source has no such tile.
	ReadTile(ctx context.Context, tileID ID) ([]byte, error)
}

// Writer defines an interface for writing tiles to a local mirror.
type Writer interface {
	// WriteTile writes a single tile to the mirror.
	WriteTile(tileID ID, tileData []byte) error

	// Finalize completes the writing process: flushes buffers, writes metadata.
	// It must be called before closing the Writer.
	Finalize() error
}

// URL builds the fetch location of a tile on the mirror with the given base.
//
// A base carrying a query ("...?id=1" or "...&c=1") gets the region parameter
// appended: base&region=z,x,y, plus &format=ext if ext is set.
// Any other base is treated as a directory: base/z/x/y.ext.
func URL(base, ext string, tileID ID) string {
	if strings.ContainsAny(base, "?&") {
		url := fmt.Sprintf("%s&region=%d,%d,%d", base, tileID.Z, tileID.X, tileID.Y)
		if ext != "" {
			url += "&format=" + ext
		}
		return url
	}
	url := fmt.Sprintf("%s/%d/%d/%d", strings.TrimSuffix(base, "/"), tileID.Z, tileID.X, tileID.Y)
	if ext != "" {
		url += "." + ext
	}
	return url
}
