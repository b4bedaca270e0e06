// Package source connects tile mirrors to a viewport: it opens a tile.Reader for
// every configured mirror and loads decoded tile images asynchronously.
package source

import (
	"io"
	"net/http"
	"strings"

	"github.com/eak1mov/go-tileview/mb"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/xyz"
)

// Open returns a reader for the mirror at base:
// an HTTP mirror for http(s) URLs, an MBTiles archive for *.mbtiles files,
// and a {base}/{z}/{x}/{y}.{ext} directory otherwise.
//
// The mbtiles driver must be registered by the caller (import _ "github.com/mattn/go-sqlite3").
func Open(base, ext string, client *http.Client) (tile.Reader, error) {
	switch {
	case strings.HasPrefix(base, "http://"), strings.HasPrefix(base, "https://"):
		return NewHTTPReader(base, ext, client), nil
	case strings.HasSuffix(base, ".mbtiles"):
		return mb.NewReader(base)
	default:
		return xyz.NewReader(xyz.Pattern(base, ext))
	}
}

func closeReader(r tile.Reader) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
