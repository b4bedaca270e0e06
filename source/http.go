package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/eak1mov/go-tileview/tile"
)

// HTTPReader implements tile.Reader interface for a mirror served over HTTP.
type HTTPReader struct {
	base   string
	ext    string
	client *http.Client
}

// NewHTTPReader creates a reader fetching tile.URL(base, ext, id) with client.
// A nil client means http.DefaultClient.
func NewHTTPReader(base, ext string, client *http.Client) *HTTPReader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPReader{base: base, ext: ext, client: client}
}

func (r *HTTPReader) ReadTile(ctx context.Context, tileID tile.ID) ([]byte, error) {
	url := tile.URL(r.base, r.ext, tileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %v", tile.ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tileview: GET %v: %v", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
