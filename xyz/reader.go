package xyz

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/eak1mov/go-tileview/tile"
)

// Reader implements tile.Reader interface for a directory mirror.
type Reader struct {
	filePattern string
}

// NewReader creates a new Reader for the given file pattern (e.g. "/home/user/tiles/{z}/{x}/{y}.png").
func NewReader(filePattern string) (*Reader, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	return &Reader{filePattern}, nil
}

func (r *Reader) ReadTile(ctx context.Context, tileID tile.ID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath := formatPattern(r.filePattern, tileID)
	tileData, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", tile.ErrNotFound, filePath)
	}
	if err != nil {
		return nil, err
	}
	return tileData, nil
}
