package xyz

import (
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileview/tile"
)

// Writer implements tile.Writer interface for a directory mirror.
// Tiles appear atomically, so a viewer may read the mirror while it is filled.
type Writer struct {
	filePattern string
}

// NewWriter creates a new Writer for the given file pattern (see Pattern).
func NewWriter(filePattern string) (*Writer, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	return &Writer{filePattern}, nil
}

func (w *Writer) WriteTile(tileID tile.ID, tileData []byte) error {
	filePath := formatPattern(w.filePattern, tileID)
	dirPath, fileName := filepath.Split(filePath)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dirPath, "."+fileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(tileData); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

func (w *Writer) Finalize() error {
	return nil
}
