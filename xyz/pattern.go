// Package xyz provides API for reading and writing tiles of a local directory mirror,
// where tiles are stored as individual files with paths like "/dir/z/x/y.ext".
package xyz

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileview/tile"
)

var ErrInvalidPattern = errors.New("tileview: invalid file pattern")

// Pattern returns the file pattern of a mirror directory, e.g. "/dir/{z}/{x}/{y}.png".
func Pattern(dir, ext string) string {
	name := "{y}"
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(dir, "{z}", "{x}", name)
}

func validatePattern(pattern string) error {
	for _, p := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(pattern, p) {
			return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		}
	}
	return nil
}

func formatPattern(pattern string, tileID tile.ID) string {
	return strings.NewReplacer(
		"{x}", strconv.FormatUint(uint64(tileID.X), 10),
		"{y}", strconv.FormatUint(uint64(tileID.Y), 10),
		"{z}", strconv.FormatUint(uint64(tileID.Z), 10),
	).Replace(pattern)
}
