package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/xyz"
	"github.com/google/go-cmp/cmp"
)

type mapReader map[tile.ID][]byte

func (r mapReader) ReadTile(_ context.Context, tileID tile.ID) ([]byte, error) {
	if data, ok := r[tileID]; ok {
		return data, nil
	}
	return nil, tile.ErrNotFound
}

type brokenReader struct{}

func (brokenReader) ReadTile(context.Context, tile.ID) ([]byte, error) {
	return nil, errors.New("connection reset")
}

func TestCopyPyramid(t *testing.T) {
	grid := tile.Grid{Width: 600, Height: 300, TileSize: 256}
	// Each mirror holds only a part of the pyramid.
	a := mapReader{{X: 0, Y: 0, Z: 0}: []byte("a000"), {X: 2, Y: 1, Z: 0}: []byte("a210")}
	b := mapReader{{X: 1, Y: 0, Z: 0}: []byte("b100"), {X: 0, Y: 0, Z: 1}: []byte("b001")}

	dir := t.TempDir()
	writer, err := xyz.NewWriter(xyz.Pattern(dir, "png"))
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	var calls atomic.Int32
	missing, err := copyPyramid(context.Background(), []tile.Reader{a, b}, writer, grid, 0, grid.MaxLevel(), 3, func() { calls.Add(1) })
	if err != nil {
		t.Fatalf("copyPyramid failed: %v", err)
	}
	// Level 0 has 3x2 tiles, level 1 has 2x1, level 2 has 1.
	if got := calls.Load(); got != 9 {
		t.Errorf("progress calls = %v, want = %v", got, 9)
	}
	if missing != 9-4 {
		t.Errorf("missing = %v, want = %v", missing, 9-4)
	}

	reader, err := xyz.NewReader(xyz.Pattern(dir, "png"))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	for _, src := range []mapReader{a, b} {
		for tileID, want := range src {
			got, err := reader.ReadTile(context.Background(), tileID)
			if err != nil {
				t.Errorf("ReadTile(%v) failed: %v", tileID, err)
				continue
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ReadTile(%v) mismatch (-want+got):\n%v", tileID, diff)
			}
		}
	}
}

func TestCopyPyramidError(t *testing.T) {
	grid := tile.Grid{Width: 256, Height: 256, TileSize: 256}
	writer, err := xyz.NewWriter(xyz.Pattern(t.TempDir(), "png"))
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	_, err = copyPyramid(context.Background(), []tile.Reader{brokenReader{}}, writer, grid, 0, 0, 1, func() {})
	if err == nil {
		t.Errorf("copyPyramid(broken mirror) error = nil, want error")
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		value, sep string
		x, y       float64
		fails      bool
	}{
		{"800x600", "x", 800, 600, false},
		{"10, -20.5", ",", 10, -20.5, false},
		{"800", "x", 0, 0, true},
		{"ax1", "x", 0, 0, true},
	}
	for _, tc := range tests {
		x, y, err := parsePair(tc.value, tc.sep)
		if (err != nil) != tc.fails {
			t.Errorf("parsePair(%q) error = %v, want failure = %v", tc.value, err, tc.fails)
			continue
		}
		if x != tc.x || y != tc.y {
			t.Errorf("parsePair(%q) = (%v, %v), want = (%v, %v)", tc.value, x, y, tc.x, tc.y)
		}
	}
}
