package tile_test

import (
	"maps"
	"slices"
	"testing"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/go-cmp/cmp"
)

func TestURL(t *testing.T) {
	tileID := tile.ID{X: 3, Y: 5, Z: 2}
	for _, tc := range []struct {
		base string
		ext  string
		want string
	}{
		{"/webgateway/render_image_region/42/0/0/?c=1", "", "/webgateway/render_image_region/42/0/0/?c=1&region=2,3,5"},
		{"http://a.example/img?id=7", "jpg", "http://a.example/img?id=7&region=2,3,5&format=jpg"},
		{"/data/tiles", "png", "/data/tiles/2/3/5.png"},
		{"/data/tiles/", "png", "/data/tiles/2/3/5.png"},
		{"http://b.example/pyramid", "", "http://b.example/pyramid/2/3/5"},
	} {
		if got := tile.URL(tc.base, tc.ext, tileID); got != tc.want {
			t.Errorf("URL(%q, %q, %v) = %q, want = %q", tc.base, tc.ext, tileID, got, tc.want)
		}
	}
}

func TestKey(t *testing.T) {
	if got, want := (tile.ID{X: 1, Y: 22, Z: 3}).Key(), "1-22-3"; got != want {
		t.Errorf("Key() = %q, want = %q", got, want)
	}
}

func TestGrid(t *testing.T) {
	for _, tc := range []struct {
		grid     tile.Grid
		maxLevel int
		columns  []int
		rows     []int
	}{
		{tile.Grid{Width: 4096, Height: 4096}, 4, []int{16, 8, 4, 2, 1}, []int{16, 8, 4, 2, 1}},
		{tile.Grid{Width: 1000, Height: 300}, 2, []int{4, 2, 1}, []int{2, 1, 1}},
		{tile.Grid{Width: 256, Height: 256}, 0, []int{1}, []int{1}},
		{tile.Grid{Width: 257, Height: 10}, 1, []int{2, 1}, []int{1, 1}},
	} {
		if got := tc.grid.MaxLevel(); got != tc.maxLevel {
			t.Errorf("%+v.MaxLevel() = %v, want = %v", tc.grid, got, tc.maxLevel)
		}
		for z := range tc.maxLevel + 1 {
			if got := tc.grid.Columns(z); got != tc.columns[z] {
				t.Errorf("%+v.Columns(%v) = %v, want = %v", tc.grid, z, got, tc.columns[z])
			}
			if got := tc.grid.Rows(z); got != tc.rows[z] {
				t.Errorf("%+v.Rows(%v) = %v, want = %v", tc.grid, z, got, tc.rows[z])
			}
		}
	}
}

func TestGridExtent(t *testing.T) {
	grid := tile.Grid{Width: 1000, Height: 300}
	for _, tc := range []struct {
		tileID tile.ID
		w, h   float64
	}{
		{tile.ID{X: 0, Y: 0, Z: 0}, 256, 256},
		{tile.ID{X: 3, Y: 1, Z: 0}, 232, 44},
		{tile.ID{X: 1, Y: 0, Z: 1}, 488, 300},
		{tile.ID{X: 0, Y: 0, Z: 2}, 1000, 300},
	} {
		w, h := grid.Extent(tc.tileID)
		if w != tc.w || h != tc.h {
			t.Errorf("Extent(%v) = (%v, %v), want = (%v, %v)", tc.tileID, w, h, tc.w, tc.h)
		}
	}

	if grid.Contains(tile.ID{X: 4, Y: 0, Z: 0}) {
		t.Errorf("Contains(4-0-0) = true, want = false")
	}
	if !grid.Contains(tile.ID{X: 3, Y: 1, Z: 0}) {
		t.Errorf("Contains(3-1-0) = false, want = true")
	}
}

func TestIterators(t *testing.T) {
	for _, r := range []tile.Range{
		{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0, Z: 0},
		{MinX: 2, MinY: 1, MaxX: 6, MaxY: 3, Z: 3},
		{MinX: 0, MinY: 0, MaxX: 7, MaxY: 7, Z: 5},
		{MinX: 4, MinY: 4, MaxX: 3, MaxY: 9, Z: 1},
	} {
		rowMajor := slices.Collect(tile.IterRange(r))
		curve := slices.Collect(tile.IterHilbert(r))

		if got, want := len(rowMajor), r.Len(); got != want {
			t.Errorf("len(IterRange(%+v)) = %v, want = %v", r, got, want)
		}

		set := func(ids []tile.ID) map[tile.ID]bool {
			m := make(map[tile.ID]bool)
			for _, id := range ids {
				if !r.Contains(id) {
					t.Errorf("tile %v outside of range %+v", id, r)
				}
				m[id] = true
			}
			return m
		}
		if diff := cmp.Diff(set(rowMajor), set(curve)); diff != "" {
			t.Errorf("IterHilbert(%+v) mismatch (-want+got):\n%v", r, diff)
		}
		if got, want := len(curve), len(slices.Collect(maps.Keys(set(curve)))); got != want {
			t.Errorf("IterHilbert(%+v) yields duplicates: %v ids, %v unique", r, got, want)
		}
	}
}

func TestIterHilbertNeighbours(t *testing.T) {
	r := tile.Range{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3, Z: 0}
	ids := slices.Collect(tile.IterHilbert(r))
	for i := 1; i < len(ids); i++ {
		dx := int(ids[i].X) - int(ids[i-1].X)
		dy := int(ids[i].Y) - int(ids[i-1].Y)
		if dx*dx+dy*dy != 1 {
			t.Errorf("tiles %v and %v are not adjacent", ids[i-1], ids[i])
		}
	}
}
