package viewport

import (
	"cmp"
	"maps"
	"math"
	"slices"

	"github.com/eak1mov/go-tileview/tile"
)

// visibleRange returns the tiles of a level intersecting the canvas, expanded by
// one tile on every side and limited to tiles whose origin lies inside the image.
func (v *Viewport) visibleRange(level int) tile.Range {
	t := v.transform
	footprint := v.grid.Footprint(level)

	x0 := -t.TX / t.Scale
	y0 := -t.TY / t.Scale
	x1 := (float64(v.width) - t.TX) / t.Scale
	y1 := (float64(v.height) - t.TY) / t.Scale

	return tile.Range{
		MinX: max(floorIndex(x0/footprint)-1, 0),
		MinY: max(floorIndex(y0/footprint)-1, 0),
		MaxX: min(ceilIndex(x1/footprint), v.grid.Columns(level)-1),
		MaxY: min(ceilIndex(y1/footprint), v.grid.Rows(level)-1),
		Z:    level,
	}
}

// floorIndex and ceilIndex convert tile coordinates to indices, saturating far
// outside the image so that extreme zoom cannot overflow int.
func floorIndex(f float64) int {
	return int(math.Max(math.Min(math.Floor(f), 1<<30), -(1 << 30)))
}

func ceilIndex(f float64) int {
	return int(math.Max(math.Min(math.Ceil(f), 1<<30), -(1 << 30)))
}

// UpdateVisibleTiles synchronizes the cache of a level with its visible range:
// cached tiles outside the range are evicted and, if add is set, missing tiles are
// created and requested from the loader.
func (v *Viewport) UpdateVisibleTiles(level int, add bool) {
	visible := v.visibleRange(level)

	cache := v.levels[level]
	for id := range cache {
		if !visible.Contains(id) {
			delete(cache, id)
		}
	}

	if add {
		if cache == nil {
			cache = make(map[tile.ID]*Tile)
			v.levels[level] = cache
		}
		for id := range tile.IterHilbert(visible) {
			if _, found := cache[id]; found {
				continue
			}
			t := v.newTile(id)
			cache[id] = t
			v.loader.Load(t)
		}
	}

	if len(cache) == 0 {
		delete(v.levels, level)
	}
}

func (v *Viewport) newTile(id tile.ID) *Tile {
	source := v.cfg.TileSourceDirs[v.mirror%len(v.cfg.TileSourceDirs)]
	v.mirror++
	return &Tile{
		ID:     id,
		Source: source,
		URL:    tile.URL(source, v.cfg.TileFileExtension, id),
	}
}

// OnTileLoaded applies a finished fetch.
//
// A failed fetch leaves the tile unloaded in the cache until visibility evicts it,
// which makes a later pass request it again. A successful fetch is kept only if
// the tile belongs to the active level and is still the cached entry for its id;
// otherwise it is dropped without a redraw.
func (v *Viewport) OnTileLoaded(c Completion) {
	t := c.Tile
	level := int(t.ID.Z)

	if c.Err != nil {
		t.Failed = true
		v.logger.Debug("tileview: tile fetch failed", "tile", t.ID.Key(), "url", t.URL, "error", c.Err)
		return
	}

	if level != v.level {
		v.discard(t)
		v.logger.Debug("tileview: stale tile discarded", "tile", t.ID.Key(), "level", v.level)
		return
	}
	if v.levels[level][t.ID] != t {
		v.logger.Debug("tileview: evicted tile discarded", "tile", t.ID.Key())
		return
	}

	t.Loaded = true
	t.Image = c.Image
	v.scheduleRedraw()
}

func (v *Viewport) discard(t *Tile) {
	level := int(t.ID.Z)
	cache := v.levels[level]
	if cache[t.ID] != t {
		return
	}
	delete(cache, t.ID)
	if len(cache) == 0 {
		delete(v.levels, level)
	}
}

// CachedTiles returns the ids cached for a level in row-major order.
func (v *Viewport) CachedTiles(level int) []tile.ID {
	ids := slices.Collect(maps.Keys(v.levels[level]))
	slices.SortFunc(ids, func(a, b tile.ID) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	return ids
}

// CachedLevels returns the levels holding at least one tile, finest first.
func (v *Viewport) CachedLevels() []int {
	return slices.Sorted(maps.Keys(v.levels))
}

// CachedTile returns the tile cached under id, if any.
func (v *Viewport) CachedTile(id tile.ID) (*Tile, bool) {
	t, found := v.levels[int(id.Z)][id]
	return t, found
}

// Pending returns the number of tiles of the active level still waiting for a fetch.
func (v *Viewport) Pending() int {
	n := 0
	for _, t := range v.levels[v.level] {
		if !t.Loaded && !t.Failed {
			n++
		}
	}
	return n
}
