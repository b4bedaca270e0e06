// Package viewport implements a pan/zoom viewer for very large images stored as
// a pyramid of fixed-size tiles.
//
// A Viewport keeps an image-to-screen transform, requests only the tiles visible at
// the current zoom level (plus a one tile margin), caches them per level and draws
// them onto a Canvas. It is driven by one goroutine: input handlers call Pan and
// ZoomAt, and the owner's loop calls Update to consume tile completions, step zoom
// animations and run coalesced redraws. A Viewport is not safe for concurrent use.
package viewport

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/eak1mov/go-tileview/tile"
	"github.com/google/uuid"
)

var (
	ErrConfiguration = errors.New("tileview: invalid configuration")
	ErrTileFetch     = errors.New("tileview: tile fetch failed")
)

// Config holds the construction-time settings of a viewport.
type Config struct {
	TileSourceDirs    []string // mirror base paths, used round-robin
	TileFileExtension string
	InitialZoomLevel  int
	ImageWidthPx      int
	ImageHeightPx     int
}

func (c Config) Validate() error {
	if c.ImageWidthPx <= 0 || c.ImageHeightPx <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrConfiguration, c.ImageWidthPx, c.ImageHeightPx)
	}
	if len(c.TileSourceDirs) == 0 {
		return fmt.Errorf("%w: no tile source dirs", ErrConfiguration)
	}
	for i, dir := range c.TileSourceDirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%w: tile source dir %d is empty", ErrConfiguration, i)
		}
	}
	if c.InitialZoomLevel < 0 {
		return fmt.Errorf("%w: initial zoom level %d is negative", ErrConfiguration, c.InitialZoomLevel)
	}
	return nil
}

const (
	DefaultAnimationDuration = 250 * time.Millisecond
	DefaultAnimationStep     = 20 * time.Millisecond
	DefaultRedrawDelay       = 250 * time.Millisecond
)

type options struct {
	logger      *slog.Logger
	now         func() time.Time
	duration    time.Duration
	step        time.Duration
	redrawDelay time.Duration
	tileSize    int
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now as the time source of animations and redraw batching.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithAnimation sets the total duration and the step interval of zoom animations.
func WithAnimation(duration, step time.Duration) Option {
	return func(o *options) { o.duration, o.step = duration, step }
}

// WithRedrawDelay sets the window over which tile completions are batched into one redraw.
func WithRedrawDelay(delay time.Duration) Option {
	return func(o *options) { o.redrawDelay = delay }
}

func WithTileSize(size int) Option {
	return func(o *options) { o.tileSize = size }
}

// Viewport renders a tiled image pyramid inside a fixed-size canvas.
type Viewport struct {
	id        uuid.UUID
	cfg       Config
	grid      tile.Grid
	container Container
	canvas    Canvas
	loader    Loader
	logger    *slog.Logger
	opts      options

	width  int
	height int

	transform Transform
	level     int
	levels    map[int]map[tile.ID]*Tile
	mirror    int

	anim *animation

	redrawPending bool
	redrawAt      time.Time
}

// New creates a viewport showing the configured image at its initial zoom level,
// centered in the container, and issues the first tile requests.
func New(container Container, canvas Canvas, loader Loader, cfg Config, opts ...Option) (*Viewport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
		duration:    DefaultAnimationDuration,
		step:        DefaultAnimationStep,
		redrawDelay: DefaultRedrawDelay,
		tileSize:    tile.Size,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tileSize <= 0 {
		return nil, fmt.Errorf("%w: tile size %d must be positive", ErrConfiguration, o.tileSize)
	}

	v := &Viewport{
		id:        uuid.New(),
		cfg:       cfg,
		grid:      tile.Grid{Width: cfg.ImageWidthPx, Height: cfg.ImageHeightPx, TileSize: o.tileSize},
		container: container,
		canvas:    canvas,
		loader:    loader,
		opts:      o,
		levels:    make(map[int]map[tile.ID]*Tile),
	}
	v.logger = o.logger.With("viewport", v.id.String())

	v.width, v.height = container.Size()
	canvas.Resize(v.width, v.height)

	scale := math.Exp2(-float64(cfg.InitialZoomLevel))
	v.transform = v.clamp(Transform{
		TX:    (float64(v.width) - float64(cfg.ImageWidthPx)*scale) / 2,
		TY:    (float64(v.height) - float64(cfg.ImageHeightPx)*scale) / 2,
		Scale: scale,
	})
	v.level = levelForScale(scale, v.grid.MaxLevel())
	v.logger.Debug("tileview: viewport created",
		"width", v.width, "height", v.height, "scale", scale, "level", v.level)

	v.UpdateVisibleTiles(v.level, true)
	v.Redraw()
	return v, nil
}

// ID returns the identifier of this viewport instance, used in log records.
func (v *Viewport) ID() uuid.UUID {
	return v.id
}

func (v *Viewport) Transform() Transform {
	return v.transform
}

// Level returns the active zoom level.
func (v *Viewport) Level() int {
	return v.level
}

func (v *Viewport) Grid() tile.Grid {
	return v.grid
}

// Animating reports whether a zoom animation is in flight.
func (v *Viewport) Animating() bool {
	return v.anim != nil
}

// ScreenToImage maps a screen point to image pixel coordinates.
func (v *Viewport) ScreenToImage(x, y float64) (float64, float64) {
	return (x - v.transform.TX) / v.transform.Scale, (y - v.transform.TY) / v.transform.Scale
}

// ImageToScreen maps image pixel coordinates to a screen point.
func (v *Viewport) ImageToScreen(x, y float64) (float64, float64) {
	return x*v.transform.Scale + v.transform.TX, y*v.transform.Scale + v.transform.TY
}

// ResizeToContainer lays the canvas out at the container's current size and
// redraws from cached tiles. It requests no tiles.
func (v *Viewport) ResizeToContainer() {
	width, height := v.container.Size()
	if width != v.width || height != v.height {
		v.width, v.height = width, height
		v.canvas.Resize(width, height)
	}
	if v.anim == nil {
		v.transform = v.clamp(v.transform)
	}
	v.Redraw()
}

// Pan moves the image by (dx, dy) device pixels, requests newly visible tiles and
// redraws at once with whatever is loaded. Along an axis where the image is
// smaller than the canvas it stays centered.
// Pan is ignored while a zoom animation is in flight.
func (v *Viewport) Pan(dx, dy float64) {
	if v.anim != nil {
		return
	}
	t := v.transform
	v.transform = v.clamp(Transform{TX: t.TX + dx, TY: t.TY + dy, Scale: t.Scale})
	v.UpdateVisibleTiles(v.level, true)
	v.Redraw()
}

// Update consumes finished tile fetches, advances the zoom animation and runs a
// pending batched redraw once its delay has passed. It never blocks.
func (v *Viewport) Update() {
	v.drainCompletions()

	now := v.opts.now()
	if v.anim != nil {
		v.stepAnimation(now)
	}
	if v.redrawPending && !now.Before(v.redrawAt) {
		v.Redraw()
	}
}

func (v *Viewport) drainCompletions() {
	completions := v.loader.Completions()
	for {
		select {
		case c := <-completions:
			v.OnTileLoaded(c)
		default:
			return
		}
	}
}

func (v *Viewport) scheduleRedraw() {
	if v.redrawPending {
		return
	}
	v.redrawPending = true
	v.redrawAt = v.opts.now().Add(v.opts.redrawDelay)
}

// clamp centers the image along every axis where it is smaller than the canvas.
func (v *Viewport) clamp(t Transform) Transform {
	return Transform{
		TX:    clampAxis(t.TX, float64(v.grid.Width)*t.Scale, float64(v.width)),
		TY:    clampAxis(t.TY, float64(v.grid.Height)*t.Scale, float64(v.height)),
		Scale: t.Scale,
	}
}

// Redraw clears the canvas and draws every loaded tile of every retained level,
// coarsest level first so that finer tiles cover their coarser fallbacks.
func (v *Viewport) Redraw() {
	v.redrawPending = false

	v.canvas.Clear()
	v.canvas.Translate(v.transform.TX, v.transform.TY)

	scale := v.transform.Scale
	levels := slices.Sorted(maps.Keys(v.levels))
	slices.Reverse(levels)
	for _, level := range levels {
		footprint := v.grid.Footprint(level) * scale
		for _, t := range v.levels[level] {
			if !t.Loaded || t.Image == nil {
				continue
			}
			w, h := v.grid.Extent(t.ID)
			x := float64(t.ID.X) * footprint
			y := float64(t.ID.Y) * footprint
			if err := v.canvas.DrawImage(t.Image, x, y, w*scale, h*scale); err != nil {
				v.logger.Debug("tileview: draw failed", "tile", t.ID.Key(), "error", err)
			}
		}
	}
}
