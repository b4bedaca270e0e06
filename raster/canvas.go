// Package raster provides a headless viewport.Canvas backed by an in-memory RGBA image.
package raster

import (
	"errors"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

var ErrNoImage = errors.New("tileview: nil image")

type options struct {
	background color.Color
	scaler     draw.Scaler
}

type Option func(*options)

// WithBackground sets the color the canvas is cleared to. Default is transparent.
func WithBackground(c color.Color) Option {
	return func(o *options) { o.background = c }
}

// WithScaler sets the interpolation used to scale tiles. Default is draw.BiLinear.
func WithScaler(s draw.Scaler) Option {
	return func(o *options) { o.scaler = s }
}

// Canvas implements viewport.Canvas interface over an *image.RGBA.
type Canvas struct {
	img    *image.RGBA
	tx, ty float64
	opts   options
}

func NewCanvas(opts ...Option) *Canvas {
	o := options{background: color.Transparent, scaler: draw.BiLinear}
	for _, opt := range opts {
		opt(&o)
	}
	return &Canvas{img: image.NewRGBA(image.Rectangle{}), opts: o}
}

// Image returns the current backing image. It is replaced by Resize.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) Resize(width, height int) {
	c.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	c.Clear()
}

func (c *Canvas) Clear() {
	c.tx, c.ty = 0, 0
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.opts.background), image.Point{}, draw.Src)
}

func (c *Canvas) Translate(dx, dy float64) {
	c.tx += dx
	c.ty += dy
}

// DrawImage scales img into the rectangle (x, y, w, h) shifted by the current
// translation and rounded to whole pixels. Parts outside the canvas are clipped.
func (c *Canvas) DrawImage(img image.Image, x, y, w, h float64) error {
	if img == nil {
		return ErrNoImage
	}
	x0, y0 := math.Round(c.tx+x), math.Round(c.ty+y)
	x1, y1 := math.Round(c.tx+x+w), math.Round(c.ty+y+h)
	dst := image.Rect(int(x0), int(y0), int(x1), int(y1))
	if dst.Empty() || !dst.Overlaps(c.img.Bounds()) {
		return nil
	}
	c.opts.scaler.Scale(c.img, dst, img, img.Bounds(), draw.Over, nil)
	return nil
}
