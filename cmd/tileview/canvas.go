package main

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ebitenCanvas implements viewport.Canvas interface over an offscreen ebiten image.
// Tile bitmaps are uploaded once and kept while they are being drawn.
type ebitenCanvas struct {
	off      *ebiten.Image
	tx, ty   float64
	textures map[image.Image]*ebiten.Image
	used     map[image.Image]bool
}

func newEbitenCanvas() *ebitenCanvas {
	return &ebitenCanvas{
		textures: make(map[image.Image]*ebiten.Image),
		used:     make(map[image.Image]bool),
	}
}

func (c *ebitenCanvas) Resize(width, height int) {
	if c.off != nil {
		c.off.Deallocate()
	}
	c.off = ebiten.NewImage(max(width, 1), max(height, 1))
	c.tx, c.ty = 0, 0
}

// Clear also releases the textures of tiles not drawn since the previous Clear.
func (c *ebitenCanvas) Clear() {
	c.tx, c.ty = 0, 0
	if c.off != nil {
		c.off.Clear()
	}
	for img, texture := range c.textures {
		if !c.used[img] {
			texture.Deallocate()
			delete(c.textures, img)
		}
	}
	clear(c.used)
}

func (c *ebitenCanvas) Translate(dx, dy float64) {
	c.tx += dx
	c.ty += dy
}

func (c *ebitenCanvas) DrawImage(img image.Image, x, y, w, h float64) error {
	if c.off == nil {
		return nil
	}
	texture, ok := c.textures[img]
	if !ok {
		texture = ebiten.NewImageFromImage(img)
		c.textures[img] = texture
	}
	c.used[img] = true

	b := texture.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(c.tx+x, c.ty+y)
	op.Filter = ebiten.FilterLinear
	c.off.DrawImage(texture, op)
	return nil
}
