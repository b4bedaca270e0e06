package raster_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/eak1mov/go-tileview/raster"
	"golang.org/x/image/draw"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func solid(c color.Color, size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestResizeClear(t *testing.T) {
	c := raster.NewCanvas(raster.WithBackground(white))
	c.Resize(40, 30)

	if got, want := c.Image().Bounds(), image.Rect(0, 0, 40, 30); got != want {
		t.Errorf("Bounds() = %v, want = %v", got, want)
	}
	if got := c.Image().RGBAAt(39, 29); got != white {
		t.Errorf("RGBAAt(39, 29) = %v, want = %v", got, white)
	}
}

func TestDrawImageScaledAndTranslated(t *testing.T) {
	c := raster.NewCanvas(raster.WithBackground(white), raster.WithScaler(draw.NearestNeighbor))
	c.Resize(100, 100)
	c.Translate(10, 20)
	c.Translate(5, 0)

	if err := c.DrawImage(solid(red, 256), 10, 10, 32, 32); err != nil {
		t.Fatalf("DrawImage failed: %v", err)
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{25, 30, red},
		{56, 61, red},
		{24, 30, white},
		{57, 30, white},
		{25, 62, white},
	}
	for _, tc := range tests {
		if got := c.Image().RGBAAt(tc.x, tc.y); got != tc.want {
			t.Errorf("RGBAAt(%v, %v) = %v, want = %v", tc.x, tc.y, got, tc.want)
		}
	}

	c.Clear()
	if got := c.Image().RGBAAt(30, 40); got != white {
		t.Errorf("RGBAAt after Clear = %v, want = %v", got, white)
	}
	if err := c.DrawImage(solid(red, 4), 0, 0, 1, 1); err != nil {
		t.Fatalf("DrawImage failed: %v", err)
	}
	if got := c.Image().RGBAAt(0, 0); got != red {
		t.Errorf("Clear did not reset the translation: RGBAAt(0, 0) = %v, want = %v", got, red)
	}
}

func TestDrawImageOutside(t *testing.T) {
	c := raster.NewCanvas()
	c.Resize(10, 10)
	if err := c.DrawImage(solid(red, 8), -100, -100, 50, 50); err != nil {
		t.Errorf("DrawImage(outside) error = %v, want = nil", err)
	}
	if err := c.DrawImage(nil, 0, 0, 5, 5); !errors.Is(err, raster.ErrNoImage) {
		t.Errorf("DrawImage(nil) error = %v, want = %v", err, raster.ErrNoImage)
	}
}
