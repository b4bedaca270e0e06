package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/eak1mov/go-tileview/raster"
	"github.com/eak1mov/go-tileview/viewport"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type snapshotCmd struct {
	configPath string
	outputPath string
	size       string
	zoom       float64
	at         string
	pan        string
	timeout    time.Duration
}

func (c *snapshotCmd) Name() string     { return "snapshot" }
func (c *snapshotCmd) Synopsis() string { return "render the viewport to a png file" }
func (c *snapshotCmd) Usage() string {
	return "tileview snapshot -config <path> -o <path> [-size WxH -zoom <f> -at x,y -pan dx,dy]\n"
}
func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "tileview.yml", "Config file path")
	f.StringVar(&c.outputPath, "o", "snapshot.png", "Output png path")
	f.StringVar(&c.size, "size", "", "Canvas size WxH (default: window size)")
	f.Float64Var(&c.zoom, "zoom", 1, "Zoom factor applied after the initial layout")
	f.StringVar(&c.at, "at", "", "Zoom anchor x,y in screen pixels (default: canvas center)")
	f.StringVar(&c.pan, "pan", "", "Pan dx,dy in screen pixels applied before zooming")
	f.DurationVar(&c.timeout, "timeout", time.Minute, "Maximum time to wait for tiles")
}

func (c *snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, logger, err := loadConfig(c.configPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	container := &sizeContainer{cfg.Window.Width, cfg.Window.Height}
	if c.size != "" {
		w, h, err := parsePair(c.size, "x")
		if err != nil {
			log.Println(err)
			return subcommands.ExitUsageError
		}
		container.width, container.height = int(w), int(h)
	}

	loader, err := newLoader(cfg, logger)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer loader.Close()

	canvas := raster.NewCanvas(raster.WithBackground(color.White))
	vp, err := viewport.New(container, canvas, loader, cfg.ViewportConfig(),
		viewport.WithLogger(logger),
		viewport.WithTileSize(cfg.TileSize),
		viewport.WithAnimation(0, 0),
		viewport.WithRedrawDelay(0),
	)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	if c.pan != "" {
		dx, dy, err := parsePair(c.pan, ",")
		if err != nil {
			log.Println(err)
			return subcommands.ExitUsageError
		}
		vp.Pan(dx, dy)
	}
	if c.zoom != 1 {
		ax, ay := float64(container.width)/2, float64(container.height)/2
		if c.at != "" {
			if ax, ay, err = parsePair(c.at, ","); err != nil {
				log.Println(err)
				return subcommands.ExitUsageError
			}
		}
		if !vp.ZoomAt(ax, ay, c.zoom) {
			log.Printf("invalid zoom factor: %v", c.zoom)
			return subcommands.ExitUsageError
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := waitForTiles(ctx, vp); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	vp.Redraw()

	file, err := os.Create(c.outputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer file.Close()
	if err := png.Encode(file, canvas.Image()); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// waitForTiles runs the viewport loop until the zoom is done and every visible
// tile of the active level is loaded or failed.
func waitForTiles(ctx context.Context, vp *viewport.Viewport) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	vp.Update()
	bar := progressbar.NewOptions(vp.Pending(), progressbar.OptionShowCount(), progressbar.OptionSetDescription("tiles"))
	defer fmt.Println()
	defer bar.Finish()

	for vp.Animating() || vp.Pending() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d tiles: %w", vp.Pending(), ctx.Err())
		case <-ticker.C:
		}
		vp.Update()
		if total := vp.Pending(); total > bar.GetMax() {
			bar.ChangeMax(total)
		}
		bar.Set(bar.GetMax() - vp.Pending())
	}
	return nil
}
