package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/eak1mov/go-tileview/mb"
	"github.com/eak1mov/go-tileview/source"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/xyz"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

type mirrorCmd struct {
	configPath   string
	outputFormat string
	outputPath   string
	minLevel     int
	maxLevel     int
	writeConfig  string
}

func (c *mirrorCmd) Name() string     { return "mirror" }
func (c *mirrorCmd) Synopsis() string { return "copy the tile pyramid into a local mirror" }
func (c *mirrorCmd) Usage() string {
	return "tileview mirror -config <path> -o <path> [-of <format> -min <z> -max <z> -write-config <path>]\n"
}
func (c *mirrorCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "tileview.yml", "Config file path")
	f.StringVar(&c.outputPath, "o", "", "Output path")
	f.StringVar(&c.outputFormat, "of", "", "Output format (mbtiles, xyz)")
	f.IntVar(&c.minLevel, "min", 0, "Finest level to copy")
	f.IntVar(&c.maxLevel, "max", -1, "Coarsest level to copy (default: whole pyramid)")
	f.StringVar(&c.writeConfig, "write-config", "", "Write a config file using the new mirror")
}

func (c *mirrorCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.outputPath == "" {
		log.Println("output path is required")
		return subcommands.ExitUsageError
	}
	cfg, logger, err := loadConfig(c.configPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	grid := tile.Grid{Width: cfg.ImageWidthPx, Height: cfg.ImageHeightPx, TileSize: cfg.TileSize}
	maxLevel := c.maxLevel
	if maxLevel < 0 || maxLevel > grid.MaxLevel() {
		maxLevel = grid.MaxLevel()
	}
	if c.minLevel < 0 || c.minLevel > maxLevel {
		log.Printf("invalid level range: %d-%d", c.minLevel, maxLevel)
		return subcommands.ExitUsageError
	}

	var readers []tile.Reader
	for _, base := range cfg.TileSourceDirs {
		r, err := source.Open(base, cfg.TileFileExtension, nil)
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		if closer, ok := r.(io.Closer); ok {
			defer closer.Close()
		}
		readers = append(readers, r)
	}

	var writer tile.Writer
	switch outputFormat := deduceFormat(c.outputFormat, c.outputPath); outputFormat {
	case "mbtiles":
		writer, err = mb.NewWriter(c.outputPath, mb.WithGrid(grid, cfg.TileFileExtension), mb.WithLogger(logger))
	case "xyz", "":
		writer, err = xyz.NewWriter(xyz.Pattern(c.outputPath, cfg.TileFileExtension))
	default:
		log.Printf("invalid output format: %q", c.outputFormat)
		return subcommands.ExitFailure
	}
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if closer, ok := writer.(io.Closer); ok {
		defer closer.Close()
	}

	total := 0
	for z := c.minLevel; z <= maxLevel; z++ {
		total += grid.Range(z).Len()
	}
	bar := progressbar.NewOptions(total, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	missing, err := copyPyramid(ctx, readers, writer, grid, c.minLevel, maxLevel, cfg.Fetch.Concurrency, func() { bar.Add(1) })
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if missing > 0 {
		logger.Warn("tileview: tiles missing on every mirror", "count", missing)
	}

	if err := writer.Finalize(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	if c.writeConfig != "" {
		local := *cfg
		local.TileSourceDirs = []string{c.outputPath}
		if err := local.Save(c.writeConfig); err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// copyPyramid copies levels minLevel..maxLevel from the mirrors, used round-robin,
// to writer. Tiles found on no mirror are skipped and counted.
func copyPyramid(ctx context.Context, readers []tile.Reader, writer tile.Writer, grid tile.Grid,
	minLevel, maxLevel, concurrency int, progress func()) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	missing := 0
	next := 0
	for z := minLevel; z <= maxLevel; z++ {
		for tileID := range tile.IterHilbert(grid.Range(z)) {
			first := next
			next++
			g.Go(func() error {
				defer progress()
				tileData, err := readTile(ctx, readers, first, tileID)
				mu.Lock()
				defer mu.Unlock()
				if errors.Is(err, tile.ErrNotFound) {
					missing++
					return nil
				}
				if err != nil {
					return err
				}
				return writer.WriteTile(tileID, tileData)
			})
		}
	}
	err := g.Wait()
	return missing, err
}

// readTile tries every mirror starting at index first.
func readTile(ctx context.Context, readers []tile.Reader, first int, tileID tile.ID) ([]byte, error) {
	var err error
	for i := range readers {
		var tileData []byte
		tileData, err = readers[(first+i)%len(readers)].ReadTile(ctx, tileID)
		if err == nil {
			return tileData, nil
		}
	}
	return nil, fmt.Errorf("read %v: %w", tileID, err)
}
