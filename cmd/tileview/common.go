package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileview/internal/config"
	"github.com/eak1mov/go-tileview/source"
)

// loadConfig loads, completes and validates the configuration at path.
func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.FillFromArchive(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func newLoader(cfg *config.Config, logger *slog.Logger) (*source.Loader, error) {
	return source.NewLoader(cfg.TileSourceDirs, cfg.TileFileExtension,
		source.WithLogger(logger),
		source.WithConcurrency(cfg.Fetch.Concurrency),
		source.WithTimeout(cfg.Fetch.Timeout),
	)
}

// parsePair parses "a<sep>b" into two numbers, e.g. "800x600" or "10,-20".
func parsePair(value, sep string) (float64, float64, error) {
	a, b, found := strings.Cut(value, sep)
	if !found {
		return 0, 0, fmt.Errorf("invalid value %q: want a%sb", value, sep)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q: %w", value, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q: %w", value, err)
	}
	return x, y, nil
}

func deduceFormat(format, filePath string) string {
	if format == "" && strings.HasSuffix(filePath, ".mbtiles") {
		return "mbtiles"
	}
	return format
}

// sizeContainer is a viewport.Container of a fixed size.
type sizeContainer struct {
	width, height int
}

func (c *sizeContainer) Size() (int, int) {
	return c.width, c.height
}
