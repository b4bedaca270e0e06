// Package config loads the tileview application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/eak1mov/go-tileview/mb"
	"github.com/eak1mov/go-tileview/viewport"
)

const EnvPrefix = "TILEVIEW_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TILEVIEW_*, "__" separates nested keys,
// e.g. TILEVIEW_WINDOW__WIDTH). A missing file yields the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// FillFromArchive takes the image size, tile size and tile format from the
// metadata of the first mirror when it is an MBTiles archive and the image
// size is not configured. The sqlite3 driver must be registered.
func (c *Config) FillFromArchive() error {
	if len(c.TileSourceDirs) == 0 || (c.ImageWidthPx > 0 && c.ImageHeightPx > 0) {
		return nil
	}
	archive := c.TileSourceDirs[0]
	if !strings.HasSuffix(archive, ".mbtiles") {
		return nil
	}

	r, err := mb.NewReader(archive)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archive, err)
	}
	defer r.Close()

	grid, format, err := r.ReadGrid()
	if err != nil {
		return fmt.Errorf("reading %s: %w", archive, err)
	}
	c.ImageWidthPx, c.ImageHeightPx = grid.Width, grid.Height
	if grid.TileSize > 0 {
		c.TileSize = grid.TileSize
	}
	if format != "" {
		c.TileFileExtension = format
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if err := c.ViewportConfig().Validate(); err != nil {
		return err
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("%w: tile_size must be positive", viewport.ErrConfiguration)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive", viewport.ErrConfiguration)
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("%w: fetch.concurrency must be positive", viewport.ErrConfiguration)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout must be non-negative", viewport.ErrConfiguration)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) ViewportConfig() viewport.Config {
	return viewport.Config{
		TileSourceDirs:    c.TileSourceDirs,
		TileFileExtension: c.TileFileExtension,
		InitialZoomLevel:  c.InitialZoomLevel,
		ImageWidthPx:      c.ImageWidthPx,
		ImageHeightPx:     c.ImageHeightPx,
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", viewport.ErrConfiguration, c.LogLevel)
	}
	return level, nil
}
