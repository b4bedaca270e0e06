package config

import "time"

// Config is the top-level tileview configuration, corresponding to tileview.yml.
type Config struct {
	TileSourceDirs    []string     `yaml:"tile_source_dirs" koanf:"tile_source_dirs"`
	TileFileExtension string       `yaml:"tile_file_extension" koanf:"tile_file_extension"`
	InitialZoomLevel  int          `yaml:"initial_zoom_level" koanf:"initial_zoom_level"`
	ImageWidthPx      int          `yaml:"image_width_px" koanf:"image_width_px"`
	ImageHeightPx     int          `yaml:"image_height_px" koanf:"image_height_px"`
	TileSize          int          `yaml:"tile_size" koanf:"tile_size"`
	Window            WindowConfig `yaml:"window" koanf:"window"`
	Fetch             FetchConfig  `yaml:"fetch" koanf:"fetch"`
	LogLevel          string       `yaml:"log_level" koanf:"log_level"`
}

// WindowConfig holds the settings of the interactive viewer window.
type WindowConfig struct {
	Width  int    `yaml:"width" koanf:"width"`
	Height int    `yaml:"height" koanf:"height"`
	Title  string `yaml:"title" koanf:"title"`
}

// FetchConfig holds the tile loader settings.
type FetchConfig struct {
	Concurrency int           `yaml:"concurrency" koanf:"concurrency"`
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout"`
}

// DefaultConfig returns a configuration with every optional setting filled in.
func DefaultConfig() *Config {
	return &Config{
		TileFileExtension: "jpg",
		TileSize:          256,
		Window: WindowConfig{
			Width:  1024,
			Height: 768,
			Title:  "tileview",
		},
		Fetch: FetchConfig{
			Concurrency: 8,
		},
		LogLevel: "info",
	}
}
