// Package config loads cellimage settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/gogpu/cellimage"
	"github.com/gogpu/cellimage/atlas"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "cellimage"

// Config is the cellimage configuration, one field per TOML table.
type Config struct {
	Cell    CellConfig    `koanf:"cell"`
	Atlas   AtlasConfig   `koanf:"atlas"`
	Render  RenderConfig  `koanf:"render"`
	Slicing SlicingConfig `koanf:"slicing"`
	Log     LogConfig     `koanf:"log"`
}

// CellConfig is the grid cell size in pixels.
type CellConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// AtlasConfig mirrors atlas.Config.
type AtlasConfig struct {
	Width   int    `koanf:"width"`
	Height  int    `koanf:"height"`
	Padding int    `koanf:"padding"`
	Label   string `koanf:"label"`
}

// RenderConfig holds the default placement of rendered images.
type RenderConfig struct {
	Resize    string `koanf:"resize"`    // NoResize, ResizeToFit, ResizeToFill, StretchToFill
	Alignment string `koanf:"alignment"` // TopStart ... BottomEnd
	Scaler    string `koanf:"scaler"`    // nearest, approxbilinear, bilinear, catmullrom
}

// SlicingConfig controls how rendered images are cut into cell slices.
type SlicingConfig struct {
	ColumnOffset bool `koanf:"column_offset"` // slices read their own columns
}

// LogConfig selects the package logger level.
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error, off
}

// Default returns the built-in configuration.
func Default() *Config {
	a := atlas.DefaultConfig()
	return &Config{
		Cell:  CellConfig{Width: 8, Height: 16},
		Atlas: AtlasConfig{Width: a.Width, Height: a.Height, Padding: a.Padding, Label: a.Label},
		Render: RenderConfig{
			Resize:    cellimage.ResizeToFit.String(),
			Alignment: cellimage.MiddleCenter.String(),
			Scaler:    "catmullrom",
		},
		Slicing: SlicingConfig{ColumnOffset: true},
		Log:     LogConfig{Level: "off"},
	}
}

// Load reads the given TOML files in order, later files overriding earlier
// ones, on top of Default. Missing files are skipped.
func Load(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths returns the configuration files read by the command line
// tool: the XDG config file, then ./cellimage.toml.
func DefaultPaths() []string {
	paths := []string{filepath.Join(xdg.ConfigHome, appName, "config.toml")}
	if found, err := xdg.SearchConfigFile(filepath.Join(appName, "config.toml")); err == nil && found != paths[0] {
		paths = append([]string{found}, paths...)
	}
	return append(paths, appName+".toml")
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Cell.Width <= 0 || c.Cell.Height <= 0 {
		errs = append(errs, fmt.Errorf("cell size %dx%d must be positive", c.Cell.Width, c.Cell.Height))
	}
	if _, err := cellimage.ParseResize(c.Render.Resize); err != nil {
		errs = append(errs, err)
	}
	if _, err := cellimage.ParseAlignment(c.Render.Alignment); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// CellSize returns the configured cell size.
func (c *Config) CellSize() cellimage.Size {
	return cellimage.Sz(c.Cell.Width, c.Cell.Height)
}

// AtlasConfig returns the atlas configuration.
func (c *Config) AtlasConfig() atlas.Config {
	return atlas.Config{
		Width:   c.Atlas.Width,
		Height:  c.Atlas.Height,
		Padding: c.Atlas.Padding,
		Label:   c.Atlas.Label,
	}
}

// Resize returns the configured resize policy.
func (c *Config) Resize() cellimage.Resize {
	r, _ := cellimage.ParseResize(c.Render.Resize)
	return r
}

// Alignment returns the configured alignment policy.
func (c *Config) Alignment() cellimage.Alignment {
	a, _ := cellimage.ParseAlignment(c.Render.Alignment)
	return a
}

// Logger returns a text logger writing to stderr at the configured level,
// or nil when logging is off.
func (c *Config) Logger() *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil || level == levelOff {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

const levelOff = slog.Level(100)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "off":
		return levelOff, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return levelOff, fmt.Errorf("unknown log level %q", s)
	}
}
