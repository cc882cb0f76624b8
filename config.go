package windowserver

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Zero fields are filled from
// DefaultConfig by NewServer.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// MultiClick is the longest interval between two presses that still
	// counts as a multi-click.
	MultiClick time.Duration `yaml:"multiclick"`

	// DefaultBounds is assigned to every component created over IPC.
	DefaultBounds Rect `yaml:"default_bounds"`

	// TitleMaximum caps the byte length of GET_TITLE responses.
	TitleMaximum int `yaml:"title_maximum"`

	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	// Background is an optional image file shown centered on the desktop.
	Background string `yaml:"background"`

	// Cursor enables the software cursor.
	Cursor bool `yaml:"cursor"`

	// ScreenshotDir is where Server.Screenshot writes PNG files.
	ScreenshotDir string `yaml:"screenshot_dir"`

	Clock  func() time.Time `yaml:"-"`
	Logger *slog.Logger     `yaml:"-"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Width:         1024,
		Height:        768,
		MultiClick:    250 * time.Millisecond,
		DefaultBounds: Rect{X: 100, Y: 100, Width: 200, Height: 80},
		TitleMaximum:  TitleMaximum,
		LogLevel:      "info",
		Cursor:        true,
		ScreenshotDir: "screenshots",
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("config: negative screen size %dx%d", c.Width, c.Height)
	}
	if c.MultiClick < 0 {
		return fmt.Errorf("config: negative multiclick %v", c.MultiClick)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.MultiClick == 0 {
		c.MultiClick = d.MultiClick
	}
	if c.DefaultBounds.Empty() {
		c.DefaultBounds = d.DefaultBounds
	}
	if c.TitleMaximum == 0 {
		c.TitleMaximum = d.TitleMaximum
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// ParseLogLevel maps a level name to a slog.Level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
