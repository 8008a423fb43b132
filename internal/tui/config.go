package tui

import (
	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/export"
	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Engine    *engine.Engine
	Exporter  *export.Writer
	SessionID string
	Width     int
	Height    int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithEngine sets the curation engine.
func WithEngine(eng *engine.Engine) Option {
	return func(c *Config) {
		c.Engine = eng
	}
}

// WithExporter sets the artifact writer used by the export key.
func WithExporter(w *export.Writer) Option {
	return func(c *Config) {
		c.Exporter = w
	}
}

// WithSession sets the session the walkthrough works on.
func WithSession(id string) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
