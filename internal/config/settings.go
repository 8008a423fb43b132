package config

import (
	"github.com/spf13/viper"

	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/filter"
)

// Preview row bounds.
const (
	MinPreviewRows     = 1
	MaxPreviewRows     = 2000
	DefaultPreviewRows = 200
)

// Default file locations and theme.
const (
	DefaultMappingPath = "colour_mapping.csv"
	DefaultDBPath      = "$HOME/.local/share/feedtailor/feedtailor.db"
	DefaultOutputDir   = "."
	DefaultTheme       = "default"
)

// Settings is the resolved application configuration.
type Settings struct {
	Recommended      []string
	ColourCandidates []string
	ColourColumn     string
	MappingPath      string
	OutputDir        string
	DBPath           string
	Theme            string
	FilterBounds     filter.Bounds
	PreviewRows      int
}

// Default returns the built-in settings.
func Default() Settings {
	recommended := make([]string, len(engine.DefaultRecommended))
	copy(recommended, engine.DefaultRecommended)
	candidates := make([]string, len(engine.DefaultColourCandidates))
	copy(candidates, engine.DefaultColourCandidates)

	return Settings{
		Recommended:      recommended,
		ColourCandidates: candidates,
		FilterBounds:     filter.DefaultBounds,
		PreviewRows:      DefaultPreviewRows,
		MappingPath:      DefaultMappingPath,
		OutputDir:        DefaultOutputDir,
		DBPath:           ExpandPath(DefaultDBPath),
		Theme:            DefaultTheme,
	}
}

// Load resolves settings from Viper on top of the defaults. Values
// come from the config file or FEEDTAILOR_ environment variables; the
// preview bound is clamped to its valid range.
func Load() Settings {
	s := Default()

	if v := viper.GetStringSlice("columns.recommended"); len(v) > 0 {
		s.Recommended = v
	}
	if v := viper.GetStringSlice("colour.candidates"); len(v) > 0 {
		s.ColourCandidates = v
	}
	if v := viper.GetString("colour.column"); v != "" {
		s.ColourColumn = v
	}
	if v := viper.GetInt("filter.min_options"); v > 0 {
		s.FilterBounds.Min = v
	}
	if v := viper.GetInt("filter.max_options"); v > 0 {
		s.FilterBounds.Max = v
	}
	if v := viper.GetInt("preview.rows"); v > 0 {
		s.PreviewRows = v
	}
	if v := viper.GetString("mapping.path"); v != "" {
		s.MappingPath = ExpandPath(v)
	}
	if v := viper.GetString("output.dir"); v != "" {
		s.OutputDir = ExpandPath(v)
	}
	if v := viper.GetString("database.path"); v != "" {
		s.DBPath = ExpandPath(v)
	}
	if v := viper.GetString("theme"); v != "" {
		s.Theme = v
	}

	s.PreviewRows = ClampPreviewRows(s.PreviewRows)
	return s
}

// EngineConfig converts the settings into an engine configuration.
func (s Settings) EngineConfig() engine.Config {
	return engine.Config{
		Recommended:      s.Recommended,
		ColourCandidates: s.ColourCandidates,
		ColourColumn:     s.ColourColumn,
		FilterBounds:     s.FilterBounds,
	}
}

// ClampPreviewRows forces a preview bound into [MinPreviewRows,
// MaxPreviewRows].
func ClampPreviewRows(n int) int {
	if n < MinPreviewRows {
		return MinPreviewRows
	}
	if n > MaxPreviewRows {
		return MaxPreviewRows
	}
	return n
}
