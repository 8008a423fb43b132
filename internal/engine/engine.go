// Package engine orchestrates the curation pipeline: selection,
// filtering, colour summary and mapping resolution. Every user event
// re-runs the whole pipeline synchronously from persisted session
// state, so a result never mixes old and new state.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feedtailor/feedtailor/internal/filter"
	"github.com/feedtailor/feedtailor/internal/mapping"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/schema"
	"github.com/feedtailor/feedtailor/internal/selection"
	"github.com/feedtailor/feedtailor/internal/service"
)

// Engine runs the curation pipeline over one loaded feed table and one
// base colour mapping.
type Engine struct {
	store    service.SessionStore
	raw      *model.Table
	resolver *mapping.Resolver
	config   Config
}

// Config holds configuration options for the pipeline engine.
type Config struct {
	Recommended      []string
	ColourCandidates []string
	ColourColumn     string // non-empty forces the colour column
	FilterBounds     filter.Bounds
}

// DefaultRecommended are the stock recommended column labels.
var DefaultRecommended = []string{
	"title", "availability", "price", "brand", "gtin", "mpn",
	"condition", "language", "age group", "product type", "gender",
	"color", "google product category",
}

// DefaultColourCandidates are the stock colour column names, probed in
// order.
var DefaultColourCandidates = []string{
	"generic_colour", "product_colour", "color", "colour",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Recommended:      DefaultRecommended,
		ColourCandidates: DefaultColourCandidates,
		FilterBounds:     filter.DefaultBounds,
	}
}

// New creates a pipeline engine with the default configuration.
func New(store service.SessionStore, raw *model.Table, base *mapping.Table) *Engine {
	return NewWithConfig(store, raw, base, DefaultConfig())
}

// NewWithConfig creates a pipeline engine with custom configuration.
func NewWithConfig(store service.SessionStore, raw *model.Table, base *mapping.Table, config Config) *Engine {
	if len(config.Recommended) == 0 {
		config.Recommended = DefaultRecommended
	}
	if len(config.ColourCandidates) == 0 {
		config.ColourCandidates = DefaultColourCandidates
	}
	if config.FilterBounds == (filter.Bounds{}) {
		config.FilterBounds = filter.DefaultBounds
	}
	return &Engine{
		store:    store,
		raw:      raw,
		resolver: mapping.NewResolver(base),
		config:   config,
	}
}

// Raw returns the loaded feed table.
func (e *Engine) Raw() *model.Table {
	return e.raw
}

// Vocabulary returns the generic colours resolution edits may target.
func (e *Engine) Vocabulary() []string {
	return e.resolver.Vocabulary()
}

// NewSession creates a session and persists its initial recommended
// selection.
func (e *Engine) NewSession(ctx context.Context, sourceFile string) (*model.Session, error) {
	session, err := e.store.CreateSession(ctx, sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sel := selection.New(e.raw, e.config.Recommended)
	if err := e.saveSelection(ctx, session.ID, sel); err != nil {
		return nil, err
	}

	slog.Info("Started curation session",
		"session", session.ID,
		"source", sourceFile,
		"columns", e.raw.NumColumns(),
		"rows", e.raw.NumRows())
	return session, nil
}

// Result is one complete pipeline computation. When EmptySelection is
// set only the stats and selection fields are populated; when
// NoColourColumn is set everything up to the filtered table is
// populated and the colour sections are skipped.
type Result struct {
	Rows               int
	Stats              []model.ColumnStat
	Selection          map[string]bool
	Kept               []string
	RecommendedPresent []string
	RecommendedMissing []string

	EmptySelection bool

	FilterOptions []filter.Option
	FilterSpec    model.FilterSpec
	Filtered      *model.Table

	NoColourColumn bool
	ColourColumn   string
	Summary        []model.ColourCount
	Edits          []model.ResolutionEdit
	Resolution     *mapping.Resolution
}

// Recompute runs the pipeline from the session's persisted state.
func (e *Engine) Recompute(ctx context.Context, sessionID string) (*Result, error) {
	sel, err := e.loadSelection(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Rows:               e.raw.NumRows(),
		Stats:              schema.Analyze(e.raw),
		Selection:          sel.Snapshot(),
		Kept:               sel.Kept(),
		RecommendedPresent: sel.RecommendedPresent(),
		RecommendedMissing: sel.RecommendedMissing(),
	}

	if len(result.Kept) == 0 {
		result.EmptySelection = true
		slog.Debug("Recompute halted", "session", sessionID, "reason", "empty selection")
		return result, nil
	}

	spec, err := e.store.GetFilterSpec(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter choices: %w", err)
	}
	// Choices on columns that have since been dropped impose nothing.
	for column := range spec {
		if !sel.IsKept(column) {
			delete(spec, column)
		}
	}
	result.FilterSpec = spec
	result.FilterOptions = filter.Options(e.raw, result.Kept, e.config.FilterBounds)

	filtered, err := filter.Apply(e.raw, result.Kept, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to apply filters: %w", err)
	}
	result.Filtered = filtered

	colourCol, ok := e.detectColourColumn(filtered)
	if !ok {
		result.NoColourColumn = true
		slog.Debug("Recompute finished without colour sections",
			"session", sessionID,
			"candidates", e.config.ColourCandidates)
		return result, nil
	}
	result.ColourColumn = colourCol

	summary, err := mapping.Summary(filtered, colourCol)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize colours: %w", err)
	}
	result.Summary = summary

	edits, err := e.store.GetResolutionEdits(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load resolution edits: %w", err)
	}
	result.Edits = edits

	resolution, err := e.resolver.Resolve(filtered, colourCol, edits)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve colours: %w", err)
	}
	result.Resolution = resolution

	slog.Debug("Recompute finished",
		"session", sessionID,
		"kept_columns", len(result.Kept),
		"filtered_rows", filtered.NumRows(),
		"coverage_matched", resolution.After.Coverage.Matched,
		"coverage_total", resolution.After.Coverage.Total)
	return result, nil
}

func (e *Engine) detectColourColumn(filtered *model.Table) (string, bool) {
	if e.config.ColourColumn != "" {
		if filtered.HasColumn(e.config.ColourColumn) {
			return e.config.ColourColumn, true
		}
		return "", false
	}
	return mapping.DetectColourColumn(filtered, e.config.ColourCandidates)
}

// loadSelection restores the persisted selection, falling back to the
// recommended defaults for sessions that never saved one.
func (e *Engine) loadSelection(ctx context.Context, sessionID string) (*selection.State, error) {
	entries, err := e.store.GetSelection(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}

	sel := selection.New(e.raw, e.config.Recommended)
	if len(entries) == 0 {
		return sel, nil
	}

	snapshot := make(map[string]bool, len(entries))
	for _, entry := range entries {
		snapshot[entry.Column] = entry.Keep
	}
	if err := sel.Restore(snapshot); err != nil {
		return nil, fmt.Errorf("persisted selection does not fit the loaded feed: %w", err)
	}
	return sel, nil
}

// saveSelection persists the selection in table column order.
func (e *Engine) saveSelection(ctx context.Context, sessionID string, sel *selection.State) error {
	columns := sel.Columns()
	entries := make([]model.SelectionEntry, len(columns))
	for i, c := range columns {
		entries[i] = model.SelectionEntry{Column: c, Keep: sel.IsKept(c)}
	}
	if err := e.store.SaveSelection(ctx, sessionID, entries); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}
