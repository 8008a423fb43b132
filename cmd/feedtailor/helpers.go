package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/feedtailor/feedtailor/internal/config"
	"github.com/feedtailor/feedtailor/internal/feed"
	"github.com/feedtailor/feedtailor/internal/mapping"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/storage"
)

// initStorage opens the session database with proper path expansion
// and runs migrations. The caller owns the returned handle.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadFeed parses a TSV product feed from disk.
func loadFeed(ctx context.Context, path string) (*model.Table, error) {
	table, err := feed.NewParser().ParseFilePath(ctx, path)
	if err != nil {
		return nil, err
	}
	slog.Info("Feed loaded",
		"file", path,
		"rows", table.NumRows(),
		"columns", table.NumColumns())
	return table, nil
}

// loadMapping reads the base colour mapping. A missing file is allowed
// unless required: curation can start from an empty vocabulary, while
// the resolve workflow needs a real one.
func loadMapping(path string, required bool) (*mapping.Table, error) {
	base, err := mapping.LoadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Base mapping not found, starting with an empty vocabulary", "file", path)
			return mapping.NewTable(), nil
		}
		return nil, err
	}
	slog.Info("Mapping loaded", "file", path, "entries", base.Len())
	return base, nil
}

// detectColourColumn applies the configured override before falling
// back to candidate matching, the same way a curation session does.
func detectColourColumn(settings config.Settings, table *model.Table) (string, bool) {
	if settings.ColourColumn != "" {
		if table.HasColumn(settings.ColourColumn) {
			return settings.ColourColumn, true
		}
		return "", false
	}
	return mapping.DetectColourColumn(table, settings.ColourCandidates)
}
