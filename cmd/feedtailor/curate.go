package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedtailor/feedtailor/internal/cli"
	"github.com/feedtailor/feedtailor/internal/config"
	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/export"
	"github.com/feedtailor/feedtailor/internal/tui"
	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

func curateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curate <feed.tsv>",
		Short: "Curate a product feed interactively",
		Long: `Walk a product feed through column selection, row filters, and colour
resolution in an interactive terminal session, then export the curated
files.

Session state is saved after every change; interrupt at any point and
resume later with --session.

Examples:
  feedtailor curate products.tsv
  feedtailor curate --mapping colours.csv products.tsv
  feedtailor curate --session 4f1c9be2 products.tsv   # Resume a session`,
		Args: cobra.ExactArgs(1),
		RunE: runCurate,
	}

	// Flags
	cmd.Flags().StringP("session", "s", "", "Resume an existing session by ID")
	cmd.Flags().StringP("mapping", "m", "", "Base colour mapping CSV (default: colour_mapping.csv)")
	cmd.Flags().StringP("out", "o", "", "Directory for exported files (default: current directory)")
	cmd.Flags().String("theme", "", "UI theme (default, catppuccin-mocha)")

	// Bind flags to viper
	_ = viper.BindPFlag("curate.session", cmd.Flags().Lookup("session"))
	_ = viper.BindPFlag("curate.mapping", cmd.Flags().Lookup("mapping"))
	_ = viper.BindPFlag("curate.out", cmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("curate.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runCurate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	feedPath := args[0]

	settings := config.Load()
	if v := viper.GetString("curate.mapping"); v != "" {
		settings.MappingPath = config.ExpandPath(v)
	}
	if v := viper.GetString("curate.out"); v != "" {
		settings.OutputDir = config.ExpandPath(v)
	}
	if v := viper.GetString("curate.theme"); v != "" {
		settings.Theme = v
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("%s Curating %s", cli.FeedIcon, feedPath)))

	table, err := loadFeed(ctx, feedPath)
	if err != nil {
		return err
	}

	base, err := loadMapping(settings.MappingPath, false)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	eng := engine.NewWithConfig(store, table, base, settings.EngineConfig())

	sessionID := viper.GetString("curate.session")
	if sessionID != "" {
		session, getErr := store.GetSession(ctx, sessionID)
		if getErr != nil {
			return fmt.Errorf("failed to resume session %s: %w", sessionID, getErr)
		}
		if session.SourceFile != feedPath {
			slog.Warn("Session was created from a different file",
				"session_source", session.SourceFile,
				"current", feedPath)
		}
		if touchErr := store.TouchSession(ctx, session.ID); touchErr != nil {
			return fmt.Errorf("failed to touch session %s: %w", session.ID, touchErr)
		}
		slog.Info("Resuming session", "session", session.ID)
	} else {
		session, newErr := eng.NewSession(ctx, feedPath)
		if newErr != nil {
			return newErr
		}
		sessionID = session.ID
	}

	exporter, err := export.NewWriter(settings.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	err = tui.Run(ctx,
		tui.WithEngine(eng),
		tui.WithExporter(exporter),
		tui.WithSession(sessionID),
		tui.WithTheme(themes.GetTheme(settings.Theme)),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Curation interrupted")
			slog.Info(fmt.Sprintf("Progress saved! Resume with: feedtailor curate --session %s %s", sessionID, feedPath))
			return nil
		}
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Session %s saved", sessionID)))
	return nil
}
