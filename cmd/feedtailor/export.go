package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedtailor/feedtailor/internal/cli"
	"github.com/feedtailor/feedtailor/internal/config"
	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/export"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/selection"
	"github.com/feedtailor/feedtailor/internal/storage"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <feed.tsv>",
		Short: "Run the whole curation non-interactively and write the export files",
		Long: `Apply a column selection, row filters, and colour edits in one shot and
write the same files the interactive session exports. Session state
stays in memory; nothing is persisted.

Examples:
  feedtailor export products.tsv
  feedtailor export --columns id,title,color products.tsv
  feedtailor export --filter "category=Shoes|Boots" --resolve "dusty rose=pink" products.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	// Flags
	cmd.Flags().StringSlice("columns", nil, "Columns to keep (default: recommended)")
	cmd.Flags().StringArray("filter", nil, "Row filter as column=value1|value2 (repeatable)")
	cmd.Flags().StringArray("resolve", nil, "Colour edit as value=generic (repeatable)")
	cmd.Flags().StringP("mapping", "m", "", "Base colour mapping CSV (default: colour_mapping.csv)")
	cmd.Flags().StringP("out", "o", "", "Directory for exported files (default: current directory)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	feedPath := args[0]

	settings := config.Load()
	if v, _ := cmd.Flags().GetString("mapping"); v != "" {
		settings.MappingPath = config.ExpandPath(v)
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		settings.OutputDir = config.ExpandPath(v)
	}

	table, err := loadFeed(ctx, feedPath)
	if err != nil {
		return err
	}

	base, err := loadMapping(settings.MappingPath, false)
	if err != nil {
		return err
	}

	events, err := exportEvents(cmd, table)
	if err != nil {
		return err
	}

	// Scratch storage; a one-shot run leaves nothing behind.
	store, err := storage.NewSQLiteStorage(storage.InMemoryDSN)
	if err != nil {
		return fmt.Errorf("failed to open scratch storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close scratch storage", "error", closeErr)
		}
	}()
	if err = store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	eng := engine.NewWithConfig(store, table, base, settings.EngineConfig())
	session, err := eng.NewSession(ctx, feedPath)
	if err != nil {
		return err
	}

	result, err := eng.Recompute(ctx, session.ID)
	if err != nil {
		return err
	}
	for _, event := range events {
		if result, err = eng.Dispatch(ctx, session.ID, event); err != nil {
			return err
		}
	}

	exporter, err := export.NewWriter(settings.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}
	paths, err := exporter.WriteAll(result)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatInfo(fmt.Sprintf("%d of %d rows kept across %d columns",
		result.Filtered.NumRows(), result.Rows, len(result.Kept))))
	if result.NoColourColumn {
		fmt.Println(cli.FormatWarning("No colour column among the kept columns; colour files skipped"))
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d files", len(paths))))
	for _, p := range paths {
		fmt.Println("  " + p)
	}
	return nil
}

// exportEvents turns the command's flags into the event sequence an
// interactive session would have produced. Picker edits are a full
// re-listing, so the selection covers every table column.
func exportEvents(cmd *cobra.Command, table *model.Table) ([]engine.Event, error) {
	var events []engine.Event

	columns, _ := cmd.Flags().GetStringSlice("columns")
	if len(columns) > 0 {
		keep := make(map[string]bool, len(columns))
		for _, column := range columns {
			if !table.HasColumn(column) {
				return nil, fmt.Errorf("unknown column %q in --columns", column)
			}
			keep[column] = true
		}
		edits := make([]selection.Edit, 0, table.NumColumns())
		for _, column := range table.ColumnNames() {
			edits = append(edits, selection.Edit{Column: column, Keep: keep[column]})
		}
		events = append(events, engine.ApplyPickerEdits{Edits: edits})
	}

	filters, _ := cmd.Flags().GetStringArray("filter")
	for _, raw := range filters {
		event, err := parseFilterFlag(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	resolves, _ := cmd.Flags().GetStringArray("resolve")
	if len(resolves) > 0 {
		edits := make([]model.ResolutionEdit, 0, len(resolves))
		for _, raw := range resolves {
			edit, err := parseResolveFlag(raw)
			if err != nil {
				return nil, err
			}
			edits = append(edits, edit)
		}
		events = append(events, engine.AddResolutions{Edits: edits})
	}

	return events, nil
}

func parseFilterFlag(raw string) (engine.SetFilter, error) {
	column, rest, ok := strings.Cut(raw, "=")
	if !ok || column == "" || rest == "" {
		return engine.SetFilter{}, fmt.Errorf("invalid filter %q: want column=value1|value2", raw)
	}
	return engine.SetFilter{Column: column, Values: strings.Split(rest, "|")}, nil
}

func parseResolveFlag(raw string) (model.ResolutionEdit, error) {
	value, generic, ok := strings.Cut(raw, "=")
	if !ok || value == "" || generic == "" {
		return model.ResolutionEdit{}, fmt.Errorf("invalid resolution %q: want value=generic", raw)
	}
	return model.ResolutionEdit{Value: value, GenericColour: generic}, nil
}
