package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedtailor/feedtailor/internal/cli"
	"github.com/feedtailor/feedtailor/internal/config"
	"github.com/feedtailor/feedtailor/internal/schema"
	"github.com/feedtailor/feedtailor/internal/selection"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <feed.tsv>",
		Short: "Inspect a feed's columns without starting a session",
		Long: `Parse a feed and report per-column fill and distinct counts, which
recommended columns it carries, and which column colour resolution
would use.`,
		Args: cobra.ExactArgs(1),
		RunE: runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings := config.Load()

	table, err := loadFeed(ctx, args[0])
	if err != nil {
		return err
	}

	stats := schema.Analyze(table)
	sel := selection.New(table, settings.Recommended)

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Schema for %s", cli.ChartIcon, args[0])))
	fmt.Println(cli.RenderStats(stats, sel.Snapshot()))

	if missing := sel.RecommendedMissing(); len(missing) > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Missing recommended columns: %s", strings.Join(missing, ", "))))
	}

	if col, ok := detectColourColumn(settings, table); ok {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Colour column: %s", col)))
	} else {
		fmt.Println(cli.FormatWarning("No colour column detected; colour resolution would be skipped"))
	}

	return nil
}
