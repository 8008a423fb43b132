package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedtailor/feedtailor/internal/cli"
	"github.com/feedtailor/feedtailor/internal/config"
	"github.com/feedtailor/feedtailor/internal/selection"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <feed.tsv>",
		Short: "Print the first rows of a feed",
		Long: `Render the head of a feed as a table. Shows the recommended columns
present in the feed unless --columns names others.`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}

	// Flags
	cmd.Flags().IntP("rows", "n", config.DefaultPreviewRows, "Number of rows to show")
	cmd.Flags().StringSlice("columns", nil, "Columns to show (default: recommended present in the feed)")

	// Bind flags to viper
	_ = viper.BindPFlag("preview.rows", cmd.Flags().Lookup("rows"))

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings := config.Load()

	table, err := loadFeed(ctx, args[0])
	if err != nil {
		return err
	}

	columns, _ := cmd.Flags().GetStringSlice("columns")
	if len(columns) == 0 {
		columns = selection.New(table, settings.Recommended).Kept()
	}
	if len(columns) == 0 {
		columns = table.ColumnNames()
	}

	projected, err := table.Project(columns)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderPreview(projected, settings.PreviewRows))
	return nil
}
