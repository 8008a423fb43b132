package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedtailor/feedtailor/internal/cli"
	"github.com/feedtailor/feedtailor/internal/common"
	"github.com/feedtailor/feedtailor/internal/config"
	"github.com/feedtailor/feedtailor/internal/export"
	"github.com/feedtailor/feedtailor/internal/mapping"
)

func mappingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Check and grow the colour mapping",
	}

	cmd.AddCommand(mappingCheckCmd())
	cmd.AddCommand(mappingResolveCmd())

	return cmd
}

func mappingCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <feed.tsv>",
		Short: "Report mapping coverage against a feed",
		Long: `Join the base mapping against a feed's colour column and report how
many rows resolve to a generic colour, plus the values that do not.`,
		Args: cobra.ExactArgs(1),
		RunE: runMappingCheck,
	}

	cmd.Flags().StringP("mapping", "m", "", "Base colour mapping CSV (default: colour_mapping.csv)")

	return cmd
}

func runMappingCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings := config.Load()
	if v, _ := cmd.Flags().GetString("mapping"); v != "" {
		settings.MappingPath = config.ExpandPath(v)
	}

	table, err := loadFeed(ctx, args[0])
	if err != nil {
		return err
	}

	base, err := loadMapping(settings.MappingPath, true)
	if err != nil {
		return err
	}

	colourCol, ok := detectColourColumn(settings, table)
	if !ok {
		return fmt.Errorf("%s: %w", args[0], common.ErrNoColourColumn)
	}

	join, err := mapping.Join(base, table, colourCol)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Mapping coverage for %s", cli.PaletteIcon, args[0])))
	fmt.Println(cli.FormatCoverage("Coverage", join.Coverage))

	if len(join.Unmapped) == 0 {
		fmt.Println(cli.FormatSuccess("Every colour value maps to a generic name"))
		return nil
	}

	fmt.Println(cli.RenderUnmapped(join.Unmapped))
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Run 'feedtailor mapping resolve %s' to map them interactively", args[0])))
	return nil
}

func mappingResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <feed.tsv>",
		Short: "Interactively map a feed's unmapped colours",
		Long: `Walk the colour values the base mapping misses, pick a generic colour
for each, and write the grown mapping as a new CSV.

The base mapping file on disk is never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: runMappingResolve,
	}

	cmd.Flags().StringP("mapping", "m", "", "Base colour mapping CSV (default: colour_mapping.csv)")
	cmd.Flags().StringP("out", "o", "", "Directory for the updated mapping (default: current directory)")

	return cmd
}

func runMappingResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Set up interrupt handling
	interruptHandler := cli.NewInterruptHandler(nil)
	ctx = interruptHandler.HandleInterrupts(ctx, "")

	settings := config.Load()
	if v, _ := cmd.Flags().GetString("mapping"); v != "" {
		settings.MappingPath = config.ExpandPath(v)
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		settings.OutputDir = config.ExpandPath(v)
	}

	table, err := loadFeed(ctx, args[0])
	if err != nil {
		return err
	}

	base, err := loadMapping(settings.MappingPath, true)
	if err != nil {
		return err
	}

	colourCol, ok := detectColourColumn(settings, table)
	if !ok {
		return fmt.Errorf("%s: %w", args[0], common.ErrNoColourColumn)
	}

	resolver := mapping.NewResolver(base)
	before, err := mapping.Join(base, table, colourCol)
	if err != nil {
		return err
	}

	if len(before.Unmapped) == 0 {
		fmt.Println(cli.FormatSuccess("Every colour value already maps to a generic name"))
		return nil
	}

	prompter := cli.NewResolutionPrompter(os.Stdin, os.Stdout)
	edits, err := prompter.ResolveColours(ctx, before.Unmapped, resolver.Vocabulary())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Resolution interrupted, no mapping written")
			return nil
		}
		return err
	}
	prompter.ShowCompletion()

	if len(edits) == 0 {
		fmt.Println(cli.FormatInfo("No edits made, mapping left as is"))
		return nil
	}

	updated := resolver.MergeEdits(edits)

	exporter, err := export.NewWriter(settings.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}
	path, err := exporter.WriteMapping(export.UpdatedMappingFile, updated.Entries())
	if err != nil {
		return err
	}

	after, err := mapping.Join(updated, table, colourCol)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatCoverage("Before", before.Coverage))
	fmt.Println(cli.FormatCoverage("After ", after.Coverage))
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated mapping written to %s", path)))
	return nil
}
