// Package export writes curation artifacts as CSV files in an output
// directory. Files are only produced on an explicit export; nothing
// here runs during recompute.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/feedtailor/feedtailor/internal/common"
	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/model"
)

// Artifact file names, matching the original download names.
const (
	FilteredFeedFile   = "filtered_feed.csv"
	ColourSummaryFile  = "colour_summary.csv"
	UnmappedFile       = "unmapped_colours.csv"
	UpdatedMappingFile = "updated_colour_mapping.csv"
	MappedFeedFile     = "mapped_feed.csv"
)

// Writer emits CSV artifacts into a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed and returns a
// Writer bound to it.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the directory the writer emits into.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteTable writes a table as CSV, header row first, rows in table
// order.
func (w *Writer) WriteTable(name string, table *model.Table) (string, error) {
	records := make([][]string, 0, table.NumRows()+1)
	records = append(records, table.ColumnNames())
	for i := 0; i < table.NumRows(); i++ {
		records = append(records, table.Row(i))
	}
	return w.write(name, records)
}

// WriteColourSummary writes the colour distribution with percentages
// printed to two decimals.
func (w *Writer) WriteColourSummary(name string, summary []model.ColourCount) (string, error) {
	records := make([][]string, 0, len(summary)+1)
	records = append(records, []string{"Colour", "Product Count", "% of Products"})
	for _, c := range summary {
		records = append(records, []string{
			c.Colour,
			strconv.Itoa(c.Count),
			strconv.FormatFloat(c.Percent, 'f', 2, 64),
		})
	}
	return w.write(name, records)
}

// WriteUnmapped writes the unmapped colour report.
func (w *Writer) WriteUnmapped(name string, unmapped []model.UnmappedColour) (string, error) {
	records := make([][]string, 0, len(unmapped)+1)
	records = append(records, []string{"Unmapped Colour", "Product Count"})
	for _, u := range unmapped {
		records = append(records, []string{u.Value, strconv.Itoa(u.Count)})
	}
	return w.write(name, records)
}

// WriteMapping writes mapping entries in table order using the mapping
// file's own header names, so the output can be loaded back as a base
// mapping.
func (w *Writer) WriteMapping(name string, entries []model.MappingEntry) (string, error) {
	records := make([][]string, 0, len(entries)+1)
	records = append(records, []string{"product_colour", "generic_colour"})
	for _, e := range entries {
		records = append(records, []string{e.ProductColour, e.GenericColour})
	}
	return w.write(name, records)
}

// WriteAll emits every artifact the result carries and returns their
// paths. A halted result (empty selection) has nothing to export.
func (w *Writer) WriteAll(result *engine.Result) ([]string, error) {
	if result == nil || result.Filtered == nil {
		return nil, fmt.Errorf("nothing to export: %w", common.ErrEmptySelection)
	}

	paths := make([]string, 0, 5)

	path, err := w.WriteTable(FilteredFeedFile, result.Filtered)
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)

	if result.NoColourColumn {
		slog.Info("Exported artifacts without colour sections",
			"dir", w.dir, "files", len(paths))
		return paths, nil
	}

	if path, err = w.WriteColourSummary(ColourSummaryFile, result.Summary); err != nil {
		return nil, err
	}
	paths = append(paths, path)

	if result.Resolution != nil {
		if path, err = w.WriteUnmapped(UnmappedFile, result.Resolution.After.Unmapped); err != nil {
			return nil, err
		}
		paths = append(paths, path)

		if path, err = w.WriteMapping(UpdatedMappingFile, result.Resolution.Updated.Entries()); err != nil {
			return nil, err
		}
		paths = append(paths, path)

		if path, err = w.WriteTable(MappedFeedFile, result.Resolution.Output); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	slog.Info("Exported artifacts", "dir", w.dir, "files", len(paths))
	return paths, nil
}

func (w *Writer) write(name string, records [][]string) (string, error) {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(filepath.Clean(path)) // #nosec G304 -- path rooted in the configured output dir
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(records); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return path, nil
}
