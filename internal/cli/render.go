package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/feedtailor/feedtailor/internal/model"
)

// RenderStats renders per-column feed statistics. With a non-nil
// selection a Kept marker column is included.
func RenderStats(stats []model.ColumnStat, selection map[string]bool) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	if selection == nil {
		t.AppendHeader(table.Row{"Column", "Non-empty", "Distinct"})
		for _, s := range stats {
			t.AppendRow(table.Row{s.Name, s.NonEmpty, s.Distinct})
		}
		return t.Render()
	}

	t.AppendHeader(table.Row{"Column", "Kept", "Non-empty", "Distinct"})
	for _, s := range stats {
		kept := ""
		if selection[s.Name] {
			kept = SuccessIcon
		}
		t.AppendRow(table.Row{s.Name, kept, s.NonEmpty, s.Distinct})
	}
	return t.Render()
}

// RenderPreview renders the first rows of a table.
func RenderPreview(tbl *model.Table, rows int) string {
	head := tbl.Head(rows)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := make(table.Row, head.NumColumns())
	for i, name := range head.ColumnNames() {
		header[i] = name
	}
	t.AppendHeader(header)

	for i := 0; i < head.NumRows(); i++ {
		cells := head.Row(i)
		row := make(table.Row, len(cells))
		for j, cell := range cells {
			row[j] = cell
		}
		t.AppendRow(row)
	}
	return t.Render()
}

// RenderColourSummary renders the colour distribution with two-decimal
// percentages.
func RenderColourSummary(summary []model.ColourCount) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Colour", "Product Count", "% of Products"})
	for _, c := range summary {
		t.AppendRow(table.Row{c.Colour, c.Count, strconv.FormatFloat(c.Percent, 'f', 2, 64)})
	}
	return t.Render()
}

// RenderUnmapped renders the unmapped colour report.
func RenderUnmapped(unmapped []model.UnmappedColour) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Unmapped Colour", "Product Count"})
	for _, u := range unmapped {
		t.AppendRow(table.Row{u.Value, u.Count})
	}
	return t.Render()
}

// FormatCoverage renders a coverage metric line.
func FormatCoverage(label string, c model.Coverage) string {
	return fmt.Sprintf("%s %s: %d / %d (%.2f%%)", ChartIcon, label, c.Matched, c.Total, c.Percent())
}
