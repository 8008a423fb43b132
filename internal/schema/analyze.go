// Package schema computes per-column summary statistics for a loaded
// table. Stats describe the raw table only; selection and filter state
// never feed back into them.
package schema

import "github.com/feedtailor/feedtailor/internal/model"

// Analyze returns one stat per column, in table column order.
// NonEmpty counts cells that are not the empty string. Distinct counts
// distinct raw cell values, where the empty string is itself a value.
func Analyze(t *model.Table) []model.ColumnStat {
	stats := make([]model.ColumnStat, len(t.Columns))
	for i, col := range t.Columns {
		nonEmpty := 0
		distinct := make(map[string]struct{}, len(col.Cells))
		for _, cell := range col.Cells {
			if cell != "" {
				nonEmpty++
			}
			distinct[cell] = struct{}{}
		}
		stats[i] = model.ColumnStat{
			Name:     col.Name,
			NonEmpty: nonEmpty,
			Distinct: len(distinct),
		}
	}
	return stats
}
