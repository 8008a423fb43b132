package mapping

import (
	"fmt"
	"math"
	"sort"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/normalize"
)

// Summary counts the normalized colour values of a column. Empty
// values are excluded and the percentage is of the non-empty rows,
// rounded to two decimals. Sorted by count descending, then value
// ascending.
func Summary(t *model.Table, colourCol string) ([]model.ColourCount, error) {
	col := t.Column(colourCol)
	if col == nil {
		return nil, fmt.Errorf("colour column %q not in table", colourCol)
	}

	counts := make(map[string]int)
	nonEmpty := 0
	for _, cell := range col.Cells {
		v := normalize.Colour(cell)
		if v == "" {
			continue
		}
		counts[v]++
		nonEmpty++
	}

	out := make([]model.ColourCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, model.ColourCount{
			Colour:  v,
			Count:   n,
			Percent: math.Round(float64(n)/float64(nonEmpty)*10000) / 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Colour < out[j].Colour
	})
	return out, nil
}
