// Package filter offers categorical row filters over kept columns.
// Eligibility is judged on the raw table so that choosing a filter
// never changes which filters exist.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/feedtailor/feedtailor/internal/model"
)

// Bounds limits which columns are offered as filters: a column
// qualifies when its distinct non-empty trimmed value count lies
// within [Min, Max].
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds are the stock cardinality limits for filter columns.
var DefaultBounds = Bounds{Min: 2, Max: 50}

// Option is one filterable column with its choosable values, sorted.
type Option struct {
	Column string
	Values []string
}

// Options returns the filterable columns among the kept columns, in
// kept order. Values are distinct trimmed non-empty cell values from
// the raw table.
func Options(raw *model.Table, kept []string, bounds Bounds) []Option {
	var opts []Option
	for _, name := range kept {
		col := raw.Column(name)
		if col == nil {
			continue
		}
		distinct := make(map[string]struct{})
		for _, cell := range col.Cells {
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			distinct[v] = struct{}{}
		}
		if len(distinct) < bounds.Min || len(distinct) > bounds.Max {
			continue
		}
		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)
		opts = append(opts, Option{Column: name, Values: values})
	}
	return opts
}

// Apply projects the kept columns and drops every row that fails any
// constraint in spec. A row survives when, for each constrained
// column, its raw cell value is one of the chosen values. An empty
// spec returns the projection unchanged.
func Apply(raw *model.Table, kept []string, spec model.FilterSpec) (*model.Table, error) {
	projected, err := raw.Project(kept)
	if err != nil {
		return nil, err
	}
	if len(spec) == 0 {
		return projected, nil
	}

	type constraint struct {
		col     *model.Column
		allowed map[string]struct{}
	}
	constraints := make([]constraint, 0, len(spec))
	for name, values := range spec {
		if len(values) == 0 {
			continue
		}
		col := projected.Column(name)
		if col == nil {
			return nil, fmt.Errorf("filter on column %q not in kept set", name)
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		constraints = append(constraints, constraint{col: col, allowed: allowed})
	}

	var keepRows []int
	for i := 0; i < projected.NumRows(); i++ {
		match := true
		for _, c := range constraints {
			if _, ok := c.allowed[c.col.Cells[i]]; !ok {
				match = false
				break
			}
		}
		if match {
			keepRows = append(keepRows, i)
		}
	}
	return projected.SelectRows(keepRows), nil
}
