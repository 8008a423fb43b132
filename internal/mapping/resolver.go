package mapping

import (
	"errors"
	"fmt"
	"sort"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/normalize"
)

// Resolution edit validation errors.
var (
	ErrEmptyEditValue    = errors.New("resolution edit has an empty colour value")
	ErrGenericNotAllowed = errors.New("generic colour not in the allowed vocabulary")
)

// OutputColumn is the name of the resolved colour column appended to
// the final output. OutputColumnFallback is used instead when the
// table already owns a column with that name.
const (
	OutputColumn         = "generic_colour"
	OutputColumnFallback = "generic_colour_mapped"
)

// DetectColourColumn returns the first candidate present among the
// table's columns by exact name. Detection runs over the kept columns,
// so dropping a colour column also hides the colour workflow.
func DetectColourColumn(t *model.Table, candidates []string) (string, bool) {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// JoinResult is one left-join of a table's colour column against a
// mapping table.
type JoinResult struct {
	Coverage model.Coverage
	Generic  []string // per row; empty where the join missed or the entry is blank
	Unmapped []model.UnmappedColour
}

// Resolver runs the mapping workflow against one base mapping table.
type Resolver struct {
	base *Table
}

// NewResolver wraps a loaded base mapping.
func NewResolver(base *Table) *Resolver {
	return &Resolver{base: base}
}

// Base returns the base mapping table.
func (r *Resolver) Base() *Table {
	return r.base
}

// Vocabulary returns the generic colours an edit may assign.
func (r *Resolver) Vocabulary() []string {
	return r.base.Vocabulary()
}

// Join left-joins the table's colour column against a mapping table.
// A row is matched when its normalized colour value is a key of the
// mapping, regardless of the entry's generic colour. Unmatched rows
// with a non-empty normalized value form the unmapped set, counted and
// sorted by count descending, then value ascending.
func Join(m *Table, t *model.Table, colourCol string) (*JoinResult, error) {
	col := t.Column(colourCol)
	if col == nil {
		return nil, fmt.Errorf("colour column %q not in table", colourCol)
	}

	result := &JoinResult{
		Coverage: model.Coverage{Total: len(col.Cells)},
		Generic:  make([]string, len(col.Cells)),
	}
	misses := make(map[string]int)
	for i, cell := range col.Cells {
		generic, ok := m.Lookup(cell)
		if ok {
			result.Coverage.Matched++
			result.Generic[i] = generic
			continue
		}
		if v := normalize.Colour(cell); v != "" {
			misses[v]++
		}
	}

	result.Unmapped = make([]model.UnmappedColour, 0, len(misses))
	for v, n := range misses {
		result.Unmapped = append(result.Unmapped, model.UnmappedColour{Value: v, Count: n})
	}
	sort.Slice(result.Unmapped, func(i, j int) bool {
		a, b := result.Unmapped[i], result.Unmapped[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Value < b.Value
	})
	return result, nil
}

// ValidateEdit rejects edits with an empty value or a generic colour
// outside the base vocabulary.
func (r *Resolver) ValidateEdit(edit model.ResolutionEdit) error {
	if normalize.Colour(edit.Value) == "" {
		return ErrEmptyEditValue
	}
	generic := normalize.Colour(edit.GenericColour)
	for _, allowed := range r.base.Vocabulary() {
		if generic == allowed {
			return nil
		}
	}
	return fmt.Errorf("%q: %w", edit.GenericColour, ErrGenericNotAllowed)
}

// MergeEdits builds the updated mapping: edits inserted ahead of the
// base entries into a fresh table, so an edit overrides a base entry
// for the same key and the first of two conflicting edits wins.
// Degenerate edits (empty value or generic after normalization) are
// dropped.
func (r *Resolver) MergeEdits(edits []model.ResolutionEdit) *Table {
	merged := NewTable()
	for _, e := range edits {
		if normalize.Colour(e.GenericColour) == "" {
			continue
		}
		merged.Add(e.Value, e.GenericColour)
	}
	for _, e := range r.base.entries {
		merged.Add(e.ProductColour, e.GenericColour)
	}
	return merged
}

// Resolution is the outcome of one full mapping pass.
type Resolution struct {
	ColourColumn string
	OutputName   string
	Before       *JoinResult
	After        *JoinResult
	Updated      *Table
	Output       *model.Table
}

// Resolve runs the whole workflow against a filtered table: join the
// base mapping, fold the edits in, join again, and append the resolved
// colours as a new output column. Edits are validated up front; an
// invalid edit fails the pass without partial effect.
func (r *Resolver) Resolve(filtered *model.Table, colourCol string, edits []model.ResolutionEdit) (*Resolution, error) {
	for _, e := range edits {
		if err := r.ValidateEdit(e); err != nil {
			return nil, err
		}
	}

	before, err := Join(r.base, filtered, colourCol)
	if err != nil {
		return nil, err
	}

	updated := r.MergeEdits(edits)
	after, err := Join(updated, filtered, colourCol)
	if err != nil {
		return nil, err
	}

	name := OutputColumn
	if filtered.HasColumn(name) {
		name = OutputColumnFallback
	}
	output, err := filtered.AppendColumn(name, after.Generic)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		ColourColumn: colourCol,
		OutputName:   name,
		Before:       before,
		After:        after,
		Updated:      updated,
		Output:       output,
	}, nil
}
