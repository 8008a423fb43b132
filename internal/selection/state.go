// Package selection tracks which table columns the user keeps. The
// keep map always has exactly one entry per table column; every
// mutation preserves that invariant or is rejected whole.
package selection

import (
	"errors"
	"fmt"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/normalize"
)

// ErrColumnMismatch indicates a selection edit set whose column names
// do not exactly cover the table's columns.
var ErrColumnMismatch = errors.New("selection does not match table columns")

// Edit is one (column, keep) pair of a full selection re-listing.
type Edit struct {
	Column string
	Keep   bool
}

// State holds the current column selection for one loaded table.
// A State is built once per load and replaced wholesale when a new
// table is loaded; it is not safe for concurrent use.
type State struct {
	columns     []string
	keep        map[string]bool
	recommended []string
}

// New builds the initial selection for a table: columns matching the
// recommended labels (label-normalized comparison) start kept, all
// others dropped. When no label matches, the literal column "title"
// is kept if present.
func New(table *model.Table, recommended []string) *State {
	s := &State{
		columns:     table.ColumnNames(),
		recommended: recommended,
	}
	s.SelectRecommended()
	return s
}

// SelectRecommended resets the selection to the recommended defaults.
// Applying it twice is the same as applying it once.
func (s *State) SelectRecommended() {
	s.keep = make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		s.keep[c] = false
	}
	matched := false
	for _, label := range s.recommended {
		if col, ok := normalize.FindColumn(s.columns, label); ok {
			s.keep[col] = true
			matched = true
		}
	}
	if !matched {
		if _, ok := s.keep["title"]; ok {
			s.keep["title"] = true
		}
	}
}

// SelectAll marks every column kept.
func (s *State) SelectAll() {
	for _, c := range s.columns {
		s.keep[c] = true
	}
}

// SelectNone marks every column dropped.
func (s *State) SelectNone() {
	for _, c := range s.columns {
		s.keep[c] = false
	}
}

// Invert flips the keep flag of every column.
func (s *State) Invert() {
	for _, c := range s.columns {
		s.keep[c] = !s.keep[c]
	}
}

// Set changes the keep flag of a single known column.
func (s *State) Set(column string, keep bool) error {
	if _, ok := s.keep[column]; !ok {
		return fmt.Errorf("unknown column %q: %w", column, ErrColumnMismatch)
	}
	s.keep[column] = keep
	return nil
}

// ApplyEdits replaces the selection with a full re-listing. The edit
// set must name every table column exactly once; otherwise the state
// is left untouched and the mismatch reported.
func (s *State) ApplyEdits(edits []Edit) error {
	next := make(map[string]bool, len(s.columns))
	for _, e := range edits {
		if _, ok := s.keep[e.Column]; !ok {
			return fmt.Errorf("unknown column %q: %w", e.Column, ErrColumnMismatch)
		}
		if _, dup := next[e.Column]; dup {
			return fmt.Errorf("duplicate column %q: %w", e.Column, ErrColumnMismatch)
		}
		next[e.Column] = e.Keep
	}
	if len(next) != len(s.columns) {
		return fmt.Errorf("edits cover %d of %d columns: %w",
			len(next), len(s.columns), ErrColumnMismatch)
	}
	s.keep = next
	return nil
}

// Restore replaces the selection from a persisted snapshot, applying
// the same full-coverage validation as ApplyEdits.
func (s *State) Restore(snapshot map[string]bool) error {
	edits := make([]Edit, 0, len(snapshot))
	for col, keep := range snapshot {
		edits = append(edits, Edit{Column: col, Keep: keep})
	}
	return s.ApplyEdits(edits)
}

// Columns returns the table's column names in table order.
func (s *State) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Kept returns the kept column names in original table order.
func (s *State) Kept() []string {
	var kept []string
	for _, c := range s.columns {
		if s.keep[c] {
			kept = append(kept, c)
		}
	}
	return kept
}

// IsKept reports the keep flag for a column; unknown columns are not kept.
func (s *State) IsKept(column string) bool {
	return s.keep[column]
}

// Snapshot returns a copy of the keep map for persistence.
func (s *State) Snapshot() map[string]bool {
	out := make(map[string]bool, len(s.keep))
	for c, k := range s.keep {
		out[c] = k
	}
	return out
}

// RecommendedPresent returns, in table order, the columns matching a
// recommended label.
func (s *State) RecommendedPresent() []string {
	var present []string
	for _, c := range s.columns {
		if s.matchesRecommended(c) {
			present = append(present, c)
		}
	}
	return present
}

// RecommendedMissing returns the recommended labels with no matching
// column, in recommendation order.
func (s *State) RecommendedMissing() []string {
	var missing []string
	for _, label := range s.recommended {
		if _, ok := normalize.FindColumn(s.columns, label); !ok {
			missing = append(missing, label)
		}
	}
	return missing
}

func (s *State) matchesRecommended(column string) bool {
	got := normalize.Label(column)
	for _, label := range s.recommended {
		if normalize.Label(label) == got {
			return true
		}
	}
	return false
}
