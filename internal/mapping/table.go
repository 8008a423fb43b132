// Package mapping implements the colour lookup table and the
// resolution workflow that reconciles feed colours against it.
package mapping

import (
	"sort"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/normalize"
)

// Table is an ordered colour lookup table. Keys are normalized product
// colours and stay unique: inserting a key that already exists is a
// no-op, so earlier entries always win.
type Table struct {
	entries []model.MappingEntry
	index   map[string]int
}

// NewTable returns an empty mapping table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Add normalizes and inserts one entry. Entries with an empty key are
// dropped; a duplicate key keeps the existing entry. Reports whether
// the entry was inserted.
func (t *Table) Add(productColour, genericColour string) bool {
	key := normalize.Colour(productColour)
	if key == "" {
		return false
	}
	if _, exists := t.index[key]; exists {
		return false
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, model.MappingEntry{
		ProductColour: key,
		GenericColour: normalize.Colour(genericColour),
	})
	return true
}

// Lookup returns the generic colour for a value. The value is
// normalized before the lookup; ok reports whether the key exists at
// all, independent of the generic colour being empty.
func (t *Table) Lookup(value string) (string, bool) {
	i, ok := t.index[normalize.Colour(value)]
	if !ok {
		return "", false
	}
	return t.entries[i].GenericColour, true
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the entries in insertion order.
func (t *Table) Entries() []model.MappingEntry {
	out := make([]model.MappingEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Vocabulary returns the sorted distinct non-empty generic colours.
// Resolution edits may only target values from this set.
func (t *Table) Vocabulary() []string {
	seen := make(map[string]struct{}, len(t.entries))
	for _, e := range t.entries {
		if e.GenericColour != "" {
			seen[e.GenericColour] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
