package model

// ColumnStat summarizes one column of a loaded table. Stats are
// computed once per table snapshot and never change with selection or
// filtering.
type ColumnStat struct {
	Name     string
	NonEmpty int
	Distinct int // counts the empty string as a value
}

// FilterSpec maps a column name to the raw cell values a row must
// match in that column. Constraints combine conjunctively; a column
// appears only while at least one value is chosen for it.
type FilterSpec map[string][]string

// Clone returns a deep copy.
func (f FilterSpec) Clone() FilterSpec {
	if f == nil {
		return nil
	}
	out := make(FilterSpec, len(f))
	for col, vals := range f {
		copied := make([]string, len(vals))
		copy(copied, vals)
		out[col] = copied
	}
	return out
}
