package model

// SelectionEntry is one persisted (column, keep) pair. Entries are
// stored in table column order so a selection round-trips bit for bit.
type SelectionEntry struct {
	Column string
	Keep   bool
}
