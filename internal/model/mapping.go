package model

import "math"

// MappingEntry pairs a raw product colour with its canonical generic
// colour. Both values are stored normalized; ProductColour is unique
// within a mapping table.
type MappingEntry struct {
	ProductColour string
	GenericColour string
}

// UnmappedColour is a normalized, non-empty colour value the mapping
// table cannot explain, with the number of rows carrying it.
type UnmappedColour struct {
	Value string
	Count int
}

// ResolutionEdit is a human annotation assigning a generic colour to a
// previously unmapped value. GenericColour is constrained to the
// generic vocabulary of the base mapping.
type ResolutionEdit struct {
	Value         string
	GenericColour string
}

// ColourCount is one row of the colour summary: a normalized colour,
// how many products carry it, and its share of the non-empty colour
// rows.
type ColourCount struct {
	Colour  string
	Count   int
	Percent float64
}

// Coverage reports how much of a table the mapping explains. Total is
// the full row count of the joined table; rows with empty colour cells
// count toward Total but can never be Matched.
type Coverage struct {
	Matched int
	Total   int
}

// Percent returns the coverage ratio as a percentage rounded to two
// decimals. An empty table has zero coverage.
func (c Coverage) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return math.Round(float64(c.Matched)/float64(c.Total)*10000) / 100
}
