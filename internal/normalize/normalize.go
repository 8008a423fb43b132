// Package normalize centralizes the two string-matching rules the
// pipeline depends on. Colour comparison and column-label comparison
// must behave identically at every call site, so no caller is allowed
// to hand-roll either transform.
package normalize

import "strings"

// Colour canonicalizes a colour value for matching: leading and
// trailing whitespace stripped, then lower-cased. Applied to feed
// colour cells, both mapping columns, and human-entered values.
// "  Red " and "red" are the same colour; "" stays "".
func Colour(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Label canonicalizes a column label for recommended-column matching:
// lower-cased with every rune outside [a-z0-9] removed. Under this
// rule "Google_Product_Category" matches "google product category".
func Label(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range strings.ToLower(v) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FindColumn returns the first column whose label-normalized name
// matches the label-normalized target.
func FindColumn(columns []string, target string) (string, bool) {
	want := Label(target)
	for _, c := range columns {
		if Label(c) == want {
			return c, true
		}
	}
	return "", false
}
