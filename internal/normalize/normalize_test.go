package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColour(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" Red ", "red"},
		{"BLUE", "blue"},
		{"navy blue", "navy blue"},
		{"\tForest Green\n", "forest green"},
		{"", ""},
		{"   ", ""},
		{"red", "red"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Colour(tt.in))
		})
	}
}

func TestColourIdempotent(t *testing.T) {
	for _, v := range []string{" Red ", "BLUE", "", "navy blue"} {
		once := Colour(v)
		assert.Equal(t, once, Colour(once))
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Google_Product_Category", "googleproductcategory"},
		{"google product category", "googleproductcategory"},
		{"Age Group", "agegroup"},
		{"GTIN", "gtin"},
		{"  Title  ", "title"},
		{"product-type", "producttype"},
		{"", ""},
		{"___", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.in))
		})
	}
}

func TestFindColumn(t *testing.T) {
	columns := []string{"ID", "Product Title", "Google_Product_Category", "color"}

	got, ok := FindColumn(columns, "google product category")
	assert.True(t, ok)
	assert.Equal(t, "Google_Product_Category", got)

	got, ok = FindColumn(columns, "Color")
	assert.True(t, ok)
	assert.Equal(t, "color", got)

	_, ok = FindColumn(columns, "brand")
	assert.False(t, ok)
}
