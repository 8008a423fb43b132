package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedtailor/feedtailor/internal/common"
	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/mapping"
	"github.com/feedtailor/feedtailor/internal/model"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	return w
}

func readArtifact(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test-owned temp path
	require.NoError(t, err)
	return string(data)
}

func TestNewWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewWriterRejectsEmptyDirectory(t *testing.T) {
	_, err := NewWriter("")
	require.Error(t, err)
}

func TestWriteColourSummary(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteColourSummary(ColourSummaryFile, []model.ColourCount{
		{Colour: "red", Count: 2, Percent: 66.67},
		{Colour: "blue", Count: 1, Percent: 33.33},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Colour,Product Count,% of Products\nred,2,66.67\nblue,1,33.33\n",
		readArtifact(t, path))
}

func TestWriteColourSummaryPrintsTwoDecimals(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteColourSummary(ColourSummaryFile, []model.ColourCount{
		{Colour: "red", Count: 1, Percent: 50},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Colour,Product Count,% of Products\nred,1,50.00\n",
		readArtifact(t, path))
}

func TestWriteUnmapped(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteUnmapped(UnmappedFile, []model.UnmappedColour{
		{Value: "blue", Count: 3},
		{Value: "teal", Count: 1},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Unmapped Colour,Product Count\nblue,3\nteal,1\n",
		readArtifact(t, path))
}

func TestWriteMapping(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteMapping(UpdatedMappingFile, []model.MappingEntry{
		{ProductColour: "blue", GenericColour: "navy"},
		{ProductColour: "red", GenericColour: "scarlet"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"product_colour,generic_colour\nblue,navy\nred,scarlet\n",
		readArtifact(t, path))
}

func TestWriteTableQuotesWhereNeeded(t *testing.T) {
	w := newTestWriter(t)
	table := model.NewTable(
		[]string{"title", "note"},
		[][]string{{"Shirt", "a,b"}},
	)

	path, err := w.WriteTable("feed.csv", table)
	require.NoError(t, err)

	assert.Equal(t, "title,note\nShirt,\"a,b\"\n", readArtifact(t, path))
}

func TestWriteAll(t *testing.T) {
	w := newTestWriter(t)

	feed := model.NewTable(
		[]string{"title", "color"},
		[][]string{
			{"Shirt", "Red"},
			{"Hat", "BLUE"},
			{"Socks", ""},
		},
	)
	base := mapping.NewTable()
	base.Add("red", "scarlet")

	resolution, err := mapping.NewResolver(base).Resolve(feed, "color", []model.ResolutionEdit{
		{Value: "blue", GenericColour: "scarlet"},
	})
	require.NoError(t, err)
	summary, err := mapping.Summary(feed, "color")
	require.NoError(t, err)

	result := &engine.Result{
		Filtered:     feed,
		ColourColumn: "color",
		Summary:      summary,
		Resolution:   resolution,
	}

	paths, err := w.WriteAll(result)
	require.NoError(t, err)
	require.Len(t, paths, 5)
	for _, p := range paths {
		_, statErr := os.Stat(p)
		assert.NoError(t, statErr)
	}

	assert.Equal(t,
		"title,color\nShirt,Red\nHat,BLUE\nSocks,\n",
		readArtifact(t, filepath.Join(w.Dir(), FilteredFeedFile)))

	// Equal counts tie-break by colour ascending.
	assert.Equal(t,
		"Colour,Product Count,% of Products\nblue,1,50.00\nred,1,50.00\n",
		readArtifact(t, filepath.Join(w.Dir(), ColourSummaryFile)))

	// The edit resolved everything, so the report is header-only.
	assert.Equal(t,
		"Unmapped Colour,Product Count\n",
		readArtifact(t, filepath.Join(w.Dir(), UnmappedFile)))

	// Edits precede the base rows they extend.
	assert.Equal(t,
		"product_colour,generic_colour\nblue,scarlet\nred,scarlet\n",
		readArtifact(t, filepath.Join(w.Dir(), UpdatedMappingFile)))

	assert.Equal(t,
		"title,color,generic_colour\nShirt,Red,scarlet\nHat,BLUE,scarlet\nSocks,,\n",
		readArtifact(t, filepath.Join(w.Dir(), MappedFeedFile)))
}

func TestWriteAllWithoutColourColumn(t *testing.T) {
	w := newTestWriter(t)
	feed := model.NewTable([]string{"title"}, [][]string{{"Shirt"}})

	paths, err := w.WriteAll(&engine.Result{Filtered: feed, NoColourColumn: true})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(w.Dir(), FilteredFeedFile), paths[0])
}

func TestWriteAllHaltedResult(t *testing.T) {
	w := newTestWriter(t)

	_, err := w.WriteAll(&engine.Result{EmptySelection: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEmptySelection)
}
