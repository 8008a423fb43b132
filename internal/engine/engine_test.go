package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedtailor/feedtailor/internal/filter"
	"github.com/feedtailor/feedtailor/internal/mapping"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/selection"
	"github.com/feedtailor/feedtailor/internal/storage"
)

func testFeed() *model.Table {
	return model.NewTable(
		[]string{"id", "title", "color", "size"},
		[][]string{
			{"1", "Shirt", "Red", "M"},
			{"2", "Pants", "red ", "L"},
			{"3", "Hat", "BLUE", "M"},
			{"4", "Socks", "", "S"},
		},
	)
}

func testMapping(t *testing.T) *mapping.Table {
	t.Helper()
	tbl := mapping.NewTable()
	tbl.Add("red", "scarlet")
	return tbl
}

func setupTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.InMemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	eng := New(store, testFeed(), testMapping(t))
	session, err := eng.NewSession(ctx, "feed.tsv")
	require.NoError(t, err)

	return eng, session.ID
}

func TestNewSessionStartsWithRecommended(t *testing.T) {
	eng, sessionID := setupTestEngine(t)

	result, err := eng.Recompute(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "color"}, result.Kept)
	assert.False(t, result.EmptySelection)
	assert.Equal(t, []string{"title", "color"}, result.RecommendedPresent)
	assert.Contains(t, result.RecommendedMissing, "brand")
}

func TestRecomputeFullPipeline(t *testing.T) {
	eng, sessionID := setupTestEngine(t)

	result, err := eng.Recompute(context.Background(), sessionID)
	require.NoError(t, err)

	require.Len(t, result.Stats, 4)
	assert.Equal(t, model.ColumnStat{Name: "color", NonEmpty: 3, Distinct: 4}, result.Stats[2])

	assert.Equal(t, "color", result.ColourColumn)
	assert.Equal(t, []model.ColourCount{
		{Colour: "red", Count: 2, Percent: 66.67},
		{Colour: "blue", Count: 1, Percent: 33.33},
	}, result.Summary)

	require.NotNil(t, result.Resolution)
	assert.Equal(t, model.Coverage{Matched: 2, Total: 4}, result.Resolution.Before.Coverage)
	assert.Equal(t, []model.UnmappedColour{{Value: "blue", Count: 1}}, result.Resolution.Before.Unmapped)
}

func TestDispatchSelectNoneHalts(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	result, err := eng.Dispatch(ctx, sessionID, SelectNone{})
	require.NoError(t, err)

	assert.True(t, result.EmptySelection)
	assert.Nil(t, result.Filtered)
	assert.Nil(t, result.Resolution)
	assert.NotEmpty(t, result.Stats, "stats stay visible while halted")

	// The session stays interactive: selecting again resumes.
	result, err = eng.Dispatch(ctx, sessionID, SelectAll{})
	require.NoError(t, err)
	assert.False(t, result.EmptySelection)
	assert.Equal(t, 4, result.Filtered.NumColumns())
}

func TestDispatchQuickSelectsPersist(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, SelectAll{})
	require.NoError(t, err)
	_, err = eng.Dispatch(ctx, sessionID, InvertSelection{})
	require.NoError(t, err)

	result, err := eng.Recompute(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, result.EmptySelection, "invert of select-all is select-none")

	result, err = eng.Dispatch(ctx, sessionID, SelectRecommended{})
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "color"}, result.Kept)
}

func TestDispatchToggleColumn(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	result, err := eng.Dispatch(ctx, sessionID, ToggleColumn{Column: "size"})
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "color", "size"}, result.Kept)

	_, err = eng.Dispatch(ctx, sessionID, ToggleColumn{Column: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, selection.ErrColumnMismatch))
}

func TestDispatchApplyPickerEdits(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	result, err := eng.Dispatch(ctx, sessionID, ApplyPickerEdits{Edits: []selection.Edit{
		{Column: "id", Keep: true},
		{Column: "title", Keep: true},
		{Column: "color", Keep: false},
		{Column: "size", Keep: false},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "title"}, result.Kept)
	assert.True(t, result.NoColourColumn, "dropping the colour column hides the colour workflow")
	assert.Nil(t, result.Resolution)
	assert.NotNil(t, result.Filtered)

	// A partial re-listing must be rejected without changing state.
	_, err = eng.Dispatch(ctx, sessionID, ApplyPickerEdits{Edits: []selection.Edit{
		{Column: "id", Keep: false},
	}})
	require.Error(t, err)

	after, err := eng.Recompute(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title"}, after.Kept)
}

func TestDispatchSetFilter(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, ToggleColumn{Column: "size"})
	require.NoError(t, err)

	result, err := eng.Dispatch(ctx, sessionID, SetFilter{Column: "size", Values: []string{"M"}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Filtered.NumRows())
	assert.Equal(t, []string{"Shirt", "Hat"}, result.Filtered.Column("title").Cells)
	assert.Equal(t, model.FilterSpec{"size": {"M"}}, result.FilterSpec)

	// Coverage and summary follow the filtered table.
	assert.Equal(t, model.Coverage{Matched: 1, Total: 2}, result.Resolution.Before.Coverage)
}

func TestDispatchSetFilterConjunction(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, SelectAll{})
	require.NoError(t, err)
	_, err = eng.Dispatch(ctx, sessionID, SetFilter{Column: "size", Values: []string{"M", "L"}})
	require.NoError(t, err)

	result, err := eng.Dispatch(ctx, sessionID, SetFilter{Column: "color", Values: []string{"Red", "red "}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Shirt", "Pants"}, result.Filtered.Column("title").Cells)
}

func TestDispatchSetFilterNotFilterable(t *testing.T) {
	eng, sessionID := setupTestEngine(t)

	// size is not kept, so it is not filterable.
	_, err := eng.Dispatch(context.Background(), sessionID, SetFilter{Column: "size", Values: []string{"M"}})
	require.Error(t, err)
}

func TestDispatchClearFilters(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, SelectAll{})
	require.NoError(t, err)
	_, err = eng.Dispatch(ctx, sessionID, SetFilter{Column: "size", Values: []string{"M"}})
	require.NoError(t, err)

	result, err := eng.Dispatch(ctx, sessionID, ClearFilter{Column: "size"})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Filtered.NumRows())

	_, err = eng.Dispatch(ctx, sessionID, SetFilter{Column: "size", Values: []string{"M"}})
	require.NoError(t, err)
	result, err = eng.Dispatch(ctx, sessionID, ClearAllFilters{})
	require.NoError(t, err)
	assert.Empty(t, result.FilterSpec)
	assert.Equal(t, 4, result.Filtered.NumRows())
}

func TestStaleFilterOnDroppedColumnIgnored(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, SelectAll{})
	require.NoError(t, err)
	_, err = eng.Dispatch(ctx, sessionID, SetFilter{Column: "size", Values: []string{"M"}})
	require.NoError(t, err)

	result, err := eng.Dispatch(ctx, sessionID, ToggleColumn{Column: "size"})
	require.NoError(t, err)

	assert.NotContains(t, result.FilterSpec, "size")
	assert.Equal(t, 4, result.Filtered.NumRows(), "choices on dropped columns impose nothing")
}

func TestDispatchAddResolutions(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	result, err := eng.Dispatch(ctx, sessionID, AddResolutions{Edits: []model.ResolutionEdit{
		{Value: "blue", GenericColour: "scarlet"},
	}})
	require.NoError(t, err)

	assert.Equal(t, model.Coverage{Matched: 2, Total: 4}, result.Resolution.Before.Coverage)
	assert.Equal(t, model.Coverage{Matched: 3, Total: 4}, result.Resolution.After.Coverage)
	assert.Empty(t, result.Resolution.After.Unmapped)
	assert.Equal(t, []string{"scarlet", "scarlet", "scarlet", ""},
		result.Resolution.Output.Column("generic_colour").Cells)
}

func TestDispatchAddResolutionsRejectsUnknownGeneric(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, AddResolutions{Edits: []model.ResolutionEdit{
		{Value: "blue", GenericColour: "cobalt"},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mapping.ErrGenericNotAllowed))

	result, err := eng.Recompute(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.Coverage{Matched: 2, Total: 4}, result.Resolution.After.Coverage,
		"rejected edits must not change stored state")
}

func TestDispatchRemoveResolution(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, AddResolutions{Edits: []model.ResolutionEdit{
		{Value: "blue", GenericColour: "scarlet"},
	}})
	require.NoError(t, err)

	result, err := eng.Dispatch(ctx, sessionID, RemoveResolution{Value: "blue"})
	require.NoError(t, err)
	assert.Equal(t, model.Coverage{Matched: 2, Total: 4}, result.Resolution.After.Coverage)
	assert.Equal(t, []model.UnmappedColour{{Value: "blue", Count: 1}}, result.Resolution.After.Unmapped)
}

func TestSessionsDoNotShareState(t *testing.T) {
	store, err := storage.NewSQLiteStorage(storage.InMemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	eng := New(store, testFeed(), testMapping(t))
	first, err := eng.NewSession(ctx, "feed.tsv")
	require.NoError(t, err)
	second, err := eng.NewSession(ctx, "feed.tsv")
	require.NoError(t, err)

	_, err = eng.Dispatch(ctx, first.ID, SelectNone{})
	require.NoError(t, err)

	result, err := eng.Recompute(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, result.EmptySelection, "another session's edits must not leak")
}

func TestColourColumnOverride(t *testing.T) {
	store, err := storage.NewSQLiteStorage(storage.InMemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	config := DefaultConfig()
	config.ColourColumn = "size"
	eng := NewWithConfig(store, testFeed(), testMapping(t), config)

	session, err := eng.NewSession(ctx, "feed.tsv")
	require.NoError(t, err)
	_, err = eng.Dispatch(ctx, session.ID, SelectAll{})
	require.NoError(t, err)

	result, err := eng.Recompute(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "size", result.ColourColumn)
}

func TestRecomputeIsDeterministic(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	first, err := eng.Recompute(ctx, sessionID)
	require.NoError(t, err)
	second, err := eng.Recompute(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFilterOptionsComputedOnRawTable(t *testing.T) {
	eng, sessionID := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.Dispatch(ctx, sessionID, SelectAll{})
	require.NoError(t, err)

	before, err := eng.Recompute(ctx, sessionID)
	require.NoError(t, err)

	// Filtering down to M rows must not shrink the size options.
	after, err := eng.Dispatch(ctx, sessionID, SetFilter{Column: "size", Values: []string{"M"}})
	require.NoError(t, err)

	var sizeBefore, sizeAfter filter.Option
	for _, opt := range before.FilterOptions {
		if opt.Column == "size" {
			sizeBefore = opt
		}
	}
	for _, opt := range after.FilterOptions {
		if opt.Column == "size" {
			sizeAfter = opt
		}
	}
	assert.Equal(t, sizeBefore.Values, sizeAfter.Values)
	assert.Equal(t, []string{"L", "M", "S"}, sizeAfter.Values)
}
