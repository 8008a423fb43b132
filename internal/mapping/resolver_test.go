package mapping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedtailor/feedtailor/internal/model"
)

func baseMapping(t *testing.T, entries ...[2]string) *Table {
	t.Helper()
	tbl := NewTable()
	for _, e := range entries {
		tbl.Add(e[0], e[1])
	}
	return tbl
}

func colourTable(cells ...string) *model.Table {
	rows := make([][]string, len(cells))
	for i, c := range cells {
		rows[i] = []string{c}
	}
	return model.NewTable([]string{"colour"}, rows)
}

func TestDetectColourColumn(t *testing.T) {
	candidates := []string{"generic_colour", "product_colour", "color", "colour"}

	tests := []struct {
		name    string
		columns []string
		want    string
		wantOK  bool
	}{
		{
			name:    "first candidate wins",
			columns: []string{"colour", "generic_colour", "title"},
			want:    "generic_colour",
			wantOK:  true,
		},
		{
			name:    "falls through candidate order",
			columns: []string{"title", "colour"},
			want:    "colour",
			wantOK:  true,
		},
		{
			name:    "exact name match only",
			columns: []string{"Colour", "COLOR"},
			wantOK:  false,
		},
		{
			name:    "none present",
			columns: []string{"title", "price"},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, len(tt.columns))
			table := model.NewTable(tt.columns, [][]string{row})

			got, ok := DetectColourColumn(table, candidates)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoin(t *testing.T) {
	base := baseMapping(t, [2]string{"red", "scarlet"}, [2]string{"navy", "blue"})
	table := colourTable("Red", "red ", "BLUE", "", "navy", "blue")

	result, err := Join(base, table, "colour")
	require.NoError(t, err)

	assert.Equal(t, model.Coverage{Matched: 3, Total: 6}, result.Coverage)
	assert.Equal(t, []string{"scarlet", "scarlet", "", "", "blue", ""}, result.Generic)
	assert.Equal(t, []model.UnmappedColour{{Value: "blue", Count: 2}}, result.Unmapped)
}

func TestJoinEmptyValuesNeverUnmapped(t *testing.T) {
	base := baseMapping(t, [2]string{"red", "scarlet"})
	table := colourTable("", "  ", "red")

	result, err := Join(base, table, "colour")
	require.NoError(t, err)

	assert.Equal(t, model.Coverage{Matched: 1, Total: 3}, result.Coverage)
	assert.Empty(t, result.Unmapped)
}

func TestJoinUnmappedOrder(t *testing.T) {
	base := baseMapping(t, [2]string{"red", "scarlet"})
	table := colourTable("teal", "amber", "teal", "blue", "amber", "zinc")

	result, err := Join(base, table, "colour")
	require.NoError(t, err)

	assert.Equal(t, []model.UnmappedColour{
		{Value: "amber", Count: 2},
		{Value: "teal", Count: 2},
		{Value: "blue", Count: 1},
		{Value: "zinc", Count: 1},
	}, result.Unmapped)
}

func TestJoinMissingColumn(t *testing.T) {
	base := baseMapping(t, [2]string{"red", "scarlet"})

	_, err := Join(base, colourTable("red"), "shade")
	require.Error(t, err)
}

func TestValidateEdit(t *testing.T) {
	resolver := NewResolver(baseMapping(t,
		[2]string{"crimson", "red"},
		[2]string{"navy", "blue"},
	))

	tests := []struct {
		name    string
		edit    model.ResolutionEdit
		wantErr error
	}{
		{
			name: "allowed generic",
			edit: model.ResolutionEdit{Value: "teal", GenericColour: "blue"},
		},
		{
			name: "generic normalized before checking",
			edit: model.ResolutionEdit{Value: "teal", GenericColour: " BLUE "},
		},
		{
			name:    "unknown generic rejected",
			edit:    model.ResolutionEdit{Value: "teal", GenericColour: "turquoise"},
			wantErr: ErrGenericNotAllowed,
		},
		{
			name:    "empty value rejected",
			edit:    model.ResolutionEdit{Value: "  ", GenericColour: "blue"},
			wantErr: ErrEmptyEditValue,
		},
		{
			name:    "empty generic rejected",
			edit:    model.ResolutionEdit{Value: "teal", GenericColour: ""},
			wantErr: ErrGenericNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolver.ValidateEdit(tt.edit)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestMergeEditsPrecedence(t *testing.T) {
	resolver := NewResolver(baseMapping(t, [2]string{"red", "crimson"}))

	merged := resolver.MergeEdits([]model.ResolutionEdit{
		{Value: "red", GenericColour: "scarlet"},
	})

	generic, ok := merged.Lookup("red")
	assert.True(t, ok)
	assert.Equal(t, "scarlet", generic, "edit must override the base entry")
	assert.Equal(t, 1, merged.Len())
}

func TestMergeEditsFirstEditWins(t *testing.T) {
	resolver := NewResolver(baseMapping(t, [2]string{"crimson", "red"}))

	merged := resolver.MergeEdits([]model.ResolutionEdit{
		{Value: "teal", GenericColour: "red"},
		{Value: "TEAL", GenericColour: "red"},
	})

	generic, _ := merged.Lookup("teal")
	assert.Equal(t, "red", generic)
	assert.Equal(t, 2, merged.Len())
}

func TestMergeEditsKeepsBaseOrder(t *testing.T) {
	resolver := NewResolver(baseMapping(t,
		[2]string{"crimson", "red"},
		[2]string{"navy", "blue"},
	))

	merged := resolver.MergeEdits([]model.ResolutionEdit{
		{Value: "teal", GenericColour: "blue"},
	})

	assert.Equal(t, []model.MappingEntry{
		{ProductColour: "teal", GenericColour: "blue"},
		{ProductColour: "crimson", GenericColour: "red"},
		{ProductColour: "navy", GenericColour: "blue"},
	}, merged.Entries())
}

func TestResolveEndToEnd(t *testing.T) {
	// Colours Red / red / BLUE / <empty> against a base mapping that
	// only explains red.
	table := colourTable("Red", "red ", "BLUE", "")
	resolver := NewResolver(baseMapping(t, [2]string{"red", "scarlet"}))

	summary, err := Summary(table, "colour")
	require.NoError(t, err)
	assert.Equal(t, []model.ColourCount{
		{Colour: "red", Count: 2, Percent: 66.67},
		{Colour: "blue", Count: 1, Percent: 33.33},
	}, summary)

	res, err := resolver.Resolve(table, "colour", nil)
	require.NoError(t, err)
	assert.Equal(t, model.Coverage{Matched: 2, Total: 4}, res.Before.Coverage)
	assert.Equal(t, []model.UnmappedColour{{Value: "blue", Count: 1}}, res.Before.Unmapped)

	// Resolving blue to the only allowed generic lifts coverage to
	// three of four rows; the empty colour stays in the denominator.
	res, err = resolver.Resolve(table, "colour", []model.ResolutionEdit{
		{Value: "blue", GenericColour: "scarlet"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Coverage{Matched: 3, Total: 4}, res.After.Coverage)
	assert.Empty(t, res.After.Unmapped)

	assert.Equal(t, []string{"colour", "generic_colour"}, res.Output.ColumnNames())
	assert.Equal(t, []string{"scarlet", "scarlet", "scarlet", ""}, res.Output.Column("generic_colour").Cells)

	assert.Equal(t, []model.MappingEntry{
		{ProductColour: "blue", GenericColour: "scarlet"},
		{ProductColour: "red", GenericColour: "scarlet"},
	}, res.Updated.Entries())
}

func TestResolveCoverageMonotonic(t *testing.T) {
	table := colourTable("red", "blue", "teal", "blue", "")
	resolver := NewResolver(baseMapping(t, [2]string{"red", "crimson"}))

	baseline, err := resolver.Resolve(table, "colour", nil)
	require.NoError(t, err)

	editSets := [][]model.ResolutionEdit{
		{{Value: "blue", GenericColour: "crimson"}},
		{{Value: "teal", GenericColour: "crimson"}},
		{
			{Value: "blue", GenericColour: "crimson"},
			{Value: "teal", GenericColour: "crimson"},
		},
	}

	for _, edits := range editSets {
		res, err := resolver.Resolve(table, "colour", edits)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.After.Coverage.Matched, baseline.Before.Coverage.Matched)
		assert.Equal(t, baseline.Before.Coverage.Total, res.After.Coverage.Total)
	}
}

func TestResolveRejectsInvalidEdit(t *testing.T) {
	table := colourTable("red", "blue")
	resolver := NewResolver(baseMapping(t, [2]string{"red", "crimson"}))

	_, err := resolver.Resolve(table, "colour", []model.ResolutionEdit{
		{Value: "blue", GenericColour: "cobalt"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenericNotAllowed))
}

func TestResolveOutputNameCollision(t *testing.T) {
	table := model.NewTable(
		[]string{"generic_colour"},
		[][]string{{"red"}, {"blue"}},
	)
	resolver := NewResolver(baseMapping(t, [2]string{"red", "crimson"}))

	res, err := resolver.Resolve(table, "generic_colour", nil)
	require.NoError(t, err)

	assert.Equal(t, OutputColumnFallback, res.OutputName)
	assert.Equal(t, []string{"generic_colour", "generic_colour_mapped"}, res.Output.ColumnNames())
}

func TestSummaryEmptyColumn(t *testing.T) {
	summary, err := Summary(colourTable("", "  ", ""), "colour")
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestSummaryMissingColumn(t *testing.T) {
	_, err := Summary(colourTable("red"), "shade")
	require.Error(t, err)
}
