package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

func testResolve() ResolveModel {
	r := NewResolve(themes.Default)
	r.SetState(
		[]model.UnmappedColour{{Value: "blue", Count: 3}, {Value: "teal", Count: 1}},
		[]string{"green", "navy", "red"},
		nil,
	)
	return r
}

func TestResolveEnterOpensPick(t *testing.T) {
	r := testResolve()
	require.Equal(t, ResolveModeList, r.Mode())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ResolveModePick, r.Mode())

	view := r.View()
	assert.Contains(t, view, `Map "blue"`)
	assert.Contains(t, view, "3 products carry this colour")
	assert.Contains(t, view, "navy")
}

func TestResolvePickEmitsEdit(t *testing.T) {
	r := testResolve()

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyDown})
	r, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, ResolveColourMsg{Value: "blue", Generic: "navy"}, cmd())
	assert.Equal(t, ResolveModeList, r.Mode())
}

func TestResolvePickSecondColour(t *testing.T) {
	r := testResolve()

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyDown})
	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	r, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, ResolveColourMsg{Value: "teal", Generic: "green"}, cmd())
	assert.Equal(t, ResolveModeList, r.Mode())
}

func TestResolveEscCancelsPick(t *testing.T) {
	r := testResolve()

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	r, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.Equal(t, ResolveModeList, r.Mode())
}

func TestResolveUndoEmitsLastEdit(t *testing.T) {
	r := NewResolve(themes.Default)
	r.SetState(
		[]model.UnmappedColour{{Value: "cyan", Count: 1}},
		[]string{"blue"},
		[]model.ResolutionEdit{
			{Value: "crimson", GenericColour: "red"},
			{Value: "azure", GenericColour: "blue"},
		},
	)

	_, cmd := r.Update(keyRunes("u"))
	require.NotNil(t, cmd)
	assert.Equal(t, UndoResolutionMsg{Value: "azure"}, cmd())
}

func TestResolveUndoWithoutEdits(t *testing.T) {
	r := testResolve()

	_, cmd := r.Update(keyRunes("u"))
	assert.Nil(t, cmd)
}

func TestResolveEnterWithoutVocabulary(t *testing.T) {
	r := NewResolve(themes.Default)
	r.SetState([]model.UnmappedColour{{Value: "blue", Count: 3}}, nil, nil)

	r, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, ResolveModeList, r.Mode())
}

func TestResolveViewProgress(t *testing.T) {
	r := NewResolve(themes.Default)
	r.SetState(
		[]model.UnmappedColour{{Value: "cyan", Count: 1}},
		[]string{"blue"},
		[]model.ResolutionEdit{{Value: "azure", GenericColour: "blue"}},
	)

	view := r.View()
	assert.Contains(t, view, "1 of 2 colours resolved")
	assert.Contains(t, view, "cyan (1 products)")
	assert.Contains(t, view, "azure → blue")
}

func TestResolveViewAllResolved(t *testing.T) {
	r := NewResolve(themes.Default)
	r.SetState(nil, []string{"blue"}, []model.ResolutionEdit{{Value: "azure", GenericColour: "blue"}})

	view := r.View()
	assert.Contains(t, view, "All remaining colours are mapped.")
}

func TestResolveViewNothingToResolve(t *testing.T) {
	r := NewResolve(themes.Default)
	r.SetState(nil, []string{"blue"}, nil)

	view := r.View()
	assert.Contains(t, view, "Every colour already has a generic name.")
}

func TestResolveSetStateClampsCursor(t *testing.T) {
	r := testResolve()

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyDown})
	cursor, ok := r.Cursor()
	require.True(t, ok)
	assert.Equal(t, "teal", cursor.Value)

	r.SetState([]model.UnmappedColour{{Value: "blue", Count: 3}}, []string{"green"}, nil)
	cursor, ok = r.Cursor()
	require.True(t, ok)
	assert.Equal(t, "blue", cursor.Value)
}
