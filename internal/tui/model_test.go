package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/export"
	"github.com/feedtailor/feedtailor/internal/mapping"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/storage"
	"github.com/feedtailor/feedtailor/internal/tui/components"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setupTestModel(t *testing.T) Model {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.InMemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	feed := model.NewTable(
		[]string{"id", "title", "color", "size"},
		[][]string{
			{"1", "Shirt", "Red", "M"},
			{"2", "Pants", "red ", "L"},
			{"3", "Hat", "BLUE", "M"},
			{"4", "Socks", "", "S"},
		},
	)
	base := mapping.NewTable()
	base.Add("red", "scarlet")

	eng := engine.New(store, feed, base)
	session, err := eng.NewSession(ctx, "feed.tsv")
	require.NoError(t, err)

	exporter, err := export.NewWriter(t.TempDir())
	require.NoError(t, err)

	cfg := defaultConfig()
	cfg.Engine = eng
	cfg.SessionID = session.ID
	cfg.Exporter = exporter

	m := newModel(ctx, cfg)
	return applyCmd(t, m, m.Init())
}

// applyCmd runs commands synchronously, feeding their messages back until
// the model settles.
func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return m
		}
		if _, quit := msg.(tea.QuitMsg); quit {
			return m
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

// press sends one key and applies everything it triggers.
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()

	next, cmd := m.Update(msg)
	return applyCmd(t, next.(Model), cmd)
}

func TestModelInitLoadsSession(t *testing.T) {
	m := setupTestModel(t)

	require.True(t, m.ready)
	require.NotNil(t, m.result)
	assert.Equal(t, StatePicker, m.state)
	assert.Equal(t, []string{"title", "color"}, m.result.Kept)
}

func TestModelWalkthroughStates(t *testing.T) {
	m := setupTestModel(t)
	tab := tea.KeyMsg{Type: tea.KeyTab}
	shiftTab := tea.KeyMsg{Type: tea.KeyShiftTab}

	m = press(t, m, tab)
	assert.Equal(t, StateFilters, m.state)

	m = press(t, m, tab)
	assert.Equal(t, StateReview, m.state)

	m = press(t, m, tab)
	assert.Equal(t, StateResolve, m.state)

	m = press(t, m, tab)
	assert.Equal(t, StateDone, m.state)

	m = press(t, m, tab)
	assert.Equal(t, StateDone, m.state)

	m = press(t, m, shiftTab)
	assert.Equal(t, StateResolve, m.state)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateReview, m.state)
}

func TestModelToggleDispatchesEngineEvent(t *testing.T) {
	m := setupTestModel(t)

	// The cursor starts on "id", which is not kept.
	m = press(t, m, keyRunes(" "))

	require.NotNil(t, m.result)
	assert.True(t, m.result.Selection["id"])
	assert.Equal(t, []string{"id", "title", "color"}, m.result.Kept)
}

func TestModelEmptySelectionHoldsPicker(t *testing.T) {
	m := setupTestModel(t)

	m = press(t, m, keyRunes("n"))
	require.True(t, m.result.EmptySelection)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StatePicker, m.state)
	assert.Contains(t, m.View(), "No columns kept.")

	// Selecting the recommended set resumes the walkthrough.
	m = press(t, m, keyRunes("r"))
	require.False(t, m.result.EmptySelection)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StateFilters, m.state)
}

func TestModelResolveFlow(t *testing.T) {
	m := setupTestModel(t)
	tab := tea.KeyMsg{Type: tea.KeyTab}
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	m = press(t, m, tab)
	m = press(t, m, tab)
	m = press(t, m, tab)
	require.Equal(t, StateResolve, m.state)

	// "blue" is the only unmapped colour; "scarlet" the only generic.
	m = press(t, m, enter)
	m = press(t, m, enter)

	require.Len(t, m.result.Edits, 1)
	assert.Equal(t, model.ResolutionEdit{Value: "blue", GenericColour: "scarlet"}, m.result.Edits[0])
	assert.Empty(t, m.result.Resolution.After.Unmapped)

	m = press(t, m, keyRunes("u"))
	assert.Empty(t, m.result.Edits)
	assert.Len(t, m.result.Resolution.After.Unmapped, 1)
}

func TestModelExportKey(t *testing.T) {
	m := setupTestModel(t)

	m = press(t, m, keyRunes("e"))

	assert.Equal(t, StateDone, m.state)
	assert.Len(t, m.exported, 5)
	assert.Contains(t, m.View(), "Exported 5 files")
}

func TestModelExportHaltedSelection(t *testing.T) {
	m := setupTestModel(t)

	m = press(t, m, keyRunes("n"))
	require.True(t, m.result.EmptySelection)

	m = press(t, m, keyRunes("e"))
	assert.Empty(t, m.exported)
	assert.Equal(t, StatePicker, m.state)
}

func TestModelErrorBanner(t *testing.T) {
	m := setupTestModel(t)

	next, cmd := m.Update(components.ResolveColourMsg{Value: "blue", Generic: "cobalt"})
	m = applyCmd(t, next.(Model), cmd)

	require.Error(t, m.lastError)
	assert.ErrorIs(t, m.lastError, mapping.ErrGenericNotAllowed)
	assert.Contains(t, m.View(), "updating session")
}

func TestModelHelpToggle(t *testing.T) {
	m := setupTestModel(t)

	m = press(t, m, keyRunes("?"))
	assert.Equal(t, StateHelp, m.state)
	assert.Contains(t, m.View(), "Help")

	m = press(t, m, keyRunes("?"))
	assert.Equal(t, StatePicker, m.state)
}

func TestModelQuitKey(t *testing.T) {
	m := setupTestModel(t)

	next, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, next.(Model).quitting)
}

func TestModelDroppedColourColumnSkipsResolve(t *testing.T) {
	m := setupTestModel(t)

	// Drop "color" from the selection: move the cursor onto it and toggle.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, keyRunes(" "))
	require.True(t, m.result.NoColourColumn)

	tab := tea.KeyMsg{Type: tea.KeyTab}
	m = press(t, m, tab)
	m = press(t, m, tab)
	require.Equal(t, StateReview, m.state)
	assert.Contains(t, m.View(), "No colour column")

	m = press(t, m, tab)
	assert.Equal(t, StateDone, m.state)
}
