package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/feedtailor/feedtailor/internal/engine"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/tui/components"
	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

// State represents the current screen of the walkthrough.
type State int

const (
	StatePicker State = iota
	StateFilters
	StateReview
	StateResolve
	StateDone
	StateHelp
)

// Model holds the main TUI state.
type Model struct {
	ctx       context.Context
	theme     themes.Theme
	startTime time.Time
	engine    *engine.Engine
	result    *engine.Result
	lastError error
	errorCtx  string
	picker    components.PickerModel
	filters   components.FiltersModel
	resolve   components.ResolveModel
	config    Config
	keymap    KeyMap
	sessionID string
	exported  []string
	prevState State
	height    int
	width     int
	state     State
	quitting  bool
	exporting bool
	ready     bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	return Model{
		ctx:       ctx,
		state:     StatePicker,
		config:    cfg,
		keymap:    DefaultKeyMap(),
		theme:     cfg.Theme,
		engine:    cfg.Engine,
		sessionID: cfg.SessionID,
		startTime: time.Now(),
		picker:    components.NewPicker(cfg.Theme),
		filters:   components.NewFilters(cfg.Theme),
		resolve:   components.NewResolve(cfg.Theme),
		width:     cfg.Width,
		height:    cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.recompute()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKeys(msg); handled {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()

	case resultMsg:
		m.result = msg.result
		m.lastError = nil
		m.ready = true
		m.refreshComponents()
		m.reconcileState()

	case exportDoneMsg:
		m.exporting = false
		m.exported = msg.paths
		m.state = StateDone

	case errorMsg:
		m.exporting = false
		m.lastError = msg.err
		m.errorCtx = msg.context

	// Component messages become engine events.
	case components.ToggleColumnMsg:
		return m, m.dispatch(engine.ToggleColumn{Column: msg.Column})

	case components.QuickSelectMsg:
		return m, m.dispatch(quickSelectEvent(msg.Action))

	case components.ApplyFilterMsg:
		return m, m.dispatch(engine.SetFilter{Column: msg.Column, Values: msg.Values})

	case components.ClearFilterMsg:
		return m, m.dispatch(engine.ClearFilter{Column: msg.Column})

	case components.ClearAllFiltersMsg:
		return m, m.dispatch(engine.ClearAllFilters{})

	case components.ResolveColourMsg:
		return m, m.dispatch(engine.AddResolutions{
			Edits: []model.ResolutionEdit{{Value: msg.Value, GenericColour: msg.Generic}},
		})

	case components.UndoResolutionMsg:
		return m, m.dispatch(engine.RemoveResolution{Value: msg.Value})
	}

	// Delegate to the active component.
	switch m.state {
	case StatePicker:
		newPicker, cmd := m.picker.Update(msg)
		m.picker = newPicker
		cmds = append(cmds, cmd)

	case StateFilters:
		newFilters, cmd := m.filters.Update(msg)
		m.filters = newFilters
		cmds = append(cmds, cmd)

	case StateResolve:
		newResolve, cmd := m.resolve.Update(msg)
		m.resolve = newResolve
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleGlobalKeys handles keys that work in any state. The bool reports
// whether the key was consumed.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true

	case "q":
		if m.editing() {
			return m, nil, false
		}
		m.quitting = true
		return m, tea.Quit, true

	case "?":
		if m.editing() {
			return m, nil, false
		}
		if m.state == StateHelp {
			m.state = m.prevState
		} else {
			m.prevState = m.state
			m.state = StateHelp
		}
		return m, nil, true

	case "ctrl+l":
		return m, tea.ClearScreen, true

	case "tab":
		if m.editing() || m.state == StateHelp {
			return m, nil, false
		}
		m.state = m.nextState()
		return m, nil, true

	case "shift+tab":
		if m.editing() || m.state == StateHelp {
			return m, nil, false
		}
		m.state = m.previousState()
		return m, nil, true

	case "esc":
		if m.editing() {
			return m, nil, false
		}
		if m.state == StateHelp {
			m.state = m.prevState
		} else {
			m.state = m.previousState()
		}
		return m, nil, true

	case "e":
		if m.editing() {
			return m, nil, false
		}
		return m.startExport()
	}

	return m, nil, false
}

// editing reports whether a component owns the keyboard right now.
func (m Model) editing() bool {
	switch m.state {
	case StateFilters:
		return m.filters.Mode() == components.FiltersModeValues
	case StateResolve:
		return m.resolve.Mode() == components.ResolveModePick
	default:
		return false
	}
}

// nextState returns the screen that follows the current one. The picker
// holds the walkthrough while no column is kept, and the resolve screen is
// skipped when no colour column survives the selection.
func (m Model) nextState() State {
	switch m.state {
	case StatePicker:
		if m.result == nil || m.result.EmptySelection {
			return StatePicker
		}
		return StateFilters
	case StateFilters:
		return StateReview
	case StateReview:
		if m.result != nil && m.result.NoColourColumn {
			return StateDone
		}
		return StateResolve
	case StateResolve:
		return StateDone
	default:
		return m.state
	}
}

// previousState returns the screen that precedes the current one.
func (m Model) previousState() State {
	switch m.state {
	case StateFilters:
		return StatePicker
	case StateReview:
		return StateFilters
	case StateResolve:
		return StateReview
	case StateDone:
		if m.result != nil && m.result.NoColourColumn {
			return StateReview
		}
		return StateResolve
	default:
		return m.state
	}
}

// reconcileState moves off screens the latest result no longer supports.
func (m *Model) reconcileState() {
	if m.result == nil {
		return
	}
	if m.result.EmptySelection && m.state != StatePicker && m.state != StateHelp {
		m.state = StatePicker
		return
	}
	if m.result.NoColourColumn && m.state == StateResolve {
		m.state = StateReview
	}
}

// refreshComponents pushes the latest result into every component.
func (m *Model) refreshComponents() {
	r := m.result

	rec := make(map[string]bool, len(r.RecommendedPresent))
	for _, name := range r.RecommendedPresent {
		rec[name] = true
	}

	rows := make([]components.PickerRow, 0, len(r.Stats))
	for _, stat := range r.Stats {
		rows = append(rows, components.PickerRow{
			Stat:        stat,
			Kept:        r.Selection[stat.Name],
			Recommended: rec[stat.Name],
		})
	}
	m.picker.SetRows(rows)

	m.filters.SetOptions(r.FilterOptions, r.FilterSpec)

	if r.Resolution != nil {
		m.resolve.SetState(r.Resolution.After.Unmapped, m.engine.Vocabulary(), r.Edits)
	} else {
		m.resolve.SetState(nil, m.engine.Vocabulary(), r.Edits)
	}
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	contentHeight := max(8, m.height-4)
	m.picker.Resize(m.width-2, contentHeight)
	m.filters.Resize(m.width-2, contentHeight)
	m.resolve.Resize(m.width-2, contentHeight)
}

// recompute loads the session state without changing it.
func (m Model) recompute() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Recompute(m.ctx, m.sessionID)
		if err != nil {
			return errorMsg{err: err, context: "loading session"}
		}
		return resultMsg{result: result}
	}
}

// dispatch applies one engine event and refreshes from the new result.
func (m Model) dispatch(event engine.Event) tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Dispatch(m.ctx, m.sessionID, event)
		if err != nil {
			return errorMsg{err: err, context: "updating session"}
		}
		return resultMsg{result: result}
	}
}

// startExport writes the artifacts for the current result.
func (m Model) startExport() (Model, tea.Cmd, bool) {
	if m.exporting || m.config.Exporter == nil {
		return m, nil, true
	}
	if m.result == nil || m.result.EmptySelection {
		return m, nil, true
	}

	m.exporting = true
	result := m.result
	exporter := m.config.Exporter

	return m, func() tea.Msg {
		paths, err := exporter.WriteAll(result)
		if err != nil {
			return errorMsg{err: err, context: "exporting files"}
		}
		return exportDoneMsg{paths: paths}
	}, true
}

// quickSelectEvent translates a picker shortcut into an engine event.
func quickSelectEvent(action components.QuickSelectAction) engine.Event {
	switch action {
	case components.QuickAll:
		return engine.SelectAll{}
	case components.QuickNone:
		return engine.SelectNone{}
	case components.QuickInvert:
		return engine.InvertSelection{}
	default:
		return engine.SelectRecommended{}
	}
}
