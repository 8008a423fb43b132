package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

// ResolveMode represents the current mode of the resolve view.
type ResolveMode int

// Resolve modes.
const (
	ResolveModeList ResolveMode = iota
	ResolveModePick
)

// ResolveModel manages the colour resolution view.
type ResolveModel struct {
	theme      themes.Theme
	unmapped   []model.UnmappedColour
	vocabulary []string
	edits      []model.ResolutionEdit
	progress   progress.Model
	mode       ResolveMode
	cursor     int
	pick       int
	width      int
	height     int
}

// NewResolve creates a colour resolution view.
func NewResolve(theme themes.Theme) ResolveModel {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)

	return ResolveModel{
		theme:    theme,
		progress: p,
		width:    80,
		height:   24,
	}
}

// SetState replaces the unmapped colours, the offered vocabulary and the
// recorded edits.
func (m *ResolveModel) SetState(unmapped []model.UnmappedColour, vocabulary []string, edits []model.ResolutionEdit) {
	m.unmapped = unmapped
	m.vocabulary = vocabulary
	m.edits = edits

	if m.cursor >= len(unmapped) {
		m.cursor = max(0, len(unmapped)-1)
	}
	if m.pick >= len(vocabulary) {
		m.pick = max(0, len(vocabulary)-1)
	}
	if m.mode == ResolveModePick && len(unmapped) == 0 {
		m.mode = ResolveModeList
	}
}

// Mode returns the current resolve mode.
func (m ResolveModel) Mode() ResolveMode {
	return m.mode
}

// Cursor returns the unmapped colour under the cursor.
func (m ResolveModel) Cursor() (model.UnmappedColour, bool) {
	if m.cursor < 0 || m.cursor >= len(m.unmapped) {
		return model.UnmappedColour{}, false
	}
	return m.unmapped[m.cursor], true
}

// Update handles messages.
func (m ResolveModel) Update(msg tea.Msg) (ResolveModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case ResolveModeList:
			cmd := m.handleListMode(msg)
			return m, cmd
		case ResolveModePick:
			cmd := m.handlePickMode(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
	}

	return m, nil
}

// handleListMode handles key presses while browsing unmapped colours.
func (m *ResolveModel) handleListMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, len(m.unmapped)-1)

	case "k", "up":
		m.cursor = max(m.cursor-1, 0)

	case "g", "home":
		m.cursor = 0

	case "G", "end":
		m.cursor = max(0, len(m.unmapped)-1)

	case "enter", " ":
		if m.cursor < len(m.unmapped) && len(m.vocabulary) > 0 {
			m.mode = ResolveModePick
			m.pick = 0
		}

	case "u":
		if len(m.edits) > 0 {
			last := m.edits[len(m.edits)-1].Value
			return func() tea.Msg {
				return UndoResolutionMsg{Value: last}
			}
		}
	}

	return nil
}

// handlePickMode handles key presses while picking a generic colour.
func (m *ResolveModel) handlePickMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		m.pick = min(m.pick+1, len(m.vocabulary)-1)

	case "k", "up":
		m.pick = max(m.pick-1, 0)

	case "g", "home":
		m.pick = 0

	case "G", "end":
		m.pick = max(0, len(m.vocabulary)-1)

	case "enter", " ":
		if m.cursor < len(m.unmapped) && m.pick < len(m.vocabulary) {
			value := m.unmapped[m.cursor].Value
			generic := m.vocabulary[m.pick]
			m.mode = ResolveModeList
			return func() tea.Msg {
				return ResolveColourMsg{Value: value, Generic: generic}
			}
		}

	case "esc":
		m.mode = ResolveModeList
	}

	return nil
}

// View renders the resolve view.
func (m ResolveModel) View() string {
	if m.height < 10 {
		return "Terminal too small"
	}

	if m.mode == ResolveModePick {
		return m.renderPickView()
	}
	return m.renderListView()
}

// renderListView renders the unmapped colours and the recorded edits.
func (m ResolveModel) renderListView() string {
	title := m.theme.Title.Render("Resolve Colours")

	resolved := len(m.edits)
	total := resolved + len(m.unmapped)

	sections := []string{title}

	if total == 0 {
		sections = append(sections, m.theme.StatusSuccess.Render("Every colour already has a generic name."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	status := fmt.Sprintf("%d of %d colours resolved", resolved, total)
	sections = append(sections, m.theme.Subtitle.Render(status))
	sections = append(sections, m.progress.ViewAs(float64(resolved)/float64(total)), "")

	if len(m.unmapped) == 0 {
		sections = append(sections, m.theme.StatusSuccess.Render("All remaining colours are mapped."))
	} else {
		visible := max(3, m.height-12-min(len(m.edits), 5))
		start := 0
		if m.cursor >= visible {
			start = m.cursor - visible + 1
		}
		end := min(start+visible, len(m.unmapped))

		for i := start; i < end; i++ {
			u := m.unmapped[i]
			line := fmt.Sprintf("  %s (%d products)", truncate(u.Value, 40), u.Count)
			if i == m.cursor {
				line = m.theme.Selected.Render(fmt.Sprintf("▸ %s (%d products)", truncate(u.Value, 40), u.Count))
			}
			sections = append(sections, line)
		}
	}

	if len(m.edits) > 0 {
		sections = append(sections, "", m.theme.Bold.Render("Edits"))
		shown := m.edits
		if len(shown) > 5 {
			shown = shown[len(shown)-5:]
		}
		for _, e := range shown {
			line := fmt.Sprintf("  %s %s → %s", themes.GetSwatch(e.GenericColour), e.Value, e.GenericColour)
			sections = append(sections, m.theme.Normal.Render(line))
		}
	}

	hints := []string{
		"[Enter] Map colour",
		"[u] Undo last edit",
		"[Tab] Done",
	}
	sections = append(sections, "", lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(hints, "  ")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPickView renders the vocabulary for the colour under the cursor.
func (m ResolveModel) renderPickView() string {
	u := m.unmapped[m.cursor]

	title := m.theme.Title.Render(fmt.Sprintf("Map %q", u.Value))
	subtitle := m.theme.Subtitle.Render(fmt.Sprintf("%d products carry this colour", u.Count))

	visible := max(3, m.height-7)
	start := 0
	if m.pick >= visible {
		start = m.pick - visible + 1
	}
	end := min(start+visible, len(m.vocabulary))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		g := m.vocabulary[i]
		line := fmt.Sprintf("  %s %s", themes.GetSwatch(g), g)
		if i == m.pick {
			line = m.theme.Selected.Render(fmt.Sprintf("▸ %s %s", themes.GetSwatch(g), g))
		}
		lines = append(lines, line)
	}

	hints := []string{
		"[Enter] Confirm",
		"[Esc] Cancel",
	}
	footer := lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(hints, "  "))

	sections := []string{title, subtitle}
	sections = append(sections, lines...)
	sections = append(sections, "", footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Resize updates the component size.
func (m *ResolveModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = max(20, min(60, width-8))
}
