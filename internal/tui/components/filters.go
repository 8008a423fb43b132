package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feedtailor/feedtailor/internal/filter"
	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

// FiltersMode represents the current mode of the filter view.
type FiltersMode int

// Filter modes.
const (
	FiltersModeColumns FiltersMode = iota
	FiltersModeValues
)

// FiltersModel manages the row filter view.
type FiltersModel struct {
	theme   themes.Theme
	options []filter.Option
	spec    model.FilterSpec
	checked map[string]bool
	table   table.Model
	mode    FiltersMode
	editing int
	cursor  int
	width   int
	height  int
}

// NewFilters creates a row filter view.
func NewFilters(theme themes.Theme) FiltersModel {
	columns := []table.Column{
		{Title: "Column", Width: 24},
		{Title: "Values", Width: 8},
		{Title: "Active", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	m := FiltersModel{
		theme:  theme,
		spec:   model.FilterSpec{},
		table:  t,
		width:  80,
		height: 24,
	}
	m.updateColumnWidths()

	return m
}

// SetOptions replaces the offered filters and the active allow-lists.
func (m *FiltersModel) SetOptions(options []filter.Option, spec model.FilterSpec) {
	m.options = options
	m.spec = spec.Clone()
	if m.spec == nil {
		m.spec = model.FilterSpec{}
	}
	m.table.SetRows(m.buildTableRows())
	if c := m.table.Cursor(); c >= len(options) {
		m.table.SetCursor(max(0, len(options)-1))
	}

	// The column being edited can disappear when the selection changes.
	if m.mode == FiltersModeValues && m.editing >= len(options) {
		m.mode = FiltersModeColumns
	}
}

// Mode returns the current filter mode.
func (m FiltersModel) Mode() FiltersMode {
	return m.mode
}

// Cursor returns the column under the cursor.
func (m FiltersModel) Cursor() (string, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.options) {
		return "", false
	}
	return m.options[c].Column, true
}

// ActiveCount returns how many columns have an active filter.
func (m FiltersModel) ActiveCount() int {
	return len(m.spec)
}

// Update handles messages.
func (m FiltersModel) Update(msg tea.Msg) (FiltersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case FiltersModeColumns:
			return m.handleColumnsMode(msg)
		case FiltersModeValues:
			cmd := m.handleValuesMode(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleColumnsMode handles key presses while browsing filterable columns.
func (m FiltersModel) handleColumnsMode(msg tea.KeyMsg) (FiltersModel, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		c := m.table.Cursor()
		if c < 0 || c >= len(m.options) {
			return m, nil
		}
		m.mode = FiltersModeValues
		m.editing = c
		m.cursor = 0
		m.checked = make(map[string]bool)
		for _, v := range m.spec[m.options[c].Column] {
			m.checked[v] = true
		}
		return m, nil

	case "c":
		if name, ok := m.Cursor(); ok {
			if _, active := m.spec[name]; active {
				return m, func() tea.Msg {
					return ClearFilterMsg{Column: name}
				}
			}
		}
		return m, nil

	case "C":
		if len(m.spec) > 0 {
			return m, func() tea.Msg {
				return ClearAllFiltersMsg{}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleValuesMode handles key presses while toggling values for one column.
func (m *FiltersModel) handleValuesMode(msg tea.KeyMsg) tea.Cmd {
	values := m.options[m.editing].Values

	switch msg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, len(values)-1)

	case "k", "up":
		m.cursor = max(m.cursor-1, 0)

	case "g", "home":
		m.cursor = 0

	case "G", "end":
		m.cursor = len(values) - 1

	case " ", "x":
		if m.cursor < len(values) {
			v := values[m.cursor]
			m.checked[v] = !m.checked[v]
		}

	case "a":
		for _, v := range values {
			m.checked[v] = true
		}

	case "n":
		m.checked = make(map[string]bool)

	case "enter":
		column := m.options[m.editing].Column
		picked := make([]string, 0, len(m.checked))
		for _, v := range values {
			if m.checked[v] {
				picked = append(picked, v)
			}
		}
		m.mode = FiltersModeColumns
		if len(picked) == 0 {
			if _, active := m.spec[column]; !active {
				return nil
			}
			return func() tea.Msg {
				return ClearFilterMsg{Column: column}
			}
		}
		return func() tea.Msg {
			return ApplyFilterMsg{Column: column, Values: picked}
		}

	case "esc":
		m.mode = FiltersModeColumns
	}

	return nil
}

// View renders the filter view.
func (m FiltersModel) View() string {
	if m.height < 10 {
		return "Terminal too small"
	}

	if m.mode == FiltersModeValues {
		return m.renderValuesView()
	}
	return m.renderColumnsView()
}

// renderColumnsView renders the filterable column list.
func (m FiltersModel) renderColumnsView() string {
	title := m.theme.Title.Render("Filter Rows")
	status := fmt.Sprintf("%d filterable columns, %d active", len(m.options), len(m.spec))
	subtitle := m.theme.Subtitle.Render(status)

	if len(m.options) == 0 {
		empty := m.theme.StatusPending.Render("No kept column offers a filter.")
		return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, empty)
	}

	hints := []string{
		"[Enter] Edit values",
		"[c] Clear filter",
		"[C] Clear all",
		"[Tab] Review",
	}
	footer := lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(hints, "  "))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, m.table.View(), footer)
}

// renderValuesView renders the value checkboxes for the column being edited.
func (m FiltersModel) renderValuesView() string {
	option := m.options[m.editing]

	title := m.theme.Title.Render(fmt.Sprintf("Filter: %s", option.Column))
	status := fmt.Sprintf("%d of %d values allowed", m.checkedCount(), len(option.Values))
	subtitle := m.theme.Subtitle.Render(status)

	visible := max(3, m.height-8)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(option.Values))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		v := option.Values[i]
		check := "[ ]"
		if m.checked[v] {
			check = "[x]"
		}
		line := fmt.Sprintf("  %s %s", check, truncate(v, m.width-10))
		if i == m.cursor {
			line = m.theme.Selected.Render(fmt.Sprintf("▸ %s %s", check, truncate(v, m.width-10)))
		}
		lines = append(lines, line)
	}

	hints := []string{
		"[Space] Toggle",
		"[a] All",
		"[n] None",
		"[Enter] Apply",
		"[Esc] Cancel",
	}
	footer := lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(hints, "  "))

	sections := []string{title, subtitle}
	sections = append(sections, lines...)
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// buildTableRows builds rows for the column table.
func (m FiltersModel) buildTableRows() []table.Row {
	rows := make([]table.Row, 0, len(m.options))

	for _, option := range m.options {
		active := "—"
		if picked, ok := m.spec[option.Column]; ok {
			active = truncate(strings.Join(picked, ", "), 40)
		}

		rows = append(rows, table.Row{
			truncate(option.Column, 30),
			fmt.Sprintf("%d", len(option.Values)),
			active,
		})
	}

	return rows
}

func (m FiltersModel) checkedCount() int {
	count := 0
	for _, on := range m.checked {
		if on {
			count++
		}
	}
	return count
}

// Resize updates the component size.
func (m *FiltersModel) Resize(width, height int) {
	m.width = width
	m.height = height

	m.table.SetHeight(max(1, height-6))
	m.updateColumnWidths()
}

// updateColumnWidths adjusts column widths to the available space.
func (m *FiltersModel) updateColumnWidths() {
	availableWidth := m.width - 4
	if availableWidth < 60 {
		availableWidth = 60
	}

	columns := []table.Column{
		{Title: "Column", Width: max(16, int(float64(availableWidth)*0.35))},
		{Title: "Values", Width: 8},
		{Title: "Active", Width: max(20, int(float64(availableWidth)*0.5))},
	}

	m.table.SetColumns(columns)
}
