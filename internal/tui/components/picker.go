package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

// PickerRow is one feed column with its profile and selection state.
type PickerRow struct {
	Stat        model.ColumnStat
	Kept        bool
	Recommended bool
}

// PickerModel manages the column picker view.
type PickerModel struct {
	theme  themes.Theme
	rows   []PickerRow
	table  table.Model
	width  int
	height int
}

// NewPicker creates a column picker.
func NewPicker(theme themes.Theme) PickerModel {
	columns := []table.Column{
		{Title: "", Width: 4},
		{Title: "Column", Width: 28},
		{Title: "Non-empty", Width: 10},
		{Title: "Distinct", Width: 9},
		{Title: "Rec", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(16),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	m := PickerModel{
		theme:  theme,
		table:  t,
		width:  80,
		height: 24,
	}
	m.updateColumnWidths()

	return m
}

// SetRows replaces the picker contents, keeping the cursor on a valid row.
func (m *PickerModel) SetRows(rows []PickerRow) {
	m.rows = rows
	m.table.SetRows(m.buildTableRows())
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

// Cursor returns the name of the column under the cursor.
func (m PickerModel) Cursor() (string, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return "", false
	}
	return m.rows[c].Stat.Name, true
}

// KeptCount returns how many columns are currently kept.
func (m PickerModel) KeptCount() int {
	count := 0
	for _, row := range m.rows {
		if row.Kept {
			count++
		}
	}
	return count
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ", "x":
			if name, ok := m.Cursor(); ok {
				return m, func() tea.Msg {
					return ToggleColumnMsg{Column: name}
				}
			}
			return m, nil

		case "r":
			return m, quickSelect(QuickRecommended)

		case "a":
			return m, quickSelect(QuickAll)

		case "n":
			return m, quickSelect(QuickNone)

		case "i":
			return m, quickSelect(QuickInvert)
		}

	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the column picker.
func (m PickerModel) View() string {
	if m.height < 10 {
		return "Terminal too small"
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.table.View(),
		m.renderFooter(),
	)
}

// renderHeader renders the picker title and selection tally.
func (m PickerModel) renderHeader() string {
	title := m.theme.Title.Render("Pick Columns")
	status := fmt.Sprintf("%d of %d columns kept", m.KeptCount(), len(m.rows))
	subtitle := m.theme.Subtitle.Render(status)

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
}

// renderFooter renders the picker key hints.
func (m PickerModel) renderFooter() string {
	hints := []string{
		"[Space] Toggle",
		"[r] Recommended",
		"[a] All",
		"[n] None",
		"[i] Invert",
		"[Tab] Filters",
	}

	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(hints, "  "))
}

// buildTableRows builds rows for the table.
func (m PickerModel) buildTableRows() []table.Row {
	rows := make([]table.Row, 0, len(m.rows))

	for _, row := range m.rows {
		check := "[ ]"
		if row.Kept {
			check = "[x]"
		}

		rec := ""
		if row.Recommended {
			rec = "★"
		}

		rows = append(rows, table.Row{
			check,
			truncate(row.Stat.Name, 40),
			fmt.Sprintf("%d", row.Stat.NonEmpty),
			fmt.Sprintf("%d", row.Stat.Distinct),
			rec,
		})
	}

	return rows
}

// Resize updates the component size.
func (m *PickerModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Chrome: title, tally, column headers, footer.
	m.table.SetHeight(max(1, height-6))
	m.updateColumnWidths()
}

// updateColumnWidths adjusts column widths to the available space.
func (m *PickerModel) updateColumnWidths() {
	availableWidth := m.width - 4
	if availableWidth < 60 {
		availableWidth = 60
	}

	columns := []table.Column{
		{Title: "", Width: 4},
		{Title: "Column", Width: max(16, int(float64(availableWidth)*0.45))},
		{Title: "Non-empty", Width: max(10, int(float64(availableWidth)*0.18))},
		{Title: "Distinct", Width: max(9, int(float64(availableWidth)*0.18))},
		{Title: "Rec", Width: 5},
	}

	m.table.SetColumns(columns)
}

func quickSelect(action QuickSelectAction) tea.Cmd {
	return func() tea.Msg {
		return QuickSelectMsg{Action: action}
	}
}

// Helper to truncate strings.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
