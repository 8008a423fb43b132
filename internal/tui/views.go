package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/feedtailor/feedtailor/internal/tui/themes"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	if m.state == StateHelp {
		return m.renderHelp()
	}

	var content string
	switch m.state {
	case StatePicker:
		content = m.picker.View()
	case StateFilters:
		content = m.filters.View()
	case StateReview:
		content = m.renderReview()
	case StateResolve:
		content = m.resolve.View()
	case StateDone:
		content = m.renderDone()
	}

	sections := make([]string, 0, 4)
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, content, m.renderStatusBar())

	return m.theme.Box.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("FeedTailor"),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading feed session..."),
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// renderBanner renders the error or halt notice above the active screen.
func (m Model) renderBanner() string {
	if m.lastError != nil {
		return m.theme.StatusError.Render(fmt.Sprintf("✗ %s: %v", m.errorCtx, m.lastError))
	}
	if m.result != nil && m.result.EmptySelection {
		return m.theme.StatusWarning.Render("⚠ No columns kept. Keep at least one column to continue.")
	}
	return ""
}

// renderReview renders the curated feed summary.
func (m Model) renderReview() string {
	r := m.result

	sections := []string{m.theme.Title.Render("Review")}

	if r.Filtered != nil {
		status := []string{
			fmt.Sprintf("%d of %d rows match", r.Filtered.NumRows(), r.Rows),
			fmt.Sprintf("%d columns kept", len(r.Kept)),
			fmt.Sprintf("%d filters active", len(r.FilterSpec)),
		}
		sections = append(sections, m.theme.Subtitle.Render(strings.Join(status, " · ")))
	}

	if r.NoColourColumn {
		sections = append(sections,
			m.theme.StatusWarning.Render("⚠ No colour column among the kept columns."),
			m.theme.Normal.Render("Colour summary and resolution are skipped; the filtered feed can still be exported."),
		)
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if r.Resolution != nil {
		before := r.Resolution.Before.Coverage
		after := r.Resolution.After.Coverage
		coverage := fmt.Sprintf("Coverage: %d / %d (%.2f%%)", before.Matched, before.Total, before.Percent())
		if len(r.Edits) > 0 {
			coverage += fmt.Sprintf(" → %d / %d (%.2f%%) with %d edits", after.Matched, after.Total, after.Percent(), len(r.Edits))
		}
		sections = append(sections, m.theme.StatusInfo.Render(coverage), "")
	}

	if len(r.Summary) > 0 {
		sections = append(sections, m.theme.Bold.Render(fmt.Sprintf("Colours in %q", r.ColourColumn)))
		shown := r.Summary
		if len(shown) > 8 {
			shown = shown[:8]
		}
		for _, c := range shown {
			line := fmt.Sprintf("  %s %-24s %6d  %6.2f%%", themes.GetSwatch(c.Colour), truncateTo(c.Colour, 24), c.Count, c.Percent)
			sections = append(sections, m.theme.Normal.Render(line))
		}
		if rest := len(r.Summary) - len(shown); rest > 0 {
			sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.Muted).Render(fmt.Sprintf("  … and %d more", rest)))
		}
		sections = append(sections, "")
	}

	if r.Resolution != nil {
		unmapped := r.Resolution.After.Unmapped
		if len(unmapped) == 0 {
			sections = append(sections, m.theme.StatusSuccess.Render("✓ Every colour maps to a generic name."))
		} else {
			sections = append(sections, m.theme.StatusWarning.Render(fmt.Sprintf("⚠ %d colours have no generic name", len(unmapped))))
			shown := unmapped
			if len(shown) > 8 {
				shown = shown[:8]
			}
			for _, u := range shown {
				sections = append(sections, m.theme.Normal.Render(fmt.Sprintf("  %s (%d products)", truncateTo(u.Value, 32), u.Count)))
			}
			if rest := len(unmapped) - len(shown); rest > 0 {
				sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.Muted).Render(fmt.Sprintf("  … and %d more", rest)))
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDone renders the export screen.
func (m Model) renderDone() string {
	sections := []string{m.theme.Title.Render("Done")}

	if m.result != nil && m.result.Filtered != nil {
		status := fmt.Sprintf("%d rows, %d columns ready to export", m.result.Filtered.NumRows(), len(m.result.Kept))
		sections = append(sections, m.theme.Subtitle.Render(status))
	}

	switch {
	case m.exporting:
		sections = append(sections, m.theme.StatusPending.Render("Exporting files..."))
	case len(m.exported) > 0:
		sections = append(sections, m.theme.StatusSuccess.Render(fmt.Sprintf("✓ Exported %d files", len(m.exported))))
		for _, path := range m.exported {
			sections = append(sections, "  "+m.theme.Code.Render(path))
		}
	default:
		sections = append(sections, m.theme.Normal.Render("Press e to write the export files."))
	}

	elapsed := fmt.Sprintf("Session time: %s", formatDuration(time.Since(m.startTime)))
	sections = append(sections, "", lipgloss.NewStyle().Foreground(m.theme.Muted).Render(elapsed))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHelp renders the help screen.
func (m Model) renderHelp() string {
	title := m.theme.Title.Render("FeedTailor - Help")

	var content []string
	for _, group := range m.keymap.FullHelp() {
		for _, binding := range group {
			help := binding.Help()
			line := fmt.Sprintf("  %-14s", help.Key)
			content = append(content,
				lipgloss.NewStyle().Foreground(m.theme.Primary).Render(line)+m.theme.Normal.Render(help.Desc))
		}
		content = append(content, "")
	}

	helpText := lipgloss.JoinVertical(lipgloss.Left, content...)
	footer := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press ? or Esc to close help")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.theme.BorderedBox.
			Width(48).
			MaxHeight(m.height-2).
			Render(lipgloss.JoinVertical(lipgloss.Left, title, helpText, footer)),
	)
}

// renderStatusBar renders the walkthrough breadcrumb and the help hint.
func (m Model) renderStatusBar() string {
	steps := []struct {
		state State
		label string
	}{
		{StatePicker, "Columns"},
		{StateFilters, "Filters"},
		{StateReview, "Review"},
		{StateResolve, "Resolve"},
		{StateDone, "Done"},
	}

	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		if step.state == m.state {
			parts = append(parts, m.theme.Highlighted.Render(" "+step.label+" "))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Muted).Render(step.label))
		}
	}
	left := strings.Join(parts, " · ")

	right := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("[?] Help  [q] Quit")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return "\n" + left + strings.Repeat(" ", gap) + right
}

// truncateTo shortens a value for a fixed-width summary row.
func truncateTo(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatDuration renders an elapsed time as seconds or minutes.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
