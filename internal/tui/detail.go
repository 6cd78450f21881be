package tui

import (
	"fmt"
	"strings"

	"taskdeck/internal/focus"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) renderDetail(width int) string {
	t, ok := m.snap.SelectedTask()
	if !ok {
		return styleMuted().Render(m.tr.T("no_selection"))
	}
	if width < 10 {
		width = 10
	}

	label := func(id string) string {
		return styleMuted().Width(12).Render(m.tr.T(id))
	}
	row := func(id, v string) string { return label(id) + " " + v }

	lines := []string{
		styleHeader().Render(truncateToWidth(fmt.Sprintf("#%d %s", t.ID, t.Title), width)),
		"",
		row("field_status", styleStatus(t.Status).Render(statusGlyph(t.Status)+" "+m.tr.Status(t.Status))),
		row("field_priority", m.tr.Priority(t.Priority)),
	}
	if t.DueDate != nil {
		lines = append(lines, row("field_due", t.DueDate.Format(dateLayout)))
	}
	if t.CreatedAt != nil {
		lines = append(lines, row("field_created", t.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	if t.UpdatedAt != nil {
		lines = append(lines, row("field_updated", t.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	lines = append(lines, row("field_pomodoros", fmt.Sprintf("%d", t.PomodoroCount)))

	if desc := strings.TrimSpace(t.Description); desc != "" {
		lines = append(lines, "", strings.TrimRight(renderMarkdown(desc, width), "\n"))
	}

	if m.focusTaskID == t.ID || m.focusSession.State() == focus.StateIdle {
		lines = append(lines, "", m.renderFocusPanel(width))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderFocusPanel(width int) string {
	st := m.focusSession.Status()
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(m.tr.T("focus_title"))

	phase := m.tr.T("focus_idle")
	switch {
	case st.Paused:
		phase = m.tr.T("focus_paused")
	case st.State == focus.StateWork:
		phase = m.tr.T("focus_work")
	case st.State == focus.StateBreak:
		phase = m.tr.T("focus_break")
	}

	barW := width - 2
	if barW > 40 {
		barW = 40
	}
	if barW < 10 {
		barW = 10
	}
	bar := progress.New(progress.WithSolidFill(string(colorAccent.Dark)), progress.WithoutPercentage(), progress.WithWidth(barW))

	lines := []string{
		title,
		fmt.Sprintf("%s  %s", phase, focus.Format(st.Remaining)),
		bar.ViewAs(m.focusSession.Progress()),
		styleMuted().Render(m.tr.Tf("focus_sessions", map[string]any{"Completed": st.Completed, "Target": st.Target})),
	}
	return strings.Join(lines, "\n")
}

// focusBadge is the compact timer shown in the header while a session runs.
func (m appModel) focusBadge() string {
	st := m.focusSession.Status()
	if st.State == focus.StateIdle {
		return ""
	}
	glyph := "▶"
	if st.Paused {
		glyph = "⏸"
	}
	s := fmt.Sprintf("%s #%d %s %d/%d", glyph, m.focusTaskID, focus.Format(st.Remaining), st.Completed, st.Target)
	return lipgloss.NewStyle().Foreground(colorAccent).Render(s)
}
