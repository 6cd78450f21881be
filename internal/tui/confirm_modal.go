package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func modalWidth(width int) int {
	w := width * 2 / 3
	if w < 36 {
		w = 36
	}
	if w > 72 {
		w = 72
	}
	if width > 0 && w > width-2 {
		w = width - 2
	}
	return w
}

// modalBodyWidth is the usable content width inside renderModalBox.
func modalBodyWidth(width int) int {
	return modalWidth(width) - 4
}

func renderModalBox(width int, title string, content string) string {
	w := modalWidth(width)
	header := styleHeader().Width(w - 4).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Width(w - 2).
		Render(header + "\n\n" + content)
}

func renderConfirmModal(width int, title string, body string, help string) string {
	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		styleMuted().Width(bodyW).Render(help),
	}, "\n")
	return renderModalBox(width, title, content)
}
