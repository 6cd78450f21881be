package tui

import (
	"fmt"
	"strings"

	"taskdeck/internal/locale"
	"taskdeck/internal/model"

	"github.com/charmbracelet/bubbles/list"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task model.Task
	tr   *locale.Translator
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	glyph := styleStatus(i.task.Status).Render(statusGlyph(i.task.Status))
	return glyph + " " + i.task.Title
}

func (i taskItem) Description() string {
	parts := []string{i.tr.Status(i.task.Status)}
	if i.task.Priority != "" {
		parts = append(parts, i.tr.Priority(i.task.Priority))
	}
	if i.task.DueDate != nil {
		parts = append(parts, i.task.DueDate.Format("2006-01-02"))
	}
	if i.task.PomodoroCount > 0 {
		parts = append(parts, fmt.Sprintf("🍅%d", i.task.PomodoroCount))
	}
	return strings.Join(parts, " · ")
}

func taskItems(tasks []model.Task, tr *locale.Translator) []list.Item {
	out := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskItem{task: t, tr: tr})
	}
	return out
}

func newList(items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	// We render our own header and footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	// "f" and "d" are task actions here; keep paging on arrows/pgup/pgdown.
	l.KeyMap.NextPage.SetKeys("right", "pgdown")
	l.KeyMap.PrevPage.SetKeys("left", "pgup")
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	return l
}

// indexOfTask returns the list position of id, or -1.
func indexOfTask(items []list.Item, id int64) int {
	for i, it := range items {
		if ti, ok := it.(taskItem); ok && ti.task.ID == id {
			return i
		}
	}
	return -1
}

// truncateToWidth cuts s to at most w terminal cells, adding an ellipsis
// when something was removed. ANSI sequences are preserved.
func truncateToWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return xansi.Cut(s, 0, w-1) + "…"
}
