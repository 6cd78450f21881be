package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// RenderTaskMarkdown renders one task as a standalone Markdown page.
func RenderTaskMarkdown(t model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn(fmt.Sprintf("- ID: %d", t.ID))
	writeLn("- Status: " + string(t.Status))
	writeLn("- Priority: " + string(t.Priority))
	if t.DueDate != nil {
		writeLn("- Due: " + t.DueDate.Format("2006-01-02"))
	}
	if t.PomodoroCount > 0 {
		writeLn(fmt.Sprintf("- Pomodoros: %d", t.PomodoroCount))
	}
	if t.CreatedAt != nil {
		writeLn("- Created: " + t.CreatedAt.UTC().Format(time.RFC3339))
	}
	if t.UpdatedAt != nil {
		writeLn("- Updated: " + t.UpdatedAt.UTC().Format(time.RFC3339))
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}
	return buf.String()
}

// RenderIndexMarkdown renders a checklist linking every task page, grouped
// by status in workflow order.
func RenderIndexMarkdown(tasks []model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Tasks")
	for _, st := range model.Statuses {
		var group []model.Task
		for _, t := range tasks {
			if t.Status == st {
				group = append(group, t)
			}
		}
		if len(group) == 0 {
			continue
		}
		writeLn("")
		writeLn(fmt.Sprintf("## %s (%d)", st, len(group)))
		writeLn("")
		for _, t := range group {
			box := " "
			if t.Status.IsEndState() {
				box = "x"
			}
			writeLn(fmt.Sprintf("- [%s] [%s](tasks/%s)", box, escapeLinkText(t.Title), pageName(t)))
		}
	}
	return buf.String()
}

func pageName(t model.Task) string { return fmt.Sprintf("%d.md", t.ID) }

func escapeLinkText(s string) string {
	r := strings.NewReplacer(`[`, `\[`, `]`, `\]`)
	return r.Replace(strings.TrimSpace(s))
}
