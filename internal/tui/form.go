package tui

import (
	"errors"
	"strings"
	"time"

	"taskdeck/internal/locale"
	"taskdeck/internal/model"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldPriority
	fieldDue
	fieldCount
)

const dateLayout = "2006-01-02"

// taskForm edits a draft (editing == nil) or an existing task.
type taskForm struct {
	editing *model.Task
	focus   formField

	title       textinput.Model
	description textarea.Model
	priority    textinput.Model
	due         textinput.Model

	err string
}

func newTaskForm(tr *locale.Translator, editing *model.Task) taskForm {
	f := taskForm{editing: editing}

	f.title = textinput.New()
	f.title.Placeholder = tr.T("field_title")
	f.title.CharLimit = 200

	f.description = textarea.New()
	f.description.Placeholder = tr.T("field_description")
	f.description.ShowLineNumbers = false
	f.description.SetHeight(5)

	f.priority = textinput.New()
	f.priority.Placeholder = "low | medium | high"
	f.priority.CharLimit = 10

	f.due = textinput.New()
	f.due.Placeholder = tr.T("field_due_hint")
	f.due.CharLimit = 10

	if editing != nil {
		f.title.SetValue(editing.Title)
		f.description.SetValue(editing.Description)
		f.priority.SetValue(string(editing.Priority))
		if editing.DueDate != nil {
			f.due.SetValue(editing.DueDate.Format(dateLayout))
		}
	} else {
		f.priority.SetValue(string(model.PriorityMedium))
	}
	f.setFocus(fieldTitle)
	return f
}

func (f *taskForm) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.title.Width = w - 2
	f.priority.Width = w - 2
	f.due.Width = w - 2
	f.description.SetWidth(w)
}

func (f *taskForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	f.title.Blur()
	f.description.Blur()
	f.priority.Blur()
	f.due.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.description.Focus()
	case fieldPriority:
		f.priority.Focus()
	case fieldDue:
		f.due.Focus()
	}
}

func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "tab":
			f.setFocus(f.focus + 1)
			return f, nil
		case "shift+tab":
			f.setFocus(f.focus - 1)
			return f, nil
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldPriority:
		f.priority, cmd = f.priority.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return f, cmd
}

var (
	errTitleRequired = errors.New("title_required")
	errInvalidDue    = errors.New("invalid_due")
)

// values validates the inputs. Error texts are message ids.
func (f taskForm) values() (title, description string, priority model.Priority, due *time.Time, err error) {
	title = strings.TrimSpace(f.title.Value())
	if title == "" {
		return "", "", "", nil, errTitleRequired
	}
	priority, err = model.ParsePriority(f.priority.Value())
	if err != nil {
		return "", "", "", nil, err
	}
	if s := strings.TrimSpace(f.due.Value()); s != "" {
		d, perr := time.ParseInLocation(dateLayout, s, time.Local)
		if perr != nil {
			return "", "", "", nil, errInvalidDue
		}
		due = &d
	}
	return title, f.description.Value(), priority, due, nil
}

// draft builds the task to create.
func (f taskForm) draft() (model.Task, error) {
	title, desc, prio, due, err := f.values()
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{Title: title, Description: desc, Priority: prio, Status: model.StatusPending, DueDate: due}, nil
}

// patch returns only the fields that differ from the task being edited.
func (f taskForm) patch() (model.Patch, error) {
	var p model.Patch
	title, desc, prio, due, err := f.values()
	if err != nil {
		return p, err
	}
	cur := f.editing
	if title != cur.Title {
		p.Title = &title
	}
	if desc != cur.Description {
		p.Description = &desc
	}
	if prio != cur.Priority {
		p.Priority = &prio
	}
	switch {
	case due == nil && cur.DueDate != nil:
		p.ClearDueDate = true
	case due != nil && (cur.DueDate == nil || due.Format(dateLayout) != cur.DueDate.Format(dateLayout)):
		p.DueDate = due
	}
	return p, nil
}

func (f taskForm) view(tr *locale.Translator, width int) string {
	title := tr.T("form_new")
	if f.editing != nil {
		title = tr.T("form_edit")
	}
	bodyW := modalBodyWidth(width)
	label := func(id string, field formField) string {
		st := styleMuted()
		if f.focus == field {
			st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		}
		return st.Render(tr.T(id))
	}
	input := lipgloss.NewStyle().Background(colorInputBg).Width(bodyW)

	lines := []string{
		label("field_title", fieldTitle),
		input.Render(f.title.View()),
		"",
		label("field_description", fieldDescription),
		f.description.View(),
		"",
		label("field_priority", fieldPriority),
		input.Render(f.priority.View()),
		"",
		label("field_due_hint", fieldDue),
		input.Render(f.due.View()),
	}
	if f.err != "" {
		lines = append(lines, "", styleError().Render(f.err))
	}
	lines = append(lines, "", styleMuted().Width(bodyW).Render(tr.T("form_hint")))
	return renderModalBox(width, title, strings.Join(lines, "\n"))
}
