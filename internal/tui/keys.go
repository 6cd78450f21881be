package tui

import (
	"strings"

	"taskdeck/internal/locale"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Status   key.Binding
	Complete key.Binding
	Filter   key.Binding
	Focus    key.Binding
	Pause    key.Binding
	Stop     key.Binding
	Reload   key.Binding
	Back     key.Binding
	Open     key.Binding
	Quit     key.Binding
}

func newKeyMap(tr *locale.Translator) keyMap {
	b := func(help, desc string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, tr.T(desc)))
	}
	return keyMap{
		Add:      b("a", "help_add", "a", "n"),
		Edit:     b("e", "help_edit", "e"),
		Delete:   b("d", "help_delete", "d", "delete"),
		Status:   b("s", "help_status", "s"),
		Complete: b("space", "help_complete", " ", "x"),
		Filter:   b("f", "help_filter", "f", "tab"),
		Focus:    b("p", "help_focus", "p"),
		Pause:    b("P", "help_pause", "P"),
		Stop:     b("S", "help_stop", "S"),
		Reload:   b("r", "help_reload", "r", "ctrl+r"),
		Back:     b("esc", "help_back", "esc"),
		Open:     key.NewBinding(key.WithKeys("enter")),
		Quit:     b("q", "help_quit", "q", "ctrl+c"),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Status, k.Complete, k.Filter, k.Focus, k.Pause, k.Stop, k.Reload, k.Quit}
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
