package tui

import (
	"context"
	"errors"

	"taskdeck/internal/focus"
	"taskdeck/internal/locale"
	"taskdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Translator *locale.Translator
	Focus      focus.Settings
	Logger     *zap.Logger
}

// Run starts the interactive TUI over st and blocks until the user quits.
func Run(ctx context.Context, st *store.Store, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, stop := newAppModel(ctx, st, opts)
	defer stop()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
