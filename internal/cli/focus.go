package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"taskdeck/internal/focus"
	"taskdeck/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFocusCmd(app *App) *cobra.Command {
	var work, brk time.Duration
	var sessions int

	cmd := &cobra.Command{
		Use:   "focus <task-id>",
		Short: "Run a work/break focus timer on a task",
		Long: strings.TrimSpace(`
Runs work and break periods in the terminal until the target number of work
periods is reached (or Ctrl-C). Each finished work period is recorded on the
task's pomodoro count.
`),
		Example: strings.TrimSpace(`
taskdeck focus 4
taskdeck focus 4 --work 50m --break 10m --sessions 2
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			st, _ := buildStore(app)
			defer st.Close()
			if err := st.Load(ctx); err != nil {
				return writeErr(cmd, err)
			}
			st.Select(id)
			if _, ok := st.SelectedTask(); !ok {
				return writeErr(cmd, fmt.Errorf("task not found: %d", id))
			}

			settings := focusSettings(app, work, brk, sessions)
			completed := make(chan struct{}, settings.Target)
			errOut := cmd.ErrOrStderr()

			opts := []focus.RunnerOption{
				focus.OnTick(func(s focus.Status) {
					fmt.Fprintf(errOut, "\r%-5s %s  %d/%d ", s.State, focus.Format(s.Remaining), s.Completed, s.Target)
				}),
				focus.OnEvent(func(ev focus.Event, s focus.Status) {
					if ev == focus.EventWorkDone || ev == focus.EventFinished {
						completed <- struct{}{}
					}
				}),
			}
			if app.focusInterval > 0 {
				opts = append(opts, focus.WithInterval(app.focusInterval))
			}
			r := focus.NewRunner(settings, opts...)
			r.Start(ctx)
			defer r.Stop()

			var last model.Task
			record := func() error {
				t, err := st.RecordFocusSession(ctx, id)
				if err != nil {
					return err
				}
				last = t
				app.log.Info("focus session recorded", zap.Int64("task_id", id), zap.Int("pomodoros", t.PomodoroCount))
				return nil
			}

			for {
				select {
				case <-completed:
					if err := record(); err != nil {
						return writeErr(cmd, err)
					}
				case <-r.Finished():
					// Drain the final work period.
					for len(completed) > 0 {
						<-completed
						if err := record(); err != nil {
							return writeErr(cmd, err)
						}
					}
					fmt.Fprintln(errOut)
					return writeOut(cmd, app, map[string]any{"data": last})
				case <-ctx.Done():
					fmt.Fprintln(errOut)
					if cmd.Context().Err() != nil {
						return writeErr(cmd, cmd.Context().Err())
					}
					t, _ := st.SelectedTask()
					return writeOut(cmd, app, map[string]any{"data": t, "stopped": true})
				}
			}
		},
	}
	cmd.Flags().DurationVar(&work, "work", 0, "Work period (default from config focus.work)")
	cmd.Flags().DurationVar(&brk, "break", 0, "Break period (default from config focus.break)")
	cmd.Flags().IntVar(&sessions, "sessions", 0, "Work periods to run (default from config focus.sessions)")
	return cmd
}

// focusSettings merges explicit values over the configured ones.
func focusSettings(app *App, work, brk time.Duration, sessions int) focus.Settings {
	s := focus.Settings{
		Work:   app.cfg.Focus.Work,
		Break:  app.cfg.Focus.Break,
		Target: app.cfg.Focus.Sessions,
	}
	if work > 0 {
		s.Work = work
	}
	if brk > 0 {
		s.Break = brk
	}
	if sessions > 0 {
		s.Target = sessions
	}
	return s
}
