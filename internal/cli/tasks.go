package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/model"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app))
	cmd.AddCommand(newTasksRemoveCmd(app))
	cmd.AddCommand(newTasksExportCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var status string
	var incomplete bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Example: strings.TrimSpace(`
taskdeck tasks list
taskdeck tasks list --status in-progress
taskdeck tasks list --incomplete --format text
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := model.ParseFilter(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			if incomplete && filter != model.FilterAll {
				return writeErr(cmd, errors.New("--incomplete cannot be combined with --status"))
			}

			st, svc := buildStore(app)
			defer st.Close()

			if incomplete {
				tasks, err := svc.ListIncomplete(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": tasks})
			}

			if err := st.Load(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			st.SetFilter(filter)
			return writeOut(cmd, app, map[string]any{"data": st.FilteredTasks()})
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "Only tasks with this status (pending|in-progress|completed|cancelled|all)")
	cmd.Flags().BoolVar(&incomplete, "incomplete", false, "Only tasks that are neither completed nor cancelled")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show <task-id>",
		Aliases: []string{"get"},
		Short:   "Show a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := buildService(app).Get(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   t,
				"_hints": taskHints(id),
			})
		},
	}
}

func newTasksAddCmd(app *App) *cobra.Command {
	var title, description, priority, status, due string

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"create"},
		Short:   "Create a task",
		Example: strings.TrimSpace(`
taskdeck tasks add --title "Write report"
taskdeck tasks add --title "Call back" --priority high --due 2025-03-01
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title = strings.TrimSpace(title)
			if title == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			draft := model.Task{Title: title, Description: description}

			var err error
			if draft.Priority, err = model.ParsePriority(priority); err != nil {
				return writeErr(cmd, err)
			}
			if draft.Status, err = model.ParseStatus(status); err != nil {
				return writeErr(cmd, err)
			}
			if draft.DueDate, err = parseDue(due); err != nil {
				return writeErr(cmd, err)
			}

			st, _ := buildStore(app)
			defer st.Close()
			created, err := st.Add(cmd.Context(), draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   created,
				"_hints": taskHints(created.ID),
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Task description (Markdown)")
	cmd.Flags().StringVar(&priority, "priority", "medium", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&status, "status", "pending", "Initial status")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, description, priority, due string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change task fields (only the flags you pass are changed)",
		Example: strings.TrimSpace(`
taskdeck tasks update 4 --title "Write the Q3 report"
taskdeck tasks update 4 --due ""   # clear the due date
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var p model.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				t := strings.TrimSpace(title)
				if t == "" {
					return writeErr(cmd, errors.New("--title cannot be empty"))
				}
				p.Title = &t
			}
			if flags.Changed("description") {
				p.Description = &description
			}
			if flags.Changed("priority") {
				pr, err := model.ParsePriority(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Priority = &pr
			}
			if flags.Changed("due") {
				d, err := parseDue(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.DueDate = d
				p.ClearDueDate = d == nil
			}
			if p.IsEmpty() {
				return writeErr(cmd, errors.New("nothing to update (pass --title, --description, --priority or --due)"))
			}

			st, _ := buildStore(app)
			defer st.Close()
			updated, err := st.UpdateFields(cmd.Context(), id, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD, empty clears)")
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task's status",
		Example: strings.TrimSpace(`
taskdeck tasks status 4 in-progress
taskdeck tasks status 4 done
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}

			st, _ := buildStore(app)
			defer st.Close()
			updated, err := st.UpdateStatus(cmd.Context(), id, status)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}
}

func newTasksCompleteCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task completed (or pending again with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			done := !undo

			st, _ := buildStore(app)
			defer st.Close()
			updated, err := st.UpdateFields(cmd.Context(), id, model.Patch{Completed: &done})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the task pending again")
	return cmd
}

func newTasksRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete", "remove"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			st, _ := buildStore(app)
			defer st.Close()
			if err := st.Remove(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id: %q", s)
	}
	return id, nil
}

// parseDue accepts YYYY-MM-DD in local time. Empty means no due date.
func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}

func taskHints(id int64) []string {
	s := strconv.FormatInt(id, 10)
	return []string{
		"taskdeck tasks status " + s + " in-progress",
		"taskdeck tasks update " + s + " --title \"...\"",
		"taskdeck focus " + s,
	}
}
