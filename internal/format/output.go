package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/model"

	"github.com/fatih/color"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

var (
	bold = color.New(color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()

	statusColors = map[model.Status]*color.Color{
		model.StatusPending:    color.New(color.FgYellow),
		model.StatusInProgress: color.New(color.FgCyan),
		model.StatusCompleted:  color.New(color.FgGreen),
		model.StatusCancelled:  color.New(color.FgRed, color.Faint),
	}
)

const statusWidth = len("in-progress")

// statusCell pads before coloring so escape codes do not skew column widths.
func statusCell(s model.Status) string {
	return paint(s, fmt.Sprintf("%-*s", statusWidth, s))
}

func paint(s model.Status, text string) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(text)
	}
	return text
}

// WriteText writes a human-oriented rendering. Command envelopes
// ({"data": ..., "_hints": ...}) print their data only.
func WriteText(w io.Writer, v any) error {
	if env, ok := v.(map[string]any); ok {
		if data, ok := env["data"]; ok {
			v = data
		}
	}

	switch x := v.(type) {
	case []model.Task:
		return writeTaskTable(w, x)
	case model.Task:
		return writeTask(w, x)
	case *model.Task:
		return writeTask(w, *x)
	case []config.Setting:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, s := range x {
			fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Value)
		}
		return tw.Flush()
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s: %v\n", k, x[k]); err != nil {
				return err
			}
		}
		return nil
	case string:
		_, err := fmt.Fprintln(w, x)
		return err
	default:
		return WriteJSON(w, v, true)
	}
}

func writeTaskTable(w io.Writer, tasks []model.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, dim("no tasks"))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", bold("ID"), bold(fmt.Sprintf("%-*s", statusWidth, "STATUS")), bold("PRIORITY"), bold("DUE"), bold("TITLE"))
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, statusCell(t.Status), orDash(string(t.Priority)), date(t.DueDate), t.Title)
	}
	return tw.Flush()
}

func writeTask(w io.Writer, t model.Task) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", bold(fmt.Sprintf("#%d", t.ID)), bold(t.Title))
	fmt.Fprintf(&b, "status:    %s\n", paint(t.Status, string(t.Status)))
	fmt.Fprintf(&b, "priority:  %s\n", orDash(string(t.Priority)))
	fmt.Fprintf(&b, "due:       %s\n", date(t.DueDate))
	fmt.Fprintf(&b, "pomodoros: %d\n", t.PomodoroCount)
	if t.CreatedAt != nil {
		fmt.Fprintf(&b, "created:   %s\n", dim(t.CreatedAt.Format(time.RFC3339)))
	}
	if t.UpdatedAt != nil {
		fmt.Fprintf(&b, "updated:   %s\n", dim(t.UpdatedAt.Format(time.RFC3339)))
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(&b, "\n%s\n", d)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
