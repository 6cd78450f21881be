package cli

import (
	"strings"

	"taskdeck/internal/model"
	"taskdeck/internal/publish"

	"github.com/spf13/cobra"
)

func newTasksExportCmd(app *App) *cobra.Command {
	var to, status string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks as Markdown pages",
		Example: strings.TrimSpace(`
taskdeck tasks export --to ./tasks-md
taskdeck tasks export --to ./tasks-md --status pending --overwrite
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := model.ParseFilter(status)
			if err != nil {
				return writeErr(cmd, err)
			}

			st, _ := buildStore(app)
			defer st.Close()
			if err := st.Load(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			st.SetFilter(filter)

			res, err := publish.WriteTasks(st.FilteredTasks(), to, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().StringVar(&status, "status", "all", "Only tasks with this status")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
