package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/format"
	"taskdeck/internal/gateway"
	"taskdeck/internal/locale"
	"taskdeck/internal/logging"
	"taskdeck/internal/model"
	"taskdeck/internal/store"
	"taskdeck/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	APIURL     string
	Mock       bool
	PrettyJSON bool
	Format     string
	Lang       string
	LogLevel   string

	cfg        *config.Config
	log        *zap.Logger
	restoreLog func()

	// service, when set, is used instead of building one from config.
	service taskService
	// focusInterval overrides the wall time of one focus-timer second.
	focusInterval time.Duration
}

// taskService is what commands need from a gateway. Both *gateway.Client
// and *gateway.Memory implement it.
type taskService interface {
	store.Gateway
	Get(ctx context.Context, id int64) (model.Task, error)
	ListIncomplete(ctx context.Context) ([]model.Task, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "taskdeck",
		Short:        "Task manager client (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskdeck

  # Scriptable commands
  taskdeck tasks list --status pending
  taskdeck tasks add --title "Write report" --priority high

  # Direct task lookup (shortcut for: taskdeck tasks show <id>)
  taskdeck 12

  # Try it without a server
  taskdeck --mock
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd, app); err != nil {
			return writeErr(cmd, err)
		}
		// The TUI owns the terminal, so it logs to a file.
		logFile := ""
		if cmd == cmd.Root() {
			logFile = app.cfg.Log.File
		}
		l, err := logging.New(logging.Options{Level: app.cfg.Log.Level, File: logFile})
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = l
		app.restoreLog = logging.Install(l)
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.restoreLog != nil {
			app.restoreLog()
			app.restoreLog = nil
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Task service base URL (default from config: http://localhost:8080/api)")
	cmd.PersistentFlags().BoolVar(&app.Mock, "mock", false, "Use the in-memory task service instead of the remote one")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKDECK_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().StringVar(&app.Lang, "lang", "", "UI language (en|fr)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newFocusCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadConfig resolves config.yaml + environment, then applies flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command, app *App) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if v := strings.TrimSpace(app.APIURL); v != "" {
		cfg.API.URL = v
	}
	if flags.Changed("mock") {
		cfg.API.Mock = app.Mock
	}
	if flags.Changed("lang") {
		cfg.Lang = strings.TrimSpace(app.Lang)
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = strings.TrimSpace(app.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	app.cfg = cfg
	return nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	svc := buildService(app)
	tr, err := locale.New(app.cfg.Lang)
	if err != nil {
		return writeErr(cmd, err)
	}
	st := store.New(svc, store.WithLogger(app.log))
	defer st.Close()
	return tui.Run(cmd.Context(), st, tui.Options{
		Translator: tr,
		Focus:      focusSettings(app, 0, 0, 0),
		Logger:     app.log,
	})
}

func buildService(app *App) taskService {
	if app.service != nil {
		return app.service
	}
	if app.cfg.API.Mock {
		return gateway.NewMemory(gateway.WithLatency(app.cfg.API.MockLatency))
	}
	return gateway.NewClient(gateway.Options{
		BaseURL: app.cfg.API.URL,
		Timeout: app.cfg.API.Timeout,
		Logger:  app.log,
	})
}

func buildStore(app *App) (*store.Store, taskService) {
	svc := buildService(app)
	return store.New(svc, store.WithLogger(app.log)), svc
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
