package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
	"taskdesk/internal/format"
	"taskdesk/internal/logging"
	"taskdesk/internal/tui"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	BaseURL    string
	Timeout    time.Duration
	Format     string
	PrettyJSON bool
	LogFile    string
	Debug      bool

	cfg    *config.Config
	logger *logging.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdesk",
		Short:        "Terminal task board for a REST task backend",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  taskdesk

  # Scriptable commands
  taskdesk tasks list --format table
  taskdesk tasks create --title "Write report" --start "2024-05-01 09:00:00" --end "2024-05-02 17:00:00"

  # Run the reference backend
  taskdesk serve --addr :8080
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return writeErr(cmd, err)
		}
		config.Overrides{
			BaseURL: app.BaseURL,
			Timeout: app.Timeout,
			LogFile: app.LogFile,
			Format:  app.Format,
			Debug:   app.Debug,
		}.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.logger.Close()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TASKDESK_CONFIG", ""), "Path to config.toml (default: $XDG_CONFIG_HOME/taskdesk/config.toml)")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "Backend base URL (default http://localhost:8080/)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (default 15s)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Write diagnostic logs to this file")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log at debug level")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	// The TUI owns the terminal, so logs always go to the log file.
	lg, err := logging.New(logging.Options{Path: app.cfg.LogFile, Debug: app.cfg.Debug, JSON: true})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.logger = lg

	c, err := newClient(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	lg.WithField("base_url", c.BaseURL()).Info("starting board")
	return tui.Run(tui.Options{
		Repo:         c,
		Logger:       lg,
		Timeout:      app.cfg.Timeout,
		RefetchDelay: app.cfg.RefetchDelay,
		Theme:        app.cfg.Theme,
		Glyphs:       app.cfg.Glyphs,
	})
}

// cliLogger is the logger for one-shot subcommands: warnings to stderr, or
// everything from info up to --log-file.
func cliLogger(cmd *cobra.Command, app *App) (*logging.Logger, error) {
	if app.logger != nil {
		return app.logger, nil
	}
	path := ""
	if strings.TrimSpace(app.LogFile) != "" {
		path = app.cfg.LogFile
	}
	lg, err := logging.New(logging.Options{
		Path:     path,
		Fallback: cmd.ErrOrStderr(),
		Debug:    app.cfg.Debug,
		JSON:     path != "",
	})
	if err != nil {
		return nil, err
	}
	if path == "" && !app.cfg.Debug {
		lg.SetLevel(log.WarnLevel)
	}
	app.logger = lg
	return lg, nil
}

func newClient(app *App) (*api.Client, error) {
	var lg log.FieldLogger
	if app.logger != nil {
		lg = app.logger
	}
	return api.New(api.Options{
		BaseURL: app.cfg.BaseURL,
		Timeout: app.cfg.Timeout,
		Logger:  lg,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut wraps v in the {"data": ...} envelope; table output renders Tabular values directly.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	if t, ok := v.(format.Tabular); ok && app.cfg.Format == format.Table {
		return format.WriteTable(cmd.OutOrStdout(), t)
	}
	return format.Write(cmd.OutOrStdout(), map[string]any{"data": v}, app.cfg.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
